//go:build !linux
// +build !linux

package bench

import "os"

// O_DIRECT is linux-only; elsewhere the kernel page cache stays in the
// path and the measured bandwidth reflects that.
func openTarget(name string, flag int, perm os.FileMode, direct bool) (*os.File, error) {
	return os.OpenFile(name, flag, perm)
}
