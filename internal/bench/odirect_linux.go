//go:build linux
// +build linux

package bench

import (
	"os"

	"golang.org/x/sys/unix"
)

func openTarget(name string, flag int, perm os.FileMode, direct bool) (*os.File, error) {
	if direct {
		flag |= unix.O_DIRECT
	}
	return os.OpenFile(name, flag, perm)
}
