package bench

import (
	"fmt"
	"os"

	"github.com/fxnlabs/gds-bench/internal/gds"
	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

const lockSuffix = ".lock"

// FileHandle is the transfer target: an open file descriptor plus the
// opaque driver handle bound to it. The descriptor is opened with
// create/truncate/read-write semantics and, when the driver requires it,
// direct unbuffered I/O. An exclusive flock on a sidecar lock file keeps
// two benchmark processes off the same target.
type FileHandle struct {
	sess *Session
	log  *zap.Logger

	path     string
	file     *os.File
	fileLock *flock.Flock
	handle   gds.DriverHandle

	opened     bool
	registered bool
}

// NewFileHandle creates an unopened handle for path
func NewFileHandle(sess *Session, path string, log *zap.Logger) *FileHandle {
	return &FileHandle{
		sess: sess,
		log:  log.Named("file"),
		path: path,
	}
}

// Open creates or truncates the target file. Fails with *gds.FileOpenError
// if the lock is held elsewhere or the OS open fails.
func (f *FileHandle) Open(mode os.FileMode) error {
	if f.opened {
		return fmt.Errorf("file %s already open", f.path)
	}

	fileLock := flock.New(f.path + lockSuffix)
	locked, err := fileLock.TryLock()
	if err != nil {
		return &gds.FileOpenError{Path: f.path, Err: err}
	}
	if !locked {
		return &gds.FileOpenError{Path: f.path, Err: fmt.Errorf("target locked by another process")}
	}

	file, err := openTarget(f.path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, mode, f.sess.Driver().DirectIO())
	if err != nil {
		_ = fileLock.Unlock()
		return &gds.FileOpenError{Path: f.path, Err: err}
	}

	f.file = file
	f.fileLock = fileLock
	f.opened = true
	f.log.Info("transfer target opened",
		zap.String("path", f.path),
		zap.Bool("direct_io", f.sess.Driver().DirectIO()))
	return nil
}

// Register binds the descriptor to an opaque driver handle
func (f *FileHandle) Register() error {
	if !f.opened || f.registered {
		return fmt.Errorf("register of file %s in wrong state", f.path)
	}
	handle, err := f.sess.Driver().RegisterHandle(int(f.file.Fd()))
	if err != nil {
		return err
	}
	f.handle = handle
	f.registered = true
	f.sess.noteRegister()
	f.log.Debug("file handle registered", zap.String("path", f.path))
	return nil
}

// Deregister releases the opaque driver handle. Must run before Close;
// no-op when never registered.
func (f *FileHandle) Deregister() error {
	if !f.registered {
		return nil
	}
	f.registered = false
	f.sess.noteDeregister()
	if err := f.sess.Driver().DeregisterHandle(f.handle); err != nil {
		return err
	}
	f.log.Debug("file handle deregistered", zap.String("path", f.path))
	return nil
}

// Close closes the descriptor and drops the lock. Idempotent; the
// handle must already be deregistered.
func (f *FileHandle) Close() error {
	if !f.opened {
		return nil
	}
	if f.registered {
		return fmt.Errorf("close of still-registered file %s", f.path)
	}
	f.opened = false
	err := f.file.Close()
	if f.fileLock != nil {
		if unlockErr := f.fileLock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}
	f.log.Debug("transfer target closed", zap.String("path", f.path))
	return err
}

// Handle returns the opaque driver handle; only valid while registered
func (f *FileHandle) Handle() gds.DriverHandle { return f.handle }

// Registered reports whether the driver handle is currently bound
func (f *FileHandle) Registered() bool { return f.registered }
