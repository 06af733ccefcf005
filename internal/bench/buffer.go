package bench

import (
	"fmt"

	"github.com/fxnlabs/gds-bench/internal/gds"
	"go.uber.org/zap"
)

// DeviceBuffer is a region of device memory usable as a zero-copy
// transfer endpoint. State is tracked explicitly rather than inferred
// from a zero pointer, since a valid device pointer could legitimately
// be zero.
type DeviceBuffer struct {
	sess *Session
	log  *zap.Logger
	name string

	ptr     gds.DevicePtr
	size    int64
	pattern byte

	allocated  bool
	registered bool
}

// NewDeviceBuffer creates an unallocated buffer. name identifies the
// buffer in logs (e.g. "write-source", "read-dest").
func NewDeviceBuffer(sess *Session, name string, log *zap.Logger) *DeviceBuffer {
	return &DeviceBuffer{
		sess: sess,
		log:  log.Named("buffer"),
		name: name,
	}
}

// Allocate reserves size bytes of device memory
func (b *DeviceBuffer) Allocate(size int64) error {
	if b.allocated {
		return fmt.Errorf("buffer %s already allocated", b.name)
	}
	ptr, err := b.sess.Backend().AllocDevice(size)
	if err != nil {
		return err
	}
	b.ptr = ptr
	b.size = size
	b.allocated = true
	b.log.Debug("device buffer allocated", zap.String("name", b.name), zap.Int64("size", size))
	return nil
}

// Fill synchronously sets every byte to pattern. This is the known-good
// payload checked later by the verifier.
func (b *DeviceBuffer) Fill(pattern byte) error {
	if !b.allocated {
		return fmt.Errorf("fill of unallocated buffer %s", b.name)
	}
	if err := b.sess.Backend().Memset(b.ptr, pattern, b.size); err != nil {
		return err
	}
	b.pattern = pattern
	return nil
}

// Register marks the region as eligible for zero-copy transfers
func (b *DeviceBuffer) Register() error {
	if !b.allocated || b.registered {
		return fmt.Errorf("register of buffer %s in wrong state", b.name)
	}
	if err := b.sess.Driver().RegisterBuffer(b.ptr, b.size, 0); err != nil {
		return err
	}
	b.registered = true
	b.sess.noteRegister()
	b.log.Debug("device buffer registered", zap.String("name", b.name))
	return nil
}

// Deregister reverses Register. No-op when the buffer is not registered,
// so teardown of a partially-initialized run is safe.
func (b *DeviceBuffer) Deregister() error {
	if !b.registered {
		return nil
	}
	// The registration is gone from this buffer's point of view even if
	// the driver call fails; teardown must still free the memory.
	b.registered = false
	b.sess.noteDeregister()
	if err := b.sess.Driver().DeregisterBuffer(b.ptr); err != nil {
		return err
	}
	b.log.Debug("device buffer deregistered", zap.String("name", b.name))
	return nil
}

// Free releases the device memory. Only legal after deregistration has
// run (or been attempted); no-op when never allocated.
func (b *DeviceBuffer) Free() error {
	if !b.allocated {
		return nil
	}
	if b.registered {
		return fmt.Errorf("free of still-registered buffer %s", b.name)
	}
	b.allocated = false
	if err := b.sess.Backend().FreeDevice(b.ptr); err != nil {
		return err
	}
	b.log.Debug("device buffer freed", zap.String("name", b.name))
	return nil
}

// Size returns the allocated length in bytes
func (b *DeviceBuffer) Size() int64 { return b.size }

// Pattern returns the byte most recently written by Fill
func (b *DeviceBuffer) Pattern() byte { return b.pattern }

// Ptr returns the device pointer; only meaningful while allocated
func (b *DeviceBuffer) Ptr() gds.DevicePtr { return b.ptr }
