package gds

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// SimDriver implements StorageDriver against ordinary file descriptors.
// Transfers are real pread/pwrite calls between the SimBackend's host
// slices and the target file, so round-trip and teardown behavior can be
// exercised without libcufile. Registration rules are enforced the same
// way the real driver enforces them: transfers against an unregistered
// handle or buffer fail with a negative code.
type SimDriver struct {
	backend *SimBackend
	logger  *zap.Logger

	mu         sync.Mutex
	open       bool
	handles    map[DriverHandle]int
	nextHandle DriverHandle
	buffers    map[DevicePtr]int64
}

// NewSimDriver creates a simulated driver sharing the backend's address space
func NewSimDriver(backend *SimBackend, logger *zap.Logger) *SimDriver {
	return &SimDriver{
		backend:    backend,
		logger:     logger,
		handles:    make(map[DriverHandle]int),
		nextHandle: 1,
		buffers:    make(map[DevicePtr]int64),
	}
}

func (d *SimDriver) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open {
		return &DriverError{Op: "driver open", Code: int32(unix.EBUSY)}
	}
	d.open = true
	d.logger.Debug("simulated driver opened")
	return nil
}

func (d *SimDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return nil
	}
	if len(d.handles) > 0 || len(d.buffers) > 0 {
		return &DriverError{Op: "driver close with live registrations", Code: int32(unix.EBUSY)}
	}
	d.open = false
	d.logger.Debug("simulated driver closed")
	return nil
}

func (d *SimDriver) RegisterHandle(fd int) (DriverHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return 0, &DriverError{Op: "handle register", Code: int32(unix.ENODEV)}
	}
	h := d.nextHandle
	d.nextHandle++
	d.handles[h] = fd
	return h, nil
}

func (d *SimDriver) DeregisterHandle(h DriverHandle) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.handles[h]; !ok {
		return &DriverError{Op: "handle deregister", Code: int32(unix.EBADF)}
	}
	delete(d.handles, h)
	return nil
}

func (d *SimDriver) RegisterBuffer(ptr DevicePtr, size int64, flags int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return &DriverError{Op: "buffer register", Code: int32(unix.ENODEV)}
	}
	if _, ok := d.backend.region(ptr); !ok {
		return &DriverError{Op: "buffer register", Code: int32(unix.EFAULT)}
	}
	d.buffers[ptr] = size
	return nil
}

func (d *SimDriver) DeregisterBuffer(ptr DevicePtr) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.buffers[ptr]; !ok {
		return &DriverError{Op: "buffer deregister", Code: int32(unix.EFAULT)}
	}
	delete(d.buffers, ptr)
	return nil
}

func (d *SimDriver) Write(h DriverHandle, ptr DevicePtr, size, fileOffset, deviceOffset int64) int64 {
	region, fd, errno := d.resolve(h, ptr, size, deviceOffset)
	if errno != 0 {
		return -int64(errno)
	}
	n, err := unix.Pwrite(fd, region[deviceOffset:deviceOffset+size], fileOffset)
	if err != nil {
		return -int64(err.(unix.Errno))
	}
	return int64(n)
}

func (d *SimDriver) Read(h DriverHandle, ptr DevicePtr, size, fileOffset, deviceOffset int64) int64 {
	region, fd, errno := d.resolve(h, ptr, size, deviceOffset)
	if errno != 0 {
		return -int64(errno)
	}
	n, err := unix.Pread(fd, region[deviceOffset:deviceOffset+size], fileOffset)
	if err != nil {
		return -int64(err.(unix.Errno))
	}
	return int64(n)
}

// DirectIO is false for the simulation: transfers go through host
// slices, which carry no alignment guarantee for O_DIRECT.
func (d *SimDriver) DirectIO() bool {
	return false
}

// resolve validates a transfer against the registration tables and
// returns the backing slice and descriptor.
func (d *SimDriver) resolve(h DriverHandle, ptr DevicePtr, size, deviceOffset int64) ([]byte, int, unix.Errno) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return nil, 0, unix.ENODEV
	}
	fd, ok := d.handles[h]
	if !ok {
		return nil, 0, unix.EBADF
	}
	regSize, ok := d.buffers[ptr]
	if !ok {
		return nil, 0, unix.EFAULT
	}
	region, ok := d.backend.region(ptr)
	if !ok {
		return nil, 0, unix.EFAULT
	}
	if deviceOffset < 0 || deviceOffset+size > regSize || deviceOffset+size > int64(len(region)) {
		return nil, 0, unix.EINVAL
	}
	return region, fd, 0
}
