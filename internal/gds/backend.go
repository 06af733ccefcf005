package gds

// DevicePtr is an opaque address in accelerator memory. It is only
// meaningful to the ComputeBackend that handed it out and to the
// StorageDriver it was registered with.
type DevicePtr uintptr

// DriverHandle is the opaque per-file handle returned by the storage
// driver when an open file descriptor is registered. It is valid only
// while the descriptor stays open and registered.
type DriverHandle uintptr

// DeviceInfo contains information about the accelerator device
type DeviceInfo struct {
	Name          string `json:"name"`
	TotalMemory   int64  `json:"totalMemory"` // in bytes
	DriverVersion string `json:"driverVersion"`
	CUDAVersion   string `json:"cudaVersion,omitempty"`
}

// ComputeBackend defines the interface for accelerator compute backends.
// This interface allows for multiple implementations (CUDA, simulated, etc.)
// and provides a consistent API for the device-memory side of a direct
// storage transfer.
//
// Implementation notes:
// - Backends own the device and execution context for the process lifetime
// - Initialize must be called once before any allocation
// - Cleanup destroys the execution context and must be idempotent
// - Resource cleanup is critical to prevent device memory leaks
type ComputeBackend interface {
	// Initialize acquires exactly one device and one execution context.
	// Returns *DeviceInitError if device enumeration or context creation
	// fails.
	Initialize() error

	// IsAvailable checks if the backend is usable without heavy
	// initialization. Used by the factory to select a backend.
	IsAvailable() bool

	// GetDeviceInfo returns information about the device. Only valid
	// after Initialize.
	GetDeviceInfo() DeviceInfo

	// AllocDevice reserves a device-memory region of size bytes.
	// Returns *DeviceMemoryError on allocation failure.
	AllocDevice(size int64) (DevicePtr, error)

	// FreeDevice releases a region previously returned by AllocDevice.
	// The region must already be deregistered from the storage driver.
	FreeDevice(ptr DevicePtr) error

	// Memset synchronously sets every byte of the region to value.
	Memset(ptr DevicePtr, value byte, size int64) error

	// CopyToHost stages len(dst) bytes of device memory at src into dst.
	// The backend is responsible for any pinned staging memory it needs.
	CopyToHost(dst []byte, src DevicePtr) error

	// Cleanup destroys the execution context. No-op if Initialize was
	// never called or Cleanup already ran.
	Cleanup() error
}

// StorageDriver defines the interface to the direct-storage driver. It
// mirrors the cuFile ABI: registration calls surface *DriverError, while
// transfer calls return the raw signed byte count so the caller can apply
// its own short-transfer policy.
type StorageDriver interface {
	// Open initializes the driver. Opened once per process; returns
	// *DriverError on a non-zero driver status.
	Open() error

	// Close shuts the driver down. Must be the very last release action:
	// no buffer or file handle may still be registered.
	Close() error

	// RegisterHandle binds an open file descriptor to an opaque driver
	// handle used in transfer calls.
	RegisterHandle(fd int) (DriverHandle, error)

	// DeregisterHandle releases the opaque handle. Must run before the
	// underlying descriptor is closed.
	DeregisterHandle(h DriverHandle) error

	// RegisterBuffer marks a device memory region as eligible for
	// zero-copy transfers.
	RegisterBuffer(ptr DevicePtr, size int64, flags int) error

	// DeregisterBuffer reverses RegisterBuffer. Must run before the
	// region is freed.
	DeregisterBuffer(ptr DevicePtr) error

	// Write transfers size bytes from device memory at ptr+deviceOffset
	// to the file at fileOffset. Returns the number of bytes written, or
	// a negative driver error code.
	Write(h DriverHandle, ptr DevicePtr, size, fileOffset, deviceOffset int64) int64

	// Read is the symmetric operation, file into device memory.
	Read(h DriverHandle, ptr DevicePtr, size, fileOffset, deviceOffset int64) int64

	// DirectIO reports whether files registered with this driver must be
	// opened with direct (unbuffered) I/O semantics.
	DirectIO() bool
}
