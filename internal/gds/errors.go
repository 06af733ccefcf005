package gds

import "fmt"

// DeviceInitError reports a failure to acquire the device or its
// execution context. Fatal; raised before any driver interaction.
type DeviceInitError struct {
	Op   string
	Code int32
}

func (e *DeviceInitError) Error() string {
	return fmt.Sprintf("%s failed (device err=%d)", e.Op, e.Code)
}

// DriverError reports a non-zero status from the direct-storage driver.
// Code is the driver's own error code, DeviceCode the nested device
// error if the driver reported one.
type DriverError struct {
	Op         string
	Code       int32
	DeviceCode int32
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("%s failed (driver err=%d, device err=%d)", e.Op, e.Code, e.DeviceCode)
}

// DeviceMemoryError reports a device memory allocation failure.
type DeviceMemoryError struct {
	Size int64
	Code int32
}

func (e *DeviceMemoryError) Error() string {
	return fmt.Sprintf("device allocation of %d bytes failed (device err=%d)", e.Size, e.Code)
}

// FileOpenError wraps the OS error from opening the transfer target.
type FileOpenError struct {
	Path string
	Err  error
}

func (e *FileOpenError) Error() string {
	return fmt.Sprintf("open %s: %v", e.Path, e.Err)
}

func (e *FileOpenError) Unwrap() error { return e.Err }

// TransferSizeMismatch reports a transfer that did not move exactly the
// requested number of bytes. Actual may be negative when the driver
// returned an error code instead of a count. Short transfers are never
// retried; a bounded page-aligned direct transfer is expected to
// complete atomically, so anything else must surface immediately.
type TransferSizeMismatch struct {
	Op       string
	Expected int64
	Actual   int64
}

func (e *TransferSizeMismatch) Error() string {
	return fmt.Sprintf("%s transferred %d bytes, expected %d", e.Op, e.Actual, e.Expected)
}

// VerificationError reports that data read back from storage does not
// match the pattern originally placed in device memory. Distinct from
// transfer errors: the I/O path reported success, so this indicates
// silent corruption.
type VerificationError struct {
	Offset int64
	Got    byte
	Want   byte
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification failed at offset %d: got 0x%02X, want 0x%02X", e.Offset, e.Got, e.Want)
}
