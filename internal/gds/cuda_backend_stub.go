//go:build !cuda
// +build !cuda

package gds

import "go.uber.org/zap"

// CUDABackend is a stub type when CUDA is not compiled in
type CUDABackend struct {
	logger *zap.Logger
}

// Stub implementations to satisfy ComputeBackend

func (c *CUDABackend) Initialize() error {
	panic("CUDA backend not available")
}

func (c *CUDABackend) IsAvailable() bool {
	return false
}

func (c *CUDABackend) GetDeviceInfo() DeviceInfo {
	return DeviceInfo{Name: "CUDA not available"}
}

func (c *CUDABackend) AllocDevice(size int64) (DevicePtr, error) {
	panic("CUDA backend not available")
}

func (c *CUDABackend) FreeDevice(ptr DevicePtr) error {
	return nil
}

func (c *CUDABackend) Memset(ptr DevicePtr, value byte, size int64) error {
	panic("CUDA backend not available")
}

func (c *CUDABackend) CopyToHost(dst []byte, src DevicePtr) error {
	panic("CUDA backend not available")
}

func (c *CUDABackend) Cleanup() error {
	return nil
}
