package gds

import (
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// SimBackend implements ComputeBackend in host memory. Device
// allocations are plain byte slices keyed by a synthetic DevicePtr, so
// the full transfer lifecycle can run on machines without an
// accelerator.
type SimBackend struct {
	logger      *zap.Logger
	mu          sync.Mutex
	allocs      map[DevicePtr][]byte
	next        uintptr
	initialized bool
}

// NewSimBackend creates a new simulated backend instance
func NewSimBackend(logger *zap.Logger) *SimBackend {
	return &SimBackend{
		logger: logger,
		allocs: make(map[DevicePtr][]byte),
		next:   0x1000,
	}
}

// Initialize prepares the simulated backend for use
func (s *SimBackend) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	s.initialized = true
	s.logger.Info("simulated backend initialized")
	return nil
}

// IsAvailable checks if the backend is available (always true for the simulation)
func (s *SimBackend) IsAvailable() bool {
	return true
}

// GetDeviceInfo returns device information for the simulated device
func (s *SimBackend) GetDeviceInfo() DeviceInfo {
	return DeviceInfo{
		Name:          fmt.Sprintf("Simulated device (%s)", runtime.GOARCH),
		TotalMemory:   8 << 30,
		DriverVersion: runtime.Version(),
	}
}

// AllocDevice reserves a simulated device-memory region
func (s *SimBackend) AllocDevice(size int64) (DevicePtr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return 0, &DeviceInitError{Op: "AllocDevice on uninitialized backend"}
	}
	if size <= 0 {
		return 0, &DeviceMemoryError{Size: size}
	}
	ptr := DevicePtr(s.next)
	s.next += uintptr(size)
	s.allocs[ptr] = make([]byte, size)
	return ptr, nil
}

// FreeDevice releases a simulated region
func (s *SimBackend) FreeDevice(ptr DevicePtr) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.allocs[ptr]; !ok {
		return fmt.Errorf("free of unknown device pointer 0x%x", uintptr(ptr))
	}
	delete(s.allocs, ptr)
	return nil
}

// Memset sets every byte of the region to value
func (s *SimBackend) Memset(ptr DevicePtr, value byte, size int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	region, ok := s.allocs[ptr]
	if !ok || size > int64(len(region)) {
		return fmt.Errorf("memset outside allocated region at 0x%x", uintptr(ptr))
	}
	for i := int64(0); i < size; i++ {
		region[i] = value
	}
	return nil
}

// CopyToHost copies len(dst) bytes from the simulated region into dst
func (s *SimBackend) CopyToHost(dst []byte, src DevicePtr) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	region, ok := s.allocs[src]
	if !ok || len(dst) > len(region) {
		return fmt.Errorf("copy outside allocated region at 0x%x", uintptr(src))
	}
	copy(dst, region)
	return nil
}

// Cleanup releases all simulated allocations and the fake context
func (s *SimBackend) Cleanup() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return nil
	}
	if n := len(s.allocs); n > 0 {
		s.logger.Warn("cleanup with live device allocations", zap.Int("count", n))
	}
	s.allocs = make(map[DevicePtr][]byte)
	s.initialized = false
	return nil
}

// region exposes the backing slice for a registered transfer. Used by
// SimDriver, which shares the backend's address space.
func (s *SimBackend) region(ptr DevicePtr) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	region, ok := s.allocs[ptr]
	return region, ok
}
