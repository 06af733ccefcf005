//go:build cuda
// +build cuda

package gds

import (
	"go.uber.org/zap"
)

// NewBackend creates an appropriate backend/driver pair based on
// available hardware. It will try CUDA first, then fall back to the
// simulation.
func NewBackend(logger *zap.Logger) (ComputeBackend, StorageDriver) {
	cudaBackend := NewCUDABackend(logger)
	if cudaBackend.IsAvailable() {
		logger.Info("using CUDA backend with cuFile driver")
		return cudaBackend, NewCUDADriver(logger)
	}

	logger.Info("using simulated backend (no CUDA device available)")
	simBackend := NewSimBackend(logger)
	return simBackend, NewSimDriver(simBackend, logger)
}
