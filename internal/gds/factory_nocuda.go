//go:build !cuda
// +build !cuda

package gds

import (
	"go.uber.org/zap"
)

// NewBackend creates an appropriate backend/driver pair based on
// available hardware. Without CUDA support it always returns the
// simulation.
func NewBackend(logger *zap.Logger) (ComputeBackend, StorageDriver) {
	logger.Info("using simulated backend (compiled without CUDA support)")
	simBackend := NewSimBackend(logger)
	return simBackend, NewSimDriver(simBackend, logger)
}
