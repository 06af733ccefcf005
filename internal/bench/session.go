// Package bench implements the direct device-to-storage transfer
// benchmark: session and driver lifecycle, buffer and file handle
// registration, measured transfers, verification, and ordered teardown.
package bench

import (
	"errors"

	"github.com/fxnlabs/gds-bench/internal/gds"
	"go.uber.org/zap"
)

// ErrDriverBusy is returned when the driver session is asked to close
// while buffers or file handles are still registered. That ordering is a
// programming error in the caller, not a runtime condition.
var ErrDriverBusy = errors.New("driver close with live registrations")

type resourceState int

const (
	stateUninitialized resourceState = iota
	stateActive
	stateReleased
)

// Session owns the accelerator device handle, the execution context,
// and the driver session. It spans the whole benchmark run and tracks
// how many buffers and file handles are currently registered so the
// driver cannot be closed underneath them.
type Session struct {
	backend gds.ComputeBackend
	driver  gds.StorageDriver
	log     *zap.Logger

	ctxState    resourceState
	driverState resourceState
	registered  int
}

// NewSession creates a session over the given backend and driver
func NewSession(backend gds.ComputeBackend, driver gds.StorageDriver, log *zap.Logger) *Session {
	return &Session{
		backend: backend,
		driver:  driver,
		log:     log.Named("session"),
	}
}

// Initialize acquires the device and execution context
func (s *Session) Initialize() error {
	if s.ctxState == stateActive {
		return nil
	}
	if err := s.backend.Initialize(); err != nil {
		return err
	}
	s.ctxState = stateActive
	info := s.backend.GetDeviceInfo()
	s.log.Info("compute session initialized",
		zap.String("device", info.Name),
		zap.String("driver_version", info.DriverVersion))
	return nil
}

// OpenDriver opens the direct-storage driver session. The execution
// context must exist first.
func (s *Session) OpenDriver() error {
	if s.ctxState != stateActive {
		return errors.New("driver open before compute session initialized")
	}
	if s.driverState == stateActive {
		return nil
	}
	if err := s.driver.Open(); err != nil {
		return err
	}
	s.driverState = stateActive
	s.log.Info("storage driver opened")
	return nil
}

// CloseDriver closes the driver session. Idempotent; must be the very
// last release action.
func (s *Session) CloseDriver() error {
	if s.driverState != stateActive {
		return nil
	}
	if s.registered > 0 {
		return ErrDriverBusy
	}
	if err := s.driver.Close(); err != nil {
		return err
	}
	s.driverState = stateReleased
	s.log.Info("storage driver closed")
	return nil
}

// Shutdown destroys the execution context. Idempotent; no-op if the
// session was never initialized.
func (s *Session) Shutdown() error {
	if s.ctxState != stateActive {
		return nil
	}
	if err := s.backend.Cleanup(); err != nil {
		return err
	}
	s.ctxState = stateReleased
	s.log.Info("compute session shut down")
	return nil
}

// Backend returns the compute backend behind this session
func (s *Session) Backend() gds.ComputeBackend { return s.backend }

// Driver returns the storage driver behind this session
func (s *Session) Driver() gds.StorageDriver { return s.driver }

func (s *Session) noteRegister()   { s.registered++ }
func (s *Session) noteDeregister() { s.registered-- }
