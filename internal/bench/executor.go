package bench

import (
	"fmt"
	"time"

	"github.com/fxnlabs/gds-bench/internal/gds"
	"github.com/fxnlabs/gds-bench/internal/metrics"
	"go.uber.org/zap"
)

// TransferResult is the outcome of a single measured transfer.
// Bandwidth is in GB/s, bytes over wall-clock seconds.
type TransferResult struct {
	Bytes     int64
	Elapsed   time.Duration
	Bandwidth float64
}

// Megabytes returns the transferred size in MB
func (r TransferResult) Megabytes() float64 { return float64(r.Bytes) / 1e6 }

// Millis returns the elapsed time in milliseconds
func (r TransferResult) Millis() float64 { return float64(r.Elapsed.Nanoseconds()) / 1e6 }

// Executor performs single synchronous transfers between a registered
// device buffer and a registered file handle, measuring wall-clock
// duration around the driver call. Any byte count other than the
// buffer's full length, including negative driver error codes, fails
// with *gds.TransferSizeMismatch.
type Executor struct {
	sess *Session
	fh   *FileHandle
	log  *zap.Logger
}

// NewExecutor creates an executor bound to a file handle
func NewExecutor(sess *Session, fh *FileHandle, log *zap.Logger) *Executor {
	return &Executor{
		sess: sess,
		fh:   fh,
		log:  log.Named("transfer"),
	}
}

// Write transfers the buffer's full length from device memory at
// deviceOffset to the file at fileOffset.
func (e *Executor) Write(buf *DeviceBuffer, fileOffset, deviceOffset int64) (TransferResult, error) {
	return e.transfer("write", buf, func() int64 {
		return e.sess.Driver().Write(e.fh.Handle(), buf.Ptr(), buf.Size(), fileOffset, deviceOffset)
	})
}

// Read is the symmetric operation, file into device memory
func (e *Executor) Read(buf *DeviceBuffer, fileOffset, deviceOffset int64) (TransferResult, error) {
	return e.transfer("read", buf, func() int64 {
		return e.sess.Driver().Read(e.fh.Handle(), buf.Ptr(), buf.Size(), fileOffset, deviceOffset)
	})
}

func (e *Executor) transfer(direction string, buf *DeviceBuffer, call func() int64) (TransferResult, error) {
	if !e.fh.Registered() {
		return TransferResult{}, fmt.Errorf("%s through unregistered file handle", direction)
	}

	start := time.Now()
	n := call()
	elapsed := time.Since(start)

	if n != buf.Size() {
		metrics.TransfersTotal.WithLabelValues(direction, "error").Inc()
		return TransferResult{}, &gds.TransferSizeMismatch{Op: direction, Expected: buf.Size(), Actual: n}
	}

	result := TransferResult{
		Bytes:     n,
		Elapsed:   elapsed,
		Bandwidth: float64(n) / elapsed.Seconds() / 1e9,
	}

	metrics.TransfersTotal.WithLabelValues(direction, "ok").Inc()
	metrics.TransferBytesTotal.WithLabelValues(direction).Add(float64(n))
	metrics.TransferDuration.WithLabelValues(direction).Observe(result.Millis())
	metrics.TransferBandwidthGBps.WithLabelValues(direction).Set(result.Bandwidth)

	e.log.Debug("transfer completed",
		zap.String("direction", direction),
		zap.Int64("bytes", n),
		zap.Duration("elapsed", elapsed),
		zap.Float64("bandwidth_gbps", result.Bandwidth))
	return result, nil
}
