package bench

import (
	"math"
	"time"

	"github.com/fxnlabs/gds-bench/internal/gds"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

const targetFileMode = 0o644

// Options configure a benchmark run
type Options struct {
	Path       string
	BufferSize int64
	Pattern    byte
	Iterations int
}

// Report is the outcome of a completed run
type Report struct {
	StartedAt  time.Time
	Device     gds.DeviceInfo
	Path       string
	BufferSize int64
	Pattern    byte

	Writes []TransferResult
	Reads  []TransferResult

	Verified bool

	// Aggregate bandwidth over all iterations, GB/s.
	WriteGBps      float64
	WriteGBpsSigma float64
	ReadGBps       float64
	ReadGBpsSigma  float64
}

// Run executes the full benchmark sequence: session and driver setup,
// buffer and file registration, one or more write/read pairs, pattern
// verification, and teardown. Teardown runs exactly once on every exit
// path, releasing whatever subset of resources was acquired before the
// failure.
func Run(backend gds.ComputeBackend, driver gds.StorageDriver, opts Options, log *zap.Logger) (*Report, error) {
	if opts.Iterations <= 0 {
		opts.Iterations = 1
	}

	td := NewTeardown(log)
	defer func() {
		if terr := td.Run(); terr != nil {
			log.Warn("teardown finished with errors", zap.Error(terr))
		}
	}()

	sess := NewSession(backend, driver, log)
	if err := sess.Initialize(); err != nil {
		return nil, err
	}
	// Driver close is pushed first so it runs dead last, after the
	// context is destroyed; it no-ops if the driver never opened.
	td.Push("close driver", sess.CloseDriver)
	td.Push("destroy context", sess.Shutdown)

	if err := sess.OpenDriver(); err != nil {
		return nil, err
	}

	wbuf := NewDeviceBuffer(sess, "write-source", log)
	if err := wbuf.Allocate(opts.BufferSize); err != nil {
		return nil, err
	}
	td.Push("free write buffer", wbuf.Free)

	rbuf := NewDeviceBuffer(sess, "read-dest", log)
	if err := rbuf.Allocate(opts.BufferSize); err != nil {
		return nil, err
	}
	td.Push("free read buffer", rbuf.Free)

	if err := wbuf.Fill(opts.Pattern); err != nil {
		return nil, err
	}

	if err := wbuf.Register(); err != nil {
		return nil, err
	}
	td.Push("deregister write buffer", wbuf.Deregister)

	if err := rbuf.Register(); err != nil {
		return nil, err
	}
	td.Push("deregister read buffer", rbuf.Deregister)

	fh := NewFileHandle(sess, opts.Path, log)
	if err := fh.Open(targetFileMode); err != nil {
		return nil, err
	}
	td.Push("close file", fh.Close)

	if err := fh.Register(); err != nil {
		return nil, err
	}
	td.Push("deregister file handle", fh.Deregister)

	exec := NewExecutor(sess, fh, log)
	report := &Report{
		StartedAt:  time.Now(),
		Device:     backend.GetDeviceInfo(),
		Path:       opts.Path,
		BufferSize: opts.BufferSize,
		Pattern:    opts.Pattern,
	}

	for i := 0; i < opts.Iterations; i++ {
		wres, err := exec.Write(wbuf, 0, 0)
		if err != nil {
			return nil, err
		}
		report.Writes = append(report.Writes, wres)

		rres, err := exec.Read(rbuf, 0, 0)
		if err != nil {
			return nil, err
		}
		report.Reads = append(report.Reads, rres)
	}

	verifier := NewVerifier(sess, log)
	if err := verifier.Verify(rbuf, opts.Pattern); err != nil {
		return nil, err
	}
	report.Verified = true

	report.WriteGBps, report.WriteGBpsSigma = bandwidthStats(report.Writes)
	report.ReadGBps, report.ReadGBpsSigma = bandwidthStats(report.Reads)
	return report, nil
}

func bandwidthStats(results []TransferResult) (mean, sigma float64) {
	bw := make([]float64, len(results))
	for i, r := range results {
		bw[i] = r.Bandwidth
	}
	mean = stat.Mean(bw, nil)
	if len(bw) > 1 {
		sigma = stat.StdDev(bw, nil)
	}
	if math.IsNaN(mean) {
		mean = 0
	}
	return mean, sigma
}
