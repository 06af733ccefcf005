package bench

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fxnlabs/gds-bench/internal/gds"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newSimSession wires a session over the simulated backend and driver.
func newSimSession(t *testing.T) (*Session, *gds.SimBackend, *gds.SimDriver) {
	t.Helper()
	backend := gds.NewSimBackend(zap.NewNop())
	driver := gds.NewSimDriver(backend, zap.NewNop())
	sess := NewSession(backend, driver, zap.NewNop())
	return sess, backend, driver
}

// newActiveSession additionally initializes the session and opens the driver.
func newActiveSession(t *testing.T) (*Session, *gds.SimBackend, *gds.SimDriver) {
	t.Helper()
	sess, backend, driver := newSimSession(t)
	require.NoError(t, sess.Initialize())
	require.NoError(t, sess.OpenDriver())
	return sess, backend, driver
}

func targetPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "target.bin")
}

// registeredBuffer allocates, fills, and registers a buffer.
func registeredBuffer(t *testing.T, sess *Session, name string, size int64, pattern byte) *DeviceBuffer {
	t.Helper()
	buf := NewDeviceBuffer(sess, name, zap.NewNop())
	require.NoError(t, buf.Allocate(size))
	require.NoError(t, buf.Fill(pattern))
	require.NoError(t, buf.Register())
	return buf
}

// openRegisteredFile opens and registers a transfer target.
func openRegisteredFile(t *testing.T, sess *Session, path string) *FileHandle {
	t.Helper()
	fh := NewFileHandle(sess, path, zap.NewNop())
	require.NoError(t, fh.Open(0o644))
	require.NoError(t, fh.Register())
	return fh
}

func readFileBytes(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
