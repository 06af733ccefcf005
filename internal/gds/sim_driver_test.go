package gds

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSimPair(t *testing.T) (*SimBackend, *SimDriver) {
	t.Helper()
	backend := NewSimBackend(zap.NewNop())
	require.NoError(t, backend.Initialize())
	driver := NewSimDriver(backend, zap.NewNop())
	require.NoError(t, driver.Open())
	return backend, driver
}

func openTestFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.OpenFile(filepath.Join(t.TempDir(), "target.bin"), os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestSimDriverRoundTrip(t *testing.T) {
	backend, driver := newSimPair(t)
	f := openTestFile(t)

	const size = 4096
	wptr, err := backend.AllocDevice(size)
	require.NoError(t, err)
	rptr, err := backend.AllocDevice(size)
	require.NoError(t, err)
	require.NoError(t, backend.Memset(wptr, 0xCD, size))

	require.NoError(t, driver.RegisterBuffer(wptr, size, 0))
	require.NoError(t, driver.RegisterBuffer(rptr, size, 0))

	h, err := driver.RegisterHandle(int(f.Fd()))
	require.NoError(t, err)

	assert.Equal(t, int64(size), driver.Write(h, wptr, size, 0, 0))
	assert.Equal(t, int64(size), driver.Read(h, rptr, size, 0, 0))

	host := make([]byte, size)
	require.NoError(t, backend.CopyToHost(host, rptr))
	for i, b := range host {
		if b != 0xCD {
			t.Fatalf("byte %d = 0x%02X, want 0xCD", i, b)
		}
	}

	require.NoError(t, driver.DeregisterHandle(h))
	require.NoError(t, driver.DeregisterBuffer(wptr))
	require.NoError(t, driver.DeregisterBuffer(rptr))
	require.NoError(t, driver.Close())
}

func TestSimDriverRegistrationRules(t *testing.T) {
	backend, driver := newSimPair(t)
	f := openTestFile(t)

	const size = 512
	ptr, err := backend.AllocDevice(size)
	require.NoError(t, err)

	h, err := driver.RegisterHandle(int(f.Fd()))
	require.NoError(t, err)

	t.Run("unregistered buffer fails", func(t *testing.T) {
		assert.Negative(t, driver.Write(h, ptr, size, 0, 0))
	})

	t.Run("unknown handle fails", func(t *testing.T) {
		require.NoError(t, driver.RegisterBuffer(ptr, size, 0))
		assert.Negative(t, driver.Write(h+100, ptr, size, 0, 0))
	})

	t.Run("transfer beyond registration fails", func(t *testing.T) {
		assert.Negative(t, driver.Write(h, ptr, size, 0, 256+size))
	})

	t.Run("close with live registrations fails", func(t *testing.T) {
		var drvErr *DriverError
		assert.ErrorAs(t, driver.Close(), &drvErr)
	})

	t.Run("deregister guards", func(t *testing.T) {
		require.NoError(t, driver.DeregisterBuffer(ptr))
		var drvErr *DriverError
		assert.ErrorAs(t, driver.DeregisterBuffer(ptr), &drvErr)
		require.NoError(t, driver.DeregisterHandle(h))
		assert.ErrorAs(t, driver.DeregisterHandle(h), &drvErr)
	})

	require.NoError(t, driver.Close())
}

func TestSimDriverClosedOperations(t *testing.T) {
	backend, driver := newSimPair(t)
	require.NoError(t, driver.Close())
	// Second close is a no-op.
	require.NoError(t, driver.Close())

	ptr, err := backend.AllocDevice(64)
	require.NoError(t, err)

	_, err = driver.RegisterHandle(3)
	assert.Error(t, err)
	assert.Error(t, driver.RegisterBuffer(ptr, 64, 0))
}

func TestFactoryReturnsSimulation(t *testing.T) {
	backend, driver := NewBackend(zap.NewNop())
	require.NotNil(t, backend)
	require.NotNil(t, driver)
	assert.True(t, backend.IsAvailable())
	assert.False(t, driver.DirectIO())
}
