package gds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSimBackendLifecycle(t *testing.T) {
	backend := NewSimBackend(zap.NewNop())

	require.True(t, backend.IsAvailable())
	require.NoError(t, backend.Initialize())
	// Second initialize is a no-op.
	require.NoError(t, backend.Initialize())

	info := backend.GetDeviceInfo()
	assert.Contains(t, info.Name, "Simulated")

	ptr, err := backend.AllocDevice(4096)
	require.NoError(t, err)

	require.NoError(t, backend.Memset(ptr, 0xAB, 4096))

	host := make([]byte, 4096)
	require.NoError(t, backend.CopyToHost(host, ptr))
	for i, b := range host {
		if b != 0xAB {
			t.Fatalf("byte %d = 0x%02X, want 0xAB", i, b)
		}
	}

	require.NoError(t, backend.FreeDevice(ptr))
	assert.Error(t, backend.FreeDevice(ptr), "double free should fail")

	require.NoError(t, backend.Cleanup())
	require.NoError(t, backend.Cleanup())
}

func TestSimBackendAllocErrors(t *testing.T) {
	backend := NewSimBackend(zap.NewNop())

	t.Run("alloc before initialize", func(t *testing.T) {
		_, err := backend.AllocDevice(4096)
		assert.Error(t, err)
	})

	t.Run("non-positive size", func(t *testing.T) {
		require.NoError(t, backend.Initialize())
		_, err := backend.AllocDevice(0)
		var memErr *DeviceMemoryError
		assert.ErrorAs(t, err, &memErr)
	})

	t.Run("copy beyond region", func(t *testing.T) {
		ptr, err := backend.AllocDevice(16)
		require.NoError(t, err)
		defer backend.FreeDevice(ptr)

		assert.Error(t, backend.CopyToHost(make([]byte, 32), ptr))
		assert.Error(t, backend.Memset(ptr, 0xFF, 32))
	})
}
