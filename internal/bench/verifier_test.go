package bench

import (
	"os"
	"testing"

	"github.com/fxnlabs/gds-bench/internal/gds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestVerifierPasses(t *testing.T) {
	sess, _, _ := newActiveSession(t)
	buf := registeredBuffer(t, sess, "read-dest", 4096, 0xAB)

	assert.NoError(t, NewVerifier(sess, zap.NewNop()).Verify(buf, 0xAB))
}

func TestVerifierWrongPattern(t *testing.T) {
	sess, _, _ := newActiveSession(t)
	buf := registeredBuffer(t, sess, "read-dest", 4096, 0xAB)

	err := NewVerifier(sess, zap.NewNop()).Verify(buf, 0xCD)
	var verr *gds.VerificationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, int64(0), verr.Offset)
	assert.Equal(t, byte(0xAB), verr.Got)
	assert.Equal(t, byte(0xCD), verr.Want)
}

// The read itself succeeds; only verification catches the corruption.
func TestVerifierDetectsCorruptedReadBack(t *testing.T) {
	sess, _, _ := newActiveSession(t)

	const size = 4096
	wbuf := registeredBuffer(t, sess, "write-source", size, 0xAB)
	rbuf := registeredBuffer(t, sess, "read-dest", size, 0x00)
	path := targetPath(t)
	fh := openRegisteredFile(t, sess, path)

	exec := NewExecutor(sess, fh, zap.NewNop())
	_, err := exec.Write(wbuf, 0, 0)
	require.NoError(t, err)

	// Flip one byte on storage behind the driver's back.
	f, err := os.OpenFile(path, os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{0x00}, 10)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rres, err := exec.Read(rbuf, 0, 0)
	require.NoError(t, err, "the read transfer itself reports success")
	require.Equal(t, int64(size), rres.Bytes)

	var verr *gds.VerificationError
	err = NewVerifier(sess, zap.NewNop()).Verify(rbuf, 0xAB)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, int64(10), verr.Offset)
	assert.Equal(t, byte(0x00), verr.Got)
}

func TestVerifierSingleByteCorruptions(t *testing.T) {
	sess, backend, _ := newActiveSession(t)
	verifier := NewVerifier(sess, zap.NewNop())

	const size = int64(1024)
	for _, offset := range []int64{0, 1, 511, size - 1} {
		buf := NewDeviceBuffer(sess, "read-dest", zap.NewNop())
		require.NoError(t, buf.Allocate(size))
		require.NoError(t, buf.Fill(0xAB))
		require.NoError(t, corruptByte(backend, buf, offset, 0xFF))

		err := verifier.Verify(buf, 0xAB)
		var verr *gds.VerificationError
		require.ErrorAs(t, err, &verr, "offset %d", offset)
		assert.Equal(t, offset, verr.Offset)

		require.NoError(t, buf.Free())
	}
}

// corruptByte rewrites the region so that only the byte at offset
// differs from the fill pattern.
func corruptByte(backend *gds.SimBackend, buf *DeviceBuffer, offset int64, value byte) error {
	if err := backend.Memset(buf.Ptr(), buf.Pattern(), buf.Size()); err != nil {
		return err
	}
	// Memset has no offset form; rebuild the prefix after overwriting.
	if err := backend.Memset(buf.Ptr(), value, offset+1); err != nil {
		return err
	}
	return backend.Memset(buf.Ptr(), buf.Pattern(), offset)
}
