package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTransferMetrics(t *testing.T) {
	t.Run("TransferBandwidthGBps", func(t *testing.T) {
		TransferBandwidthGBps.WithLabelValues("write").Set(12.5)
		value := testutil.ToFloat64(TransferBandwidthGBps.WithLabelValues("write"))
		assert.Equal(t, 12.5, value)
	})

	t.Run("TransferBytesTotal", func(t *testing.T) {
		before := testutil.ToFloat64(TransferBytesTotal.WithLabelValues("read"))
		TransferBytesTotal.WithLabelValues("read").Add(4096)
		after := testutil.ToFloat64(TransferBytesTotal.WithLabelValues("read"))
		assert.Equal(t, before+4096, after)
	})

	t.Run("TransfersTotal", func(t *testing.T) {
		before := testutil.ToFloat64(TransfersTotal.WithLabelValues("write", "error"))
		TransfersTotal.WithLabelValues("write", "error").Inc()
		after := testutil.ToFloat64(TransfersTotal.WithLabelValues("write", "error"))
		assert.Equal(t, before+1, after)
	})

	t.Run("TransferDuration", func(t *testing.T) {
		assert.NotPanics(t, func() {
			TransferDuration.WithLabelValues("write").Observe(0.42)
		})
	})

	t.Run("VerificationsTotal", func(t *testing.T) {
		before := testutil.ToFloat64(VerificationsTotal.WithLabelValues("pass"))
		VerificationsTotal.WithLabelValues("pass").Inc()
		after := testutil.ToFloat64(VerificationsTotal.WithLabelValues("pass"))
		assert.Equal(t, before+1, after)
	})
}
