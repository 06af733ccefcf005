package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gds_transfers_total",
		Help: "The total number of direct storage transfers",
	}, []string{"direction", "status"})

	TransferBytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gds_transfer_bytes_total",
		Help: "Total bytes moved by direct storage transfers",
	}, []string{"direction"})

	TransferDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gds_transfer_duration_ms",
		Help:    "Duration of a single direct storage transfer in milliseconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 20), // 10µs to ~5s
	}, []string{"direction"})

	TransferBandwidthGBps = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gds_transfer_bandwidth_gbps",
		Help: "Bandwidth of the last direct storage transfer in GB/s",
	}, []string{"direction"})

	VerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gds_verifications_total",
		Help: "Total number of buffer verifications by outcome",
	}, []string{"status"})
)
