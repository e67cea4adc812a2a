package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/danmuck/pals/internal/protocol/pals"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pals",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pals",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
	codecOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pals",
			Subsystem: "codec",
			Name:      "operations_total",
			Help:      "Codec operations by variant, op and result kind.",
		},
		[]string{"variant", "op", "result"},
	)
	codecBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pals",
			Subsystem: "codec",
			Name:      "bytes",
			Help:      "Size of encoded buffers produced or consumed.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 10),
		},
		[]string{"variant", "op"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, codecOps, codecBytes)
	})
}

func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordCodecOp counts one encode or decode call. size is the encoded buffer
// length and is only observed on success.
func RecordCodecOp(variant pals.Variant, op string, size int, err error) {
	RegisterMetrics()
	codecOps.WithLabelValues(variant.String(), op, pals.KindOf(err)).Inc()
	if err == nil {
		codecBytes.WithLabelValues(variant.String(), op).Observe(float64(size))
	}
}
