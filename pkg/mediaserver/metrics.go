package mediaserver

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultOK       = "ok"
	ResultCached   = "cached"
	ResultNotFound = "notfound"
	ResultError    = "error"
)

// Metrics has its own registry, so several servers (and tests) do not collide
type Metrics struct {
	registry      *prometheus.Registry
	requests      *prometheus.CounterVec
	probeDuration prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mediainfo",
			Name:      "requests_total",
			Help:      "Metadata requests by filesystem and result.",
		}, []string{"filesystem", "result"}),
		probeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mediainfo",
			Name:      "probe_duration_seconds",
			Help:      "Runtime of ffprobe calls.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
	m.registry.MustRegister(m.requests, m.probeDuration)
	return m
}

func (m *Metrics) Request(filesystem, result string) {
	m.requests.WithLabelValues(filesystem, result).Inc()
}

func (m *Metrics) Probe(d time.Duration) {
	m.probeDuration.Observe(d.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
