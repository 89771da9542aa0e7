package upstream

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ollamaproxy",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total number of upstream requests",
		},
		[]string{"endpoint", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ollamaproxy",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Time until upstream response headers, in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 90},
		},
		[]string{"endpoint"},
	)

	streamsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ollamaproxy",
			Subsystem: "upstream",
			Name:      "streams_open",
			Help:      "Upstream streams currently held open",
		},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, streamsOpen)
}

// endpointLabel collapses per-model paths to keep label cardinality bounded.
func endpointLabel(path string) string {
	if strings.HasPrefix(path, "/models/") {
		return "/models/{id}"
	}
	return path
}

func statusLabel(code int) string { return strconv.Itoa(code) }

func observe(path, status string, start time.Time) {
	ep := endpointLabel(path)
	requestsTotal.WithLabelValues(ep, status).Inc()
	requestDuration.WithLabelValues(ep).Observe(time.Since(start).Seconds())
}
