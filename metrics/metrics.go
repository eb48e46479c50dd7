package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// RequestsTotal counts API requests by endpoint and outcome.
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "athletica",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total number of API requests, labeled by endpoint and result.",
	}, []string{"endpoint", "result"})

	// RequestDuration is end-to-end handler time per endpoint.
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "athletica",
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "End-to-end time to serve an API request.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 60},
	}, []string{"endpoint"})

	// UpstreamDuration is time spent waiting on the OpenAI API.
	UpstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "athletica",
		Subsystem: "api",
		Name:      "upstream_duration_seconds",
		Help:      "Time spent on outbound OpenAI calls, labeled by operation.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 60, 120},
	}, []string{"operation"})

	// InFlight is the number of analyze/chat requests currently being served.
	InFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "athletica",
		Subsystem: "api",
		Name:      "in_flight_requests",
		Help:      "Current number of analyze/chat requests being processed.",
	})
)

// Register registers API metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestDuration,
			UpstreamDuration,
			InFlight,
		)
	})
}
