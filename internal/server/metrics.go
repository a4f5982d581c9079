package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks request and connection counters for the TCP server.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests  *prometheus.CounterVec
	durations *prometheus.HistogramVec
	openConns prometheus.Gauge
}

// NewMetrics creates the server metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dollartrack",
			Subsystem: "server",
			Name:      "requests_total",
			Help:      "Requests handled, by action and outcome.",
		}, []string{"action", "outcome"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dollartrack",
			Subsystem: "server",
			Name:      "request_duration_seconds",
			Help:      "Request handling time, by action.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
		openConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dollartrack",
			Subsystem: "server",
			Name:      "open_connections",
			Help:      "Currently open client connections.",
		}),
	}
	reg.MustRegister(m.requests, m.durations, m.openConns)
	return m
}

func (m *Metrics) observeRequest(action string, success bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !success {
		outcome = "error"
	}
	m.requests.WithLabelValues(action, outcome).Inc()
	m.durations.WithLabelValues(action).Observe(elapsed.Seconds())
}

func (m *Metrics) connOpened() {
	if m != nil {
		m.openConns.Inc()
	}
}

func (m *Metrics) connClosed() {
	if m != nil {
		m.openConns.Dec()
	}
}
