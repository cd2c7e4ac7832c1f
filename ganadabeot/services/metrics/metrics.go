// Package metrics provides Prometheus metrics for the writing assistant
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors
type Metrics struct {
	// HTTP surface
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Assistant round trips
	RoundTripsTotal     *prometheus.CounterVec
	RoundTripDuration   *prometheus.HistogramVec
	RunPollsTotal       prometheus.Counter
	RoundTripsInFlight  prometheus.Gauge
	ThreadDeletesFailed prometheus.Counter

	// Session gate
	LoginAttemptsTotal *prometheus.CounterVec
	ActiveSessions     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// Tests pass a fresh prometheus.NewRegistry().
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{}

	m.HTTPRequestsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ganadabeot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	m.HTTPRequestDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ganadabeot_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	m.RoundTripsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ganadabeot_assistant_round_trips_total",
			Help: "Assistant round trips by outcome",
		},
		[]string{"outcome"},
	)

	m.RoundTripDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ganadabeot_assistant_round_trip_duration_seconds",
			Help:    "Wall time of an assistant round trip",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"outcome"},
	)

	m.RunPollsTotal = f.NewCounter(
		prometheus.CounterOpts{
			Name: "ganadabeot_assistant_run_polls_total",
			Help: "Run status polls issued",
		},
	)

	m.RoundTripsInFlight = f.NewGauge(
		prometheus.GaugeOpts{
			Name: "ganadabeot_assistant_round_trips_in_flight",
			Help: "Round trips currently waiting on the assistant",
		},
	)

	m.ThreadDeletesFailed = f.NewCounter(
		prometheus.CounterOpts{
			Name: "ganadabeot_assistant_thread_delete_failures_total",
			Help: "Thread cleanups that failed",
		},
	)

	m.LoginAttemptsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ganadabeot_login_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	m.ActiveSessions = f.NewGauge(
		prometheus.GaugeOpts{
			Name: "ganadabeot_sessions_active",
			Help: "Sessions held in memory",
		},
	)

	return m
}

// NewNopMetrics registers against a private registry; handy for tests and the CLI.
func NewNopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
