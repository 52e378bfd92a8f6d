// Package metrics exposes live run counters over a Prometheus endpoint so
// long stress runs can be watched from the outside while they execute.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"crowdsim/internal/core"
)

// Metrics bundles the run's Prometheus collectors on a private registry,
// so repeated runs in one process never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	EventsTotal    *prometheus.CounterVec
	ActiveAgents   prometheus.Gauge
	RequestLatency *prometheus.HistogramVec
}

// New creates and registers the run's collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		EventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crowdsim_events_total",
				Help: "Total simulation events by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		ActiveAgents: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "crowdsim_active_agents",
				Help: "Number of currently running visitor agents",
			},
		),
		RequestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crowdsim_request_duration_seconds",
				Help:    "Request latency by task",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"task"},
		),
	}
	m.registry.MustRegister(m.EventsTotal, m.ActiveAgents, m.RequestLatency)
	return m
}

// Handler returns the /metrics HTTP handler for this run's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Observe records one event into the collectors.
func (m *Metrics) Observe(e core.Event) {
	switch ev := e.(type) {
	case core.RequestOutcome:
		m.EventsTotal.WithLabelValues("request", outcome(ev.Success)).Inc()
		m.RequestLatency.WithLabelValues(ev.Task).Observe(ev.Latency.Seconds())
	case core.SearchOutcome:
		m.EventsTotal.WithLabelValues("search", outcome(ev.Success)).Inc()
		m.RequestLatency.WithLabelValues("search").Observe(ev.Latency.Seconds())
	case core.AgentFatal:
		m.EventsTotal.WithLabelValues("fatal", "failure").Inc()
	}
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// instrumented tees every reported event into the collectors before passing
// it on.
type instrumented struct {
	m    *Metrics
	next core.Reporter
}

// Instrument wraps a reporter so every event also updates the collectors.
func (m *Metrics) Instrument(next core.Reporter) core.Reporter {
	return instrumented{m: m, next: next}
}

func (i instrumented) Report(e core.Event) {
	i.m.Observe(e)
	i.next.Report(e)
}

// Serve starts the metrics endpoint on addr in a background goroutine.
// Errors other than a clean shutdown are delivered to errf.
func (m *Metrics) Serve(addr string, errf func(format string, args ...any)) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errf("metrics server: %v", err)
		}
	}()
	return srv
}
