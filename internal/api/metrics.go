package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hamprofile/pkg/chart"
)

// Metrics bundles the Prometheus collectors for chart rendering and sessions.
type Metrics struct {
	gatherer prometheus.Gatherer

	RenderPasses    *prometheus.CounterVec
	RenderDurations *prometheus.HistogramVec
	ProfilesCreated *prometheus.CounterVec
	Sessions        prometheus.Gauge
}

// NewMetrics registers the collectors against reg, defaulting to the global
// registry when nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	passes, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hamprofile_render_passes_total",
		Help: "Chart draw passes, labeled by kind (empty, full, cached).",
	}, []string{"pass"}))
	if err != nil {
		return nil, err
	}

	durations, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hamprofile_render_duration_seconds",
		Help:    "Chart draw pass latency in seconds.",
		Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"pass"}))
	if err != nil {
		return nil, err
	}

	created, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hamprofile_profiles_created_total",
		Help: "Profiles created, labeled by where the samples came from (request, grid, api).",
	}, []string{"source"}))
	if err != nil {
		return nil, err
	}

	sessions, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hamprofile_sessions",
		Help: "Chart sessions currently held in memory.",
	}))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:        gatherer,
		RenderPasses:    passes,
		RenderDurations: durations,
		ProfilesCreated: created,
		Sessions:        sessions,
	}, nil
}

// Observer returns a chart observer feeding the render collectors.
func (m *Metrics) Observer() chart.Observer {
	return func(pass chart.Pass, elapsed time.Duration) {
		if m == nil {
			return
		}
		m.RenderPasses.WithLabelValues(pass.String()).Inc()
		m.RenderDurations.WithLabelValues(pass.String()).Observe(elapsed.Seconds())
	}
}

// ProfileCreated counts a new profile by sample source.
func (m *Metrics) ProfileCreated(source string) {
	if m == nil {
		return
	}
	m.ProfilesCreated.WithLabelValues(source).Inc()
}

// SetSessions records the number of live sessions.
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.Sessions.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (m *Metrics) Handler() http.Handler {
	gatherer := m.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// register returns the already registered collector of the same type when
// one exists, so tests and restarts can share a registry.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector already registered with incompatible type: %w", err)
		}
		var zero T
		return zero, err
	}
	return c, nil
}
