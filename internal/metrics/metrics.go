// Package metrics exposes pipeline activity in the Prometheus text format.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wildmint-labs/wildmint/internal/models"
	"github.com/wildmint-labs/wildmint/internal/pipeline"
)

// Metrics records session transitions. It implements pipeline.Observer.
type Metrics struct {
	registry *prometheus.Registry

	transitions   *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	outcomes      *prometheus.CounterVec
	sessions      prometheus.Gauge
}

// New creates the collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildmint",
			Name:      "session_transitions_total",
			Help:      "Pipeline session state transitions.",
		}, []string{"from", "to"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wildmint",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in the classifying and minting stages.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"stage", "outcome"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wildmint",
			Name:      "pipeline_outcomes_total",
			Help:      "Finished pipeline attempts by result.",
		}, []string{"result"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wildmint",
			Name:      "sessions_active",
			Help:      "Sessions currently held by the server.",
		}),
	}

	m.registry.MustRegister(
		m.transitions,
		m.stageDuration,
		m.outcomes,
		m.sessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// OnTransition implements pipeline.Observer
func (m *Metrics) OnTransition(t pipeline.Transition) {
	m.transitions.WithLabelValues(string(t.From), string(t.To)).Inc()

	if pipeline.InFlight(t.From) {
		outcome := "ok"
		if t.To == pipeline.Failed {
			outcome = "failed"
		}
		m.stageDuration.WithLabelValues(string(t.From), outcome).Observe(t.Elapsed.Seconds())
	}

	if pipeline.IsTerminal(t.To) {
		m.outcomes.WithLabelValues(outcomeLabel(t)).Inc()
	}
}

// SessionOpened and SessionClosed track the session gauge
func (m *Metrics) SessionOpened() { m.sessions.Inc() }

func (m *Metrics) SessionClosed() { m.sessions.Dec() }

// Handler serves the registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests and extra collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func outcomeLabel(t pipeline.Transition) string {
	switch {
	case t.To == pipeline.Succeeded:
		return "minted"
	case t.Err == nil:
		return "failed"
	case errors.Is(t.Err, models.ErrNonAnimal):
		return "non_animal"
	case errors.Is(t.Err, models.ErrClassificationService):
		return "classification_error"
	case errors.Is(t.Err, models.ErrMintService):
		return "mint_error"
	default:
		return "failed"
	}
}
