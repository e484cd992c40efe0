package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK      = "ok"
	OutcomeIgnored = "ignored"
	OutcomeFailed  = "failed"
)

// Metrics groups the collectors of the sync pipeline. Use New with a dedicated
// registry in tests to avoid duplicate registration panics.
type Metrics struct {
	Events        *prometheus.CounterVec
	EventDuration *prometheus.HistogramVec
	DomainEvents  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Events: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pagesync_events_total",
			Help: "Item change events handled, by change kind and outcome.",
		}, []string{"kind", "outcome"}),
		EventDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pagesync_event_duration_seconds",
			Help:    "Time taken to apply an item change event.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}, []string{"kind"}),
		DomainEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pagesync_domain_events_total",
			Help: "Domain events published by the page service.",
		}, []string{"type"}),
	}
}
