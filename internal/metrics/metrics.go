// Package metrics exposes the pipeline's Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for the messages counter.
const (
	OutcomeText             = "text"
	OutcomeChart            = "chart"
	OutcomeDenied           = "denied"
	OutcomeLedgerError      = "ledger_error"
	OutcomeModelFallback    = "model_fallback"
	OutcomeInsufficientData = "insufficient_data"
	OutcomePanic            = "panic"
)

// Metrics holds the pipeline counters. Construct once and share.
type Metrics struct {
	Messages      *prometheus.CounterVec
	Charts        *prometheus.CounterVec
	ActionSignals *prometheus.CounterVec
}

// New registers the counters with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Messages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_messages_total",
			Help: "Inbound messages handled, labeled by outcome.",
		}, []string{"outcome"}),
		Charts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_charts_total",
			Help: "Charts rendered, labeled by chart kind.",
		}, []string{"kind"}),
		ActionSignals: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_action_signals_total",
			Help: "Action markers detected in model replies, labeled by action kind.",
		}, []string{"kind"}),
	}
}

// NewUnregistered creates metrics backed by a throwaway registry, for
// tests and tools that do not scrape.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}
