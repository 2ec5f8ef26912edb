package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Delegation query routes.
const (
	RouteLocal  = "local"
	RouteRemote = "remote"
	RouteNone   = "none"
)

// Delegation query outcomes.
const (
	OutcomeSuccess    = "success"
	OutcomeFailure    = "failure"
	OutcomeError      = "error"
	OutcomeUnexpected = "unexpected"
	OutcomeNoOwner    = "no_owner"
)

// DelegationMetrics records delegation channel traffic.
type DelegationMetrics interface {
	RecordQuery(ctx context.Context, functionID, route, outcome string)
	RecordQueryDuration(ctx context.Context, functionID, route string, duration time.Duration)
}

type delegationMetrics struct {
	queries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewDelegationMetrics registers the delegation collectors on reg.
func NewDelegationMetrics(reg prometheus.Registerer) DelegationMetrics {
	if reg == nil {
		return NewNoop()
	}

	m := &delegationMetrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "delegation",
			Name:      "queries_total",
			Help:      "Delegated function calls by route and outcome.",
		}, []string{"function", "route", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "delegation",
			Name:      "query_duration_seconds",
			Help:      "Round trip duration of delegated function calls.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30},
		}, []string{"function", "route"}),
	}

	reg.MustRegister(m.queries, m.duration)
	return m
}

func (m *delegationMetrics) RecordQuery(_ context.Context, functionID, route, outcome string) {
	m.queries.WithLabelValues(functionID, route, outcome).Inc()
}

func (m *delegationMetrics) RecordQueryDuration(_ context.Context, functionID, route string, duration time.Duration) {
	m.duration.WithLabelValues(functionID, route).Observe(duration.Seconds())
}
