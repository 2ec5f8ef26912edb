package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// ChatMetrics records message aggregation behaviour.
type ChatMetrics interface {
	// RecordCoalesced counts a call that joined a pending aggregation group.
	RecordCoalesced(ctx context.Context, action string)
	// RecordFlush counts an emitted message and how many calls it settled.
	RecordFlush(ctx context.Context, action string, calls int)
}

type chatMetrics struct {
	coalesced *prometheus.CounterVec
	flushes   *prometheus.CounterVec
	batch     *prometheus.HistogramVec
}

// NewChatMetrics registers the aggregator collectors on reg.
func NewChatMetrics(reg prometheus.Registerer) ChatMetrics {
	if reg == nil {
		return NewNoop()
	}

	m := &chatMetrics{
		coalesced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "chat",
			Name:      "coalesced_calls_total",
			Help:      "Message requests merged into an already pending group.",
		}, []string{"action"}),
		flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "chat",
			Name:      "flushes_total",
			Help:      "Aggregated messages emitted.",
		}, []string{"action"}),
		batch: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "chat",
			Name:      "flush_batch_size",
			Help:      "Number of calls settled by one aggregated message.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		}, []string{"action"}),
	}

	reg.MustRegister(m.coalesced, m.flushes, m.batch)
	return m
}

func (m *chatMetrics) RecordCoalesced(_ context.Context, action string) {
	m.coalesced.WithLabelValues(action).Inc()
}

func (m *chatMetrics) RecordFlush(_ context.Context, action string, calls int) {
	m.flushes.WithLabelValues(action).Inc()
	m.batch.WithLabelValues(action).Observe(float64(calls))
}
