package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics records the lifecycle of service operations.
type OperationMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

type operationMetrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewOperationMetrics registers operation collectors for one subsystem on reg.
// A nil registerer yields the noop implementation.
func NewOperationMetrics(reg prometheus.Registerer, subsystem string) OperationMetrics {
	if reg == nil {
		return NewNoop()
	}

	labels := []string{"operation", "service"}
	m := &operationMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: subsystem,
			Name:      "operation_attempts_total",
			Help:      "Number of service operations started.",
		}, labels),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: subsystem,
			Name:      "operation_successes_total",
			Help:      "Number of service operations that completed without an infrastructure error.",
		}, labels),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: subsystem,
			Name:      "operation_failures_total",
			Help:      "Number of service operations that returned an error or panicked.",
		}, labels),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: subsystem,
			Name:      "operation_duration_seconds",
			Help:      "Duration of service operations.",
			Buckets:   prometheus.DefBuckets,
		}, labels),
	}

	reg.MustRegister(m.attempts, m.successes, m.failures, m.duration)
	return m
}

func (m *operationMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *operationMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *operationMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *operationMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.duration.WithLabelValues(operation, service).Observe(duration.Seconds())
}
