package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOperationMetrics(reg, "ledger")
	ctx := context.Background()

	m.RecordOperationAttempt(ctx, "Set", "LedgerService")
	m.RecordOperationAttempt(ctx, "Set", "LedgerService")
	m.RecordOperationSuccess(ctx, "Set", "LedgerService")
	m.RecordOperationFailure(ctx, "Set", "LedgerService")
	m.RecordOperationDuration(ctx, "Set", "LedgerService", 20*time.Millisecond)

	impl, ok := m.(*operationMetrics)
	require.True(t, ok)
	assert.Equal(t, 2.0, testutil.ToFloat64(impl.attempts.WithLabelValues("Set", "LedgerService")))
	assert.Equal(t, 1.0, testutil.ToFloat64(impl.successes.WithLabelValues("Set", "LedgerService")))
	assert.Equal(t, 1.0, testutil.ToFloat64(impl.failures.WithLabelValues("Set", "LedgerService")))

	count, err := testutil.GatherAndCount(reg, "shareddice_ledger_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilRegistererFallsBackToNoop(t *testing.T) {
	assert.IsType(t, &Noop{}, NewOperationMetrics(nil, "ledger"))
	assert.IsType(t, &Noop{}, NewDelegationMetrics(nil))
	assert.IsType(t, &Noop{}, NewChatMetrics(nil))
}

func TestDelegationMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDelegationMetrics(reg).(*delegationMetrics)
	ctx := context.Background()

	m.RecordQuery(ctx, "shareddice.modifyQuantity", RouteRemote, OutcomeSuccess)
	m.RecordQuery(ctx, "shareddice.modifyQuantity", RouteNone, OutcomeNoOwner)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues("shareddice.modifyQuantity", RouteRemote, OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues("shareddice.modifyQuantity", RouteNone, OutcomeNoOwner)))
}

func TestChatMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewChatMetrics(reg).(*chatMetrics)
	ctx := context.Background()

	m.RecordCoalesced(ctx, "add")
	m.RecordCoalesced(ctx, "add")
	m.RecordFlush(ctx, "add", 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.coalesced.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.flushes.WithLabelValues("add")))
}
