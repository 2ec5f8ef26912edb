// Package operation wraps service operations with tracing, metrics, logging
// and panic recovery, and runs them inside database transactions.
package operation

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/shared-dice/app/shared/attr"
	"github.com/Black-And-White-Club/shared-dice/app/shared/metrics"
	"github.com/Black-And-White-Club/shared-dice/app/shared/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry bundles the collaborators every service operation reports to.
type Telemetry struct {
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Metrics metrics.OperationMetrics
	Service string
}

// Func is the generic signature for service operation functions.
type Func[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// TxFunc is an operation that runs against a transaction (or nil when no
// database is configured).
type TxFunc[S any, F any] func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error)

func (t Telemetry) logger() *slog.Logger {
	if t.Logger == nil {
		return slog.Default()
	}
	return t.Logger
}

// Run wraps op with a span, attempt/success/failure/duration metrics and
// panic recovery.
func Run[S any, F any](
	t Telemetry,
	ctx context.Context,
	operationName string,
	identifier string,
	op Func[S, F],
) (result results.OperationResult[S, F], err error) {
	logger := t.logger()

	var span trace.Span
	if t.Tracer != nil {
		ctx, span = t.Tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if t.Metrics != nil {
		t.Metrics.RecordOperationAttempt(ctx, operationName, t.Service)
	}

	startTime := time.Now()
	defer func() {
		if t.Metrics != nil {
			t.Metrics.RecordOperationDuration(ctx, operationName, t.Service, time.Since(startTime))
		}
	}()

	logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if t.Metrics != nil {
				t.Metrics.RecordOperationFailure(ctx, operationName, t.Service)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if t.Metrics != nil {
			t.Metrics.RecordOperationFailure(ctx, operationName, t.Service)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	if t.Metrics != nil {
		t.Metrics.RecordOperationSuccess(ctx, operationName, t.Service)
	}

	return result, nil
}

// RunInTx runs fn inside a transaction on db. With no database configured fn
// receives a nil IDB and repositories fall back to their own handle.
func RunInTx[S any, F any](ctx context.Context, db *bun.DB, fn TxFunc[S, F]) (results.OperationResult[S, F], error) {
	if db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]

	err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})

	return result, err
}
