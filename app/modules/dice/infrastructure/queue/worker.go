package dicequeue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/shared-dice/app/shared/attr"
	"github.com/riverqueue/river"
)

// Reconciler is the part of the dice service the worker drives.
type Reconciler interface {
	CleanAllInvalidData(ctx context.Context, notify bool) (int, error)
}

// ReconcileWorker runs ReconcileJob.
type ReconcileWorker struct {
	river.WorkerDefaults[ReconcileJob]
	reconciler Reconciler
	logger     *slog.Logger
}

func NewReconcileWorker(logger *slog.Logger, reconciler Reconciler) *ReconcileWorker {
	return &ReconcileWorker{reconciler: reconciler, logger: logger}
}

// Work fails the job only when the sweep itself could not run; participants
// that could not be cleaned are reported, not retried.
func (w *ReconcileWorker) Work(ctx context.Context, job *river.Job[ReconcileJob]) error {
	failed, err := w.reconciler.CleanAllInvalidData(ctx, job.Args.Notify)
	if err != nil {
		w.logger.ErrorContext(ctx, "Reconcile job failed",
			attr.Int64("job_id", job.ID),
			attr.Error(err),
		)
		return fmt.Errorf("failed to reconcile: %w", err)
	}

	w.logger.InfoContext(ctx, "Reconcile job completed",
		attr.Int64("job_id", job.ID),
		attr.Int("failed", failed),
	)
	return nil
}
