package dicequeue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/shared-dice/app/shared/attr"
	"github.com/Black-And-White-Club/shared-dice/app/shared/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

const serviceName = "dice.queue"

// Config controls the reconcile queue.
type Config struct {
	// Work makes this node execute reconcile jobs. Nodes without authority
	// over other participants only insert them.
	Work bool
	// Interval schedules a periodic sweep. Zero disables it.
	Interval time.Duration
	// MaxWorkers bounds concurrent reconcile jobs. Defaults to 1.
	MaxWorkers int
}

// Service schedules and runs ledger reconciliation jobs on River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics metrics.OperationMetrics
	work    bool
	now     func() time.Time
}

// NewService connects a River client to dsn.
func NewService(
	ctx context.Context,
	logger *slog.Logger,
	dsn string,
	reconciler Reconciler,
	cfg Config,
	opMetrics metrics.OperationMetrics,
) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opMetrics == nil {
		opMetrics = metrics.NewNoop()
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	riverConfig := &river.Config{Logger: logger}
	if cfg.Work {
		workers := river.NewWorkers()
		if err := river.AddWorkerSafely(workers, NewReconcileWorker(logger, reconciler)); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to register reconcile worker: %w", err)
		}

		maxWorkers := cfg.MaxWorkers
		if maxWorkers <= 0 {
			maxWorkers = 1
		}
		riverConfig.Workers = workers
		riverConfig.Queues = map[string]river.QueueConfig{
			QueueName: {MaxWorkers: maxWorkers},
		}
		if cfg.Interval > 0 {
			riverConfig.PeriodicJobs = []*river.PeriodicJob{
				river.NewPeriodicJob(
					river.PeriodicInterval(cfg.Interval),
					func() (river.JobArgs, *river.InsertOpts) {
						return ReconcileJob{}, &river.InsertOpts{Queue: QueueName}
					},
					nil,
				),
			}
		}
	}

	client, err := river.NewClient(riverpgxv5.New(pool), riverConfig)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create river client: %w", err)
	}

	logger.InfoContext(ctx, "Reconcile queue initialized",
		attr.Bool("work", cfg.Work),
		attr.Duration("interval", cfg.Interval),
	)

	return &Service{
		client:  client,
		pool:    pool,
		logger:  logger,
		metrics: opMetrics,
		work:    cfg.Work,
		now:     time.Now,
	}, nil
}

// Start begins working jobs. Insert-only nodes return immediately.
func (s *Service) Start(ctx context.Context) error {
	if !s.work {
		return nil
	}
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start river client: %w", err)
	}
	s.logger.InfoContext(ctx, "Reconcile queue started")
	return nil
}

// Stop waits for running jobs and closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	defer s.pool.Close()
	if !s.work {
		return nil
	}
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop river client: %w", err)
	}
	s.logger.InfoContext(ctx, "Reconcile queue stopped")
	return nil
}

// HealthCheck pings the queue database.
func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("queue database unreachable: %w", err)
	}
	return nil
}

// ScheduleReconcile queues a reconciliation sweep at the time described by
// at, see ParseAt. It returns the resolved time.
func (s *Service) ScheduleReconcile(ctx context.Context, at string) (time.Time, error) {
	const op = "ScheduleReconcile"
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, op, serviceName)
	defer func() {
		s.metrics.RecordOperationDuration(ctx, op, serviceName, time.Since(start))
	}()

	scheduledAt, err := ParseAt(at, s.now())
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, op, serviceName)
		return time.Time{}, err
	}

	res, err := s.client.Insert(ctx, ReconcileJob{Notify: true}, &river.InsertOpts{
		Queue:       QueueName,
		ScheduledAt: scheduledAt,
	})
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, op, serviceName)
		s.logger.ErrorContext(ctx, "Failed to schedule reconcile job",
			attr.ExtractCorrelationID(ctx),
			attr.String("scheduled_at", scheduledAt.Format(time.RFC3339)),
			attr.Error(err),
		)
		return time.Time{}, fmt.Errorf("failed to insert reconcile job: %w", err)
	}
	if res == nil || res.Job == nil {
		s.metrics.RecordOperationFailure(ctx, op, serviceName)
		return time.Time{}, errors.New("river returned no job")
	}

	s.metrics.RecordOperationSuccess(ctx, op, serviceName)
	s.logger.InfoContext(ctx, "Reconcile job scheduled",
		attr.ExtractCorrelationID(ctx),
		attr.Int64("job_id", res.Job.ID),
		attr.String("scheduled_at", scheduledAt.Format(time.RFC3339)),
	)
	return scheduledAt, nil
}
