package participant

import (
	"context"
	"fmt"
	"sync"
	"time"

	participantservice "github.com/Black-And-White-Club/shared-dice/app/modules/participant/application"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	participantdb "github.com/Black-And-White-Club/shared-dice/app/modules/participant/infrastructure/repositories"
	"github.com/Black-And-White-Club/shared-dice/app/observability"
	"github.com/Black-And-White-Club/shared-dice/app/shared/attr"
	"github.com/Black-And-White-Club/shared-dice/app/shared/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// Config configures the local participant and its presence heartbeat.
type Config struct {
	Self              participantdomain.Participant
	HeartbeatInterval time.Duration
	PresenceTTL       time.Duration
}

// Module represents the participant directory module.
type Module struct {
	ParticipantService *participantservice.ParticipantService
	cfg                Config
	cancelFunc         context.CancelFunc
	observability      observability.Observability
}

// NewParticipantModule creates the directory and registers the local
// participant as active.
func NewParticipantModule(
	ctx context.Context,
	obs observability.Observability,
	publisher message.Publisher,
	db *bun.DB,
	cfg Config,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "participant.NewParticipantModule initializing")

	// 1. Initialize Repository
	repo := participantdb.NewRepository(db)

	// 2. Initialize Metrics
	opMetrics := metrics.NewOperationMetrics(obs.Registerer(), "participant")

	// 3. Initialize Service
	service := participantservice.NewParticipantService(repo, publisher, logger, opMetrics, obs.Tracer, db, participantservice.Config{
		Self:        cfg.Self,
		PresenceTTL: cfg.PresenceTTL,
	})

	// 4. Join the session
	if err := service.Join(ctx); err != nil {
		return nil, fmt.Errorf("failed to join session: %w", err)
	}

	return &Module{
		ParticipantService: service,
		cfg:                cfg,
		observability:      obs,
	}, nil
}

// Run keeps the local participant's presence fresh until ctx is done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting participant module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	interval := m.cfg.HeartbeatInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "Participant module goroutine stopped")
			return
		case <-ticker.C:
			if err := m.ParticipantService.Heartbeat(ctx); err != nil {
				logger.WarnContext(ctx, "Presence heartbeat failed", attr.Error(err))
			}
		}
	}
}

// Close stops the heartbeat and marks the local participant inactive.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping participant module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.ParticipantService.Leave(ctx); err != nil {
		logger.Error("Error leaving session", "error", err)
		return fmt.Errorf("error leaving session: %w", err)
	}

	logger.Info("Participant module stopped")
	return nil
}
