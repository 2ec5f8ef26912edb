package dice

import (
	"context"
	"fmt"
	"sync"
	"time"

	chatservice "github.com/Black-And-White-Club/shared-dice/app/modules/chat/application"
	delegationservice "github.com/Black-And-White-Club/shared-dice/app/modules/delegation/application"
	diceservice "github.com/Black-And-White-Club/shared-dice/app/modules/dice/application"
	dicehandlers "github.com/Black-And-White-Club/shared-dice/app/modules/dice/infrastructure/handlers"
	dicequeue "github.com/Black-And-White-Club/shared-dice/app/modules/dice/infrastructure/queue"
	dicetypeservice "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/application"
	ledgerservice "github.com/Black-And-White-Club/shared-dice/app/modules/ledger/application"
	notificationservice "github.com/Black-And-White-Club/shared-dice/app/modules/notification/application"
	participantservice "github.com/Black-And-White-Club/shared-dice/app/modules/participant/application"
	"github.com/Black-And-White-Club/shared-dice/app/observability"
	"github.com/Black-And-White-Club/shared-dice/app/shared/metrics"
	"github.com/go-chi/chi/v5"
)

// Config configures the action API and the reconcile queue.
type Config struct {
	DelegationTimeout time.Duration
	OverflowThreshold int
	// DatabaseURL is the DSN River connects with. The reconcile queue is
	// disabled when it is empty.
	DatabaseURL string
	Reconcile   dicequeue.Config
}

// Dependencies are the services of the modules the dice module sits on.
type Dependencies struct {
	Participants *participantservice.ParticipantService
	DieTypes     *dicetypeservice.DieTypeService
	Ledger       *ledgerservice.LedgerService
	Channel      *delegationservice.DelegationChannel
	Notifier     notificationservice.Notifier
	Chat         *chatservice.Aggregator
	ChatHistory  dicehandlers.ChatHistory
}

// Module represents the dice module.
type Module struct {
	DiceService   *diceservice.DiceService
	Handlers      *dicehandlers.DiceHandlers
	Queue         *dicequeue.Service
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewDiceModule creates the action API on top of the lower modules.
func NewDiceModule(
	ctx context.Context,
	obs observability.Observability,
	deps Dependencies,
	cfg Config,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "dice.NewDiceModule initializing")

	// 1. Initialize Metrics
	opMetrics := metrics.NewOperationMetrics(obs.Registerer(), "dice")

	// 2. Initialize Service
	service := diceservice.NewDiceService(
		deps.Participants,
		deps.DieTypes,
		deps.Ledger,
		deps.Channel,
		deps.Notifier,
		deps.Chat,
		logger,
		opMetrics,
		tracer,
		diceservice.Config{
			DelegationTimeout: cfg.DelegationTimeout,
			OverflowThreshold: cfg.OverflowThreshold,
		},
	)

	// 3. Initialize Queue
	var queue *dicequeue.Service
	var scheduler dicehandlers.ReconcileScheduler
	if cfg.DatabaseURL != "" {
		q, err := dicequeue.NewService(
			ctx,
			logger,
			cfg.DatabaseURL,
			service,
			cfg.Reconcile,
			metrics.NewOperationMetrics(obs.Registerer(), "dice_queue"),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create reconcile queue: %w", err)
		}
		queue = q
		scheduler = q
	}

	// 4. Initialize Handlers
	handlers := dicehandlers.NewDiceHandlers(service, deps.DieTypes, deps.ChatHistory, scheduler, logger, tracer)

	return &Module{
		DiceService:   service,
		Handlers:      handlers,
		Queue:         queue,
		observability: obs,
	}, nil
}

// Routes mounts the HTTP API on r. It is expected at /api/dice.
func (m *Module) Routes(r chi.Router) {
	m.Handlers.Routes(r)
}

// Run starts the dice module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting dice module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.Queue != nil {
		if err := m.Queue.Start(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to start reconcile queue", "error", err)
		}
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Dice module goroutine stopped")
}

// Close shuts down the dice module.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping dice module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.Queue != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.Queue.Stop(ctx); err != nil {
			logger.Error("Error stopping reconcile queue", "error", err)
			return fmt.Errorf("error stopping reconcile queue: %w", err)
		}
	}

	logger.Info("Dice module stopped")
	return nil
}
