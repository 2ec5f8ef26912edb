package ledger

import (
	"context"
	"fmt"
	"sync"

	ledgerservice "github.com/Black-And-White-Club/shared-dice/app/modules/ledger/application"
	ledgerhandlers "github.com/Black-And-White-Club/shared-dice/app/modules/ledger/infrastructure/handlers"
	ledgerdb "github.com/Black-And-White-Club/shared-dice/app/modules/ledger/infrastructure/repositories"
	ledgerrouter "github.com/Black-And-White-Club/shared-dice/app/modules/ledger/infrastructure/router"
	"github.com/Black-And-White-Club/shared-dice/app/observability"
	"github.com/Black-And-White-Club/shared-dice/app/shared/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// Module represents the ledger module.
type Module struct {
	LedgerService *ledgerservice.LedgerService
	LedgerRouter  *ledgerrouter.LedgerRouter
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewLedgerModule creates and initializes a new ledger module.
func NewLedgerModule(
	ctx context.Context,
	obs observability.Observability,
	publisher message.Publisher,
	subscriber message.Subscriber,
	router *message.Router,
	routerCtx context.Context,
	db *bun.DB,
	authorizer ledgerservice.Authorizer,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "ledger.NewLedgerModule initializing")

	// 1. Initialize Repository
	repo := ledgerdb.NewRepository(db)

	// 2. Initialize Metrics
	opMetrics := metrics.NewOperationMetrics(obs.Registerer(), "ledger")

	// 3. Initialize Service
	service := ledgerservice.NewLedgerService(repo, authorizer, publisher, logger, opMetrics, tracer, db)

	// 4. Initialize Handlers
	handlers := ledgerhandlers.NewLedgerHandlers(service, logger, tracer)

	// 5. Initialize Router
	ledgerRouter := ledgerrouter.NewLedgerRouter(logger, router, subscriber, publisher, tracer)

	// 6. Configure the router with handlers
	if err := ledgerRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure ledger router: %w", err)
	}

	return &Module{
		LedgerService: service,
		LedgerRouter:  ledgerRouter,
		observability: obs,
	}, nil
}

// Run starts the ledger module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting ledger module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Ledger module goroutine stopped")
}

// Close shuts down the ledger module.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping ledger module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.LedgerRouter != nil {
		if err := m.LedgerRouter.Close(); err != nil {
			logger.Error("Error closing LedgerRouter from module", "error", err)
			return fmt.Errorf("error closing LedgerRouter: %w", err)
		}
	}

	logger.Info("Ledger module stopped")
	return nil
}
