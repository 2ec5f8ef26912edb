package dicetype

import (
	"context"
	"fmt"
	"sync"

	dicetypeservice "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/application"
	dicetypehandlers "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/infrastructure/handlers"
	dicetypedb "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/infrastructure/repositories"
	dicetyperouter "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/infrastructure/router"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/Black-And-White-Club/shared-dice/app/observability"
	"github.com/Black-And-White-Club/shared-dice/app/shared/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// Module represents the die type registry module.
type Module struct {
	DieTypeService *dicetypeservice.DieTypeService
	DieTypeRouter  *dicetyperouter.DieTypeRouter
	cancelFunc     context.CancelFunc
	observability  observability.Observability
}

// NewDieTypeModule creates and initializes a new die type module.
func NewDieTypeModule(
	ctx context.Context,
	obs observability.Observability,
	publisher message.Publisher,
	subscriber message.Subscriber,
	router *message.Router,
	routerCtx context.Context,
	db *bun.DB,
	self dicetypeservice.SelfResolver,
	minRoleToEdit participantdomain.Role,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "dicetype.NewDieTypeModule initializing")

	// 1. Initialize Repository
	repo := dicetypedb.NewRepository(db)

	// 2. Initialize Metrics
	opMetrics := metrics.NewOperationMetrics(obs.Registerer(), "dicetype")

	// 3. Initialize Service
	service := dicetypeservice.NewDieTypeService(repo, self, publisher, logger, opMetrics, tracer, db, minRoleToEdit)

	// 4. Initialize Handlers
	handlers := dicetypehandlers.NewDieTypeHandlers(service, logger, tracer)

	// 5. Initialize Router
	dieTypeRouter := dicetyperouter.NewDieTypeRouter(logger, router, subscriber, publisher, tracer)

	// 6. Configure the router with handlers
	if err := dieTypeRouter.Configure(routerCtx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure dicetype router: %w", err)
	}

	return &Module{
		DieTypeService: service,
		DieTypeRouter:  dieTypeRouter,
		observability:  obs,
	}, nil
}

// Run starts the die type module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting dicetype module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Dicetype module goroutine stopped")
}

// Close shuts down the die type module.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping dicetype module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.DieTypeRouter != nil {
		if err := m.DieTypeRouter.Close(); err != nil {
			logger.Error("Error closing DieTypeRouter from module", "error", err)
			return fmt.Errorf("error closing DieTypeRouter: %w", err)
		}
	}

	logger.Info("Dicetype module stopped")
	return nil
}
