package ledgerrouter

import (
	"context"
	"log/slog"

	ledgerevents "github.com/Black-And-White-Club/shared-dice/app/events/ledger"
	ledgerhandlers "github.com/Black-And-White-Club/shared-dice/app/modules/ledger/infrastructure/handlers"
	"github.com/Black-And-White-Club/shared-dice/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// LedgerRouter handles Watermill handler registration for ledger events.
type LedgerRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
}

// NewLedgerRouter creates a new LedgerRouter.
func NewLedgerRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
) *LedgerRouter {
	return &LedgerRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *LedgerRouter) Configure(_ context.Context, handlers ledgerhandlers.Handlers) error {
	r.logger.Info("Registering ledger module handlers",
		slog.String("ledger_changed_subject", ledgerevents.LedgerChangedV1),
	)

	handlerName := "ledger." + ledgerevents.LedgerChangedV1
	r.router.AddHandler(
		handlerName,
		ledgerevents.LedgerChangedV1,
		r.subscriber,
		"",
		r.publisher,
		handlerwrapper.WrapTyped(handlerName, r.logger, r.tracer, r.publisher, handlers.HandleLedgerChanged),
	)

	r.logger.Info("Ledger module handlers registered successfully")
	return nil
}

// Close shuts down the router.
func (r *LedgerRouter) Close() error {
	return r.router.Close()
}
