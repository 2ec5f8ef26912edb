package dicetyperouter

import (
	"context"
	"log/slog"

	dicetypeevents "github.com/Black-And-White-Club/shared-dice/app/events/dicetype"
	dicetypehandlers "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/infrastructure/handlers"
	"github.com/Black-And-White-Club/shared-dice/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// DieTypeRouter handles Watermill handler registration for die type events.
type DieTypeRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
}

// NewDieTypeRouter creates a new DieTypeRouter.
func NewDieTypeRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
) *DieTypeRouter {
	return &DieTypeRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *DieTypeRouter) Configure(_ context.Context, handlers dicetypehandlers.Handlers) error {
	r.logger.Info("Registering dicetype module handlers",
		slog.String("die_type_changed_subject", dicetypeevents.DieTypeChangedV1),
	)

	handlerName := "dicetype." + dicetypeevents.DieTypeChangedV1
	r.router.AddHandler(
		handlerName,
		dicetypeevents.DieTypeChangedV1,
		r.subscriber,
		"",
		r.publisher,
		handlerwrapper.WrapTyped(handlerName, r.logger, r.tracer, r.publisher, handlers.HandleDieTypeChanged),
	)

	r.logger.Info("Dicetype module handlers registered successfully")
	return nil
}

// Close shuts down the router.
func (r *DieTypeRouter) Close() error {
	return r.router.Close()
}
