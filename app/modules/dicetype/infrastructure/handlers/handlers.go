package dicetypehandlers

import (
	"context"
	"log/slog"

	dicetypeevents "github.com/Black-And-White-Club/shared-dice/app/events/dicetype"
	dicetypeservice "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/application"
	"github.com/Black-And-White-Club/shared-dice/app/shared/handlerwrapper"
	"go.opentelemetry.io/otel/trace"
)

// Handlers consumes die type events broadcast by other nodes.
type Handlers interface {
	HandleDieTypeChanged(ctx context.Context, payload *dicetypeevents.DieTypeChangedPayloadV1) ([]handlerwrapper.Result, error)
}

// DieTypeHandlers implements the Handlers interface.
type DieTypeHandlers struct {
	service dicetypeservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewDieTypeHandlers creates a new DieTypeHandlers instance.
func NewDieTypeHandlers(service dicetypeservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &DieTypeHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleDieTypeChanged refreshes the local registry view.
func (h *DieTypeHandlers) HandleDieTypeChanged(ctx context.Context, payload *dicetypeevents.DieTypeChangedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "DieTypeHandlers.HandleDieTypeChanged")
	defer span.End()

	h.logger.DebugContext(ctx, "Die type change received",
		slog.String("die_type_id", payload.DieTypeID),
		slog.String("operation", payload.Operation),
		slog.String("changed_by", payload.ChangedBy),
	)

	h.service.ApplyRemoteChange(ctx, *payload)
	return nil, nil
}
