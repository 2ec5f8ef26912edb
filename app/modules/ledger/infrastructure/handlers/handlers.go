package ledgerhandlers

import (
	"context"
	"log/slog"

	ledgerevents "github.com/Black-And-White-Club/shared-dice/app/events/ledger"
	ledgerservice "github.com/Black-And-White-Club/shared-dice/app/modules/ledger/application"
	"github.com/Black-And-White-Club/shared-dice/app/shared/handlerwrapper"
	"go.opentelemetry.io/otel/trace"
)

// Handlers consumes ledger events broadcast by other nodes.
type Handlers interface {
	HandleLedgerChanged(ctx context.Context, payload *ledgerevents.LedgerChangedPayloadV1) ([]handlerwrapper.Result, error)
}

// LedgerHandlers implements the Handlers interface.
type LedgerHandlers struct {
	service ledgerservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewLedgerHandlers creates a new LedgerHandlers instance.
func NewLedgerHandlers(service ledgerservice.Service, logger *slog.Logger, tracer trace.Tracer) Handlers {
	return &LedgerHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

func (h *LedgerHandlers) HandleLedgerChanged(ctx context.Context, payload *ledgerevents.LedgerChangedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "LedgerHandlers.HandleLedgerChanged")
	defer span.End()

	if payload.ParticipantID == "" || payload.DieTypeID == "" {
		h.logger.WarnContext(ctx, "Ignoring ledger change without participant or die type",
			slog.String("changed_by", payload.ChangedBy),
		)
		return nil, nil
	}

	h.service.ApplyRemoteChange(ctx, *payload)
	return nil, nil
}
