package ledgerservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	ledgerevents "github.com/Black-And-White-Club/shared-dice/app/events/ledger"
	ledgerdb "github.com/Black-And-White-Club/shared-dice/app/modules/ledger/infrastructure/repositories"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/Black-And-White-Club/shared-dice/app/shared/attr"
	"github.com/Black-And-White-Club/shared-dice/app/shared/handlerwrapper"
	"github.com/Black-And-White-Club/shared-dice/app/shared/hooks"
	"github.com/Black-And-White-Club/shared-dice/app/shared/metrics"
	"github.com/Black-And-White-Club/shared-dice/app/shared/operation"
	"github.com/Black-And-White-Club/shared-dice/app/shared/results"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// ErrForbidden is returned when the local participant lacks write authority
// over the record.
var ErrForbidden = errors.New("no write authority over ledger record")

// LedgerService implements the Service interface.
type LedgerService struct {
	repo       ledgerdb.Repository
	authorizer Authorizer
	publisher  message.Publisher
	logger     *slog.Logger
	telemetry  operation.Telemetry
	db         *bun.DB
	listeners  hooks.Listeners[ledgerevents.LedgerChangedPayloadV1]
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(
	repo ledgerdb.Repository,
	authorizer Authorizer,
	publisher message.Publisher,
	logger *slog.Logger,
	metrics metrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerService{
		repo:       repo,
		authorizer: authorizer,
		publisher:  publisher,
		logger:     logger,
		telemetry: operation.Telemetry{
			Logger:  logger,
			Tracer:  tracer,
			Metrics: metrics,
			Service: "LedgerService",
		},
		db: db,
	}
}

func (s *LedgerService) Get(ctx context.Context, participantID participantdomain.ID, dieTypeID string) (int, bool, error) {
	e, err := s.repo.Get(ctx, nil, string(participantID), dieTypeID)
	if err != nil {
		if errors.Is(err, ledgerdb.ErrNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return e.Quantity, true, nil
}

func (s *LedgerService) GetAll(ctx context.Context, participantID participantdomain.ID) (map[string]int, error) {
	entries, err := s.repo.ListByParticipant(ctx, nil, string(participantID))
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(entries))
	for _, e := range entries {
		out[e.DieTypeID] = e.Quantity
	}
	return out, nil
}

func (s *LedgerService) Snapshot(ctx context.Context) (map[participantdomain.ID]map[string]int, error) {
	entries, err := s.repo.ListAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make(map[participantdomain.ID]map[string]int)
	for _, e := range entries {
		pid := participantdomain.ID(e.ParticipantID)
		if out[pid] == nil {
			out[pid] = make(map[string]int)
		}
		out[pid][e.DieTypeID] = e.Quantity
	}
	return out, nil
}

func (s *LedgerService) Set(ctx context.Context, participantID participantdomain.ID, dieTypeID string, quantity int) error {
	return s.write(ctx, "Set", participantID, dieTypeID, func(ctx context.Context, db bun.IDB) error {
		return s.repo.Upsert(ctx, db, &ledgerdb.Entry{
			ParticipantID: string(participantID),
			DieTypeID:     dieTypeID,
			Quantity:      quantity,
		})
	}, ledgerevents.LedgerChangedPayloadV1{Quantity: quantity})
}

func (s *LedgerService) Delete(ctx context.Context, participantID participantdomain.ID, dieTypeID string) error {
	return s.write(ctx, "Delete", participantID, dieTypeID, func(ctx context.Context, db bun.IDB) error {
		err := s.repo.Delete(ctx, db, string(participantID), dieTypeID)
		if errors.Is(err, ledgerdb.ErrNotFound) {
			return nil
		}
		return err
	}, ledgerevents.LedgerChangedPayloadV1{Deleted: true})
}

func (s *LedgerService) write(
	ctx context.Context,
	operationName string,
	participantID participantdomain.ID,
	dieTypeID string,
	apply func(ctx context.Context, db bun.IDB) error,
	change ledgerevents.LedgerChangedPayloadV1,
) error {
	self := s.authorizer.SelfID()
	result, err := operation.Run(s.telemetry, ctx, operationName, string(participantID)+"/"+dieTypeID, func(ctx context.Context) (results.OperationResult[bool, error], error) {
		ok, err := s.authorizer.CanWrite(ctx, self, participantID)
		if err != nil {
			return results.OperationResult[bool, error]{}, fmt.Errorf("failed to check write authority: %w", err)
		}
		if !ok {
			return results.FailureResult[bool, error](fmt.Errorf("%w: %s over %s", ErrForbidden, self, participantID)), nil
		}
		return operation.RunInTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
			if err := apply(ctx, db); err != nil {
				return results.OperationResult[bool, error]{}, err
			}
			return results.SuccessResult[bool, error](true), nil
		})
	})
	if err != nil {
		return err
	}
	if result.IsFailure() {
		return *result.Failure
	}

	change.ParticipantID = string(participantID)
	change.DieTypeID = dieTypeID
	change.ChangedBy = string(self)
	change.ChangedAt = time.Now().UTC()

	s.listeners.Notify(ctx, change.ParticipantID, change)
	s.broadcast(ctx, change)
	return nil
}

func (s *LedgerService) broadcast(ctx context.Context, change ledgerevents.LedgerChangedPayloadV1) {
	if s.publisher == nil {
		return
	}
	if err := handlerwrapper.Publish(ctx, s.publisher, ledgerevents.LedgerChangedV1, change); err != nil {
		s.logger.ErrorContext(ctx, "Failed to broadcast ledger change",
			attr.ExtractCorrelationID(ctx),
			attr.ParticipantID(change.ParticipantID),
			attr.DieTypeID(change.DieTypeID),
			attr.Error(err),
		)
	}
}

func (s *LedgerService) OnChange(participantID participantdomain.ID, fn ChangeListener) func() {
	return s.listeners.Add(string(participantID), hooks.AfterFunc[ledgerevents.LedgerChangedPayloadV1](fn))
}

// ApplyRemoteChange skips changes made by this node; those listeners already
// ran when the write returned.
func (s *LedgerService) ApplyRemoteChange(ctx context.Context, change ledgerevents.LedgerChangedPayloadV1) {
	if change.ChangedBy == string(s.authorizer.SelfID()) {
		return
	}
	s.listeners.Notify(ctx, change.ParticipantID, change)
}

var _ Service = (*LedgerService)(nil)
