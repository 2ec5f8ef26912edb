package dicetypeservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	dicetypeevents "github.com/Black-And-White-Club/shared-dice/app/events/dicetype"
	dicetypedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/domain"
	dicetypedb "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/infrastructure/repositories"
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

var (
	// ErrUnknownDieType is returned for ids that are not in the registry.
	ErrUnknownDieType = errors.New("unknown die type")
	// ErrForbidden is returned when the local participant may not edit the registry.
	ErrForbidden = errors.New("insufficient role to edit die types")
)

// DieTypeService implements the Service interface.
type DieTypeService struct {
	repo        dicetypedb.Repository
	self        SelfResolver
	publisher   message.Publisher
	logger      *slog.Logger
	telemetry   operation.Telemetry
	db          *bun.DB
	minRoleEdit participantdomain.Role

	mu     sync.RWMutex
	cache  []dicetypedomain.DieType
	loaded bool

	listeners hooks.Listeners[dicetypeevents.DieTypeChangedPayloadV1]
}

// NewDieTypeService creates a new DieTypeService. minRoleToEdit outside
// TRUSTED..GAMEMASTER falls back to GAMEMASTER.
func NewDieTypeService(
	repo dicetypedb.Repository,
	self SelfResolver,
	publisher message.Publisher,
	logger *slog.Logger,
	metrics metrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	minRoleToEdit participantdomain.Role,
) *DieTypeService {
	if logger == nil {
		logger = slog.Default()
	}
	if minRoleToEdit < participantdomain.RoleTrusted || minRoleToEdit > participantdomain.RoleGamemaster {
		minRoleToEdit = participantdomain.RoleGamemaster
	}
	return &DieTypeService{
		repo:      repo,
		self:      self,
		publisher: publisher,
		logger:    logger,
		telemetry: operation.Telemetry{
			Logger:  logger,
			Tracer:  tracer,
			Metrics: metrics,
			Service: "DieTypeService",
		},
		db:          db,
		minRoleEdit: minRoleToEdit,
	}
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

func (s *DieTypeService) load(ctx context.Context) ([]dicetypedomain.DieType, error) {
	s.mu.RLock()
	if s.loaded {
		out := s.cache
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()

	rows, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	types := make([]dicetypedomain.DieType, 0, len(rows))
	for _, row := range rows {
		types = append(types, row.ToDomain())
	}

	s.mu.Lock()
	s.cache = types
	s.loaded = true
	s.mu.Unlock()

	return types, nil
}

func (s *DieTypeService) invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.loaded = false
	s.mu.Unlock()
}

func (s *DieTypeService) GetAll(ctx context.Context) ([]dicetypedomain.DieType, error) {
	types, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return append([]dicetypedomain.DieType(nil), types...), nil
}

func (s *DieTypeService) Enabled(ctx context.Context) ([]dicetypedomain.DieType, error) {
	types, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dicetypedomain.DieType, 0, len(types))
	for _, d := range types {
		if d.Enabled {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *DieTypeService) Get(ctx context.Context, id string) (dicetypedomain.DieType, error) {
	types, err := s.load(ctx)
	if err != nil {
		return dicetypedomain.DieType{}, err
	}
	for _, d := range types {
		if d.ID == id {
			return d, nil
		}
	}
	return dicetypedomain.DieType{}, fmt.Errorf("%w: %s", ErrUnknownDieType, id)
}

func (s *DieTypeService) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.Get(ctx, id)
	if errors.Is(err, ErrUnknownDieType) {
		return false, nil
	}
	return err == nil, err
}

func (s *DieTypeService) FindByName(ctx context.Context, name string) ([]dicetypedomain.DieType, error) {
	types, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	var out []dicetypedomain.DieType
	for _, d := range types {
		if d.Name == name {
			out = append(out, d)
		}
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Writes
// -----------------------------------------------------------------------------

// Create validates and stores a new die type. A blank id gets a fresh one.
func (s *DieTypeService) Create(ctx context.Context, d dicetypedomain.DieType) (dicetypedomain.DieType, error) {
	if strings.TrimSpace(d.ID) == "" {
		d.ID = dicetypedomain.New().ID
	}
	return s.write(ctx, "Create", d.ID, dicetypeevents.OperationCreated, func(ctx context.Context, db bun.IDB) (results.OperationResult[dicetypedomain.DieType, error], error) {
		if err := d.Validate(); err != nil {
			return results.FailureResult[dicetypedomain.DieType, error](err), nil
		}
		if err := s.repo.Insert(ctx, db, dicetypedb.FromDomain(d)); err != nil {
			return results.OperationResult[dicetypedomain.DieType, error]{}, err
		}
		return results.SuccessResult[dicetypedomain.DieType, error](d), nil
	})
}

// Update applies changes to an existing die type.
func (s *DieTypeService) Update(ctx context.Context, id string, changes dicetypedomain.Changes) (dicetypedomain.DieType, error) {
	return s.write(ctx, "Update", id, dicetypeevents.OperationUpdated, func(ctx context.Context, db bun.IDB) (results.OperationResult[dicetypedomain.DieType, error], error) {
		row, err := s.repo.GetByID(ctx, db, id)
		if err != nil {
			if errors.Is(err, dicetypedb.ErrNotFound) {
				return results.FailureResult[dicetypedomain.DieType, error](fmt.Errorf("%w: %s", ErrUnknownDieType, id)), nil
			}
			return results.OperationResult[dicetypedomain.DieType, error]{}, err
		}
		updated := changes.Apply(row.ToDomain())
		if err := updated.Validate(); err != nil {
			return results.FailureResult[dicetypedomain.DieType, error](err), nil
		}
		if err := s.repo.Update(ctx, db, dicetypedb.FromDomain(updated)); err != nil {
			return results.OperationResult[dicetypedomain.DieType, error]{}, err
		}
		return results.SuccessResult[dicetypedomain.DieType, error](updated), nil
	})
}

// Delete removes a die type. Ledger entries that reference it are left for
// reconciliation to clean up.
func (s *DieTypeService) Delete(ctx context.Context, id string) error {
	_, err := s.write(ctx, "Delete", id, dicetypeevents.OperationDeleted, func(ctx context.Context, db bun.IDB) (results.OperationResult[dicetypedomain.DieType, error], error) {
		if err := s.repo.Delete(ctx, db, id); err != nil {
			if errors.Is(err, dicetypedb.ErrNotFound) {
				return results.FailureResult[dicetypedomain.DieType, error](fmt.Errorf("%w: %s", ErrUnknownDieType, id)), nil
			}
			return results.OperationResult[dicetypedomain.DieType, error]{}, err
		}
		return results.SuccessResult[dicetypedomain.DieType, error](dicetypedomain.DieType{ID: id}), nil
	})
	return err
}

// SetAll replaces the whole registry.
func (s *DieTypeService) SetAll(ctx context.Context, types []dicetypedomain.DieType) error {
	_, err := s.write(ctx, "SetAll", "", dicetypeevents.OperationReplaced, func(ctx context.Context, db bun.IDB) (results.OperationResult[dicetypedomain.DieType, error], error) {
		rows := make([]dicetypedb.DieType, 0, len(types))
		seen := make(map[string]struct{}, len(types))
		for _, d := range types {
			if err := d.Validate(); err != nil {
				return results.FailureResult[dicetypedomain.DieType, error](err), nil
			}
			if _, dup := seen[d.ID]; dup {
				return results.FailureResult[dicetypedomain.DieType, error](fmt.Errorf("%w: duplicate id %s", dicetypedomain.ErrInvalidDieType, d.ID)), nil
			}
			seen[d.ID] = struct{}{}
			rows = append(rows, *dicetypedb.FromDomain(d))
		}
		if err := s.repo.ReplaceAll(ctx, db, rows); err != nil {
			return results.OperationResult[dicetypedomain.DieType, error]{}, err
		}
		return results.SuccessResult[dicetypedomain.DieType, error](dicetypedomain.DieType{}), nil
	})
	return err
}

// write checks the editor role, runs fn in a transaction and broadcasts the
// change when it succeeded.
func (s *DieTypeService) write(
	ctx context.Context,
	operationName string,
	id string,
	changeOp string,
	fn operation.TxFunc[dicetypedomain.DieType, error],
) (dicetypedomain.DieType, error) {
	result, err := operation.Run(s.telemetry, ctx, operationName, id, func(ctx context.Context) (results.OperationResult[dicetypedomain.DieType, error], error) {
		self, err := s.self.Self(ctx)
		if err != nil {
			return results.OperationResult[dicetypedomain.DieType, error]{}, fmt.Errorf("failed to resolve local participant: %w", err)
		}
		if self.Role < s.minRoleEdit {
			return results.FailureResult[dicetypedomain.DieType, error](fmt.Errorf("%w: role %s, need %s", ErrForbidden, self.Role, s.minRoleEdit)), nil
		}
		return operation.RunInTx(ctx, s.db, fn)
	})
	if err != nil {
		return dicetypedomain.DieType{}, err
	}
	if result.IsFailure() {
		return dicetypedomain.DieType{}, *result.Failure
	}

	change := dicetypeevents.DieTypeChangedPayloadV1{
		DieTypeID: id,
		Operation: changeOp,
		ChangedBy: string(s.self.SelfID()),
	}
	s.invalidate()
	s.notify(ctx, change)
	s.broadcast(ctx, change)

	return *result.Success, nil
}

func (s *DieTypeService) broadcast(ctx context.Context, change dicetypeevents.DieTypeChangedPayloadV1) {
	if s.publisher == nil {
		return
	}
	if err := handlerwrapper.Publish(ctx, s.publisher, dicetypeevents.DieTypeChangedV1, change); err != nil {
		s.logger.ErrorContext(ctx, "Failed to broadcast die type change",
			attr.ExtractCorrelationID(ctx),
			attr.DieTypeID(change.DieTypeID),
			attr.String("operation", change.Operation),
			attr.Error(err),
		)
	}
}

// -----------------------------------------------------------------------------
// Change notification
// -----------------------------------------------------------------------------

func (s *DieTypeService) OnChange(fn ChangeListener) func() {
	return s.listeners.Add("", hooks.AfterFunc[dicetypeevents.DieTypeChangedPayloadV1](fn))
}

// ApplyRemoteChange ignores changes this node made itself; those were applied
// when the write returned.
func (s *DieTypeService) ApplyRemoteChange(ctx context.Context, change dicetypeevents.DieTypeChangedPayloadV1) {
	if change.ChangedBy == string(s.self.SelfID()) {
		return
	}
	s.invalidate()
	s.notify(ctx, change)
}

func (s *DieTypeService) notify(ctx context.Context, change dicetypeevents.DieTypeChangedPayloadV1) {
	s.listeners.Notify(ctx, "", change)
}

var _ Service = (*DieTypeService)(nil)
