package participantservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	participantevents "github.com/Black-And-White-Club/shared-dice/app/events/participant"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	participantdb "github.com/Black-And-White-Club/shared-dice/app/modules/participant/infrastructure/repositories"
	"github.com/Black-And-White-Club/shared-dice/app/shared/attr"
	"github.com/Black-And-White-Club/shared-dice/app/shared/handlerwrapper"
	"github.com/Black-And-White-Club/shared-dice/app/shared/metrics"
	"github.com/Black-And-White-Club/shared-dice/app/shared/operation"
	"github.com/Black-And-White-Club/shared-dice/app/shared/results"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// ErrUnknownParticipant is returned for ids that are not in the directory.
var ErrUnknownParticipant = errors.New("unknown participant")

// Clock abstracts time for presence bookkeeping.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// Config describes the local participant and the presence window.
type Config struct {
	Self        participantdomain.Participant
	PresenceTTL time.Duration
}

// ParticipantService implements the Service interface.
type ParticipantService struct {
	repo      participantdb.Repository
	publisher message.Publisher
	logger    *slog.Logger
	tracer    trace.Tracer
	telemetry operation.Telemetry
	db        *bun.DB
	clock     Clock
	cfg       Config
}

// NewParticipantService creates a new ParticipantService.
func NewParticipantService(
	repo participantdb.Repository,
	publisher message.Publisher,
	logger *slog.Logger,
	metrics metrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	cfg Config,
) *ParticipantService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParticipantService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		tracer:    tracer,
		telemetry: operation.Telemetry{
			Logger:  logger,
			Tracer:  tracer,
			Metrics: metrics,
			Service: "ParticipantService",
		},
		db:    db,
		clock: realClock{},
		cfg:   cfg,
	}
}

// WithClock replaces the clock, for tests.
func (s *ParticipantService) WithClock(c Clock) *ParticipantService {
	s.clock = c
	return s
}

func (s *ParticipantService) SelfID() participantdomain.ID {
	return s.cfg.Self.ID
}

func (s *ParticipantService) Self(ctx context.Context) (participantdomain.Participant, error) {
	return s.Get(ctx, s.cfg.Self.ID)
}

func (s *ParticipantService) Get(ctx context.Context, id participantdomain.ID) (participantdomain.Participant, error) {
	row, err := s.repo.GetByID(ctx, nil, string(id))
	if err != nil {
		if errors.Is(err, participantdb.ErrNotFound) {
			return participantdomain.Participant{}, fmt.Errorf("%w: %s", ErrUnknownParticipant, id)
		}
		return participantdomain.Participant{}, err
	}
	return toDomain(*row), nil
}

func (s *ParticipantService) List(ctx context.Context) ([]participantdomain.Participant, error) {
	rows, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]participantdomain.Participant, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomain(row))
	}
	return out, nil
}

func (s *ParticipantService) Connected(ctx context.Context) ([]participantdomain.Participant, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	out := make([]participantdomain.Participant, 0, len(all))
	for _, p := range all {
		if p.IsConnected(now, s.cfg.PresenceTTL) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *ParticipantService) CanWrite(ctx context.Context, actor, target participantdomain.ID) (bool, error) {
	if actor == target {
		return true, nil
	}
	a, err := s.Get(ctx, actor)
	if err != nil {
		return false, err
	}
	t, err := s.Get(ctx, target)
	if err != nil {
		return false, err
	}
	return participantdomain.HasAuthority(a, t), nil
}

// Join upserts the local participant as active and announces it.
func (s *ParticipantService) Join(ctx context.Context) error {
	self := s.cfg.Self
	_, err := operation.Run(s.telemetry, ctx, "Join", string(self.ID), func(ctx context.Context) (results.OperationResult[bool, error], error) {
		return operation.RunInTx(ctx, s.db, func(ctx context.Context, db bun.IDB) (results.OperationResult[bool, error], error) {
			now := s.clock.Now()
			row := &participantdb.Participant{
				ID:         string(self.ID),
				Name:       self.Name,
				Role:       int(self.Role),
				Active:     true,
				LastSeenAt: now,
				JoinedAt:   now,
			}
			if err := s.repo.Upsert(ctx, db, row); err != nil {
				return results.OperationResult[bool, error]{}, fmt.Errorf("failed to register participant: %w", err)
			}
			return results.SuccessResult[bool, error](true), nil
		})
	})
	if err != nil {
		return err
	}
	s.announce(ctx, true)
	return nil
}

func (s *ParticipantService) Heartbeat(ctx context.Context) error {
	if err := s.repo.Touch(ctx, nil, string(s.cfg.Self.ID), s.clock.Now()); err != nil {
		return fmt.Errorf("failed to refresh presence: %w", err)
	}
	return nil
}

// Leave marks the local participant inactive and announces it.
func (s *ParticipantService) Leave(ctx context.Context) error {
	self := s.cfg.Self
	_, err := operation.Run(s.telemetry, ctx, "Leave", string(self.ID), func(ctx context.Context) (results.OperationResult[bool, error], error) {
		if err := s.repo.SetActive(ctx, nil, string(self.ID), false, s.clock.Now()); err != nil {
			return results.OperationResult[bool, error]{}, fmt.Errorf("failed to mark participant inactive: %w", err)
		}
		return results.SuccessResult[bool, error](true), nil
	})
	if err != nil {
		return err
	}
	s.announce(ctx, false)
	return nil
}

func (s *ParticipantService) announce(ctx context.Context, active bool) {
	if s.publisher == nil {
		return
	}
	payload := participantevents.PresenceChangedPayloadV1{
		ParticipantID: string(s.cfg.Self.ID),
		Active:        active,
		At:            s.clock.Now(),
	}
	if err := handlerwrapper.Publish(ctx, s.publisher, participantevents.PresenceChangedV1, payload); err != nil {
		s.logger.WarnContext(ctx, "Failed to announce presence",
			attr.ExtractCorrelationID(ctx),
			attr.ParticipantID(string(s.cfg.Self.ID)),
			attr.Error(err),
		)
	}
}

func toDomain(row participantdb.Participant) participantdomain.Participant {
	return participantdomain.Participant{
		ID:         participantdomain.ID(row.ID),
		Name:       row.Name,
		Role:       participantdomain.Role(row.Role),
		Active:     row.Active,
		LastSeenAt: row.LastSeenAt,
		JoinedAt:   row.JoinedAt,
	}
}

var _ Service = (*ParticipantService)(nil)
