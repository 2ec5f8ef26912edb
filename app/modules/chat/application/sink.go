package chatservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	chatevents "github.com/Black-And-White-Club/shared-dice/app/events/chat"
	chatdomain "github.com/Black-And-White-Club/shared-dice/app/modules/chat/domain"
	chatdb "github.com/Black-And-White-Club/shared-dice/app/modules/chat/infrastructure/repositories"
	dicetypedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/domain"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/Black-And-White-Club/shared-dice/app/shared/attr"
	"github.com/Black-And-White-Club/shared-dice/app/shared/handlerwrapper"
	"github.com/Black-And-White-Club/shared-dice/app/shared/hooks"
	"github.com/Black-And-White-Club/shared-dice/app/shared/metrics"
	"github.com/Black-And-White-Club/shared-dice/app/shared/operation"
	"github.com/Black-And-White-Club/shared-dice/app/shared/results"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// ChatSink implements the Sink interface.
type ChatSink struct {
	repo      chatdb.Repository
	self      participantdomain.ID
	publisher message.Publisher
	logger    *slog.Logger
	telemetry operation.Telemetry
	db        *bun.DB
	hooks     *hooks.Registry[*chatdomain.Event]
}

// NewChatSink creates a new ChatSink.
func NewChatSink(
	repo chatdb.Repository,
	self participantdomain.ID,
	publisher message.Publisher,
	logger *slog.Logger,
	metrics metrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *ChatSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatSink{
		repo:      repo,
		self:      self,
		publisher: publisher,
		logger:    logger,
		telemetry: operation.Telemetry{
			Logger:  logger,
			Tracer:  tracer,
			Metrics: metrics,
			Service: "ChatSink",
		},
		db:    db,
		hooks: hooks.NewRegistry[*chatdomain.Event](logger),
	}
}

func (s *ChatSink) Hooks() *hooks.Registry[*chatdomain.Event] {
	return s.hooks
}

func (s *ChatSink) Create(ctx context.Context, event *chatdomain.Event) (*chatdomain.Message, error) {
	if !s.hooks.CallBefore(ctx, chatdomain.HookPreCreateChatMessage, event) {
		return nil, nil
	}

	msg := &chatdomain.Message{
		ID:        uuid.New(),
		AuthorID:  s.self,
		Action:    event.Action,
		DieTypeID: event.DieTypeID,
		TargetID:  event.TargetID,
		Content:   event.Content(),
		Data:      event.Data,
		CreatedAt: time.Now().UTC(),
	}

	_, err := operation.Run(s.telemetry, ctx, "CreateChatMessage", msg.ID.String(), func(ctx context.Context) (results.OperationResult[bool, error], error) {
		if err := s.repo.Insert(ctx, nil, toRow(msg)); err != nil {
			return results.OperationResult[bool, error]{}, err
		}
		return results.SuccessResult[bool, error](true), nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(ctx, msg)

	event.Message = msg
	s.hooks.CallAfter(ctx, chatdomain.HookCreateChatMessage, event)
	return msg, nil
}

func (s *ChatSink) Recent(ctx context.Context, limit int) ([]chatdomain.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.repo.ListRecent(ctx, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat messages: %w", err)
	}
	out := make([]chatdomain.Message, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomain(row))
	}
	return out, nil
}

func (s *ChatSink) broadcast(ctx context.Context, msg *chatdomain.Message) {
	if s.publisher == nil {
		return
	}
	payload := chatevents.ChatMessageCreatedPayloadV1{
		MessageID: msg.ID.String(),
		AuthorID:  string(msg.AuthorID),
		Action:    string(msg.Action),
		DieTypeID: msg.DieTypeID,
		TargetID:  targetString(msg.TargetID),
		Content:   msg.Content,
		Data:      msg.Data,
		CreatedAt: msg.CreatedAt,
	}
	if err := handlerwrapper.Publish(ctx, s.publisher, chatevents.ChatMessageCreatedV1, payload); err != nil {
		s.logger.ErrorContext(ctx, "Failed to broadcast chat message",
			attr.ExtractCorrelationID(ctx),
			attr.String("message_id", payload.MessageID),
			attr.Error(err),
		)
	}
}

func targetString(id *participantdomain.ID) *string {
	if id == nil {
		return nil
	}
	s := string(*id)
	return &s
}

func toRow(m *chatdomain.Message) *chatdb.Message {
	return &chatdb.Message{
		ID:        m.ID,
		AuthorID:  string(m.AuthorID),
		Action:    string(m.Action),
		DieTypeID: m.DieTypeID,
		TargetID:  targetString(m.TargetID),
		Content:   m.Content,
		Data:      m.Data,
		CreatedAt: m.CreatedAt,
	}
}

func toDomain(row chatdb.Message) chatdomain.Message {
	var target *participantdomain.ID
	if row.TargetID != nil {
		id := participantdomain.ID(*row.TargetID)
		target = &id
	}
	return chatdomain.Message{
		ID:        row.ID,
		AuthorID:  participantdomain.ID(row.AuthorID),
		Action:    dicetypedomain.Action(row.Action),
		DieTypeID: row.DieTypeID,
		TargetID:  target,
		Content:   row.Content,
		Data:      row.Data,
		CreatedAt: row.CreatedAt,
	}
}

var _ Sink = (*ChatSink)(nil)
