package chatservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	chatevents "github.com/Black-And-White-Club/shared-dice/app/events/chat"
	chatdomain "github.com/Black-And-White-Club/shared-dice/app/modules/chat/domain"
	chatdb "github.com/Black-And-White-Club/shared-dice/app/modules/chat/infrastructure/repositories"
	dicetypedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/domain"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/Black-And-White-Club/shared-dice/app/shared/hooks"
	"github.com/Black-And-White-Club/shared-dice/app/shared/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestSink(repo *FakeChatRepo, pub *FakePublisher) *ChatSink {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := noop.NewTracerProvider().Tracer("test")
	return NewChatSink(repo, "alice", pub, logger, metrics.NewNoop(), tracer, nil)
}

func testDieType() dicetypedomain.DieType {
	d := dicetypedomain.New()
	d.ID = "inspiration"
	d.Name = "Inspiration"
	return d
}

func TestChatSinkCreate(t *testing.T) {
	target := participantdomain.ID("bob")

	tests := []struct {
		name        string
		setup       func(s *ChatSink, repo *FakeChatRepo)
		wantMessage bool
		wantErr     bool
		wantContent string
		wantTrace   []string
		wantTopics  []string
	}{
		{
			name:        "persists and broadcasts",
			wantMessage: true,
			wantContent: "hello",
			wantTrace:   []string{"Insert"},
			wantTopics:  []string{chatevents.ChatMessageCreatedV1},
		},
		{
			name: "veto creates nothing",
			setup: func(s *ChatSink, repo *FakeChatRepo) {
				s.Hooks().OnBefore(chatdomain.HookPreCreateChatMessage, func(ctx context.Context, e *chatdomain.Event) hooks.Decision {
					return hooks.Veto
				})
			},
			wantTrace:  []string{},
			wantTopics: nil,
		},
		{
			name: "before hooks may rewrite content",
			setup: func(s *ChatSink, repo *FakeChatRepo) {
				s.Hooks().OnBefore(chatdomain.HookPreCreateChatMessage, func(ctx context.Context, e *chatdomain.Event) hooks.Decision {
					e.Data["content"] = "rewritten"
					return hooks.Continue
				})
			},
			wantMessage: true,
			wantContent: "rewritten",
			wantTrace:   []string{"Insert"},
			wantTopics:  []string{chatevents.ChatMessageCreatedV1},
		},
		{
			name: "store failure",
			setup: func(s *ChatSink, repo *FakeChatRepo) {
				repo.InsertFunc = func(ctx context.Context, db bun.IDB, m *chatdb.Message) error {
					return errors.New("insert failed")
				}
			},
			wantErr:    true,
			wantTrace:  []string{"Insert"},
			wantTopics: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeChatRepo()
			pub := &FakePublisher{}
			sink := newTestSink(repo, pub)
			if tt.setup != nil {
				tt.setup(sink, repo)
			}

			var observed *chatdomain.Message
			sink.Hooks().OnAfter(chatdomain.HookCreateChatMessage, func(ctx context.Context, e *chatdomain.Event) {
				observed = e.Message
			})

			msg, err := sink.Create(context.Background(), &chatdomain.Event{
				Action:    dicetypedomain.ActionAdd,
				DieTypeID: "inspiration",
				TargetID:  &target,
				Data:      map[string]any{"content": "hello"},
			})

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			if tt.wantMessage {
				require.NotNil(t, msg)
				assert.Equal(t, tt.wantContent, msg.Content)
				assert.Equal(t, participantdomain.ID("alice"), msg.AuthorID)
				assert.Same(t, msg, observed)
			} else {
				assert.Nil(t, msg)
				assert.Nil(t, observed)
			}
			assert.Equal(t, tt.wantTrace, repo.Trace())
			assert.Equal(t, tt.wantTopics, pub.Topics())
		})
	}
}

func TestMessageSender(t *testing.T) {
	target := participantdomain.ID("bob")

	t.Run("formats the template", func(t *testing.T) {
		repo := NewFakeChatRepo()
		sender := NewMessageSender(newTestSink(repo, &FakePublisher{}))

		out, err := sender.Send(context.Background(), Request{
			Action:     dicetypedomain.ActionAdd,
			DieType:    testDieType(),
			SourceName: "Alice",
			TargetID:   &target,
			TargetName: "Bob",
			Amount:     2,
		})

		require.NoError(t, err)
		require.NotNil(t, out.Message)
		assert.Equal(t, "Alice gave Bob 2 Inspiration.", out.Message.Content)
	})

	t.Run("custom content overrides the template", func(t *testing.T) {
		repo := NewFakeChatRepo()
		sender := NewMessageSender(newTestSink(repo, &FakePublisher{}))

		out, err := sender.Send(context.Background(), Request{
			Action:      dicetypedomain.ActionUse,
			DieType:     testDieType(),
			SourceName:  "Alice",
			Amount:      1,
			MessageData: map[string]any{"content": "A heroic moment!", "flavor": "epic"},
		})

		require.NoError(t, err)
		assert.Equal(t, "A heroic moment!", out.Message.Content)
		assert.Equal(t, "epic", out.Message.Data["flavor"])
	})

	t.Run("empty template is suppressed", func(t *testing.T) {
		repo := NewFakeChatRepo()
		sender := NewMessageSender(newTestSink(repo, &FakePublisher{}))
		d := testDieType()
		d.Messages.Use = ""

		out, err := sender.Send(context.Background(), Request{Action: dicetypedomain.ActionUse, DieType: d, Amount: 1})

		require.NoError(t, err)
		assert.True(t, out.Suppressed)
		assert.Nil(t, out.Message)
		assert.Empty(t, repo.Trace())
	})

	t.Run("unknown action", func(t *testing.T) {
		sender := NewMessageSender(newTestSink(NewFakeChatRepo(), &FakePublisher{}))

		_, err := sender.Send(context.Background(), Request{Action: "juggle", DieType: testDieType()})

		assert.ErrorIs(t, err, chatdomain.ErrInvalidAction)
	})
}
