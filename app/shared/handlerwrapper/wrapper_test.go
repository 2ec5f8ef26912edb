package handlerwrapper

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Black-And-White-Club/shared-dice/app/shared/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type ping struct {
	Value int `json:"value"`
}

type fakePublisher struct {
	trace     []string
	published []*message.Message
	err       error
}

func (p *fakePublisher) Publish(topic string, msgs ...*message.Message) error {
	p.trace = append(p.trace, topic)
	p.published = append(p.published, msgs...)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

var _ message.Publisher = (*fakePublisher)(nil)

func TestWrapTyped(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := noop.NewTracerProvider().Tracer("test")

	tests := []struct {
		name      string
		payload   []byte
		handler   TypedHandler[ping]
		wantErr   bool
		wantTrace []string
	}{
		{
			name:    "publishes results with correlation id",
			payload: []byte(`{"value":3}`),
			handler: func(ctx context.Context, p *ping) ([]Result, error) {
				assert.Equal(t, "corr-1", attr.CorrelationIDFromContext(ctx))
				return []Result{{Topic: "out", Payload: ping{Value: p.Value + 1}}}, nil
			},
			wantTrace: []string{"out"},
		},
		{
			name:    "bad payload is acked",
			payload: []byte(`not json`),
			handler: func(ctx context.Context, p *ping) ([]Result, error) {
				t.Fatal("handler must not run")
				return nil, nil
			},
		},
		{
			name:    "handler error is returned",
			payload: []byte(`{"value":1}`),
			handler: func(ctx context.Context, p *ping) ([]Result, error) {
				return nil, errors.New("boom")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &fakePublisher{}
			msg := message.NewMessage("id-1", tt.payload)
			middleware.SetCorrelationID("corr-1", msg)

			out, err := WrapTyped[ping]("test.handler", logger, tracer, pub, tt.handler)(msg)

			assert.Nil(t, out)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantTrace, pub.trace)
			for _, m := range pub.published {
				assert.Equal(t, "corr-1", middleware.MessageCorrelationID(m))
				var got ping
				require.NoError(t, json.Unmarshal(m.Payload, &got))
				assert.Equal(t, 4, got.Value)
			}
		})
	}
}

func TestNewMessageGeneratesCorrelationID(t *testing.T) {
	msg, err := NewMessage(context.Background(), ping{Value: 1})
	require.NoError(t, err)
	assert.NotEmpty(t, middleware.MessageCorrelationID(msg))
	assert.JSONEq(t, `{"value":1}`, string(msg.Payload))
}
