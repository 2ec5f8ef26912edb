// Package handlerwrapper adapts typed event handlers to Watermill handler
// functions.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/shared-dice/app/shared/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Result is an outgoing event produced by a handler.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// TypedHandler handles a decoded payload and returns the events to publish.
type TypedHandler[T any] func(ctx context.Context, payload *T) ([]Result, error)

// WrapTyped decodes the JSON payload into T, runs handler and publishes its
// results. Payloads that cannot be decoded are logged and acknowledged so they
// are not redelivered forever.
func WrapTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	publisher message.Publisher,
	handler func(ctx context.Context, payload *T) ([]Result, error),
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := attr.WithCorrelationID(msg.Context(), middleware.MessageCorrelationID(msg))

		var span trace.Span
		if tracer != nil {
			ctx, span = tracer.Start(ctx, handlerName, trace.WithAttributes(
				attribute.String("message.uuid", msg.UUID),
			))
			defer span.End()
		}

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Failed to unmarshal payload",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			return nil, nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			logger.ErrorContext(ctx, "Handler returned error",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			if span != nil {
				span.RecordError(err)
			}
			return nil, err
		}

		for _, r := range results {
			out, err := NewMessage(ctx, r.Payload)
			if err != nil {
				return nil, err
			}
			for k, v := range r.Metadata {
				out.Metadata.Set(k, v)
			}
			if publisher == nil {
				return nil, fmt.Errorf("handler %s produced a result without a publisher", handlerName)
			}
			if err := publisher.Publish(r.Topic, out); err != nil {
				return nil, fmt.Errorf("failed to publish %s: %w", r.Topic, err)
			}
		}

		return nil, nil
	}
}

// NewMessage marshals payload into a Watermill message carrying the
// correlation id of ctx.
func NewMessage(ctx context.Context, payload any) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	correlationID := attr.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = watermill.NewUUID()
	}
	middleware.SetCorrelationID(correlationID, msg)
	return msg, nil
}

// Publish marshals payload and publishes it on topic.
func Publish(ctx context.Context, publisher message.Publisher, topic string, payload any) error {
	msg, err := NewMessage(ctx, payload)
	if err != nil {
		return err
	}
	if err := publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", topic, err)
	}
	return nil
}
