package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
)

// EventBus is the broadcast channel every node publishes its change events to
// and subscribes to. Conn exposes the raw NATS connection for request/reply.
type EventBus interface {
	message.Publisher
	message.Subscriber
	Conn() *nc.Conn
}

// eventBus fans every message out to all subscribed nodes over core NATS.
type eventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	natsConn   *nc.Conn
	logger     *slog.Logger
}

// NewEventBus connects to NATS and builds the Watermill publisher and
// subscriber. JetStream is disabled: events are fire-and-forget
// notifications and a node that misses one re-reads the database.
func NewEventBus(natsURL string, clientName string, logger *slog.Logger) (EventBus, error) {
	natsOptions := []nc.Option{
		nc.Name(clientName),
		nc.RetryOnFailedConnect(true),
		nc.Timeout(10 * time.Second),
		nc.ReconnectWait(1 * time.Second),
	}

	natsConn, err := nc.Connect(natsURL, natsOptions...)
	if err != nil {
		logger.Error("Failed to connect to NATS", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	watermillLogger := watermill.NewSlogLogger(logger)
	marshaler := &nats.NATSMarshaler{}
	jsConfig := nats.JetStreamConfig{Disabled: true}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:               natsURL,
			Marshaler:         marshaler,
			NatsOptions:       natsOptions,
			JetStream:         jsConfig,
			SubjectCalculator: nats.DefaultSubjectCalculator,
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		logger.Error("Failed to create Watermill publisher", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:               natsURL,
			Unmarshaler:       marshaler,
			NatsOptions:       natsOptions,
			JetStream:         jsConfig,
			SubjectCalculator: nats.DefaultSubjectCalculator,
			CloseTimeout:      5 * time.Second,
		},
		watermillLogger,
	)
	if err != nil {
		natsConn.Close()
		publisher.Close()
		logger.Error("Failed to create Watermill subscriber", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	return &eventBus{
		publisher:  publisher,
		subscriber: subscriber,
		natsConn:   natsConn,
		logger:     logger,
	}, nil
}

func (eb *eventBus) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
		eb.logger.Debug("Publishing message",
			slog.String("topic", topic),
			slog.String("message_id", msg.UUID),
		)
	}
	if err := eb.publisher.Publish(topic, messages...); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

func (eb *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	eb.logger.Info("Subscribing to topic", slog.String("topic", topic))
	messages, err := eb.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
	}
	return messages, nil
}

func (eb *eventBus) Conn() *nc.Conn {
	return eb.natsConn
}

// Close closes all NATS and Watermill resources.
func (eb *eventBus) Close() error {
	if eb.publisher != nil {
		if err := eb.publisher.Close(); err != nil {
			eb.logger.Error("Error closing NATS publisher", "error", err)
		}
	}
	if eb.subscriber != nil {
		if err := eb.subscriber.Close(); err != nil {
			eb.logger.Error("Error closing NATS subscriber", "error", err)
		}
	}
	if eb.natsConn != nil {
		eb.natsConn.Close()
	}
	return nil
}
