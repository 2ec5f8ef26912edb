package chat

import (
	"context"
	"sync"
	"time"

	chatservice "github.com/Black-And-White-Club/shared-dice/app/modules/chat/application"
	chatdb "github.com/Black-And-White-Club/shared-dice/app/modules/chat/infrastructure/repositories"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/Black-And-White-Club/shared-dice/app/observability"
	"github.com/Black-And-White-Club/shared-dice/app/shared/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// Module represents the chat module.
type Module struct {
	Sink          *chatservice.ChatSink
	Aggregator    *chatservice.Aggregator
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewChatModule creates the chat sink and the message aggregator in front of
// it. messageDelay is the debounce window of the aggregator.
func NewChatModule(
	ctx context.Context,
	obs observability.Observability,
	publisher message.Publisher,
	db *bun.DB,
	self participantdomain.ID,
	messageDelay time.Duration,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "chat.NewChatModule initializing")

	// 1. Initialize Repository
	repo := chatdb.NewRepository(db)

	// 2. Initialize Metrics
	opMetrics := metrics.NewOperationMetrics(obs.Registerer(), "chat")
	chatMetrics := metrics.NewChatMetrics(obs.Registerer())

	// 3. Initialize Sink
	sink := chatservice.NewChatSink(repo, self, publisher, logger, opMetrics, obs.Tracer, db)

	// 4. Initialize Aggregator
	aggregator := chatservice.NewAggregator(chatservice.NewMessageSender(sink), messageDelay, logger, chatMetrics)

	return &Module{
		Sink:          sink,
		Aggregator:    aggregator,
		observability: obs,
	}, nil
}

// Run starts the chat module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting chat module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Chat module goroutine stopped")
}

// Close flushes pending aggregated messages.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping chat module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.Aggregator.Close()

	logger.Info("Chat module stopped")
	return nil
}
