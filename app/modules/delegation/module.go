package delegation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	delegationservice "github.com/Black-And-White-Club/shared-dice/app/modules/delegation/application"
	delegationtransport "github.com/Black-And-White-Club/shared-dice/app/modules/delegation/infrastructure/transport"
	notificationservice "github.com/Black-And-White-Club/shared-dice/app/modules/notification/application"
	"github.com/Black-And-White-Club/shared-dice/app/observability"
	"github.com/Black-And-White-Club/shared-dice/app/shared/metrics"
	"github.com/nats-io/nats.go"
)

// Module represents the delegation channel and its request server.
type Module struct {
	Channel       *delegationservice.DelegationChannel
	server        *delegationtransport.Server
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewDelegationModule creates the channel. Functions are registered on
// Channel by the modules that own them before Run is called.
func NewDelegationModule(
	ctx context.Context,
	obs observability.Observability,
	conn *nats.Conn,
	directory delegationservice.Directory,
	notifier notificationservice.Notifier,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "delegation.NewDelegationModule initializing")

	if conn == nil {
		return nil, errors.New("delegation requires a NATS connection")
	}

	// 1. Initialize Metrics
	delegationMetrics := metrics.NewDelegationMetrics(obs.Registerer())

	// 2. Initialize Transport
	transport := delegationtransport.NewNATSTransport(conn)

	// 3. Initialize Channel
	channel := delegationservice.NewDelegationChannel(directory, transport, notifier, logger, obs.Tracer, delegationMetrics)

	// 4. Initialize Server
	server := delegationtransport.NewServer(conn, directory.SelfID(), channel, logger)

	return &Module{
		Channel:       channel,
		server:        server,
		observability: obs,
	}, nil
}

// Run serves delegated requests until ctx is done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting delegation module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if err := m.server.Start(); err != nil {
		logger.ErrorContext(ctx, "Failed to start delegation server", "error", err)
		return
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Delegation module goroutine stopped")
}

// Close stops serving delegated requests.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping delegation module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if err := m.server.Stop(); err != nil {
		logger.Error("Error stopping delegation server", "error", err)
		return fmt.Errorf("error stopping delegation server: %w", err)
	}

	logger.Info("Delegation module stopped")
	return nil
}
