package delegationtransport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	delegationdomain "github.com/Black-And-White-Club/shared-dice/app/modules/delegation/domain"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/Black-And-White-Club/shared-dice/app/shared/attr"
	"github.com/nats-io/nats.go"
)

// Executor runs a delegated request on this node.
type Executor interface {
	Execute(ctx context.Context, req delegationdomain.Request) (*delegationdomain.Result, error)
}

// NATSTransport sends delegation requests as NATS request/reply messages.
type NATSTransport struct {
	conn *nats.Conn
}

func NewNATSTransport(conn *nats.Conn) *NATSTransport {
	return &NATSTransport{conn: conn}
}

// Request publishes req to the owner's subject and decodes the reply.
func (t *NATSTransport) Request(ctx context.Context, owner participantdomain.ID, req delegationdomain.Request, timeout time.Duration) (*delegationdomain.Response, error) {
	if timeout <= 0 {
		timeout = delegationdomain.DefaultTimeout
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msg, err := t.conn.RequestWithContext(ctx, delegationdomain.Subject(owner), data)
	if err != nil {
		return nil, err
	}

	var resp delegationdomain.Response
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &resp, nil
}

// Server answers delegation requests addressed to the local participant.
type Server struct {
	conn     *nats.Conn
	self     participantdomain.ID
	executor Executor
	logger   *slog.Logger

	mu  sync.Mutex
	sub *nats.Subscription
}

func NewServer(conn *nats.Conn, self participantdomain.ID, executor Executor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{conn: conn, self: self, executor: executor, logger: logger}
}

// Start subscribes to the local participant's subject.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub != nil {
		return errors.New("delegation server already started")
	}
	sub, err := s.conn.Subscribe(delegationdomain.Subject(s.self), s.handle)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", delegationdomain.Subject(s.self), err)
	}
	s.sub = sub
	s.logger.Info("Delegation server listening", attr.String("subject", sub.Subject))
	return nil
}

// Stop drains the subscription.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sub == nil {
		return nil
	}
	err := s.sub.Drain()
	s.sub = nil
	return err
}

func (s *Server) handle(msg *nats.Msg) {
	var req delegationdomain.Request
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.logger.Error("Failed to decode delegation request", attr.Error(err))
		s.respond(msg, delegationdomain.Response{Error: "malformed request"})
		return
	}

	ctx := context.Background()
	if req.CorrelationID != "" {
		ctx = attr.WithCorrelationID(ctx, req.CorrelationID)
	}

	result, err := s.executor.Execute(ctx, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "Delegated request failed",
			attr.ExtractCorrelationID(ctx),
			attr.String("function_id", req.FunctionID),
			attr.ParticipantID(string(req.TargetID)),
			attr.String("sender_id", string(req.SenderID)),
			attr.Error(err),
		)
		s.respond(msg, delegationdomain.Response{Error: err.Error()})
		return
	}
	s.respond(msg, delegationdomain.Response{Result: result})
}

func (s *Server) respond(msg *nats.Msg, resp delegationdomain.Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("Failed to encode delegation response", attr.Error(err))
		return
	}
	if err := msg.Respond(data); err != nil {
		s.logger.Warn("Failed to send delegation response", attr.Error(err))
	}
}
