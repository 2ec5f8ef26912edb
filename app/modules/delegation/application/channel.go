package delegationservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	delegationdomain "github.com/Black-And-White-Club/shared-dice/app/modules/delegation/domain"
	notificationservice "github.com/Black-And-White-Club/shared-dice/app/modules/notification/application"
	notificationdomain "github.com/Black-And-White-Club/shared-dice/app/modules/notification/domain"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/Black-And-White-Club/shared-dice/app/shared/attr"
	"github.com/Black-And-White-Club/shared-dice/app/shared/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Directory is the view of the participant directory the channel needs.
type Directory interface {
	SelfID() participantdomain.ID
	Connected(ctx context.Context) ([]participantdomain.Participant, error)
	CanWrite(ctx context.Context, actor, target participantdomain.ID) (bool, error)
}

// Transport sends a request to the node of owner and waits for its reply.
type Transport interface {
	Request(ctx context.Context, owner participantdomain.ID, req delegationdomain.Request, timeout time.Duration) (*delegationdomain.Response, error)
}

// Channel routes privileged functions to a participant allowed to run them.
type Channel interface {
	// Register makes fn callable under id, locally and by other nodes.
	Register(id string, fn delegationdomain.Func)

	// ActiveOwner returns the participant that will execute calls for target.
	ActiveOwner(ctx context.Context, target participantdomain.ID) (participantdomain.ID, bool, error)

	// Query runs the function and reports whether it succeeded. Failures
	// have been delivered to the local participant when it returns false.
	Query(ctx context.Context, functionID string, target participantdomain.ID, payload any, opts ...QueryOption) bool

	// QueryRaw returns the function's result unhandled, or nil when the call
	// could not be completed.
	QueryRaw(ctx context.Context, functionID string, target participantdomain.ID, payload any, opts ...QueryOption) *delegationdomain.Result

	// Execute runs a request in-process. It is the entry point for both local
	// and remote calls.
	Execute(ctx context.Context, req delegationdomain.Request) (*delegationdomain.Result, error)
}

type queryOptions struct {
	timeout time.Duration
	quiet   bool
}

// QueryOption customises a single query.
type QueryOption func(*queryOptions)

// WithTimeout bounds the remote round trip. Non-positive values use
// delegationdomain.DefaultTimeout.
func WithTimeout(d time.Duration) QueryOption {
	return func(o *queryOptions) { o.timeout = d }
}

// WithoutNotices logs routing and execution failures instead of notifying
// the local participant.
func WithoutNotices() QueryOption {
	return func(o *queryOptions) { o.quiet = true }
}

// DelegationChannel implements the Channel interface.
type DelegationChannel struct {
	directory Directory
	transport Transport
	notifier  notificationservice.Notifier
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   metrics.DelegationMetrics

	mu        sync.RWMutex
	functions map[string]delegationdomain.Func
}

// NewDelegationChannel creates a new DelegationChannel.
func NewDelegationChannel(
	directory Directory,
	transport Transport,
	notifier notificationservice.Notifier,
	logger *slog.Logger,
	tracer trace.Tracer,
	delegationMetrics metrics.DelegationMetrics,
) *DelegationChannel {
	if logger == nil {
		logger = slog.Default()
	}
	if delegationMetrics == nil {
		delegationMetrics = metrics.NewNoop()
	}
	return &DelegationChannel{
		directory: directory,
		transport: transport,
		notifier:  notifier,
		logger:    logger,
		tracer:    tracer,
		metrics:   delegationMetrics,
		functions: make(map[string]delegationdomain.Func),
	}
}

func (c *DelegationChannel) Register(id string, fn delegationdomain.Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.functions[id] = fn
}

func (c *DelegationChannel) ActiveOwner(ctx context.Context, target participantdomain.ID) (participantdomain.ID, bool, error) {
	self := c.directory.SelfID()
	ok, err := c.directory.CanWrite(ctx, self, target)
	if err != nil {
		return "", false, err
	}
	if ok {
		return self, true, nil
	}

	connected, err := c.directory.Connected(ctx)
	if err != nil {
		return "", false, fmt.Errorf("failed to list connected participants: %w", err)
	}
	for _, p := range connected {
		if p.ID == self {
			continue
		}
		ok, err := c.directory.CanWrite(ctx, p.ID, target)
		if err != nil {
			return "", false, err
		}
		if ok {
			return p.ID, true, nil
		}
	}
	return "", false, nil
}

func (c *DelegationChannel) Query(ctx context.Context, functionID string, target participantdomain.ID, payload any, opts ...QueryOption) bool {
	result := c.QueryRaw(ctx, functionID, target, payload, opts...)
	if result == nil {
		return false
	}
	switch {
	case result.OK:
		return true
	case result.Failure != nil:
		c.notifier.Notify(ctx, *result.Failure)
		return false
	default:
		c.notifier.Unexpected(ctx, "Delegated function returned an unexpected result", nil,
			attr.String("function_id", functionID),
			attr.ParticipantID(string(target)),
			attr.Any("result", result),
		)
		return false
	}
}

func (c *DelegationChannel) QueryRaw(ctx context.Context, functionID string, target participantdomain.ID, payload any, opts ...QueryOption) *delegationdomain.Result {
	o := queryOptions{timeout: delegationdomain.DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout <= 0 {
		o.timeout = delegationdomain.DefaultTimeout
	}

	ctx, span := c.tracer.Start(ctx, "DelegationChannel.Query", trace.WithAttributes(
		attribute.String("function_id", functionID),
		attribute.String("target_participant_id", string(target)),
	))
	defer span.End()

	start := time.Now()

	raw, err := json.Marshal(payload)
	if err != nil {
		c.fail(ctx, span, o, functionID, target, metrics.RouteNone, fmt.Errorf("failed to encode payload: %w", err))
		return nil
	}

	owner, found, err := c.ActiveOwner(ctx, target)
	if err != nil {
		c.fail(ctx, span, o, functionID, target, metrics.RouteNone, fmt.Errorf("failed to resolve owner: %w", err))
		return nil
	}
	if !found {
		span.SetStatus(codes.Error, "no active owner")
		c.metrics.RecordQuery(ctx, functionID, metrics.RouteNone, metrics.OutcomeNoOwner)
		if o.quiet {
			c.logger.WarnContext(ctx, "No active owner for delegated call",
				attr.ExtractCorrelationID(ctx),
				attr.String("function_id", functionID),
				attr.ParticipantID(string(target)),
			)
			return nil
		}
		c.notifier.Notify(ctx, notificationdomain.Err(notificationdomain.KeyNoActiveOwner, nil))
		return nil
	}

	req := delegationdomain.Request{
		FunctionID:    functionID,
		TargetID:      target,
		SenderID:      c.directory.SelfID(),
		CorrelationID: attr.CorrelationIDFromContext(ctx),
		Payload:       raw,
	}

	route := metrics.RouteRemote
	var result *delegationdomain.Result
	if owner == c.directory.SelfID() {
		route = metrics.RouteLocal
		result, err = c.Execute(ctx, req)
	} else {
		result, err = c.remote(ctx, owner, req, o.timeout)
	}
	span.SetAttributes(attribute.String("route", route), attribute.String("owner", string(owner)))
	c.metrics.RecordQueryDuration(ctx, functionID, route, time.Since(start))

	if err != nil {
		c.fail(ctx, span, o, functionID, target, route, err)
		return nil
	}

	switch {
	case result != nil && result.OK:
		c.metrics.RecordQuery(ctx, functionID, route, metrics.OutcomeSuccess)
	case result != nil && result.Failure != nil:
		c.metrics.RecordQuery(ctx, functionID, route, metrics.OutcomeFailure)
	default:
		c.metrics.RecordQuery(ctx, functionID, route, metrics.OutcomeUnexpected)
	}
	return result
}

func (c *DelegationChannel) remote(ctx context.Context, owner participantdomain.ID, req delegationdomain.Request, timeout time.Duration) (*delegationdomain.Result, error) {
	if c.transport == nil {
		return nil, errors.New("no delegation transport configured")
	}
	resp, err := c.transport.Request(ctx, owner, req, timeout)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", owner, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("remote execution on %s failed: %s", owner, resp.Error)
	}
	return resp.Result, nil
}

func (c *DelegationChannel) Execute(ctx context.Context, req delegationdomain.Request) (result *delegationdomain.Result, err error) {
	c.mu.RLock()
	fn, ok := c.functions[req.FunctionID]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", delegationdomain.ErrUnknownFunction, req.FunctionID)
	}

	allowed, err := c.directory.CanWrite(ctx, c.directory.SelfID(), req.TargetID)
	if err != nil {
		return nil, fmt.Errorf("failed to check authority: %w", err)
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s", delegationdomain.ErrNotOwner, req.TargetID)
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("panic in %s: %v", req.FunctionID, r)
		}
	}()

	return fn(ctx, req.TargetID, req.Payload)
}

func (c *DelegationChannel) fail(ctx context.Context, span trace.Span, o queryOptions, functionID string, target participantdomain.ID, route string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.metrics.RecordQuery(ctx, functionID, route, metrics.OutcomeError)
	if o.quiet {
		c.logger.ErrorContext(ctx, "Delegated call failed",
			attr.ExtractCorrelationID(ctx),
			attr.String("function_id", functionID),
			attr.ParticipantID(string(target)),
			attr.String("route", route),
			attr.Error(err),
		)
		return
	}
	c.notifier.Unexpected(ctx, "Delegated call failed", err,
		attr.String("function_id", functionID),
		attr.ParticipantID(string(target)),
		attr.String("route", route),
	)
}

var _ Channel = (*DelegationChannel)(nil)
