package chatservice

import (
	"context"
	"log/slog"
	"sync"
	"time"

	dicetypedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/domain"
	"github.com/Black-And-White-Club/shared-dice/app/shared/attr"
	"github.com/Black-And-White-Club/shared-dice/app/shared/metrics"
)

const noTarget = "NONE"

type groupKey struct {
	action    dicetypedomain.Action
	dieTypeID string
	target    string
}

// group collects calls until its timer fires. done is closed once outcome
// and err are set.
type group struct {
	ctx   context.Context
	req   Request
	calls int
	timer *time.Timer

	done    chan struct{}
	outcome Outcome
	err     error
}

// Aggregator merges rapid repeated actions into one message. Each call of a
// group restarts the group's timer; when it fires the summed amount is sent
// once and every caller of the group gets the same outcome.
type Aggregator struct {
	sender  Sender
	delay   time.Duration
	logger  *slog.Logger
	metrics metrics.ChatMetrics

	mu     sync.Mutex
	groups map[groupKey]*group
	closed bool
}

// NewAggregator creates an Aggregator. A non-positive delay sends every
// message immediately.
func NewAggregator(sender Sender, delay time.Duration, logger *slog.Logger, chatMetrics metrics.ChatMetrics) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if chatMetrics == nil {
		chatMetrics = metrics.NewNoop()
	}
	return &Aggregator{
		sender:  sender,
		delay:   delay,
		logger:  logger,
		metrics: chatMetrics,
		groups:  make(map[groupKey]*group),
	}
}

// Send blocks until the message of the caller's group has been sent. Calls
// with custom message data are never merged.
func (a *Aggregator) Send(ctx context.Context, req Request) (Outcome, error) {
	template, err := resolveTemplate(req)
	if err != nil {
		return Outcome{}, err
	}
	if template == "" {
		return Outcome{Suppressed: true}, nil
	}
	if len(req.MessageData) > 0 || a.delay <= 0 {
		return a.sender.Send(ctx, req)
	}

	key := groupKey{action: req.Action, dieTypeID: req.DieType.ID, target: noTarget}
	if req.TargetID != nil {
		key.target = string(*req.TargetID)
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return a.sender.Send(ctx, req)
	}
	g, ok := a.groups[key]
	if ok {
		g.req.Amount += req.Amount
		g.calls++
		g.timer.Reset(a.delay)
		a.metrics.RecordCoalesced(ctx, string(req.Action))
	} else {
		g = &group{
			ctx:   context.WithoutCancel(ctx),
			req:   req,
			calls: 1,
			done:  make(chan struct{}),
		}
		a.groups[key] = g
		g.timer = time.AfterFunc(a.delay, func() { a.flush(key, g) })
	}
	a.mu.Unlock()

	select {
	case <-g.done:
		return g.outcome, g.err
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// flush sends g if it is still the pending group for key. A timer that was
// reset after firing may call flush a second time; that call finds nothing.
func (a *Aggregator) flush(key groupKey, g *group) {
	a.mu.Lock()
	if a.groups[key] != g {
		a.mu.Unlock()
		return
	}
	delete(a.groups, key)
	a.mu.Unlock()

	a.send(g)
}

func (a *Aggregator) send(g *group) {
	g.outcome, g.err = a.sender.Send(g.ctx, g.req)
	a.metrics.RecordFlush(g.ctx, string(g.req.Action), g.calls)
	if g.err != nil {
		a.logger.ErrorContext(g.ctx, "Failed to send aggregated chat message",
			attr.ExtractCorrelationID(g.ctx),
			attr.String("action", string(g.req.Action)),
			attr.DieTypeID(g.req.DieType.ID),
			attr.Int("calls", g.calls),
			attr.Error(g.err),
		)
	}
	close(g.done)
}

// Close sends every pending group and makes later calls send immediately.
func (a *Aggregator) Close() {
	a.mu.Lock()
	a.closed = true
	pending := make([]*group, 0, len(a.groups))
	for key, g := range a.groups {
		g.timer.Stop()
		delete(a.groups, key)
		pending = append(pending, g)
	}
	a.mu.Unlock()

	for _, g := range pending {
		a.send(g)
	}
}

var _ Sender = (*Aggregator)(nil)
