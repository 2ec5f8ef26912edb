package chatservice

import (
	"context"
	"sync"

	chatdomain "github.com/Black-And-White-Club/shared-dice/app/modules/chat/domain"
	chatdb "github.com/Black-And-White-Club/shared-dice/app/modules/chat/infrastructure/repositories"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Chat Repo
// ------------------------

type FakeChatRepo struct {
	trace []string

	InsertFunc     func(ctx context.Context, db bun.IDB, m *chatdb.Message) error
	ListRecentFunc func(ctx context.Context, db bun.IDB, limit int) ([]chatdb.Message, error)

	Inserted []*chatdb.Message
}

func NewFakeChatRepo() *FakeChatRepo {
	return &FakeChatRepo{trace: []string{}}
}

func (f *FakeChatRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeChatRepo) Insert(ctx context.Context, db bun.IDB, m *chatdb.Message) error {
	f.record("Insert")
	f.Inserted = append(f.Inserted, m)
	if f.InsertFunc != nil {
		return f.InsertFunc(ctx, db, m)
	}
	return nil
}

func (f *FakeChatRepo) ListRecent(ctx context.Context, db bun.IDB, limit int) ([]chatdb.Message, error) {
	f.record("ListRecent")
	if f.ListRecentFunc != nil {
		return f.ListRecentFunc(ctx, db, limit)
	}
	return nil, nil
}

func (f *FakeChatRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ chatdb.Repository = (*FakeChatRepo)(nil)

// ------------------------
// Fake Publisher
// ------------------------

type FakePublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *FakePublisher) Publish(topic string, msgs ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func (p *FakePublisher) Close() error { return nil }

func (p *FakePublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}

var _ message.Publisher = (*FakePublisher)(nil)

// ------------------------
// Fake Sender
// ------------------------

// FakeSender records every request it receives.
type FakeSender struct {
	mu       sync.Mutex
	requests []Request

	SendFunc func(ctx context.Context, req Request) (Outcome, error)
}

func (f *FakeSender) Send(ctx context.Context, req Request) (Outcome, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.SendFunc != nil {
		return f.SendFunc(ctx, req)
	}
	return Outcome{Message: &chatdomain.Message{DieTypeID: req.DieType.ID}}, nil
}

func (f *FakeSender) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

var _ Sender = (*FakeSender)(nil)
