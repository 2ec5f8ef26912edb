package participantservice

import (
	"context"
	"time"

	participantdb "github.com/Black-And-White-Club/shared-dice/app/modules/participant/infrastructure/repositories"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Participant Repo
// ------------------------

type FakeParticipantRepo struct {
	trace []string

	GetByIDFunc   func(ctx context.Context, db bun.IDB, id string) (*participantdb.Participant, error)
	ListFunc      func(ctx context.Context, db bun.IDB) ([]participantdb.Participant, error)
	UpsertFunc    func(ctx context.Context, db bun.IDB, p *participantdb.Participant) error
	SetActiveFunc func(ctx context.Context, db bun.IDB, id string, active bool, at time.Time) error
	TouchFunc     func(ctx context.Context, db bun.IDB, id string, at time.Time) error
}

func NewFakeParticipantRepo() *FakeParticipantRepo {
	return &FakeParticipantRepo{
		trace: []string{},
	}
}

func (f *FakeParticipantRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeParticipantRepo) GetByID(ctx context.Context, db bun.IDB, id string) (*participantdb.Participant, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, id)
	}
	return nil, participantdb.ErrNotFound
}

func (f *FakeParticipantRepo) List(ctx context.Context, db bun.IDB) ([]participantdb.Participant, error) {
	f.record("List")
	if f.ListFunc != nil {
		return f.ListFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeParticipantRepo) Upsert(ctx context.Context, db bun.IDB, p *participantdb.Participant) error {
	f.record("Upsert")
	if f.UpsertFunc != nil {
		return f.UpsertFunc(ctx, db, p)
	}
	return nil
}

func (f *FakeParticipantRepo) SetActive(ctx context.Context, db bun.IDB, id string, active bool, at time.Time) error {
	f.record("SetActive")
	if f.SetActiveFunc != nil {
		return f.SetActiveFunc(ctx, db, id, active, at)
	}
	return nil
}

func (f *FakeParticipantRepo) Touch(ctx context.Context, db bun.IDB, id string, at time.Time) error {
	f.record("Touch")
	if f.TouchFunc != nil {
		return f.TouchFunc(ctx, db, id, at)
	}
	return nil
}

func (f *FakeParticipantRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ participantdb.Repository = (*FakeParticipantRepo)(nil)

// ------------------------
// Fake Publisher
// ------------------------

type FakePublisher struct {
	topics []string
	err    error
}

func (p *FakePublisher) Publish(topic string, msgs ...*message.Message) error {
	p.topics = append(p.topics, topic)
	return p.err
}

func (p *FakePublisher) Close() error { return nil }

var _ message.Publisher = (*FakePublisher)(nil)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }
