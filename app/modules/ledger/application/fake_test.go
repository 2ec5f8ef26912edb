package ledgerservice

import (
	"context"

	ledgerdb "github.com/Black-And-White-Club/shared-dice/app/modules/ledger/infrastructure/repositories"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Ledger Repo
// ------------------------

type FakeLedgerRepo struct {
	trace []string

	GetFunc               func(ctx context.Context, db bun.IDB, participantID, dieTypeID string) (*ledgerdb.Entry, error)
	ListByParticipantFunc func(ctx context.Context, db bun.IDB, participantID string) ([]ledgerdb.Entry, error)
	ListAllFunc           func(ctx context.Context, db bun.IDB) ([]ledgerdb.Entry, error)
	UpsertFunc            func(ctx context.Context, db bun.IDB, e *ledgerdb.Entry) error
	DeleteFunc            func(ctx context.Context, db bun.IDB, participantID, dieTypeID string) error
}

func NewFakeLedgerRepo() *FakeLedgerRepo {
	return &FakeLedgerRepo{trace: []string{}}
}

func (f *FakeLedgerRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeLedgerRepo) Get(ctx context.Context, db bun.IDB, participantID, dieTypeID string) (*ledgerdb.Entry, error) {
	f.record("Get")
	if f.GetFunc != nil {
		return f.GetFunc(ctx, db, participantID, dieTypeID)
	}
	return nil, ledgerdb.ErrNotFound
}

func (f *FakeLedgerRepo) ListByParticipant(ctx context.Context, db bun.IDB, participantID string) ([]ledgerdb.Entry, error) {
	f.record("ListByParticipant")
	if f.ListByParticipantFunc != nil {
		return f.ListByParticipantFunc(ctx, db, participantID)
	}
	return nil, nil
}

func (f *FakeLedgerRepo) ListAll(ctx context.Context, db bun.IDB) ([]ledgerdb.Entry, error) {
	f.record("ListAll")
	if f.ListAllFunc != nil {
		return f.ListAllFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeLedgerRepo) Upsert(ctx context.Context, db bun.IDB, e *ledgerdb.Entry) error {
	f.record("Upsert")
	if f.UpsertFunc != nil {
		return f.UpsertFunc(ctx, db, e)
	}
	return nil
}

func (f *FakeLedgerRepo) Delete(ctx context.Context, db bun.IDB, participantID, dieTypeID string) error {
	f.record("Delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, db, participantID, dieTypeID)
	}
	return nil
}

func (f *FakeLedgerRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ ledgerdb.Repository = (*FakeLedgerRepo)(nil)

// ------------------------
// Fake Authorizer
// ------------------------

type FakeAuthorizer struct {
	Self         participantdomain.ID
	CanWriteFunc func(ctx context.Context, actor, target participantdomain.ID) (bool, error)
}

func (f *FakeAuthorizer) SelfID() participantdomain.ID { return f.Self }

func (f *FakeAuthorizer) CanWrite(ctx context.Context, actor, target participantdomain.ID) (bool, error) {
	if f.CanWriteFunc != nil {
		return f.CanWriteFunc(ctx, actor, target)
	}
	return actor == target, nil
}

var _ Authorizer = (*FakeAuthorizer)(nil)

// ------------------------
// Fake Publisher
// ------------------------

type FakePublisher struct {
	topics []string
}

func (p *FakePublisher) Publish(topic string, msgs ...*message.Message) error {
	p.topics = append(p.topics, topic)
	return nil
}

func (p *FakePublisher) Close() error { return nil }

var _ message.Publisher = (*FakePublisher)(nil)
