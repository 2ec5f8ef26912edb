package dicetypeservice

import (
	"context"

	dicetypedb "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/infrastructure/repositories"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Die Type Repo
// ------------------------

type FakeDieTypeRepo struct {
	trace []string

	ListFunc       func(ctx context.Context, db bun.IDB) ([]dicetypedb.DieType, error)
	GetByIDFunc    func(ctx context.Context, db bun.IDB, id string) (*dicetypedb.DieType, error)
	InsertFunc     func(ctx context.Context, db bun.IDB, d *dicetypedb.DieType) error
	UpdateFunc     func(ctx context.Context, db bun.IDB, d *dicetypedb.DieType) error
	DeleteFunc     func(ctx context.Context, db bun.IDB, id string) error
	ReplaceAllFunc func(ctx context.Context, db bun.IDB, types []dicetypedb.DieType) error
}

func NewFakeDieTypeRepo() *FakeDieTypeRepo {
	return &FakeDieTypeRepo{trace: []string{}}
}

func (f *FakeDieTypeRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeDieTypeRepo) List(ctx context.Context, db bun.IDB) ([]dicetypedb.DieType, error) {
	f.record("List")
	if f.ListFunc != nil {
		return f.ListFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeDieTypeRepo) GetByID(ctx context.Context, db bun.IDB, id string) (*dicetypedb.DieType, error) {
	f.record("GetByID")
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, db, id)
	}
	return nil, dicetypedb.ErrNotFound
}

func (f *FakeDieTypeRepo) Insert(ctx context.Context, db bun.IDB, d *dicetypedb.DieType) error {
	f.record("Insert")
	if f.InsertFunc != nil {
		return f.InsertFunc(ctx, db, d)
	}
	return nil
}

func (f *FakeDieTypeRepo) Update(ctx context.Context, db bun.IDB, d *dicetypedb.DieType) error {
	f.record("Update")
	if f.UpdateFunc != nil {
		return f.UpdateFunc(ctx, db, d)
	}
	return nil
}

func (f *FakeDieTypeRepo) Delete(ctx context.Context, db bun.IDB, id string) error {
	f.record("Delete")
	if f.DeleteFunc != nil {
		return f.DeleteFunc(ctx, db, id)
	}
	return nil
}

func (f *FakeDieTypeRepo) ReplaceAll(ctx context.Context, db bun.IDB, types []dicetypedb.DieType) error {
	f.record("ReplaceAll")
	if f.ReplaceAllFunc != nil {
		return f.ReplaceAllFunc(ctx, db, types)
	}
	return nil
}

func (f *FakeDieTypeRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ dicetypedb.Repository = (*FakeDieTypeRepo)(nil)

// ------------------------
// Fake Self Resolver
// ------------------------

type FakeSelf struct {
	Participant participantdomain.Participant
	Err         error
}

func (f *FakeSelf) SelfID() participantdomain.ID { return f.Participant.ID }

func (f *FakeSelf) Self(ctx context.Context) (participantdomain.Participant, error) {
	return f.Participant, f.Err
}

var _ SelfResolver = (*FakeSelf)(nil)

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
