package dicetypehandlers

import (
	"context"

	dicetypeevents "github.com/Black-And-White-Club/shared-dice/app/events/dicetype"
	dicetypeservice "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/application"
	dicetypedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/domain"
)

// ------------------------
// Fake Die Type Service
// ------------------------

type FakeDieTypeService struct {
	trace []string

	ApplyRemoteChangeFunc func(ctx context.Context, change dicetypeevents.DieTypeChangedPayloadV1)
}

func NewFakeDieTypeService() *FakeDieTypeService {
	return &FakeDieTypeService{trace: []string{}}
}

func (f *FakeDieTypeService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeDieTypeService) GetAll(ctx context.Context) ([]dicetypedomain.DieType, error) {
	f.record("GetAll")
	return nil, nil
}

func (f *FakeDieTypeService) Enabled(ctx context.Context) ([]dicetypedomain.DieType, error) {
	f.record("Enabled")
	return nil, nil
}

func (f *FakeDieTypeService) Get(ctx context.Context, id string) (dicetypedomain.DieType, error) {
	f.record("Get")
	return dicetypedomain.DieType{}, dicetypeservice.ErrUnknownDieType
}

func (f *FakeDieTypeService) Exists(ctx context.Context, id string) (bool, error) {
	f.record("Exists")
	return false, nil
}

func (f *FakeDieTypeService) FindByName(ctx context.Context, name string) ([]dicetypedomain.DieType, error) {
	f.record("FindByName")
	return nil, nil
}

func (f *FakeDieTypeService) Create(ctx context.Context, d dicetypedomain.DieType) (dicetypedomain.DieType, error) {
	f.record("Create")
	return d, nil
}

func (f *FakeDieTypeService) Update(ctx context.Context, id string, changes dicetypedomain.Changes) (dicetypedomain.DieType, error) {
	f.record("Update")
	return dicetypedomain.DieType{}, nil
}

func (f *FakeDieTypeService) Delete(ctx context.Context, id string) error {
	f.record("Delete")
	return nil
}

func (f *FakeDieTypeService) SetAll(ctx context.Context, types []dicetypedomain.DieType) error {
	f.record("SetAll")
	return nil
}

func (f *FakeDieTypeService) OnChange(fn dicetypeservice.ChangeListener) func() {
	f.record("OnChange")
	return func() {}
}

func (f *FakeDieTypeService) ApplyRemoteChange(ctx context.Context, change dicetypeevents.DieTypeChangedPayloadV1) {
	f.record("ApplyRemoteChange")
	if f.ApplyRemoteChangeFunc != nil {
		f.ApplyRemoteChangeFunc(ctx, change)
	}
}

func (f *FakeDieTypeService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ dicetypeservice.Service = (*FakeDieTypeService)(nil)
