package dicehandlers

import (
	"context"
	"time"

	dicetypeevents "github.com/Black-And-White-Club/shared-dice/app/events/dicetype"
	chatdomain "github.com/Black-And-White-Club/shared-dice/app/modules/chat/domain"
	diceservice "github.com/Black-And-White-Club/shared-dice/app/modules/dice/application"
	dicedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dice/domain"
	dicetypeservice "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/application"
	dicetypedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/domain"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/Black-And-White-Club/shared-dice/app/shared/hooks"
)

// ------------------------
// Fake Dice Service
// ------------------------

type FakeDiceService struct {
	trace []string

	ActionFunc        func(action string, target participantdomain.ID, dieTypeID string, opts []diceservice.ActionOption) (bool, error)
	GetUserDieFunc    func(participantID participantdomain.ID, dieTypeID string) (int, error)
	GetUserDiceFunc   func(participantID participantdomain.ID) (map[string]int, error)
	FindFunc          func(name string) ([]dicetypedomain.DieType, error)
	CleanFunc         func(participantID participantdomain.ID) dicedomain.CleanupResult
	TrayFunc          func() ([]dicedomain.TrayRow, error)
	ExportLedgerFunc  func() ([]byte, error)
	HoldingsChartFunc func(dieTypeID string) ([]byte, error)
}

func NewFakeDiceService() *FakeDiceService {
	return &FakeDiceService{trace: []string{}}
}

func (f *FakeDiceService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeDiceService) act(action string, target participantdomain.ID, dieTypeID string, opts []diceservice.ActionOption) (bool, error) {
	f.record(action + ":" + string(target) + ":" + dieTypeID)
	if f.ActionFunc != nil {
		return f.ActionFunc(action, target, dieTypeID, opts)
	}
	return true, nil
}

func (f *FakeDiceService) Add(ctx context.Context, target participantdomain.ID, dieTypeID string, opts ...diceservice.ActionOption) (bool, error) {
	return f.act("Add", target, dieTypeID, opts)
}

func (f *FakeDiceService) Remove(ctx context.Context, target participantdomain.ID, dieTypeID string, opts ...diceservice.ActionOption) (bool, error) {
	return f.act("Remove", target, dieTypeID, opts)
}

func (f *FakeDiceService) Use(ctx context.Context, dieTypeID string, opts ...diceservice.ActionOption) (bool, error) {
	return f.act("Use", "", dieTypeID, opts)
}

func (f *FakeDiceService) Gift(ctx context.Context, target participantdomain.ID, dieTypeID string, opts ...diceservice.ActionOption) (bool, error) {
	return f.act("Gift", target, dieTypeID, opts)
}

func (f *FakeDiceService) GetUserDie(ctx context.Context, participantID participantdomain.ID, dieTypeID string) (int, error) {
	f.record("GetUserDie")
	if f.GetUserDieFunc != nil {
		return f.GetUserDieFunc(participantID, dieTypeID)
	}
	return 0, nil
}

func (f *FakeDiceService) GetUserDice(ctx context.Context, participantID participantdomain.ID) (map[string]int, error) {
	f.record("GetUserDice")
	if f.GetUserDiceFunc != nil {
		return f.GetUserDiceFunc(participantID)
	}
	return map[string]int{}, nil
}

func (f *FakeDiceService) FindDiceTypesByName(ctx context.Context, name string) ([]dicetypedomain.DieType, error) {
	f.record("FindDiceTypesByName")
	if f.FindFunc != nil {
		return f.FindFunc(name)
	}
	return nil, nil
}

func (f *FakeDiceService) CleanInvalidData(ctx context.Context, participantID participantdomain.ID) dicedomain.CleanupResult {
	f.record("CleanInvalidData")
	if f.CleanFunc != nil {
		return f.CleanFunc(participantID)
	}
	return dicedomain.CleanupNoChange
}

func (f *FakeDiceService) CleanAllInvalidData(ctx context.Context, notify bool) (int, error) {
	f.record("CleanAllInvalidData")
	return 0, nil
}

func (f *FakeDiceService) Tray(ctx context.Context) ([]dicedomain.TrayRow, error) {
	f.record("Tray")
	if f.TrayFunc != nil {
		return f.TrayFunc()
	}
	return nil, nil
}

func (f *FakeDiceService) ExportLedger(ctx context.Context) ([]byte, error) {
	f.record("ExportLedger")
	if f.ExportLedgerFunc != nil {
		return f.ExportLedgerFunc()
	}
	return nil, nil
}

func (f *FakeDiceService) HoldingsChart(ctx context.Context, dieTypeID string) ([]byte, error) {
	f.record("HoldingsChart")
	if f.HoldingsChartFunc != nil {
		return f.HoldingsChartFunc(dieTypeID)
	}
	return nil, nil
}

func (f *FakeDiceService) Hooks() *hooks.Registry[*dicedomain.ActionEvent] {
	return hooks.NewRegistry[*dicedomain.ActionEvent](nil)
}

func (f *FakeDiceService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ diceservice.Service = (*FakeDiceService)(nil)

// ------------------------
// Fake Die Type Service
// ------------------------

type FakeDieTypeService struct {
	trace []string

	GetAllFunc func() ([]dicetypedomain.DieType, error)
	CreateFunc func(d dicetypedomain.DieType) (dicetypedomain.DieType, error)
	UpdateFunc func(id string, changes dicetypedomain.Changes) (dicetypedomain.DieType, error)
	DeleteFunc func(id string) error
}

func NewFakeDieTypeService() *FakeDieTypeService {
	return &FakeDieTypeService{trace: []string{}}
}

func (f *FakeDieTypeService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeDieTypeService) GetAll(ctx context.Context) ([]dicetypedomain.DieType, error) {
	f.record("GetAll")
	if f.GetAllFunc != nil {
		return f.GetAllFunc()
	}
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
	if f.CreateFunc != nil {
		return f.CreateFunc(d)
	}
	return d, nil
}

func (f *FakeDieTypeService) Update(ctx context.Context, id string, changes dicetypedomain.Changes) (dicetypedomain.DieType, error) {
	f.record("Update:" + id)
	if f.UpdateFunc != nil {
		return f.UpdateFunc(id, changes)
	}
	return dicetypedomain.DieType{ID: id}, nil
}

func (f *FakeDieTypeService) Delete(ctx context.Context, id string) error {
	f.record("Delete:" + id)
	if f.DeleteFunc != nil {
		return f.DeleteFunc(id)
	}
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
}

func (f *FakeDieTypeService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ dicetypeservice.Service = (*FakeDieTypeService)(nil)

// ------------------------
// Fake Chat History / Scheduler
// ------------------------

type FakeChatHistory struct {
	LastLimit int
	Messages  []chatdomain.Message
}

func (f *FakeChatHistory) Recent(ctx context.Context, limit int) ([]chatdomain.Message, error) {
	f.LastLimit = limit
	return f.Messages, nil
}

var _ ChatHistory = (*FakeChatHistory)(nil)

type FakeScheduler struct {
	LastAt string

	ScheduleFunc func(at string) (time.Time, error)
}

func (f *FakeScheduler) ScheduleReconcile(ctx context.Context, at string) (time.Time, error) {
	f.LastAt = at
	if f.ScheduleFunc != nil {
		return f.ScheduleFunc(at)
	}
	return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC), nil
}

var _ ReconcileScheduler = (*FakeScheduler)(nil)
