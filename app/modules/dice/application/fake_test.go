package diceservice

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	chatservice "github.com/Black-And-White-Club/shared-dice/app/modules/chat/application"
	delegationdomain "github.com/Black-And-White-Club/shared-dice/app/modules/delegation/domain"
	dicetypeservice "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/application"
	dicetypedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/domain"
	notificationservice "github.com/Black-And-White-Club/shared-dice/app/modules/notification/application"
	notificationdomain "github.com/Black-And-White-Club/shared-dice/app/modules/notification/domain"
	participantservice "github.com/Black-And-White-Club/shared-dice/app/modules/participant/application"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
)

// ------------------------
// Fake Directory
// ------------------------

type FakeDirectory struct {
	SelfIDValue  participantdomain.ID
	Participants []participantdomain.Participant
}

func (f *FakeDirectory) SelfID() participantdomain.ID {
	return f.SelfIDValue
}

func (f *FakeDirectory) Self(ctx context.Context) (participantdomain.Participant, error) {
	return f.Get(ctx, f.SelfIDValue)
}

func (f *FakeDirectory) Get(ctx context.Context, id participantdomain.ID) (participantdomain.Participant, error) {
	for _, p := range f.Participants {
		if p.ID == id {
			return p, nil
		}
	}
	return participantdomain.Participant{}, fmt.Errorf("%w: %s", participantservice.ErrUnknownParticipant, id)
}

func (f *FakeDirectory) List(ctx context.Context) ([]participantdomain.Participant, error) {
	return append([]participantdomain.Participant(nil), f.Participants...), nil
}

func (f *FakeDirectory) Connected(ctx context.Context) ([]participantdomain.Participant, error) {
	out := []participantdomain.Participant{}
	for _, p := range f.Participants {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *FakeDirectory) CanWrite(ctx context.Context, actor, target participantdomain.ID) (bool, error) {
	if actor == target {
		return true, nil
	}
	a, err := f.Get(ctx, actor)
	if err != nil {
		return false, err
	}
	t, err := f.Get(ctx, target)
	if err != nil {
		return false, err
	}
	return participantdomain.HasAuthority(a, t), nil
}

var _ Directory = (*FakeDirectory)(nil)

// ------------------------
// Fake Registry
// ------------------------

type FakeRegistry struct {
	Types []dicetypedomain.DieType
}

func (f *FakeRegistry) Get(ctx context.Context, id string) (dicetypedomain.DieType, error) {
	for _, d := range f.Types {
		if d.ID == id {
			return d, nil
		}
	}
	return dicetypedomain.DieType{}, fmt.Errorf("%w: %s", dicetypeservice.ErrUnknownDieType, id)
}

func (f *FakeRegistry) GetAll(ctx context.Context) ([]dicetypedomain.DieType, error) {
	return append([]dicetypedomain.DieType(nil), f.Types...), nil
}

func (f *FakeRegistry) FindByName(ctx context.Context, name string) ([]dicetypedomain.DieType, error) {
	out := []dicetypedomain.DieType{}
	for _, d := range f.Types {
		if d.Name == name {
			out = append(out, d)
		}
	}
	return out, nil
}

var _ Registry = (*FakeRegistry)(nil)

// ------------------------
// Fake Ledger
// ------------------------

// FakeLedger is an in-memory ledger. Writes go to trace, reads to reads.
type FakeLedger struct {
	mu      sync.Mutex
	trace   []string
	reads   []string
	entries map[participantdomain.ID]map[string]int

	SetFunc    func(participantID participantdomain.ID, dieTypeID string, quantity int) error
	GetAllFunc func(participantID participantdomain.ID) (map[string]int, error)
}

func NewFakeLedger() *FakeLedger {
	return &FakeLedger{trace: []string{}, entries: map[participantdomain.ID]map[string]int{}}
}

func (f *FakeLedger) record(step string) {
	f.trace = append(f.trace, step)
}

// Put seeds an entry without recording it.
func (f *FakeLedger) Put(participantID participantdomain.ID, dieTypeID string, quantity int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.entries[participantID] == nil {
		f.entries[participantID] = map[string]int{}
	}
	f.entries[participantID][dieTypeID] = quantity
}

func (f *FakeLedger) Get(ctx context.Context, participantID participantdomain.ID, dieTypeID string) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = append(f.reads, fmt.Sprintf("Get:%s:%s", participantID, dieTypeID))
	qty, ok := f.entries[participantID][dieTypeID]
	return qty, ok, nil
}

func (f *FakeLedger) GetAll(ctx context.Context, participantID participantdomain.ID) (map[string]int, error) {
	f.mu.Lock()
	f.reads = append(f.reads, fmt.Sprintf("GetAll:%s", participantID))
	f.mu.Unlock()
	if f.GetAllFunc != nil {
		return f.GetAllFunc(participantID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int{}
	for k, v := range f.entries[participantID] {
		out[k] = v
	}
	return out, nil
}

func (f *FakeLedger) Snapshot(ctx context.Context) (map[participantdomain.ID]map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads = append(f.reads, "Snapshot")
	out := map[participantdomain.ID]map[string]int{}
	for pid, held := range f.entries {
		out[pid] = map[string]int{}
		for k, v := range held {
			out[pid][k] = v
		}
	}
	return out, nil
}

func (f *FakeLedger) Set(ctx context.Context, participantID participantdomain.ID, dieTypeID string, quantity int) error {
	f.mu.Lock()
	f.record(fmt.Sprintf("Set:%s:%s:%d", participantID, dieTypeID, quantity))
	f.mu.Unlock()
	if f.SetFunc != nil {
		if err := f.SetFunc(participantID, dieTypeID, quantity); err != nil {
			return err
		}
	}
	f.Put(participantID, dieTypeID, quantity)
	return nil
}

func (f *FakeLedger) Delete(ctx context.Context, participantID participantdomain.ID, dieTypeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("Delete:%s:%s", participantID, dieTypeID))
	delete(f.entries[participantID], dieTypeID)
	return nil
}

// Quantity returns a stored quantity, 0 when absent, without recording it.
func (f *FakeLedger) Quantity(participantID participantdomain.ID, dieTypeID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[participantID][dieTypeID]
}

func (f *FakeLedger) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Reads returns the recorded Get and GetAll calls.
func (f *FakeLedger) Reads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.reads))
	copy(out, f.reads)
	return out
}

var _ Ledger = (*FakeLedger)(nil)

// ------------------------
// Fake Transport
// ------------------------

type FakeTransport struct {
	trace []string

	RequestFunc func(ctx context.Context, owner participantdomain.ID, req delegationdomain.Request, timeout time.Duration) (*delegationdomain.Response, error)
}

func (f *FakeTransport) Request(ctx context.Context, owner participantdomain.ID, req delegationdomain.Request, timeout time.Duration) (*delegationdomain.Response, error) {
	f.trace = append(f.trace, "Request:"+string(owner))
	if f.RequestFunc != nil {
		return f.RequestFunc(ctx, owner, req, timeout)
	}
	return &delegationdomain.Response{Result: delegationdomain.Success()}, nil
}

func (f *FakeTransport) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// ------------------------
// Fake Notifier
// ------------------------

type FakeNotifier struct {
	mu      sync.Mutex
	Notices []notificationdomain.Notice
}

func (f *FakeNotifier) Notify(ctx context.Context, notice notificationdomain.Notice, opts ...notificationservice.NotifyOption) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Notices = append(f.Notices, notice)
}

func (f *FakeNotifier) Unexpected(ctx context.Context, msg string, err error, fields ...slog.Attr) {
	f.Notify(ctx, notificationdomain.Err(notificationdomain.KeyUnexpectedError, nil))
}

func (f *FakeNotifier) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []string{}
	for _, n := range f.Notices {
		out = append(out, n.Key)
	}
	return out
}

var _ notificationservice.Notifier = (*FakeNotifier)(nil)

// ------------------------
// Fake Chat
// ------------------------

type FakeChat struct {
	mu       sync.Mutex
	Requests []chatservice.Request
	Err      error
}

func (f *FakeChat) Send(ctx context.Context, req chatservice.Request) (chatservice.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Requests = append(f.Requests, req)
	return chatservice.Outcome{}, f.Err
}

var _ chatservice.Sender = (*FakeChat)(nil)

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
