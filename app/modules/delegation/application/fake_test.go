package delegationservice

import (
	"context"
	"log/slog"
	"sync"
	"time"

	delegationdomain "github.com/Black-And-White-Club/shared-dice/app/modules/delegation/domain"
	notificationservice "github.com/Black-And-White-Club/shared-dice/app/modules/notification/application"
	notificationdomain "github.com/Black-And-White-Club/shared-dice/app/modules/notification/domain"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
)

// ------------------------
// Fake Directory
// ------------------------

// FakeDirectory resolves authority from role tiers of its participants.
type FakeDirectory struct {
	trace []string

	Self         participantdomain.ID
	Participants []participantdomain.Participant
	ConnectedErr error
}

func (f *FakeDirectory) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeDirectory) SelfID() participantdomain.ID {
	return f.Self
}

func (f *FakeDirectory) Connected(ctx context.Context) ([]participantdomain.Participant, error) {
	f.record("Connected")
	if f.ConnectedErr != nil {
		return nil, f.ConnectedErr
	}
	out := []participantdomain.Participant{}
	for _, p := range f.Participants {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *FakeDirectory) CanWrite(ctx context.Context, actor, target participantdomain.ID) (bool, error) {
	f.record("CanWrite:" + string(actor))
	if actor == target {
		return true, nil
	}
	a := participantdomain.Participant{ID: actor}
	t := participantdomain.Participant{ID: target}
	for _, p := range f.Participants {
		if p.ID == actor {
			a = p
		}
		if p.ID == target {
			t = p
		}
	}
	return participantdomain.HasAuthority(a, t), nil
}

func (f *FakeDirectory) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

var _ Directory = (*FakeDirectory)(nil)

// ------------------------
// Fake Transport
// ------------------------

type FakeTransport struct {
	trace []string

	RequestFunc func(ctx context.Context, owner participantdomain.ID, req delegationdomain.Request, timeout time.Duration) (*delegationdomain.Response, error)

	LastOwner   participantdomain.ID
	LastTimeout time.Duration
}

func (f *FakeTransport) Request(ctx context.Context, owner participantdomain.ID, req delegationdomain.Request, timeout time.Duration) (*delegationdomain.Response, error) {
	f.trace = append(f.trace, "Request")
	f.LastOwner = owner
	f.LastTimeout = timeout
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

var _ Transport = (*FakeTransport)(nil)

// ------------------------
// Fake Notifier
// ------------------------

type FakeNotifier struct {
	mu          sync.Mutex
	Notices     []notificationdomain.Notice
	Unexpecteds []string
}

func (f *FakeNotifier) Notify(ctx context.Context, notice notificationdomain.Notice, opts ...notificationservice.NotifyOption) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Notices = append(f.Notices, notice)
}

func (f *FakeNotifier) Unexpected(ctx context.Context, msg string, err error, fields ...slog.Attr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Unexpecteds = append(f.Unexpecteds, msg)
	f.Notices = append(f.Notices, notificationdomain.Err(notificationdomain.KeyUnexpectedError, nil))
}

// Keys returns the keys of every delivered notice in order.
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
