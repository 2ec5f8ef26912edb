package dicetypeservice

import (
	"context"

	dicetypeevents "github.com/Black-And-White-Club/shared-dice/app/events/dicetype"
	dicetypedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/domain"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
)

// ChangeListener is notified after any registry write on any node.
type ChangeListener func(ctx context.Context, change dicetypeevents.DieTypeChangedPayloadV1)

// Service is the world-scoped die type registry.
type Service interface {
	// GetAll returns every die type, highest sort priority first.
	GetAll(ctx context.Context) ([]dicetypedomain.DieType, error)

	// Enabled returns the enabled die types, highest sort priority first.
	Enabled(ctx context.Context) ([]dicetypedomain.DieType, error)

	// Get returns a die type or ErrUnknownDieType.
	Get(ctx context.Context, id string) (dicetypedomain.DieType, error)

	Exists(ctx context.Context, id string) (bool, error)

	// FindByName returns every die type whose name equals name, enabled or not.
	FindByName(ctx context.Context, name string) ([]dicetypedomain.DieType, error)

	Create(ctx context.Context, d dicetypedomain.DieType) (dicetypedomain.DieType, error)
	Update(ctx context.Context, id string, changes dicetypedomain.Changes) (dicetypedomain.DieType, error)
	Delete(ctx context.Context, id string) error
	SetAll(ctx context.Context, types []dicetypedomain.DieType) error

	// OnChange registers a listener and returns a function removing it.
	OnChange(fn ChangeListener) (unsubscribe func())

	// ApplyRemoteChange drops the cache and notifies listeners of a write
	// made by another node.
	ApplyRemoteChange(ctx context.Context, change dicetypeevents.DieTypeChangedPayloadV1)
}

// SelfResolver returns the local participant.
type SelfResolver interface {
	SelfID() participantdomain.ID
	Self(ctx context.Context) (participantdomain.Participant, error)
}
