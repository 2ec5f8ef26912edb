package ledgerservice

import (
	"context"

	ledgerevents "github.com/Black-And-White-Club/shared-dice/app/events/ledger"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
)

// ChangeListener is notified after a ledger entry changed on any node.
type ChangeListener func(ctx context.Context, change ledgerevents.LedgerChangedPayloadV1)

// Service is the per-participant quantity store.
type Service interface {
	// Get returns the stored quantity and whether an entry exists.
	Get(ctx context.Context, participantID participantdomain.ID, dieTypeID string) (quantity int, found bool, err error)

	// GetAll returns every entry of a participant keyed by die type id.
	GetAll(ctx context.Context, participantID participantdomain.ID) (map[string]int, error)

	// Snapshot returns the whole ledger keyed by participant.
	Snapshot(ctx context.Context) (map[participantdomain.ID]map[string]int, error)

	// Set writes a quantity. The local participant needs write authority
	// over participantID.
	Set(ctx context.Context, participantID participantdomain.ID, dieTypeID string, quantity int) error

	// Delete removes an entry under the same authority rule as Set.
	Delete(ctx context.Context, participantID participantdomain.ID, dieTypeID string) error

	// OnChange registers a listener for one participant, or for all of them
	// when participantID is empty.
	OnChange(participantID participantdomain.ID, fn ChangeListener) (unsubscribe func())

	// ApplyRemoteChange notifies listeners of a write made by another node.
	ApplyRemoteChange(ctx context.Context, change ledgerevents.LedgerChangedPayloadV1)
}

// Authorizer answers write-authority questions for the local participant.
type Authorizer interface {
	SelfID() participantdomain.ID
	CanWrite(ctx context.Context, actor, target participantdomain.ID) (bool, error)
}
