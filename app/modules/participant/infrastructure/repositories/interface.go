package participantdb

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Repository defines the contract for participant persistence.
type Repository interface {
	// GetByID retrieves a participant by id.
	GetByID(ctx context.Context, db bun.IDB, id string) (*Participant, error)

	// List returns every participant in join order.
	List(ctx context.Context, db bun.IDB) ([]Participant, error)

	// Upsert creates a participant or refreshes its name, role and presence.
	// JoinedAt of an existing row is preserved.
	Upsert(ctx context.Context, db bun.IDB, p *Participant) error

	// SetActive flips the active flag and stamps last_seen_at.
	SetActive(ctx context.Context, db bun.IDB, id string, active bool, at time.Time) error

	// Touch refreshes last_seen_at.
	Touch(ctx context.Context, db bun.IDB, id string, at time.Time) error
}
