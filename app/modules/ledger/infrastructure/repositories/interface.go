package ledgerdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for ledger persistence.
type Repository interface {
	Get(ctx context.Context, db bun.IDB, participantID, dieTypeID string) (*Entry, error)
	ListByParticipant(ctx context.Context, db bun.IDB, participantID string) ([]Entry, error)
	ListAll(ctx context.Context, db bun.IDB) ([]Entry, error)
	Upsert(ctx context.Context, db bun.IDB, e *Entry) error
	Delete(ctx context.Context, db bun.IDB, participantID, dieTypeID string) error
}
