package dicetypedb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for die type persistence.
type Repository interface {
	List(ctx context.Context, db bun.IDB) ([]DieType, error)
	GetByID(ctx context.Context, db bun.IDB, id string) (*DieType, error)
	Insert(ctx context.Context, db bun.IDB, d *DieType) error
	Update(ctx context.Context, db bun.IDB, d *DieType) error
	Delete(ctx context.Context, db bun.IDB, id string) error
	// ReplaceAll deletes every die type and inserts types. Callers run it in
	// a transaction.
	ReplaceAll(ctx context.Context, db bun.IDB, types []DieType) error
}
