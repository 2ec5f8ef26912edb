package ledgerdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a ledger entry is not found.
var ErrNotFound = errors.New("ledger entry not found")

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new ledger repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// Get retrieves one entry.
func (r *Impl) Get(ctx context.Context, db bun.IDB, participantID, dieTypeID string) (*Entry, error) {
	db = r.resolveDB(db)
	e := new(Entry)
	err := db.NewSelect().
		Model(e).
		Where("participant_id = ?", participantID).
		Where("die_type_id = ?", dieTypeID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return e, nil
}

// ListByParticipant returns every entry held by a participant.
func (r *Impl) ListByParticipant(ctx context.Context, db bun.IDB, participantID string) ([]Entry, error) {
	db = r.resolveDB(db)
	var out []Entry
	err := db.NewSelect().
		Model(&out).
		Where("participant_id = ?", participantID).
		Order("die_type_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return out, nil
}

// ListAll returns the whole ledger.
func (r *Impl) ListAll(ctx context.Context, db bun.IDB) ([]Entry, error) {
	db = r.resolveDB(db)
	var out []Entry
	err := db.NewSelect().
		Model(&out).
		Order("participant_id ASC", "die_type_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger: %w", err)
	}
	return out, nil
}

// Upsert writes the quantity of an entry.
func (r *Impl) Upsert(ctx context.Context, db bun.IDB, e *Entry) error {
	db = r.resolveDB(db)
	e.UpdatedAt = time.Now()
	_, err := db.NewInsert().
		Model(e).
		On("CONFLICT (participant_id, die_type_id) DO UPDATE").
		Set("quantity = EXCLUDED.quantity").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert ledger entry: %w", err)
	}
	return nil
}

// Delete removes an entry.
func (r *Impl) Delete(ctx context.Context, db bun.IDB, participantID, dieTypeID string) error {
	db = r.resolveDB(db)
	result, err := db.NewDelete().
		Model((*Entry)(nil)).
		Where("participant_id = ?", participantID).
		Where("die_type_id = ?", dieTypeID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete ledger entry: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
