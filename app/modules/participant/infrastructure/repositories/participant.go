package participantdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a participant is not found.
var ErrNotFound = errors.New("participant not found")

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new participant repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// GetByID retrieves a participant by id.
func (r *Impl) GetByID(ctx context.Context, db bun.IDB, id string) (*Participant, error) {
	db = r.resolveDB(db)
	p := new(Participant)
	err := db.NewSelect().
		Model(p).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

// List returns every participant ordered by join time.
func (r *Impl) List(ctx context.Context, db bun.IDB) ([]Participant, error) {
	db = r.resolveDB(db)
	var out []Participant
	err := db.NewSelect().
		Model(&out).
		Order("joined_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return out, nil
}

// Upsert creates or updates a participant.
func (r *Impl) Upsert(ctx context.Context, db bun.IDB, p *Participant) error {
	db = r.resolveDB(db)
	p.UpdatedAt = time.Now()
	_, err := db.NewInsert().
		Model(p).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("role = EXCLUDED.role").
		Set("active = EXCLUDED.active").
		Set("last_seen_at = EXCLUDED.last_seen_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert participant: %w", err)
	}
	return nil
}

// SetActive updates the presence flag of a participant.
func (r *Impl) SetActive(ctx context.Context, db bun.IDB, id string, active bool, at time.Time) error {
	db = r.resolveDB(db)
	result, err := db.NewUpdate().
		Model((*Participant)(nil)).
		Set("active = ?", active).
		Set("last_seen_at = ?", at).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set participant presence: %w", err)
	}
	return checkAffected(result)
}

// Touch refreshes last_seen_at of a participant.
func (r *Impl) Touch(ctx context.Context, db bun.IDB, id string, at time.Time) error {
	db = r.resolveDB(db)
	result, err := db.NewUpdate().
		Model((*Participant)(nil)).
		Set("last_seen_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to touch participant: %w", err)
	}
	return checkAffected(result)
}

func checkAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
