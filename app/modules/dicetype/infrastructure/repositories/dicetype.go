package dicetypedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a die type is not found.
var ErrNotFound = errors.New("die type not found")

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new die type repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// List returns all die types, highest sort priority first.
func (r *Impl) List(ctx context.Context, db bun.IDB) ([]DieType, error) {
	db = r.resolveDB(db)
	var out []DieType
	err := db.NewSelect().
		Model(&out).
		Order("sort_priority DESC", "created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list die types: %w", err)
	}
	return out, nil
}

// GetByID retrieves a die type by id.
func (r *Impl) GetByID(ctx context.Context, db bun.IDB, id string) (*DieType, error) {
	db = r.resolveDB(db)
	d := new(DieType)
	err := db.NewSelect().
		Model(d).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get die type: %w", err)
	}
	return d, nil
}

// Insert creates a die type.
func (r *Impl) Insert(ctx context.Context, db bun.IDB, d *DieType) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(d).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert die type: %w", err)
	}
	return nil
}

// Update overwrites every mutable column of a die type.
func (r *Impl) Update(ctx context.Context, db bun.IDB, d *DieType) error {
	db = r.resolveDB(db)
	d.UpdatedAt = time.Now()
	result, err := db.NewUpdate().
		Model(d).
		Column("enabled", "name", "img", "max_per_user", "edit_permissions", "allow_gift", "sort_priority", "messages", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update die type: %w", err)
	}
	return checkAffected(result)
}

// Delete removes a die type.
func (r *Impl) Delete(ctx context.Context, db bun.IDB, id string) error {
	db = r.resolveDB(db)
	result, err := db.NewDelete().
		Model((*DieType)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete die type: %w", err)
	}
	return checkAffected(result)
}

// ReplaceAll swaps the whole registry for types.
func (r *Impl) ReplaceAll(ctx context.Context, db bun.IDB, types []DieType) error {
	db = r.resolveDB(db)
	if _, err := db.NewDelete().Model((*DieType)(nil)).Where("TRUE").Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear die types: %w", err)
	}
	if len(types) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&types).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert die types: %w", err)
	}
	return nil
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
