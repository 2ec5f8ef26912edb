package chatdb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new chat message repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// Insert stores a new message.
func (r *Impl) Insert(ctx context.Context, db bun.IDB, m *Message) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

// ListRecent returns up to limit messages, newest first.
func (r *Impl) ListRecent(ctx context.Context, db bun.IDB, limit int) ([]Message, error) {
	db = r.resolveDB(db)
	var out []Message
	err := db.NewSelect().
		Model(&out).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	return out, nil
}
