package chatdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for chat message persistence.
type Repository interface {
	Insert(ctx context.Context, db bun.IDB, m *Message) error
	ListRecent(ctx context.Context, db bun.IDB, limit int) ([]Message, error)
}
