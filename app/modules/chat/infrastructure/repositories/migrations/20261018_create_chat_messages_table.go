package chatmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating chat_messages table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS chat_messages (
					id UUID PRIMARY KEY,
					author_id VARCHAR(64) NOT NULL,
					action VARCHAR(16) NOT NULL,
					die_type_id VARCHAR(64) NOT NULL,
					target_id VARCHAR(64),
					content TEXT NOT NULL,
					data JSONB,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_chat_messages_created_at ON chat_messages(created_at DESC);
			`); err != nil {
				return fmt.Errorf("failed to create chat_messages table: %w", err)
			}
			fmt.Println("chat_messages table created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping chat_messages table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS chat_messages;`); err != nil {
				return fmt.Errorf("failed to drop chat_messages table: %w", err)
			}
			return nil
		})
	})
}
