package participantmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating participants table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS participants (
					id VARCHAR(64) PRIMARY KEY,
					name TEXT NOT NULL,
					role SMALLINT NOT NULL DEFAULT 1 CHECK (role BETWEEN 1 AND 4),
					active BOOLEAN NOT NULL DEFAULT FALSE,
					last_seen_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_participants_joined_at ON participants(joined_at);
			`); err != nil {
				return fmt.Errorf("failed to create participants table: %w", err)
			}
			fmt.Println("participants table created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping participants table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS participants;`); err != nil {
				return fmt.Errorf("failed to drop participants table: %w", err)
			}
			return nil
		})
	})
}
