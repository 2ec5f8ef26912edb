package dicetypemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating die_types table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS die_types (
					id VARCHAR(64) PRIMARY KEY,
					enabled BOOLEAN NOT NULL DEFAULT TRUE,
					name TEXT NOT NULL DEFAULT 'd20',
					img TEXT NOT NULL DEFAULT 'icons/svg/d20-grey.svg',
					max_per_user INTEGER NOT NULL DEFAULT 0 CHECK (max_per_user >= 0),
					edit_permissions JSONB NOT NULL,
					allow_gift BOOLEAN NOT NULL DEFAULT TRUE,
					sort_priority INTEGER NOT NULL DEFAULT 0,
					messages JSONB NOT NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_die_types_name ON die_types(name);
			`); err != nil {
				return fmt.Errorf("failed to create die_types table: %w", err)
			}
			fmt.Println("die_types table created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping die_types table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS die_types;`); err != nil {
				return fmt.Errorf("failed to drop die_types table: %w", err)
			}
			return nil
		})
	})
}
