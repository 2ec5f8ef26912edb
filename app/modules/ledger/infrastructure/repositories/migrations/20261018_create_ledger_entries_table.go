package ledgermigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Entries carry no foreign key to die_types and no range check: a deleted
// die type or an out-of-range quantity is repaired by reconciliation.
func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating ledger_entries table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS ledger_entries (
					participant_id VARCHAR(64) NOT NULL,
					die_type_id VARCHAR(64) NOT NULL,
					quantity INTEGER NOT NULL DEFAULT 0,
					updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					PRIMARY KEY (participant_id, die_type_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create ledger_entries table: %w", err)
			}
			fmt.Println("ledger_entries table created successfully!")
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping ledger_entries table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS ledger_entries;`); err != nil {
				return fmt.Errorf("failed to drop ledger_entries table: %w", err)
			}
			return nil
		})
	})
}
