//go:build integration

package testutils

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	chatmigrations "github.com/Black-And-White-Club/shared-dice/app/modules/chat/infrastructure/repositories/migrations"
	dicetypemigrations "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/infrastructure/repositories/migrations"
	ledgermigrations "github.com/Black-And-White-Club/shared-dice/app/modules/ledger/infrastructure/repositories/migrations"
	participantmigrations "github.com/Black-And-White-Club/shared-dice/app/modules/participant/infrastructure/repositories/migrations"
)

var moduleTables = []string{"ledger_entries", "chat_messages", "die_types", "participants", "river_job"}

// RunMigrations runs River's migrations and then every module's.
func RunMigrations(ctx context.Context, db *bun.DB, dsn string) error {
	if err := runRiverMigrations(ctx, dsn); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}

	orderedModules := []struct {
		name       string
		migrations *migrate.Migrations
	}{
		{"participant", participantmigrations.Migrations},
		{"dicetype", dicetypemigrations.Migrations},
		{"ledger", ledgermigrations.Migrations},
		{"chat", chatmigrations.Migrations},
	}

	for _, mod := range orderedModules {
		migrator := migrate.NewMigrator(db, mod.migrations,
			migrate.WithTableName("bun_migrations_"+mod.name),
			migrate.WithLocksTableName("bun_migration_locks_"+mod.name),
		)
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to init %s migrations: %w", mod.name, err)
		}
		if _, err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", mod.name, err)
		}
	}
	return nil
}

func runRiverMigrations(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return fmt.Errorf("failed to migrate River: %w", err)
	}
	return nil
}

// TruncateTables removes every row from the module tables.
func TruncateTables(ctx context.Context, db bun.IDB) error {
	for _, table := range moduleTables {
		if _, err := db.NewTruncateTable().TableExpr(table).Cascade().Exec(ctx); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}
