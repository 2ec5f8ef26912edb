package bundb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Open connects to PostgreSQL with pgdriver and wraps the pool in a bun.DB.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*bun.DB, error) {
	// Step 1: Create pgConn
	sqldb, err := pgConn(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Step 2: Initialize bunDB
	db := bun.NewDB(sqldb, pgdialect.New())

	if logger != nil {
		logger.InfoContext(ctx, "Database connection established")
	}
	return db, nil
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqldb, nil
}
