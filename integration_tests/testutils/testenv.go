//go:build integration

package testutils

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Black-And-White-Club/shared-dice/integration_tests/containers"
	"github.com/Black-And-White-Club/shared-dice/internal/db/bundb"
	"github.com/nats-io/nats.go"
	natsmodule "github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
)

// TestEnvironment holds all resources needed for integration testing
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer *natsmodule.NATSContainer
	DB            *bun.DB
	DSN           string
	NatsURL       string
	NatsConn      *nats.Conn
}

// NewTestEnvironment starts Postgres and NATS, runs every migration and
// connects to both.
func NewTestEnvironment() (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(context.Background())
	env := &TestEnvironment{Ctx: ctx, CancelContext: cancel}

	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer = pgContainer
	env.DSN = dsn

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to setup nats container: %w", err)
	}
	env.NatsContainer = natsContainer
	env.NatsURL = natsURL

	db, err := bundb.Open(ctx, dsn, nil)
	if err != nil {
		env.Cleanup()
		return nil, err
	}
	env.DB = db

	if err := RunMigrations(ctx, db, dsn); err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	natsConn, err := nats.Connect(natsURL, nats.Timeout(10*time.Second))
	if err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	env.NatsConn = natsConn

	return env, nil
}

// Reset empties every module table between tests.
func (env *TestEnvironment) Reset() error {
	return TruncateTables(env.Ctx, env.DB)
}

// Cleanup closes connections and terminates the containers.
func (env *TestEnvironment) Cleanup() {
	ctx := context.Background()
	if env.NatsConn != nil {
		env.NatsConn.Close()
	}
	if env.DB != nil {
		_ = env.DB.Close()
	}
	if env.NatsContainer != nil {
		if err := env.NatsContainer.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate NATS container: %v", err)
		}
	}
	if env.PgContainer != nil {
		if err := env.PgContainer.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate postgres container: %v", err)
		}
	}
	if env.CancelContext != nil {
		env.CancelContext()
	}
}
