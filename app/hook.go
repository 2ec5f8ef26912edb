package app

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const shutdownTimeout = 15 * time.Second

type closer interface {
	Close() error
}

// Shutdown stops the HTTP server and closes the modules in reverse start
// order, then the router, the event bus and the database.
func (app *App) Shutdown(ctx context.Context) error {
	logger := app.Observability.Logger
	logger.InfoContext(ctx, "Shutting down application")

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error
	if app.HTTPServer != nil {
		if err := app.HTTPServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}

	// Participant last: the node is marked inactive once nothing else runs.
	closers := []closer{
		app.Modules.Auth,
		app.Modules.Dice,
		app.Modules.Chat,
		app.Modules.Ledger,
		app.Modules.DieType,
		app.Modules.Delegation,
		app.Modules.Participant,
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := app.Router.Close(); err != nil {
		errs = append(errs, fmt.Errorf("event router: %w", err))
	}
	if err := app.EventBus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("event bus: %w", err))
	}
	if err := app.DB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		logger.ErrorContext(ctx, "Shutdown completed with errors", "error", err)
		return err
	}
	logger.InfoContext(ctx, "Application shut down gracefully")
	return nil
}
