package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"
)

type runner interface {
	Run(ctx context.Context, wg *sync.WaitGroup)
}

// Start runs the event router, every module and the HTTP server until ctx is
// cancelled or one of them fails.
func (app *App) Start(ctx context.Context) error {
	logger := app.Observability.Logger

	// Functions must be registered before the delegation server subscribes;
	// the dice module registers them in its constructor.
	runners := []runner{
		app.Modules.Participant,
		app.Modules.Delegation,
		app.Modules.DieType,
		app.Modules.Ledger,
		app.Modules.Chat,
		app.Modules.Dice,
		app.Modules.Auth,
	}

	g, ctx := errgroup.WithContext(ctx)

	var wg sync.WaitGroup
	for _, m := range runners {
		wg.Add(1)
		go m.Run(ctx, &wg)
	}

	g.Go(func() error {
		if err := app.Router.Run(ctx); err != nil {
			return fmt.Errorf("event router stopped: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.InfoContext(ctx, "HTTP server listening", "address", app.HTTPServer.Addr)
		if err := app.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return app.Shutdown(context.WithoutCancel(ctx))
	})

	err := g.Wait()
	wg.Wait()
	return err
}
