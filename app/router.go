package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPHandler builds the node's HTTP surface: metrics, health and the
// authenticated action API under /api/dice.
func (app *App) HTTPHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	if app.Observability.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(app.Observability.Registry, promhttp.HandlerOpts{}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := app.DB.PingContext(req.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		if !app.EventBus.Conn().IsConnected() {
			http.Error(w, "nats unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/dice", func(r chi.Router) {
		app.Modules.Auth.Protect(r)
		app.Modules.Dice.Routes(r)
	})

	return r
}
