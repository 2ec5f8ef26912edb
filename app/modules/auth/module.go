package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	authservice "github.com/Black-And-White-Club/shared-dice/app/modules/auth/application"
	authhandlers "github.com/Black-And-White-Club/shared-dice/app/modules/auth/infrastructure/handlers"
	authjwt "github.com/Black-And-White-Club/shared-dice/app/modules/auth/infrastructure/jwt"
	"github.com/Black-And-White-Club/shared-dice/app/observability"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

// Config holds token and HTTP guard settings.
type Config struct {
	Secret         string
	Issuer         string
	DefaultTTL     time.Duration
	AllowedOrigins []string
	RateLimit      float64
	RateBurst      int
}

// Module represents the auth module.
type Module struct {
	service    *authservice.AuthService
	limiter    *authhandlers.IPRateLimiter
	config     Config
	cancelFunc context.CancelFunc
	logger     *slog.Logger
}

// NewModule creates a new auth module.
func NewModule(
	ctx context.Context,
	obs observability.Observability,
	cfg Config,
	directory authservice.Directory,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "Initializing auth module")

	// 1. Create JWT provider
	jwtProvider := authjwt.NewProvider(cfg.Secret, cfg.Issuer)

	// 2. Create service
	service := authservice.NewService(jwtProvider, directory, authservice.Config{DefaultTTL: cfg.DefaultTTL}, logger, obs.Tracer)

	// 3. Create limiter
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 5
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 10
	}
	limiter := authhandlers.NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)

	return &Module{
		service: service,
		limiter: limiter,
		config:  cfg,
		logger:  logger,
	}, nil
}

// Protect installs CORS, rate limiting and bearer authentication on r.
func (m *Module) Protect(r chi.Router) {
	r.Use(authhandlers.CORSMiddleware(m.config.AllowedOrigins))
	r.Use(authhandlers.RateLimitMiddleware(m.limiter))
	r.Use(authhandlers.BearerMiddleware(m.service, m.logger))
}

// Run starts the auth module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting auth module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Auth module goroutine stopped")
}

// Close stops the auth module.
func (m *Module) Close() error {
	m.logger.Info("Stopping auth module")
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	m.logger.Info("Auth module stopped")
	return nil
}

// GetService returns the auth service for use by other modules.
func (m *Module) GetService() authservice.Service {
	return m.service
}
