package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/shared-dice/app/eventbus"
	"github.com/Black-And-White-Club/shared-dice/app/modules/auth"
	"github.com/Black-And-White-Club/shared-dice/app/modules/chat"
	"github.com/Black-And-White-Club/shared-dice/app/modules/delegation"
	"github.com/Black-And-White-Club/shared-dice/app/modules/dice"
	dicequeue "github.com/Black-And-White-Club/shared-dice/app/modules/dice/infrastructure/queue"
	"github.com/Black-And-White-Club/shared-dice/app/modules/dicetype"
	"github.com/Black-And-White-Club/shared-dice/app/modules/ledger"
	"github.com/Black-And-White-Club/shared-dice/app/modules/notification"
	"github.com/Black-And-White-Club/shared-dice/app/modules/participant"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/Black-And-White-Club/shared-dice/app/observability"
	"github.com/Black-And-White-Club/shared-dice/config"
	"github.com/Black-And-White-Club/shared-dice/internal/db/bundb"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// Modules holds every module of a node.
type Modules struct {
	Participant  *participant.Module
	Notification *notification.Module
	Delegation   *delegation.Module
	DieType      *dicetype.Module
	Ledger       *ledger.Module
	Chat         *chat.Module
	Dice         *dice.Module
	Auth         *auth.Module
}

// App is one shareddice node: the local participant's modules, the event
// router and the HTTP API.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Router        *message.Router
	Modules       Modules
	HTTPServer    *http.Server
}

// NewApp connects to PostgreSQL and NATS and builds every module.
func NewApp(ctx context.Context, cfg *config.Config, obs observability.Observability) (*App, error) {
	logger := obs.Logger

	role, err := participantdomain.ParseRole(cfg.Participant.Role)
	if err != nil {
		return nil, fmt.Errorf("invalid participant role: %w", err)
	}
	minRoleToEdit := participantdomain.Role(cfg.Dice.MinRoleToEdit)
	if !minRoleToEdit.IsValid() {
		return nil, fmt.Errorf("invalid min_role_to_edit: %d", cfg.Dice.MinRoleToEdit)
	}
	self := participantdomain.ID(cfg.Participant.ID)

	db, err := bundb.Open(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		return nil, err
	}

	bus, err := eventbus.NewEventBus(cfg.NATS.URL, "shareddice-"+cfg.Participant.ID, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 5 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		bus.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	app := &App{
		Config:        cfg,
		Observability: obs,
		DB:            db,
		EventBus:      bus,
		Router:        router,
	}

	if err := app.initializeModules(ctx, self, role, minRoleToEdit); err != nil {
		app.closeInfrastructure()
		return nil, err
	}

	app.HTTPServer = &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           app.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return app, nil
}

func (app *App) initializeModules(ctx context.Context, self participantdomain.ID, role, minRoleToEdit participantdomain.Role) error {
	cfg := app.Config
	obs := app.Observability

	participantModule, err := participant.NewParticipantModule(ctx, obs, app.EventBus, app.DB, participant.Config{
		Self: participantdomain.Participant{
			ID:   self,
			Name: cfg.Participant.Name,
			Role: role,
		},
		HeartbeatInterval: cfg.Participant.HeartbeatInterval,
		PresenceTTL:       cfg.Participant.PresenceTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize participant module: %w", err)
	}
	app.Modules.Participant = participantModule
	directory := participantModule.ParticipantService

	notificationModule, err := notification.NewNotificationModule(ctx, obs, app.EventBus, self, cfg.Participant.Locale)
	if err != nil {
		return fmt.Errorf("failed to initialize notification module: %w", err)
	}
	app.Modules.Notification = notificationModule
	notifier := notificationModule.NotificationService

	delegationModule, err := delegation.NewDelegationModule(ctx, obs, app.EventBus.Conn(), directory, notifier)
	if err != nil {
		return fmt.Errorf("failed to initialize delegation module: %w", err)
	}
	app.Modules.Delegation = delegationModule

	routerCtx := ctx
	dieTypeModule, err := dicetype.NewDieTypeModule(ctx, obs, app.EventBus, app.EventBus, app.Router, routerCtx, app.DB, directory, minRoleToEdit)
	if err != nil {
		return fmt.Errorf("failed to initialize dicetype module: %w", err)
	}
	app.Modules.DieType = dieTypeModule

	ledgerModule, err := ledger.NewLedgerModule(ctx, obs, app.EventBus, app.EventBus, app.Router, routerCtx, app.DB, directory)
	if err != nil {
		return fmt.Errorf("failed to initialize ledger module: %w", err)
	}
	app.Modules.Ledger = ledgerModule

	chatModule, err := chat.NewChatModule(ctx, obs, app.EventBus, app.DB, self, cfg.Dice.MessageDelay)
	if err != nil {
		return fmt.Errorf("failed to initialize chat module: %w", err)
	}
	app.Modules.Chat = chatModule

	diceModule, err := dice.NewDiceModule(ctx, obs, dice.Dependencies{
		Participants: directory,
		DieTypes:     dieTypeModule.DieTypeService,
		Ledger:       ledgerModule.LedgerService,
		Channel:      delegationModule.Channel,
		Notifier:     notifier,
		Chat:         chatModule.Aggregator,
		ChatHistory:  chatModule.Sink,
	}, dice.Config{
		DelegationTimeout: cfg.Dice.DelegationTimeout,
		OverflowThreshold: cfg.Dice.OverflowThreshold,
		DatabaseURL:       cfg.Postgres.DSN,
		Reconcile: dicequeue.Config{
			Work:     cfg.Reconcile.Enabled && role >= participantdomain.RoleAssistant,
			Interval: cfg.Reconcile.Interval,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize dice module: %w", err)
	}
	app.Modules.Dice = diceModule

	authModule, err := auth.NewModule(ctx, obs, auth.Config{
		Secret:         cfg.JWT.Secret,
		Issuer:         cfg.JWT.Issuer,
		DefaultTTL:     cfg.JWT.DefaultTTL,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RateLimit:      cfg.HTTP.RateLimit,
		RateBurst:      cfg.HTTP.RateBurst,
	}, directory)
	if err != nil {
		return fmt.Errorf("failed to initialize auth module: %w", err)
	}
	app.Modules.Auth = authModule

	return nil
}

func (app *App) closeInfrastructure() {
	if app.Router != nil {
		_ = app.Router.Close()
	}
	if app.EventBus != nil {
		_ = app.EventBus.Close()
	}
	if app.DB != nil {
		_ = app.DB.Close()
	}
}
