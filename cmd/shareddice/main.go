package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Black-And-White-Club/shared-dice/app"
	authdomain "github.com/Black-And-White-Club/shared-dice/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/shared-dice/app/modules/auth/infrastructure/jwt"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	participantdb "github.com/Black-And-White-Club/shared-dice/app/modules/participant/infrastructure/repositories"
	"github.com/Black-And-White-Club/shared-dice/app/observability"
	"github.com/Black-And-White-Club/shared-dice/config"
	"github.com/Black-And-White-Club/shared-dice/internal/db/bundb"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "shareddice",
		Usage: "shared dice pool node",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"SHAREDDICE_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			tokenCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run a node for the configured participant",
		Action: func(c *cli.Context) error {
			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			obs := observability.New(config.ToObsConfig(cfg))
			logger := obs.Logger
			logger.InfoContext(ctx, "Starting shareddice node", "participant_id", cfg.Participant.ID)

			application, err := app.NewApp(ctx, cfg, obs)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			if err := application.Start(ctx); err != nil {
				return err
			}

			logger.Info("shareddice node stopped")
			return nil
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:      "token",
		Usage:     "mint an API token for a participant",
		ArgsUsage: "[participant-id]",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "ttl",
				Usage: "token lifetime, defaults to jwt.default_ttl",
			},
			&cli.BoolFlag{
				Name:  "skip-check",
				Usage: "do not require the participant to exist in the database",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.JWT.Secret == "" {
				return fmt.Errorf("jwt.secret is not configured")
			}

			id := c.Args().First()
			if id == "" {
				id = cfg.Participant.ID
			}
			if id == "" {
				return fmt.Errorf("participant id is required")
			}

			if !c.Bool("skip-check") {
				if err := checkParticipant(c.Context, cfg.Postgres.DSN, id); err != nil {
					return err
				}
			}

			ttl := c.Duration("ttl")
			if ttl <= 0 {
				ttl = cfg.JWT.DefaultTTL
			}

			provider := authjwt.NewProvider(cfg.JWT.Secret, cfg.JWT.Issuer)
			token, err := provider.GenerateToken(&authdomain.Claims{ParticipantID: participantdomain.ID(id)}, ttl)
			if err != nil {
				return fmt.Errorf("failed to generate token: %w", err)
			}

			fmt.Fprintln(c.App.Writer, token)
			return nil
		},
	}
}

func checkParticipant(ctx context.Context, dsn, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := bundb.Open(ctx, dsn, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := participantdb.NewRepository(db).GetByID(ctx, db, id); err != nil {
		return fmt.Errorf("participant %q: %w", id, err)
	}
	return nil
}
