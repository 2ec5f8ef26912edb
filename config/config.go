package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Black-And-White-Club/shared-dice/app/observability"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	JWT           JWTConfig           `yaml:"jwt"`
	HTTP          HTTPConfig          `yaml:"http"`
	Participant   ParticipantConfig   `yaml:"participant"`
	Dice          DiceConfig          `yaml:"dice"`
	Reconcile     ReconcileConfig     `yaml:"reconcile"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	Issuer     string        `yaml:"issuer"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// HTTPConfig holds the action API listener settings.
type HTTPConfig struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RateLimit      float64  `yaml:"rate_limit"`
	RateBurst      int      `yaml:"rate_burst"`
}

// ParticipantConfig describes the local participant of this node.
type ParticipantConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	// Role is a tier name (player, trusted, assistant, gamemaster) or number.
	Role              string        `yaml:"role"`
	Locale            string        `yaml:"locale"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	PresenceTTL       time.Duration `yaml:"presence_ttl"`
}

// DiceConfig holds the action API settings.
type DiceConfig struct {
	DelegationTimeout time.Duration `yaml:"delegation_timeout"`
	MessageDelay      time.Duration `yaml:"message_delay"`
	OverflowThreshold int           `yaml:"overflow_threshold"`
	MinRoleToEdit     int           `yaml:"min_role_to_edit"`
}

// ReconcileConfig controls the scheduled ledger sweep.
type ReconcileConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("PARTICIPANT_ID"); v != "" {
		cfg.Participant.ID = v
	}
	if v := os.Getenv("PARTICIPANT_NAME"); v != "" {
		cfg.Participant.Name = v
	}
	if v := os.Getenv("PARTICIPANT_ROLE"); v != "" {
		cfg.Participant.Role = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		cfg.Observability.MetricsEnabled = v == "true"
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	// Load Postgres DSN
	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	// Load NATS URL
	cfg.NATS.URL = os.Getenv("NATS_URL")
	if cfg.NATS.URL == "" {
		return nil, fmt.Errorf("NATS_URL environment variable not set")
	}

	cfg.Participant.ID = os.Getenv("PARTICIPANT_ID")
	if cfg.Participant.ID == "" {
		return nil, fmt.Errorf("PARTICIPANT_ID environment variable not set")
	}
	cfg.Participant.Name = os.Getenv("PARTICIPANT_NAME")
	cfg.Participant.Role = os.Getenv("PARTICIPANT_ROLE")

	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.HTTP.Address = os.Getenv("HTTP_ADDRESS")

	cfg.Observability.LogLevel = os.Getenv("LOG_LEVEL")
	cfg.Observability.Environment = os.Getenv("ENV")
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid METRICS_ENABLED value: %v", err)
		}
		cfg.Observability.MetricsEnabled = enabled
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.JWT.DefaultTTL <= 0 {
		cfg.JWT.DefaultTTL = 24 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "shareddice"
	}
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if cfg.Participant.Name == "" {
		cfg.Participant.Name = cfg.Participant.ID
	}
	if cfg.Participant.Role == "" {
		cfg.Participant.Role = "player"
	}
	if cfg.Participant.Locale == "" {
		cfg.Participant.Locale = "en"
	}
	if cfg.Participant.HeartbeatInterval <= 0 {
		cfg.Participant.HeartbeatInterval = 15 * time.Second
	}
	if cfg.Participant.PresenceTTL <= 0 {
		cfg.Participant.PresenceTTL = 45 * time.Second
	}
	if cfg.Dice.DelegationTimeout <= 0 {
		cfg.Dice.DelegationTimeout = 30 * time.Second
	}
	if cfg.Dice.MessageDelay <= 0 {
		cfg.Dice.MessageDelay = time.Second
	}
	if cfg.Dice.OverflowThreshold <= 0 {
		cfg.Dice.OverflowThreshold = 4
	}
	if cfg.Dice.MinRoleToEdit <= 0 {
		cfg.Dice.MinRoleToEdit = 4
	}
	if cfg.Reconcile.Interval <= 0 {
		cfg.Reconcile.Interval = time.Hour
	}
	if cfg.Observability.LogLevel == "" {
		cfg.Observability.LogLevel = "info"
	}
}

func ToObsConfig(appCfg *Config) observability.Config {
	return observability.Config{
		ServiceName:    "shareddice",
		Environment:    appCfg.Observability.Environment,
		LogLevel:       appCfg.Observability.LogLevel,
		MetricsEnabled: appCfg.Observability.MetricsEnabled,
	}
}
