// Package observability builds the logger, tracer and metrics registry shared
// by every module of a node.
package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config selects log level and whether metrics are collected.
type Config struct {
	ServiceName    string
	Environment    string
	LogLevel       string
	MetricsEnabled bool
}

// Observability is handed to every module constructor.
type Observability struct {
	Logger *slog.Logger
	Tracer trace.Tracer
	// Registry is nil when metrics are disabled; metric constructors then
	// fall back to noop implementations.
	Registry *prometheus.Registry
}

// New builds a JSON logger writing to stdout, a tracer from the global
// provider and, when enabled, a Prometheus registry with the Go and process
// collectors.
func New(cfg Config) Observability {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter is New with an explicit log destination.
func NewWithWriter(cfg Config, w io.Writer) Observability {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(cfg.LogLevel),
	})).With(
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
	)

	obs := Observability{
		Logger: logger,
		Tracer: otel.Tracer(cfg.ServiceName),
	}

	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		obs.Registry = reg
	}

	return obs
}

// NewNoop returns an Observability that discards logs and records nothing.
func NewNoop() Observability {
	return Observability{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tracer: noop.NewTracerProvider().Tracer("noop"),
	}
}

// Registerer returns the registry as a prometheus.Registerer, or nil when
// metrics are disabled. A typed nil would defeat the nil checks downstream.
func (o Observability) Registerer() prometheus.Registerer {
	if o.Registry == nil {
		return nil
	}
	return o.Registry
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
