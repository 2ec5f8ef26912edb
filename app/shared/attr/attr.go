package attr

import (
	"context"
	"log/slog"
	"time"
)

type ctxKey string

const correlationIDKey ctxKey = "correlation_id"

// WithCorrelationID stores a correlation id on the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext returns the correlation id stored on ctx, if any.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// ExtractCorrelationID returns the correlation id of ctx as a log attribute.
func ExtractCorrelationID(ctx context.Context) slog.Attr {
	return slog.String("correlation_id", CorrelationIDFromContext(ctx))
}

func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

func Int(key string, value int) slog.Attr {
	return slog.Int(key, value)
}

func Int64(key string, value int64) slog.Attr {
	return slog.Int64(key, value)
}

func Bool(key string, value bool) slog.Attr {
	return slog.Bool(key, value)
}

func Duration(key string, value time.Duration) slog.Attr {
	return slog.Duration(key, value)
}

func Any(key string, value any) slog.Attr {
	return slog.Any(key, value)
}

// Error renders err under the "error" key. A nil error renders as an empty string.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// ParticipantID tags a log line with a participant id.
func ParticipantID(id string) slog.Attr {
	return slog.String("participant_id", id)
}

// DieTypeID tags a log line with a die type id.
func DieTypeID(id string) slog.Attr {
	return slog.String("die_type_id", id)
}
