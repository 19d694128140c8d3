// Package logstore writes audit events to a structured logger. It is the sink
// used when no broker is configured: nothing is retained in process memory.
package logstore

import (
	"context"
	"log/slog"
	"time"

	audit "screening/pkg/platform/audit"
)

const logMessage = "audit event"

// Store implements audit.Store by emitting one log record per event.
type Store struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{logger: logger}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	attrs := []slog.Attr{
		slog.String("audit_id", event.ID),
		slog.String("category", string(event.Category)),
		slog.String("action", event.Action),
		slog.String("timestamp", event.Timestamp.UTC().Format(time.RFC3339Nano)),
	}
	for _, kv := range []struct{ key, value string }{
		{"outcome", event.Outcome},
		{"device_class", event.DeviceClass},
		{"subject", event.Subject},
		{"request_id", event.RequestID},
	} {
		if kv.value != "" {
			attrs = append(attrs, slog.String(kv.key, kv.value))
		}
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, logMessage, attrs...)
	return nil
}
