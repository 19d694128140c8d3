package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"screening/pkg/platform/httputil"
	"screening/pkg/requestcontext"
)

const sweepInterval = time.Minute

type exceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// Middleware applies a per-IP window to every request it wraps.
type Middleware struct {
	window *Window
	logger *slog.Logger
}

// New returns nil when limit is not positive; a nil Middleware passes
// requests through.
func New(limit int, window time.Duration, logger *slog.Logger) *Middleware {
	if limit <= 0 || window <= 0 {
		return nil
	}
	return &Middleware{window: NewWindow(limit, window), logger: logger}
}

// Handler enforces the limit keyed by the client IP from request metadata.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := requestcontext.ClientIP(ctx)

		result := m.window.Allow(ip)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			if m.logger != nil {
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
			}
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
			httputil.WriteJSON(w, http.StatusTooManyRequests, exceededResponse{
				Error:      "rate_limit_exceeded",
				Message:    "Too many requests from this IP address. Please try again later.",
				RetryAfter: result.RetryAfter,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RunSweeper prunes idle keys until ctx is done.
func (m *Middleware) RunSweeper(ctx context.Context) {
	if m == nil {
		return
	}
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.window.Sweep()
		}
	}
}
