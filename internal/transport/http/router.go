// Package httptransport assembles the HTTP surface: shared middleware, health
// and metrics endpoints, and the module handlers.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	callqueuehandler "screening/internal/callqueue/handler"
	eligibilityhandler "screening/internal/eligibility/handler"
	"screening/internal/platform/metrics"
	"screening/internal/platform/middleware"
	videohandler "screening/internal/videocall/handler"
	"screening/pkg/platform/audit"
	"screening/pkg/platform/httputil"
	"screening/pkg/platform/middleware/admin"
	"screening/pkg/platform/middleware/metadata"
	"screening/pkg/platform/middleware/ratelimit"
	"screening/pkg/platform/middleware/requesttime"
)

const healthTimeout = 2 * time.Second

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Deps are the handlers and settings the router mounts.
type Deps struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	Eligibility *eligibilityhandler.Handler
	Video       *videohandler.Handler
	CallQueue   *callqueuehandler.Handler

	AdminTokenHash string
	AuditEmitter   audit.Emitter
	AllowedOrigins []string
	HealthChecks   map[string]HealthCheck

	// RateLimit guards the public group. Nil disables limiting.
	RateLimit *ratelimit.Middleware
	// ClientIP resolves client addresses behind trusted proxies. Nil trusts
	// no forwarding headers.
	ClientIP *metadata.Resolver
}

// NewRouter wires every endpoint. Nil handlers are skipped.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(d.Logger, d.Metrics))
	if d.ClientIP != nil {
		r.Use(d.ClientIP.Middleware)
	} else {
		r.Use(metadata.ClientMetadata)
	}
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Latency(d.Metrics))
	if len(d.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: d.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader, admin.HeaderName},
			ExposedHeaders: []string{middleware.RequestIDHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", healthHandler(d.HealthChecks))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(d.RateLimit.Handler)
		r.Use(middleware.ContentTypeJSON)
		if d.Eligibility != nil {
			d.Eligibility.Register(r)
		}
		if d.Video != nil {
			d.Video.Register(r)
		}
		if d.CallQueue != nil {
			d.CallQueue.Register(r)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(admin.RequireAdminToken(d.AdminTokenHash, d.Logger, d.AuditEmitter))
		if d.Eligibility != nil {
			d.Eligibility.RegisterAdmin(r)
		}
		if d.CallQueue != nil {
			d.CallQueue.RegisterAgent(r)
		}
	})

	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = "down"
				continue
			}
			results[name] = "up"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		httputil.WriteJSON(w, status, map[string]any{
			"status": overall,
			"checks": results,
		})
	}
}
