package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	callqueuehandler "screening/internal/callqueue/handler"
	callqueuemetrics "screening/internal/callqueue/metrics"
	callqueueservice "screening/internal/callqueue/service"
	callqueuestore "screening/internal/callqueue/store"
	eligibilityhandler "screening/internal/eligibility/handler"
	eligibilitymetrics "screening/internal/eligibility/metrics"
	eligibilityservice "screening/internal/eligibility/service"
	"screening/internal/eligibility/store/tally"
	"screening/internal/platform/config"
	"screening/internal/platform/httpserver"
	"screening/internal/platform/logger"
	"screening/internal/platform/metrics"
	"screening/internal/platform/postgres"
	redisplatform "screening/internal/platform/redis"
	httptransport "screening/internal/transport/http"
	"screening/internal/videocall"
	videohandler "screening/internal/videocall/handler"
	"screening/pkg/platform/audit"
	"screening/pkg/platform/audit/publisher"
	kafkastore "screening/pkg/platform/audit/store/kafka"
	"screening/pkg/platform/audit/store/logstore"
	"screening/pkg/platform/middleware/metadata"
	"screening/pkg/platform/middleware/ratelimit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal service packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "screening: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := redisplatform.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	tallies, err := buildTallyStore(ctx, db, redisClient)
	if err != nil {
		return err
	}

	auditStore, closeAudit, err := buildAuditStore(ctx, cfg.Kafka, log)
	if err != nil {
		return err
	}
	defer closeAudit()

	auditPublisher := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(cfg.AuditBufferSize),
		publisher.WithLogger(log),
		publisher.WithMetrics(publisher.NewMetrics()),
	)
	defer auditPublisher.Close()

	eligibilitySvc := eligibilityservice.New(cfg.Eligibility,
		eligibilityservice.WithTallyStore(tallies),
		eligibilityservice.WithAuditPublisher(auditPublisher),
		eligibilityservice.WithLogger(log),
		eligibilityservice.WithMetrics(eligibilitymetrics.New()),
	)

	var queueStore callqueueservice.Store = callqueuestore.NewInMemoryStore()
	if redisClient != nil {
		queueStore = callqueuestore.NewRedisStore(redisClient.Client, callqueuestore.DefaultMaxRetries)
	}
	queueSvc := callqueueservice.New(queueStore,
		callqueueservice.WithAuditPublisher(auditPublisher),
		callqueueservice.WithLogger(log),
		callqueueservice.WithMetrics(callqueuemetrics.New()),
	)

	minter := videocall.NewMinter(videocall.Credentials{
		AccountSID:   cfg.Video.AccountSID,
		APIKeySID:    cfg.Video.APIKeySID,
		APIKeySecret: cfg.Video.APIKeySecret,
	}, cfg.Video.TokenTTL)
	if !cfg.Video.Enabled() {
		log.Warn("video credentials missing, /video/token will answer 503")
	}

	limiter := ratelimit.New(cfg.RateLimitPerMinute, time.Minute, log)
	clientIP, err := metadata.NewResolver(cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Metrics:        metrics.New(),
		Eligibility:    eligibilityhandler.New(eligibilitySvc, log, nil),
		Video:          videohandler.New(minter, auditPublisher, log),
		CallQueue:      callqueuehandler.New(queueSvc, log),
		AdminTokenHash: cfg.AdminTokenHash,
		AuditEmitter:   auditPublisher,
		AllowedOrigins: cfg.AllowedOrigins,
		HealthChecks:   healthChecks(redisClient, db),
		RateLimit:      limiter,
		ClientIP:       clientIP,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting screening service",
			"addr", cfg.Addr,
			"env", cfg.Environment,
			"min_age", cfg.Eligibility.MinAge,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		limiter.RunSweeper(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// buildTallyStore prefers Postgres, then Redis, then process memory.
func buildTallyStore(ctx context.Context, db *sql.DB, redisClient *redisplatform.Client) (eligibilityservice.TallyStore, error) {
	switch {
	case db != nil:
		store := tally.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case redisClient != nil:
		return tally.NewRedisStore(redisClient.Client), nil
	default:
		return tally.NewInMemoryStore(), nil
	}
}

// buildAuditStore produces to Kafka when brokers are configured.
func buildAuditStore(ctx context.Context, cfg config.KafkaConfig, log *slog.Logger) (audit.Store, func(), error) {
	if len(cfg.Brokers) == 0 {
		log.Info("no kafka brokers configured, audit events written to the log")
		return logstore.New(log.With("component", "audit")), func() {}, nil
	}
	client, err := kafkastore.NewClient(cfg.Brokers, cfg.AuditTopic)
	if err != nil {
		return nil, nil, err
	}
	if err := kafkastore.EnsureTopic(ctx, client, cfg.AuditTopic, cfg.Partitions, cfg.ReplicationFactor); err != nil {
		client.Close()
		return nil, nil, err
	}
	return kafkastore.New(client, cfg.AuditTopic), client.Close, nil
}

func healthChecks(redisClient *redisplatform.Client, db *sql.DB) map[string]httptransport.HealthCheck {
	checks := map[string]httptransport.HealthCheck{}
	if redisClient != nil {
		checks["redis"] = redisClient.Health
	}
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	return checks
}
