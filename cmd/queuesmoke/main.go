// Command queuesmoke runs the call-queue smoke scenarios against process
// memory or a live Redis, so a deployment can be checked before agents log in.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"screening/internal/callqueue/service"
	"screening/internal/callqueue/smoke"
	"screening/internal/callqueue/store"
	"screening/internal/platform/config"
	"screening/internal/platform/logger"
	redisplatform "screening/internal/platform/redis"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var redisURL string
	var concurrency int
	var format string
	var timeout time.Duration

	c := &cobra.Command{
		Use:          "queuesmoke",
		Short:        "Exercise call-queue presence and claim transitions",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			factory, closeFn, err := buildFactory(ctx, redisURL)
			if err != nil {
				return err
			}
			defer closeFn()

			results := smoke.Run(ctx, factory, smoke.Default(concurrency))
			if err := printResults(cmd.OutOrStdout(), results, format); err != nil {
				return err
			}
			if n := smoke.Failed(results); n > 0 {
				return fmt.Errorf("%d scenario(s) failed", n)
			}
			return nil
		},
	}

	c.Flags().StringVar(&redisURL, "redis-url", os.Getenv("REDIS_URL"), "Redis URL (empty runs in memory)")
	c.Flags().IntVar(&concurrency, "concurrency", 8, "Agents racing for one caller")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	c.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall deadline")
	return c
}

// buildFactory gives every scenario its own Redis key, deleted afterwards.
func buildFactory(ctx context.Context, redisURL string) (smoke.Factory, func(), error) {
	log := logger.New("warn")

	if redisURL == "" {
		return func(context.Context) (*service.Service, func(), error) {
			return service.New(store.NewInMemoryStore(), service.WithLogger(log)), func() {}, nil
		}, func() {}, nil
	}

	client, err := redisplatform.New(ctx, config.RedisConfig{
		URL:          redisURL,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err != nil {
		return nil, nil, err
	}

	factory := func(ctx context.Context) (*service.Service, func(), error) {
		key := "screening:callqueue:smoke:" + uuid.NewString()
		s := store.NewRedisStore(client.Client, 50, store.WithKey(key))
		cleanup := func() { _ = s.Reset(context.Background()) }
		return service.New(s, service.WithLogger(log)), cleanup, nil
	}
	return factory, func() { _ = client.Close() }, nil
}

func printResults(w io.Writer, results []smoke.Result, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case "pretty":
		for _, r := range results {
			status := "PASS"
			if !r.Passed {
				status = "FAIL"
			}
			fmt.Fprintf(w, "%s  %-40s %6dms", status, r.Name, r.Duration.Milliseconds())
			if r.Error != "" {
				fmt.Fprintf(w, "  %s", r.Error)
			}
			fmt.Fprintln(w)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
