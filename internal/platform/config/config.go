package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"screening/internal/eligibility"
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	Environment string
	LogLevel    string

	Eligibility eligibility.Config

	Redis       RedisConfig
	DatabaseURL string
	Kafka       KafkaConfig
	Video       VideoConfig

	// AdminTokenHash is a bcrypt hash of the admin token. Empty disables
	// admin endpoints.
	AdminTokenHash string
	AllowedOrigins []string

	// TrustedProxies lists CIDRs or addresses whose X-Forwarded-For headers
	// are believed. Empty means the peer address is the client.
	TrustedProxies []string

	// RateLimitPerMinute caps public requests per client IP. Zero disables it.
	RateLimitPerMinute int

	AuditBufferSize int
	ShutdownTimeout time.Duration
}

// RedisConfig configures the shared Redis client. An empty URL means Redis is
// not used and in-memory stores are wired instead.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit sink. No brokers means audit events stay
// in memory.
type KafkaConfig struct {
	Brokers           []string
	AuditTopic        string
	Partitions        int32
	ReplicationFactor int16
}

// VideoConfig holds the video provider credentials used to mint room tokens.
type VideoConfig struct {
	AccountSID   string
	APIKeySID    string
	APIKeySecret string
	TokenTTL     time.Duration
}

// Enabled reports whether every credential is present.
func (v VideoConfig) Enabled() bool {
	return v.AccountSID != "" && v.APIKeySID != "" && v.APIKeySecret != ""
}

// FromEnv builds a Server config from environment variables so main stays lean.
// Malformed numbers fall back to defaults; call Validate for semantic checks.
func FromEnv() Server {
	return Server{
		Addr:        envString("SCREENING_ADDR", ":8080"),
		Environment: envString("SCREENING_ENV", "development"),
		LogLevel:    envString("LOG_LEVEL", "info"),
		Eligibility: eligibility.Config{
			MinAge: envInt("SCREENING_MIN_AGE", eligibility.DefaultMinAge),
			Bounds: eligibility.AgeBounds{
				Min: envInt("SCREENING_AGE_MIN", eligibility.DefaultAgeMin),
				Max: envInt("SCREENING_AGE_MAX", eligibility.DefaultAgeMax),
			},
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Kafka: KafkaConfig{
			Brokers:           envList("KAFKA_BROKERS"),
			AuditTopic:        envString("AUDIT_TOPIC", "screening.audit"),
			Partitions:        int32(envInt("AUDIT_TOPIC_PARTITIONS", 3)),
			ReplicationFactor: int16(envInt("AUDIT_TOPIC_REPLICATION", 1)),
		},
		Video: VideoConfig{
			AccountSID:   os.Getenv("VIDEO_ACCOUNT_SID"),
			APIKeySID:    os.Getenv("VIDEO_API_KEY_SID"),
			APIKeySecret: os.Getenv("VIDEO_API_KEY_SECRET"),
			TokenTTL:     envDuration("VIDEO_TOKEN_TTL", time.Hour),
		},
		AdminTokenHash:     os.Getenv("ADMIN_TOKEN_HASH"),
		AllowedOrigins:     envList("ALLOWED_ORIGINS"),
		TrustedProxies:     envList("TRUSTED_PROXIES"),
		RateLimitPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 120),
		AuditBufferSize:    envInt("AUDIT_BUFFER_SIZE", 1024),
		ShutdownTimeout:    envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// Validate rejects configurations the rules cannot work with.
func (s Server) Validate() error {
	var errs []error
	b := s.Eligibility.Bounds
	if b.Min < 0 || b.Max < b.Min {
		errs = append(errs, fmt.Errorf("invalid age bounds [%d,%d]", b.Min, b.Max))
	}
	if s.Eligibility.MinAge < b.Min || s.Eligibility.MinAge > b.Max {
		errs = append(errs, fmt.Errorf("min age %d outside bounds [%d,%d]", s.Eligibility.MinAge, b.Min, b.Max))
	}
	if s.Video.TokenTTL <= 0 || s.Video.TokenTTL > 24*time.Hour {
		errs = append(errs, fmt.Errorf("video token ttl %s must be in (0, 24h]", s.Video.TokenTTL))
	}
	if s.RateLimitPerMinute < 0 {
		errs = append(errs, fmt.Errorf("rate limit %d must not be negative", s.RateLimitPerMinute))
	}
	return errors.Join(errs...)
}

func envString(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

func envInt(name string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(name)))
	if err != nil {
		return def
	}
	return v
}

func envDuration(name string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(name)))
	if err != nil {
		return def
	}
	return v
}

func envList(name string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(name), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
