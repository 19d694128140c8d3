package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, name := range []string{"SCREENING_ADDR", "SCREENING_MIN_AGE", "SCREENING_AGE_MIN", "SCREENING_AGE_MAX", "KAFKA_BROKERS", "VIDEO_TOKEN_TTL", "RATE_LIMIT_PER_MINUTE", "TRUSTED_PROXIES"} {
		t.Setenv(name, "")
	}

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 50, cfg.Eligibility.MinAge)
	assert.Equal(t, 0, cfg.Eligibility.Bounds.Min)
	assert.Equal(t, 120, cfg.Eligibility.Bounds.Max)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, time.Hour, cfg.Video.TokenTTL)
	assert.False(t, cfg.Video.Enabled())
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Empty(t, cfg.TrustedProxies)
	require.NoError(t, cfg.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SCREENING_MIN_AGE", "45")
	t.Setenv("SCREENING_AGE_MAX", "not-a-number")
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv("VIDEO_TOKEN_TTL", "15m")
	t.Setenv("VIDEO_ACCOUNT_SID", "AC123")
	t.Setenv("VIDEO_API_KEY_SID", "SK123")
	t.Setenv("VIDEO_API_KEY_SECRET", "secret")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.10")

	cfg := FromEnv()
	assert.Equal(t, 45, cfg.Eligibility.MinAge)
	assert.Equal(t, 120, cfg.Eligibility.Bounds.Max, "malformed value falls back to default")
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 15*time.Minute, cfg.Video.TokenTTL)
	assert.True(t, cfg.Video.Enabled())
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.10"}, cfg.TrustedProxies)
}

func TestValidate(t *testing.T) {
	t.Run("inverted bounds", func(t *testing.T) {
		t.Setenv("SCREENING_AGE_MIN", "90")
		t.Setenv("SCREENING_AGE_MAX", "10")
		assert.ErrorContains(t, FromEnv().Validate(), "invalid age bounds")
	})

	t.Run("min age outside bounds", func(t *testing.T) {
		t.Setenv("SCREENING_MIN_AGE", "130")
		assert.ErrorContains(t, FromEnv().Validate(), "outside bounds")
	})

	t.Run("negative rate limit", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_PER_MINUTE", "-1")
		assert.ErrorContains(t, FromEnv().Validate(), "rate limit")
	})
}
