package tally

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"screening/internal/eligibility"
	"screening/internal/platform/device"
)

const (
	// Redis hash holding one field per (outcome, device) pair.
	tallyHashKey = "screening:tally:outcomes"
	fieldSep     = "|"
)

// RedisStore keeps tallies in a single Redis hash so every instance shares
// the same counters.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Increment uses HINCRBY, which is atomic across instances.
func (s *RedisStore) Increment(ctx context.Context, outcome eligibility.Outcome, class device.Class) error {
	field := string(outcome) + fieldSep + string(class)
	if err := s.client.HIncrBy(ctx, tallyHashKey, field, 1).Err(); err != nil {
		return fmt.Errorf("increment tally: %w", err)
	}
	return nil
}

func (s *RedisStore) Snapshot(ctx context.Context) ([]eligibility.OutcomeCount, error) {
	fields, err := s.client.HGetAll(ctx, tallyHashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("read tallies: %w", err)
	}

	counts := make(map[key]int64, len(fields))
	for field, raw := range fields {
		outcome, class, ok := strings.Cut(field, fieldSep)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		counts[key{outcome: eligibility.Outcome(outcome), device: device.ParseClass(class)}] += n
	}
	return sorted(counts), nil
}
