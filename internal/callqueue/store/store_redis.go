package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"screening/internal/callqueue/models"
	"screening/pkg/platform/sentinel"
)

const (
	// DefaultKey holds the JSON queue document.
	DefaultKey = "screening:callqueue:state"

	DefaultMaxRetries = 8
)

// RedisStore applies transitions with WATCH/MULTI. A concurrent writer
// aborts the transaction and the transition is retried on fresh state.
type RedisStore struct {
	client     *redis.Client
	key        string
	maxRetries int
	now        func() time.Time
}

type RedisOption func(*RedisStore)

// WithKey stores the queue under key instead of DefaultKey.
func WithKey(key string) RedisOption {
	return func(s *RedisStore) {
		s.key = key
	}
}

func NewRedisStore(client *redis.Client, maxRetries int, opts ...RedisOption) *RedisStore {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	s := &RedisStore{client: client, key: DefaultKey, maxRetries: maxRetries, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) Update(ctx context.Context, fn models.Transition) error {
	txf := func(tx *redis.Tx) error {
		state, err := read(ctx, tx, s.key)
		if err != nil {
			return err
		}
		if err := fn(state, s.now()); err != nil {
			return err
		}
		payload, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("encode queue state: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, payload, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, s.key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("queue update after %d attempts: %w", s.maxRetries, sentinel.ErrConflict)
}

func (s *RedisStore) Load(ctx context.Context) (*models.State, error) {
	return read(ctx, s.client, s.key)
}

// Reset deletes the queue document.
func (s *RedisStore) Reset(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func read(ctx context.Context, c getter, key string) (*models.State, error) {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read queue state: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	var state models.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode queue state: %w", err)
	}
	state.Normalize()
	return &state, nil
}
