package smoke

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screening/internal/callqueue/service"
	"screening/internal/callqueue/store"
)

func memoryFactory(context.Context) (*service.Service, func(), error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.New(store.NewInMemoryStore(), service.WithLogger(logger)), func() {}, nil
}

func TestDefaultScenariosPassInMemory(t *testing.T) {
	results := Run(context.Background(), memoryFactory, Default(8))
	require.Len(t, results, 5)
	for _, r := range results {
		assert.True(t, r.Passed, "%s: %s", r.Name, r.Error)
	}
	assert.Zero(t, Failed(results))
}

func TestRunReportsFactoryAndScenarioErrors(t *testing.T) {
	broken := func(context.Context) (*service.Service, func(), error) {
		return nil, nil, errors.New("redis unreachable")
	}
	results := Run(context.Background(), broken, Default(2)[:1])
	require.Len(t, results, 1)
	assert.False(t, results[0].Passed)
	assert.Equal(t, "redis unreachable", results[0].Error)

	failing := []Scenario{{Name: "always fails", Run: func(context.Context, *service.Service) error {
		return errors.New("boom")
	}}}
	results = Run(context.Background(), memoryFactory, failing)
	assert.Equal(t, 1, Failed(results))
}
