//go:build integration

package tally

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screening/internal/eligibility"
	"screening/internal/platform/device"
	"screening/pkg/testutil/containers"
)

type tallyStore interface {
	Increment(ctx context.Context, outcome eligibility.Outcome, class device.Class) error
	Snapshot(ctx context.Context) ([]eligibility.OutcomeCount, error)
}

func exerciseStore(t *testing.T, store tallyStore) {
	t.Helper()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Increment(ctx, eligibility.OutcomeFITCandidate, device.ClassMobile))
		}()
	}
	wg.Wait()
	require.NoError(t, store.Increment(ctx, eligibility.OutcomeAgeExcluded, device.ClassDesktop))

	rows, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []eligibility.OutcomeCount{
		{Outcome: eligibility.OutcomeAgeExcluded, DeviceClass: "desktop", Count: 1},
		{Outcome: eligibility.OutcomeFITCandidate, DeviceClass: "mobile", Count: 20},
	}, rows)
}

func TestRedisStore(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	exerciseStore(t, NewRedisStore(rc.Client))
}

func TestPostgresStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	store := NewPostgresStore(pg.DB)
	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, store.EnsureSchema(context.Background()), "schema creation is idempotent")
	exerciseStore(t, store)
}
