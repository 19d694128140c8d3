package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "screening/pkg/platform/audit"
	"screening/pkg/platform/audit/store/memory"
)

func TestWorker_DrainsUntilInboxClosed(t *testing.T) {
	store := memory.NewInMemoryStore()
	inbox := make(chan audit.Event, 3)
	inbox <- audit.Event{Action: string(audit.EventCallClaimed)}
	inbox <- audit.Event{Action: string(audit.EventCallFinished)}
	close(inbox)

	err := NewWorker(store, inbox).Run(context.Background())
	require.NoError(t, err)

	events, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestWorker_StopsOnContextCancel(t *testing.T) {
	inbox := make(chan audit.Event)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- NewWorker(memory.NewInMemoryStore(), inbox).Run(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

type flakyStore struct{ calls int }

func (f *flakyStore) Append(context.Context, audit.Event) error {
	f.calls++
	if f.calls == 1 {
		return errors.New("transient")
	}
	return nil
}

func TestWorker_ContinuesAfterAppendFailure(t *testing.T) {
	store := &flakyStore{}
	inbox := make(chan audit.Event, 2)
	inbox <- audit.Event{Action: "first"}
	inbox <- audit.Event{Action: "second"}
	close(inbox)

	var failures int
	err := NewWorker(store, inbox, WithErrorHook(func(error) { failures++ })).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, store.calls)
	assert.Equal(t, 1, failures)
}
