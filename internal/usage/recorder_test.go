package usage_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolforgehq/toolforge/internal/account"
	"github.com/toolforgehq/toolforge/internal/usage"
)

type captureStore struct {
	mu     sync.Mutex
	events []account.ToolUsageEvent
	err    error
}

func (s *captureStore) InsertUsageEvent(ctx context.Context, userID uuid.UUID, toolSlug, action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, account.ToolUsageEvent{UserID: userID, ToolSlug: toolSlug, Action: action})
	return nil
}

func (s *captureStore) all() []account.ToolUsageEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]account.ToolUsageEvent(nil), s.events...)
}

func TestRecorder_PersistsEvents(t *testing.T) {
	t.Parallel()

	store := &captureStore{}
	rec := usage.NewRecorder(store)

	userID := uuid.New()
	rec.Record(userID, "invoice-generator", "open")
	rec.Record(userID, "leadenrich", "export")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, rec.Close(ctx))

	events := store.all()
	require.Len(t, events, 2)
	assert.Equal(t, "invoice-generator", events[0].ToolSlug)
	assert.Equal(t, "open", events[0].Action)
	assert.Equal(t, userID, events[0].UserID)
}

func TestRecorder_StorageFailureDoesNotBlock(t *testing.T) {
	t.Parallel()

	store := &captureStore{err: errors.New("db down")}
	rec := usage.NewRecorder(store)

	done := make(chan struct{})
	go func() {
		rec.Record(uuid.New(), "followup-sequencer", "open")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on failing storage")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, rec.Close(ctx))
}

func TestRecorder_DropsWhenBufferFull(t *testing.T) {
	t.Parallel()

	// Tiny buffer plus a store slow enough to keep the worker busy.
	store := &captureStore{}
	rec := usage.NewRecorder(store, usage.WithBufferSize(1))

	for i := 0; i < 100; i++ {
		rec.Record(uuid.New(), "invoice-generator", "open")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, rec.Close(ctx))
	// No assertion on the exact count: only that nothing deadlocked and some
	// events made it through.
	assert.NotEmpty(t, store.all())
}
