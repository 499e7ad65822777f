// Package usage records tool usage events without ever affecting the request
// that triggered them. Events are buffered and written by a background
// worker; storage failures are logged and dropped.
package usage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/toolforgehq/toolforge/internal/account"
	"github.com/toolforgehq/toolforge/pkg/logger"
)

// EventStore is the persistence surface the recorder needs. *account.Store
// satisfies it.
type EventStore interface {
	InsertUsageEvent(ctx context.Context, userID uuid.UUID, toolSlug, action string) error
}

// Recorder buffers usage events and writes them asynchronously. Record never
// blocks and never returns an error; when the buffer is full the event is
// dropped, since usage analytics are best-effort.
type Recorder struct {
	store   EventStore
	log     *slog.Logger
	events  chan account.ToolUsageEvent
	done    chan struct{}
	wg      sync.WaitGroup
	timeout time.Duration

	closeOnce sync.Once
}

// RecorderOption configures the recorder.
type RecorderOption func(*Recorder)

// WithRecorderLogger sets the logger. Defaults to slog.Default.
func WithRecorderLogger(log *slog.Logger) RecorderOption {
	return func(r *Recorder) { r.log = log }
}

// WithBufferSize sets the event buffer capacity. Defaults to 1024.
func WithBufferSize(n int) RecorderOption {
	return func(r *Recorder) { r.events = make(chan account.ToolUsageEvent, n) }
}

// WithStorageTimeout bounds each insert. Defaults to 5s.
func WithStorageTimeout(d time.Duration) RecorderOption {
	return func(r *Recorder) { r.timeout = d }
}

// NewRecorder creates the recorder and starts its worker goroutine.
func NewRecorder(store EventStore, opts ...RecorderOption) *Recorder {
	if store == nil {
		panic("usage: store is required")
	}

	r := &Recorder{
		store:   store,
		log:     slog.Default(),
		events:  make(chan account.ToolUsageEvent, 1024),
		done:    make(chan struct{}),
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(1)
	go r.worker()
	return r
}

// Record queues a usage event. Safe to call from request handlers; it returns
// immediately regardless of storage health.
func (r *Recorder) Record(userID uuid.UUID, toolSlug, action string) {
	event := account.ToolUsageEvent{
		UserID:    userID,
		ToolSlug:  toolSlug,
		Action:    action,
		CreatedAt: time.Now().UTC(),
	}

	select {
	case r.events <- event:
	case <-r.done:
	default:
		r.log.Warn("usage event dropped, buffer full", logger.ToolSlug(toolSlug))
	}
}

// Close stops the worker after draining buffered events, bounded by ctx.
func (r *Recorder) Close(ctx context.Context) error {
	r.closeOnce.Do(func() { close(r.done) })

	finished := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case event := <-r.events:
			r.persist(event)
		case <-r.done:
			// Drain whatever is buffered before exiting.
			for {
				select {
				case event := <-r.events:
					r.persist(event)
				default:
					return
				}
			}
		}
	}
}

// persist isolates the insert from request contexts and recovers panics so a
// storage bug cannot kill the worker.
func (r *Recorder) persist(event account.ToolUsageEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("usage recorder panic", slog.Any("panic", rec))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.store.InsertUsageEvent(ctx, event.UserID, event.ToolSlug, event.Action); err != nil {
		r.log.Error("failed to persist usage event",
			logger.Error(err),
			logger.ToolSlug(event.ToolSlug),
		)
	}
}
