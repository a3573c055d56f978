package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"continuum-hq/continuum/pkg/evidence"
)

// Config contains configuration for the event recorder.
type Config struct {
	// Enabled enables event recording.
	Enabled bool

	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout is the timeout for writing an event to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// queueItem is one unit of work for the background writer: exactly one of
// event or feedback is set.
type queueItem struct {
	event    *evidence.AnalysisEvent
	feedback *evidence.FeedbackEvent
}

// Recorder persists analysis and feedback events asynchronously so that
// request handling never blocks on storage. Local stores are written in
// order; the optional remote store is written best-effort with a single
// attempt, and its outcome is annotated on the event metadata rather than
// surfaced to the caller.
type Recorder struct {
	local  []evidence.Storage
	remote evidence.Storage
	config *Config

	itemChan chan queueItem
	wg       sync.WaitGroup
	done     chan struct{}
	logger   *slog.Logger
}

// NewRecorder creates a recorder writing to the given local stores and an
// optional remote store (nil disables remote writes). The background worker
// starts immediately.
func NewRecorder(local []evidence.Storage, remote evidence.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}

	r := &Recorder{
		local:    local,
		remote:   remote,
		config:   config,
		itemChan: make(chan queueItem, config.AsyncBuffer),
		done:     make(chan struct{}),
		logger:   slog.Default().With("component", "evidence.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("event recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
		"local_stores", len(local),
		"remote_enabled", remote != nil,
	)

	return r
}

// NewEventID returns a fresh opaque event id. Each event gets a new id, so
// remote writes are idempotent by uniqueness and need no conflict handling.
func NewEventID() string {
	return uuid.New().String()
}

// RecordEvent enqueues an analysis event for async persistence. It returns
// immediately; a full queue drops the event with an error that callers are
// expected to log, never to propagate to the client.
func (r *Recorder) RecordEvent(ctx context.Context, event *evidence.AnalysisEvent) error {
	if !r.config.Enabled {
		return nil
	}
	return r.enqueue(ctx, queueItem{event: event}, event.ID)
}

// RecordFeedback enqueues a feedback event for async persistence.
func (r *Recorder) RecordFeedback(ctx context.Context, event *evidence.FeedbackEvent) error {
	if !r.config.Enabled {
		return nil
	}
	return r.enqueue(ctx, queueItem{feedback: event}, event.ID)
}

func (r *Recorder) enqueue(ctx context.Context, item queueItem, id string) error {
	select {
	case r.itemChan <- item:
		return nil
	case <-ctx.Done():
		return evidence.NewRecorderError(id, ctx.Err())
	case <-r.done:
		r.logger.Warn("recorder shutting down, dropping event", "event_id", id)
		return evidence.NewRecorderError(id, context.Canceled)
	default:
		r.logger.Error("event channel full, dropping event",
			"event_id", id,
			"channel_capacity", r.config.AsyncBuffer,
		)
		return evidence.NewRecorderError(id, context.DeadlineExceeded)
	}
}

// Close gracefully shuts down the recorder by draining the queue and
// waiting for pending writes to complete.
func (r *Recorder) Close() error {
	r.logger.Info("shutting down event recorder")

	close(r.done)
	r.wg.Wait()

	r.logger.Info("event recorder shut down complete")
	return nil
}

// worker drains the queue and writes items to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case item := <-r.itemChan:
			r.writeItem(item)

		case <-r.done:
			r.logger.Info("draining event channel before shutdown",
				"pending_count", len(r.itemChan),
			)
			for {
				select {
				case item := <-r.itemChan:
					r.writeItem(item)
				default:
					r.logger.Info("event channel drained")
					return
				}
			}
		}
	}
}

// writeItem writes one queued item: the remote attempt first so its outcome
// can be annotated on the event before local stores persist it.
func (r *Recorder) writeItem(item queueItem) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	switch {
	case item.event != nil:
		r.writeEvent(ctx, item.event)
	case item.feedback != nil:
		r.writeFeedback(ctx, item.feedback)
	}
}

func (r *Recorder) writeEvent(ctx context.Context, event *evidence.AnalysisEvent) {
	if r.remote != nil {
		if event.Metadata == nil {
			event.Metadata = make(map[string]any)
		}
		if err := r.remote.StoreEvent(ctx, event); err != nil {
			event.Metadata["remote_write"] = "failed"
			r.logger.Error("remote event write failed",
				"event_id", event.ID,
				"error", err,
			)
		} else {
			event.Metadata["remote_write"] = "ok"
		}
	}

	for _, store := range r.local {
		if err := store.StoreEvent(ctx, event); err != nil {
			r.logger.Error("failed to store analysis event",
				"event_id", event.ID,
				"error", err,
			)
		}
	}
}

func (r *Recorder) writeFeedback(ctx context.Context, event *evidence.FeedbackEvent) {
	if r.remote != nil {
		if err := r.remote.StoreFeedback(ctx, event); err != nil {
			r.logger.Error("remote feedback write failed",
				"event_id", event.ID,
				"error", err,
			)
		}
	}

	for _, store := range r.local {
		if err := store.StoreFeedback(ctx, event); err != nil {
			r.logger.Error("failed to store feedback event",
				"event_id", event.ID,
				"error", err,
			)
		}
	}
}
