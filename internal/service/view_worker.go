package service

import (
	"context"
	"log"
	"sync"
	"time"
)

// CounterSink is the remote-store write surface the view worker needs.
type CounterSink interface {
	IncrementCounter(ctx context.Context, videoID, column string, delta int) error
}

// ViewWorker batches fire-and-forget view-count increments. Sessions record
// one view per activation; the worker coalesces them per video and flushes in
// windows so a burst of activations on the same video becomes a single write.
// Write failures are logged, never retried, never surfaced.
type ViewWorker struct {
	sink     CounterSink
	cache    *CacheService
	interval time.Duration

	mu      sync.Mutex
	pending map[string]int // videoID -> uncommitted view count
}

// NewViewWorker creates a view-count batching worker.
func NewViewWorker(sink CounterSink, cache *CacheService) *ViewWorker {
	return &ViewWorker{
		sink:     sink,
		cache:    cache,
		interval: 5 * time.Second,
		pending:  make(map[string]int),
	}
}

// Record notes one view for a video. Non-blocking; safe from any goroutine.
func (w *ViewWorker) Record(videoID string) {
	w.mu.Lock()
	w.pending[videoID]++
	w.mu.Unlock()
}

// Start runs the flush loop until the context is cancelled, then performs a
// final flush so recorded views are not lost on shutdown.
func (w *ViewWorker) Start(ctx context.Context) {
	log.Printf("view-worker: starting (flush window=%s)", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Flush(ctx)
		case <-ctx.Done():
			w.Flush(context.Background())
			log.Println("view-worker: stopping (context cancelled)")
			return
		}
	}
}

// Flush drains the pending map and writes one increment per video.
func (w *ViewWorker) Flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}

	// Swap out the pending map so recording never blocks on writes.
	batch := w.pending
	w.pending = make(map[string]int)
	w.mu.Unlock()

	flushed := 0
	for videoID, count := range batch {
		if err := w.sink.IncrementCounter(ctx, videoID, "view_count", count); err != nil {
			log.Printf("view-worker: increment error for %s: %v", videoID, err)
			continue
		}

		if w.cache != nil {
			if err := w.cache.InvalidateVideo(ctx, videoID); err != nil {
				log.Printf("view-worker: cache invalidate error for %s: %v", videoID, err)
			}
		}

		flushed++
	}

	if flushed > 0 {
		log.Printf("view-worker: batch complete, %d videos updated (from %d activations)",
			flushed, len(batch))
	}
}
