package service

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeCounterSink struct {
	mu     sync.Mutex
	counts map[string]int
	fail   map[string]bool
}

func newFakeCounterSink() *fakeCounterSink {
	return &fakeCounterSink{counts: make(map[string]int), fail: make(map[string]bool)}
}

func (f *fakeCounterSink) IncrementCounter(ctx context.Context, videoID, column string, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[videoID] {
		return errors.New("write failed")
	}
	f.counts[videoID] += delta
	return nil
}

func (f *fakeCounterSink) get(videoID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[videoID]
}

func TestViewWorker_CoalescesPerVideo(t *testing.T) {
	sink := newFakeCounterSink()
	w := NewViewWorker(sink, nil)

	w.Record("v1")
	w.Record("v1")
	w.Record("v1")
	w.Record("v2")

	w.Flush(context.Background())

	if got := sink.get("v1"); got != 3 {
		t.Errorf("v1 = %d, want 3", got)
	}
	if got := sink.get("v2"); got != 1 {
		t.Errorf("v2 = %d, want 1", got)
	}
}

func TestViewWorker_FlushDrainsPending(t *testing.T) {
	sink := newFakeCounterSink()
	w := NewViewWorker(sink, nil)

	w.Record("v1")
	w.Flush(context.Background())
	w.Flush(context.Background()) // nothing left

	if got := sink.get("v1"); got != 1 {
		t.Errorf("v1 = %d after double flush, want 1", got)
	}
}

func TestViewWorker_WriteFailureDropsBatchEntry(t *testing.T) {
	sink := newFakeCounterSink()
	sink.fail["bad"] = true
	w := NewViewWorker(sink, nil)

	w.Record("bad")
	w.Record("good")
	w.Flush(context.Background())

	// Failed increments are logged and dropped, not retried.
	if got := sink.get("good"); got != 1 {
		t.Errorf("good = %d, want 1", got)
	}
	w.Flush(context.Background())
	if got := sink.get("bad"); got != 0 {
		t.Errorf("bad = %d, want 0 (no retry)", got)
	}
}
