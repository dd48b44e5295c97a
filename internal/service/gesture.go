package service

import (
	"math"
	"sync"
	"time"

	"github.com/ViahIsGit/dksocial-sub000/internal/model"
)

// Gesture classification constants.
const (
	// DoubleTapWindow is how long a single tap is held back waiting for a
	// possible second tap.
	DoubleTapWindow = 300 * time.Millisecond
	// SwipeThreshold is the horizontal distance (px) that turns a drag into
	// a swipe.
	SwipeThreshold = 50.0
)

// GestureKind is the classification of one touch sequence.
type GestureKind int

const (
	GestureNone GestureKind = iota
	GestureTap
	GestureDoubleTap
	GestureSwipeLeft
	GestureSwipeRight
)

func (g GestureKind) String() string {
	switch g {
	case GestureTap:
		return "tap"
	case GestureDoubleTap:
		return "double_tap"
	case GestureSwipeLeft:
		return "swipe_left"
	case GestureSwipeRight:
		return "swipe_right"
	default:
		return "none"
	}
}

// GestureHandlers receives classified gestures. SingleTap fires deferred (up
// to DoubleTapWindow after the touch) because a second tap may still cancel
// it; the other callbacks fire inline.
type GestureHandlers struct {
	SingleTap func(videoID string)
	DoubleTap func(videoID string)
	Swipe     func(videoID string, direction int) // -1 left, +1 right
}

// OverlayHitFunc reports whether a point lands on an interactive overlay
// region (action rail, seek bar, caption). Taps there are swallowed.
type OverlayHitFunc func(x, y float64) bool

// GestureRecognizer disambiguates taps, double taps, and horizontal swipes
// from raw touch sequences. A second tap within DoubleTapWindow cancels the
// pending single-tap action and fires the double-tap action instead; a swipe
// suppresses tap classification for its own sequence.
type GestureRecognizer struct {
	mu       sync.Mutex
	handlers GestureHandlers
	hit      OverlayHitFunc

	pendingVideo string
	pendingTimer *time.Timer
	closed       bool
}

func NewGestureRecognizer(handlers GestureHandlers, hit OverlayHitFunc) *GestureRecognizer {
	return &GestureRecognizer{handlers: handlers, hit: hit}
}

// HandleTouch classifies one completed touch sequence and dispatches the
// matching handler. The returned kind reflects the immediate classification;
// a GestureTap result may still be superseded by a later double tap.
func (r *GestureRecognizer) HandleTouch(videoID string, samples []model.TouchSample) GestureKind {
	if len(samples) == 0 {
		return GestureNone
	}

	first, last := samples[0], samples[len(samples)-1]
	dx := last.X - first.X
	dy := last.Y - first.Y

	// Horizontal drag dominant over vertical movement: swipe. Suppresses any
	// tap classification for this sequence.
	if math.Abs(dx) > SwipeThreshold && math.Abs(dx) > math.Abs(dy) {
		r.cancelPending()
		dir := 1
		kind := GestureSwipeRight
		if dx < 0 {
			dir = -1
			kind = GestureSwipeLeft
		}
		if r.handlers.Swipe != nil {
			r.handlers.Swipe(videoID, dir)
		}
		return kind
	}

	// Taps on interactive overlay regions belong to those controls.
	if r.hit != nil && r.hit(last.X, last.Y) {
		return GestureNone
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return GestureNone
	}

	if r.pendingTimer != nil && r.pendingVideo == videoID {
		// Second tap inside the window: cancel the deferred single tap.
		r.pendingTimer.Stop()
		r.pendingTimer = nil
		r.pendingVideo = ""
		r.mu.Unlock()

		if r.handlers.DoubleTap != nil {
			r.handlers.DoubleTap(videoID)
		}
		return GestureDoubleTap
	}

	// A pending tap on a different video can no longer become a double tap.
	// Deliver it now, then start this tap's own window.
	var flush string
	if r.pendingTimer != nil {
		r.pendingTimer.Stop()
		flush = r.pendingVideo
	}
	r.pendingVideo = videoID
	r.pendingTimer = time.AfterFunc(DoubleTapWindow, func() {
		r.firePending(videoID)
	})
	r.mu.Unlock()

	if flush != "" && r.handlers.SingleTap != nil {
		r.handlers.SingleTap(flush)
	}
	return GestureTap
}

// firePending delivers a deferred single tap once its window expires.
func (r *GestureRecognizer) firePending(videoID string) {
	r.mu.Lock()
	if r.closed || r.pendingVideo != videoID {
		r.mu.Unlock()
		return
	}
	r.pendingVideo = ""
	r.pendingTimer = nil
	r.mu.Unlock()

	if r.handlers.SingleTap != nil {
		r.handlers.SingleTap(videoID)
	}
}

func (r *GestureRecognizer) cancelPending() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pendingTimer != nil {
		r.pendingTimer.Stop()
		r.pendingTimer = nil
		r.pendingVideo = ""
	}
}

// Close cancels any pending deferred action. Used at session teardown.
func (r *GestureRecognizer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	if r.pendingTimer != nil {
		r.pendingTimer.Stop()
		r.pendingTimer = nil
	}
}
