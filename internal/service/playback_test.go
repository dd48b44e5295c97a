package service

import (
	"sync"
	"testing"
)

// fakeMedia is a scriptable media element for controller tests. Events are
// emitted explicitly from the test, never from control methods.
type fakeMedia struct {
	mu         sync.Mutex
	playing    bool
	pos        float64
	dur        float64
	rate       float64
	playCalls  int
	pauseCalls int
	subs       map[int]func(MediaEvent)
	nextSub    int
}

func newFakeMedia(duration float64) *fakeMedia {
	return &fakeMedia{dur: duration, rate: 1.0, subs: make(map[int]func(MediaEvent))}
}

func (f *fakeMedia) Play() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = true
	f.playCalls++
}

func (f *fakeMedia) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playing = false
	f.pauseCalls++
}

func (f *fakeMedia) CurrentTime() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos
}

func (f *fakeMedia) SetCurrentTime(pos float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos = pos
}

func (f *fakeMedia) Duration() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dur
}

func (f *fakeMedia) SetPlaybackRate(rate float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rate = rate
}

func (f *fakeMedia) Subscribe(fn func(MediaEvent)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

// emit delivers an event to all subscribers from the test goroutine.
func (f *fakeMedia) emit(ev MediaEvent) {
	f.mu.Lock()
	fns := make([]func(MediaEvent), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func TestController_ActivateStartsPlaying(t *testing.T) {
	m := newFakeMedia(30)
	c := NewPlaybackController("v1", m)

	c.Activate(true)

	if c.State() != StatePlaying {
		t.Errorf("state = %s, want playing", c.State())
	}
	if m.playCalls != 1 {
		t.Errorf("play calls = %d, want 1", m.playCalls)
	}
	snap := c.Snapshot()
	if !snap.Muted {
		t.Error("first activation should be muted")
	}
}

func TestController_DeactivateSavesPosition(t *testing.T) {
	m := newFakeMedia(30)
	c := NewPlaybackController("v1", m)

	c.Activate(false)
	m.SetCurrentTime(12.5)
	c.Deactivate()

	if c.State() != StateUnmounted {
		t.Errorf("state = %s, want unmounted", c.State())
	}
	if got := c.Position(); got != 12.5 {
		t.Errorf("saved position = %.1f, want 12.5", got)
	}

	// Reactivation resumes from the saved position.
	m.SetCurrentTime(0)
	c.Activate(false)
	if got := m.CurrentTime(); got != 12.5 {
		t.Errorf("resumed position = %.1f, want 12.5", got)
	}
}

func TestController_TapTogglesPlayPause(t *testing.T) {
	m := newFakeMedia(30)
	c := NewPlaybackController("v1", m)
	c.Activate(false)

	c.ToggleTap()
	if c.State() != StatePaused {
		t.Errorf("state after tap = %s, want paused", c.State())
	}

	c.ToggleTap()
	if c.State() != StatePlaying {
		t.Errorf("state after second tap = %s, want playing", c.State())
	}
}

func TestController_TapOnUnmountedIgnored(t *testing.T) {
	m := newFakeMedia(30)
	c := NewPlaybackController("v1", m)

	c.ToggleTap()
	if c.State() != StateUnmounted {
		t.Errorf("state = %s, want unmounted", c.State())
	}
	if m.playCalls != 0 {
		t.Errorf("play calls = %d, want 0", m.playCalls)
	}
}

func TestController_BufferingKeepsPlayIntent(t *testing.T) {
	m := newFakeMedia(30)
	c := NewPlaybackController("v1", m)
	c.Activate(false)

	m.emit(EventWaiting)
	if c.State() != StateBuffering {
		t.Errorf("state = %s, want buffering", c.State())
	}

	m.emit(EventCanPlay)
	if c.State() != StatePlaying {
		t.Errorf("state after recovery = %s, want playing", c.State())
	}
}

func TestController_PauseDuringBuffering(t *testing.T) {
	m := newFakeMedia(30)
	c := NewPlaybackController("v1", m)
	c.Activate(false)

	m.emit(EventWaiting)
	c.ToggleTap() // viewer pauses while the spinner shows

	m.emit(EventCanPlay)
	if c.State() != StatePaused {
		t.Errorf("state = %s, want paused (intent was pause)", c.State())
	}
}

func TestController_EndedLoops(t *testing.T) {
	m := newFakeMedia(30)
	c := NewPlaybackController("v1", m)
	c.Activate(false)
	m.SetCurrentTime(30)

	m.emit(EventEnded)

	if got := m.CurrentTime(); got != 0 {
		t.Errorf("position after ended = %.1f, want 0", got)
	}
	if c.State() != StatePlaying {
		t.Errorf("state after ended = %s, want playing (loop)", c.State())
	}
}

func TestController_EndedWhilePausedStaysPaused(t *testing.T) {
	m := newFakeMedia(30)
	c := NewPlaybackController("v1", m)
	c.Activate(false)
	c.ToggleTap()

	m.emit(EventEnded)
	if c.State() != StatePaused {
		t.Errorf("state = %s, want paused", c.State())
	}
}

func TestController_RateCycle(t *testing.T) {
	m := newFakeMedia(30)
	c := NewPlaybackController("v1", m)
	c.Activate(false)

	want := []float64{1.5, 2.0, 0.5, 1.0}
	for i, w := range want {
		got := c.CycleRate()
		if got != w {
			t.Errorf("cycle %d = %.1f, want %.1f", i+1, got, w)
		}
	}
}

func TestController_RateSurvivesRemount(t *testing.T) {
	m := newFakeMedia(30)
	c := NewPlaybackController("v1", m)
	c.Activate(false)
	c.CycleRate() // 1.5
	c.Deactivate()

	c.Activate(false)
	if m.rate != 1.5 {
		t.Errorf("rate after remount = %.1f, want 1.5", m.rate)
	}
}

func TestController_SeekClampsToDuration(t *testing.T) {
	m := newFakeMedia(30)
	c := NewPlaybackController("v1", m)
	c.Activate(false)

	c.Seek(45)
	if got := m.CurrentTime(); got != 30 {
		t.Errorf("position = %.1f, want 30 (clamped)", got)
	}

	c.Seek(-5)
	if got := m.CurrentTime(); got != 0 {
		t.Errorf("position = %.1f, want 0 (clamped)", got)
	}
}

func TestController_SeekWhileUnmountedSetsResumePoint(t *testing.T) {
	m := newFakeMedia(30)
	c := NewPlaybackController("v1", m)

	c.Seek(10)
	c.Activate(false)
	if got := m.CurrentTime(); got != 10 {
		t.Errorf("resume position = %.1f, want 10", got)
	}
}

func TestController_MuteIndependentOfPlayState(t *testing.T) {
	m := newFakeMedia(30)
	c := NewPlaybackController("v1", m)
	c.Activate(false)

	if muted := c.ToggleMute(); !muted {
		t.Error("expected muted after toggle")
	}
	c.ToggleTap() // pause
	if snap := c.Snapshot(); !snap.Muted {
		t.Error("mute should survive pause")
	}
	if muted := c.ToggleMute(); muted {
		t.Error("expected unmuted after second toggle")
	}
}
