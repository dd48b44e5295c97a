package service

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestClockMedia_AdvancesWhilePlaying(t *testing.T) {
	m := NewClockMedia(60)
	m.Play()

	time.Sleep(50 * time.Millisecond)
	got := m.CurrentTime()
	if got < 0.03 || got > 0.5 {
		t.Errorf("position = %.3f, want roughly 0.05", got)
	}
}

func TestClockMedia_FrozenWhilePaused(t *testing.T) {
	m := NewClockMedia(60)
	m.Play()
	time.Sleep(20 * time.Millisecond)
	m.Pause()

	before := m.CurrentTime()
	time.Sleep(30 * time.Millisecond)
	if after := m.CurrentTime(); after != before {
		t.Errorf("position moved while paused: %.3f -> %.3f", before, after)
	}
}

func TestClockMedia_RateScalesAdvance(t *testing.T) {
	m := NewClockMedia(60)
	m.SetPlaybackRate(2.0)
	m.Play()

	time.Sleep(50 * time.Millisecond)
	got := m.CurrentTime()
	// Roughly double wall clock.
	if got < 0.07 || got > 1.0 {
		t.Errorf("position = %.3f, want roughly 0.1 at 2x", got)
	}
}

func TestClockMedia_SeekClamps(t *testing.T) {
	m := NewClockMedia(30)

	m.SetCurrentTime(100)
	if got := m.CurrentTime(); got != 30 {
		t.Errorf("position = %.1f, want 30 (clamped)", got)
	}

	m.SetCurrentTime(-5)
	if got := m.CurrentTime(); got != 0 {
		t.Errorf("position = %.1f, want 0 (clamped)", got)
	}
}

func TestClockMedia_TickFiresEndedOnce(t *testing.T) {
	m := NewClockMedia(0.01)
	var ended atomic.Int32
	cancel := m.Subscribe(func(ev MediaEvent) {
		if ev == EventEnded {
			ended.Add(1)
		}
	})
	defer cancel()

	m.Play()
	time.Sleep(30 * time.Millisecond)

	m.Tick()
	m.Tick() // second tick must not re-fire
	time.Sleep(20 * time.Millisecond)

	if got := ended.Load(); got != 1 {
		t.Errorf("ended events = %d, want 1", got)
	}
	if got := m.CurrentTime(); got != 0.01 {
		t.Errorf("position = %.3f, want clamped at duration", got)
	}
}

func TestClockMedia_SeekRearmsEnded(t *testing.T) {
	m := NewClockMedia(0.01)
	var ended atomic.Int32
	cancel := m.Subscribe(func(ev MediaEvent) {
		if ev == EventEnded {
			ended.Add(1)
		}
	})
	defer cancel()

	m.Play()
	time.Sleep(30 * time.Millisecond)
	m.Tick()
	time.Sleep(20 * time.Millisecond)

	// The loop handler seeks back to zero and plays again.
	m.SetCurrentTime(0)
	m.Play()
	time.Sleep(30 * time.Millisecond)
	m.Tick()
	time.Sleep(20 * time.Millisecond)

	if got := ended.Load(); got != 2 {
		t.Errorf("ended events = %d, want 2 (rearmed after seek)", got)
	}
}

func TestVisibilityObserver_FanOutAndCancel(t *testing.T) {
	o := NewVisibilityObserver()

	var a, b atomic.Int32
	cancelA := o.Subscribe(func(videoID string, ratio float64) { a.Add(1) })
	o.Subscribe(func(videoID string, ratio float64) { b.Add(1) })

	o.Notify("v1", 0.8)
	if a.Load() != 1 || b.Load() != 1 {
		t.Fatalf("counts = %d/%d, want 1/1", a.Load(), b.Load())
	}

	cancelA()
	o.Notify("v1", 0.9)
	if a.Load() != 1 {
		t.Errorf("cancelled subscriber still notified")
	}
	if b.Load() != 2 {
		t.Errorf("b = %d, want 2", b.Load())
	}

	o.Close()
	o.Notify("v1", 0.9)
	if b.Load() != 2 {
		t.Errorf("closed observer still delivered")
	}
}
