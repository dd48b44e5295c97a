package service

import (
	"sync"
	"time"
)

// ClockMedia is a virtual media element: position advances with wall-clock
// time while playing, scaled by the playback rate. It gives the server an
// authoritative logical playback position without touching any real decoder.
type ClockMedia struct {
	mu         sync.Mutex
	duration   float64
	rate       float64
	playing    bool
	pos        float64
	resumedAt  time.Time
	subs       map[int]func(MediaEvent)
	nextSub    int
	endedFired bool
}

func NewClockMedia(duration float64) *ClockMedia {
	return &ClockMedia{
		duration: duration,
		rate:     1.0,
		subs:     make(map[int]func(MediaEvent)),
	}
}

func (m *ClockMedia) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.playing {
		return
	}
	m.playing = true
	m.resumedAt = time.Now()
}

func (m *ClockMedia) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.playing {
		return
	}
	m.pos = m.liveLocked()
	m.playing = false
}

func (m *ClockMedia) CurrentTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.liveLocked()
}

func (m *ClockMedia) SetCurrentTime(pos float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pos < 0 {
		pos = 0
	}
	if m.duration > 0 && pos > m.duration {
		pos = m.duration
	}
	m.pos = pos
	m.resumedAt = time.Now()
	m.endedFired = false
}

func (m *ClockMedia) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *ClockMedia) SetPlaybackRate(rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Re-anchor so the rate change applies from now, not retroactively.
	m.pos = m.liveLocked()
	m.resumedAt = time.Now()
	m.rate = rate
}

func (m *ClockMedia) Subscribe(fn func(MediaEvent)) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Tick checks whether the clock has run past the media's end and, if so,
// emits a single ended event. The session manager calls this on its sweep.
// Events go out on a fresh goroutine so listeners can call back into the
// element without deadlocking.
func (m *ClockMedia) Tick() {
	m.mu.Lock()
	if !m.playing || m.duration <= 0 || m.endedFired || m.liveLocked() < m.duration {
		m.mu.Unlock()
		return
	}
	m.endedFired = true
	m.pos = m.duration
	m.playing = false
	listeners := make([]func(MediaEvent), 0, len(m.subs))
	for _, fn := range m.subs {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		go fn(EventEnded)
	}
}

// liveLocked computes the current position; callers hold m.mu.
func (m *ClockMedia) liveLocked() float64 {
	if !m.playing {
		return m.pos
	}
	pos := m.pos + time.Since(m.resumedAt).Seconds()*m.rate
	if m.duration > 0 && pos > m.duration {
		return m.duration
	}
	return pos
}
