package service

import (
	"sync"

	"github.com/ViahIsGit/dksocial-sub000/internal/model"
)

// PlaybackState is the lifecycle state of one playback slot.
type PlaybackState int

const (
	StateUnmounted PlaybackState = iota
	StatePaused
	StatePlaying
	StateBuffering
)

func (s PlaybackState) String() string {
	switch s {
	case StateUnmounted:
		return "unmounted"
	case StatePaused:
		return "paused"
	case StatePlaying:
		return "playing"
	case StateBuffering:
		return "buffering"
	default:
		return "unknown"
	}
}

// MediaEvent is an event emitted by a media pipeline.
type MediaEvent int

const (
	EventLoadedMetadata MediaEvent = iota
	EventTimeUpdate
	EventWaiting
	EventCanPlay
	EventEnded
)

// MediaElement is the narrow capability contract the controller depends on.
// It mirrors the events and controls of a media pipeline without implying any
// particular decoder or UI widget.
type MediaElement interface {
	Play()
	Pause()
	CurrentTime() float64
	SetCurrentTime(pos float64)
	Duration() float64
	SetPlaybackRate(rate float64)
	// Subscribe registers an event listener and returns a cancel func.
	// Events must not be delivered synchronously from within the element's
	// control methods.
	Subscribe(fn func(MediaEvent)) (cancel func())
}

// playbackRates is the fixed multiplier cycle for the rate toggle.
var playbackRates = []float64{1.0, 1.5, 2.0, 0.5}

// PlaybackController runs the per-slot playback state machine. Each feed slot
// owns exactly one controller; the session guarantees at most one controller
// is mounted (decoding) at any time.
type PlaybackController struct {
	mu      sync.Mutex
	videoID string
	media   MediaElement

	state      PlaybackState
	playIntent bool // survives buffering: what the viewer wants, not what the pipeline does
	savedPos   float64
	rateIdx    int
	muted      bool
	unsub      func()
}

func NewPlaybackController(videoID string, media MediaElement) *PlaybackController {
	return &PlaybackController{
		videoID: videoID,
		media:   media,
		state:   StateUnmounted,
	}
}

// Activate mounts the slot and auto-starts playback, resuming from the
// position saved at the last deactivation. The first slot activated in a
// session is started muted to satisfy autoplay policies.
func (c *PlaybackController) Activate(muted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateUnmounted {
		return
	}

	c.unsub = c.media.Subscribe(c.handleEvent)
	c.media.SetPlaybackRate(playbackRates[c.rateIdx])
	if c.savedPos > 0 {
		c.media.SetCurrentTime(c.savedPos)
	}
	c.muted = muted
	c.media.Play()
	c.state = StatePlaying
	c.playIntent = true
}

// Deactivate captures the current position, stops decode, and unmounts.
func (c *PlaybackController) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateUnmounted {
		return
	}

	c.savedPos = c.media.CurrentTime()
	c.media.Pause()
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
	c.state = StateUnmounted
}

// ToggleTap flips play/pause in response to a classified single tap. Taps on
// unmounted slots are ignored.
func (c *PlaybackController) ToggleTap() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StatePlaying, StateBuffering:
		c.media.Pause()
		c.state = StatePaused
		c.playIntent = false
	case StatePaused:
		c.media.Play()
		c.state = StatePlaying
		c.playIntent = true
	}
}

// Seek sets an absolute time position. Seeking an unmounted slot updates the
// saved position used at the next activation.
func (c *PlaybackController) Seek(pos float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if pos < 0 {
		pos = 0
	}
	if c.state == StateUnmounted {
		c.savedPos = pos
		return
	}
	if d := c.media.Duration(); d > 0 && pos > d {
		pos = d
	}
	c.media.SetCurrentTime(pos)
}

// CycleRate advances the playback-rate cycle 1x -> 1.5x -> 2x -> 0.5x -> 1x and
// returns the new rate.
func (c *PlaybackController) CycleRate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rateIdx = (c.rateIdx + 1) % len(playbackRates)
	rate := playbackRates[c.rateIdx]
	if c.state != StateUnmounted {
		c.media.SetPlaybackRate(rate)
	}
	return rate
}

// ToggleMute flips the mute flag. Mute is independent of play state.
func (c *PlaybackController) ToggleMute() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.muted = !c.muted
	return c.muted
}

// State returns the current lifecycle state.
func (c *PlaybackController) State() PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Position returns the live position while mounted, or the saved position.
func (c *PlaybackController) Position() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateUnmounted {
		return c.savedPos
	}
	return c.media.CurrentTime()
}

// Snapshot returns the externally visible slot state.
func (c *PlaybackController) Snapshot() model.PlaybackSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	pos := c.savedPos
	if c.state != StateUnmounted {
		pos = c.media.CurrentTime()
	}
	return model.PlaybackSnapshot{
		VideoID:  c.videoID,
		State:    c.state.String(),
		Position: pos,
		Rate:     playbackRates[c.rateIdx],
		Muted:    c.muted,
	}
}

func (c *PlaybackController) handleEvent(ev MediaEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateUnmounted {
		return
	}

	switch ev {
	case EventWaiting:
		// Pipeline stalled. The logical playing intent is unchanged; the UI
		// shows a busy indicator until the pipeline signals ready.
		if c.playIntent {
			c.state = StateBuffering
		}
	case EventCanPlay:
		if c.state == StateBuffering {
			if c.playIntent {
				c.state = StatePlaying
			} else {
				c.state = StatePaused
			}
		}
	case EventEnded:
		// Loop semantics: reset to zero and keep playing, never advance.
		c.media.SetCurrentTime(0)
		if c.playIntent {
			c.media.Play()
			c.state = StatePlaying
		}
	}
}
