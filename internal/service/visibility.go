package service

import "sync"

// ActivationThreshold is the visible-area ratio at which a video becomes the
// session's active item.
const ActivationThreshold = 0.7

// VisibilityFunc receives one visibility sample: how much of the video's card
// is on screen.
type VisibilityFunc func(videoID string, ratio float64)

// VisibilityObserver fans visibility samples out to subscribers. Subscribe
// returns a cancel func the subscriber must call on teardown; a closed
// observer drops all further samples.
type VisibilityObserver struct {
	mu     sync.Mutex
	subs   map[int]VisibilityFunc
	nextID int
	closed bool
}

func NewVisibilityObserver() *VisibilityObserver {
	return &VisibilityObserver{subs: make(map[int]VisibilityFunc)}
}

// Subscribe registers a listener and returns its cancel func.
func (o *VisibilityObserver) Subscribe(fn VisibilityFunc) (cancel func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextID
	o.nextID++
	o.subs[id] = fn
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.subs, id)
	}
}

// Notify delivers one sample to every subscriber.
func (o *VisibilityObserver) Notify(videoID string, ratio float64) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	listeners := make([]VisibilityFunc, 0, len(o.subs))
	for _, fn := range o.subs {
		listeners = append(listeners, fn)
	}
	o.mu.Unlock()

	for _, fn := range listeners {
		fn(videoID, ratio)
	}
}

// Close drops all subscribers and further samples.
func (o *VisibilityObserver) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.closed = true
	o.subs = make(map[int]VisibilityFunc)
}
