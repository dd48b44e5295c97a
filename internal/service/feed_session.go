package service

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/ViahIsGit/dksocial-sub000/internal/model"
	"github.com/ViahIsGit/dksocial-sub000/internal/repository"
)

// CandidateSource supplies the ranked feed's raw candidates.
type CandidateSource interface {
	FetchCandidates(ctx context.Context, window int) ([]model.Video, error)
	FetchCandidatesByAuthors(ctx context.Context, authorIDs []string, window int) ([]model.Video, error)
}

// FollowSource answers which authors the viewer follows.
type FollowSource interface {
	FollowedAuthorIDs(ctx context.Context, viewerID string) ([]string, error)
}

// ViewSink receives one view per activation, fire-and-forget.
type ViewSink interface {
	Record(videoID string)
}

// LikeSink is the remote half of the optimistic like flip.
type LikeSink interface {
	SetLike(ctx context.Context, viewerID, videoID string, liked bool) error
}

// slot holds the per-video playback state for one feed position.
type slot struct {
	ctrl   *PlaybackController
	clock  *ClockMedia // nil when a custom media element was injected
	slide  int
	slides int
}

// FeedSession is one viewer's open feed: the ordered video list, the single
// active (decoding) item, and a playback slot per video. All state behind one
// mutex; activation of a new slot deactivates the previous one inside the
// same critical section, so no observer ever sees two slots decoding.
type FeedSession struct {
	ID       string
	Mode     model.FeedMode
	ViewerID string // empty = anonymous viewer

	candidates CandidateSource
	follows    FollowSource
	ranker     *RankService
	views      ViewSink
	likes      LikeSink

	// newMedia builds the media element for a video; defaults to the
	// virtual clock element. Injectable for tests.
	newMedia func(v *model.Video) MediaElement

	mu            sync.Mutex
	videos        []model.Video
	items         []model.FeedItem
	itemIndex     map[string]int
	slots         map[string]*slot
	activeID      string
	activatedOnce bool
	lastTouched   time.Time
	closed        bool

	recognizer *GestureRecognizer
	visibility *VisibilityObserver
	unsubVis   func()
}

// NewFeedSession builds an empty session; call Load to populate it.
func NewFeedSession(id string, mode model.FeedMode, viewerID string,
	candidates CandidateSource, follows FollowSource, ranker *RankService,
	views ViewSink, likes LikeSink) *FeedSession {

	s := &FeedSession{
		ID:          id,
		Mode:        mode,
		ViewerID:    viewerID,
		candidates:  candidates,
		follows:     follows,
		ranker:      ranker,
		views:       views,
		likes:       likes,
		itemIndex:   make(map[string]int),
		slots:       make(map[string]*slot),
		lastTouched: time.Now(),
	}
	s.newMedia = func(v *model.Video) MediaElement {
		var d float64
		if v.Duration != nil {
			d = *v.Duration
		}
		return NewClockMedia(d)
	}
	s.recognizer = NewGestureRecognizer(GestureHandlers{
		SingleTap: s.deferredTap,
	}, defaultOverlayHit)

	s.visibility = NewVisibilityObserver()
	s.unsubVis = s.visibility.Subscribe(func(videoID string, ratio float64) {
		if ratio >= ActivationThreshold {
			s.setActive(videoID)
		}
	})
	return s
}

// Load replaces the session's video list. Discovery is globally ranked then
// shuffled fresh on every load; following is ranked and restricted to
// followed authors. Fetch failures degrade to an empty list: logged, never
// fatal to the session.
func (s *FeedSession) Load(ctx context.Context) []model.Video {
	var (
		raw []model.Video
		err error
	)

	switch s.Mode {
	case model.ModeFollowing:
		var authors []string
		authors, err = s.follows.FollowedAuthorIDs(ctx, s.ViewerID)
		if err == nil {
			raw, err = s.candidates.FetchCandidatesByAuthors(ctx, authors, repository.CandidateWindow)
		}
	default:
		raw, err = s.candidates.FetchCandidates(ctx, repository.CandidateWindow)
	}

	if err != nil {
		log.Printf("feed-session %s: candidate fetch error (degrading to empty): %v", s.ID, err)
		raw = nil
	}

	var ranked []model.Video
	if s.Mode == model.ModeFollowing {
		ranked = s.ranker.RankTop(raw, GeneralFeedSize)
	} else {
		ranked = s.ranker.RankTop(raw, RecommendedFeedSize)
		// Plain unweighted shuffle; a fresh order on every load.
		rand.Shuffle(len(ranked), func(i, j int) {
			ranked[i], ranked[j] = ranked[j], ranked[i]
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.videos = ranked
	s.slots = make(map[string]*slot, len(ranked))
	for i := range ranked {
		v := &ranked[i]
		sl := &slot{
			ctrl:   NewPlaybackController(v.VideoID, s.newMedia(v)),
			slides: len(v.SlideKeys),
		}
		if cm, ok := sl.ctrl.media.(*ClockMedia); ok {
			sl.clock = cm
		}
		s.slots[v.VideoID] = sl
	}
	s.activeID = ""
	s.lastTouched = time.Now()

	return ranked
}

// SetItems installs the viewer-resolved feed items built from the loaded
// videos. Item flags and counters are the session-local state the optimistic
// toggles flip.
func (s *FeedSession) SetItems(items []model.FeedItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = items
	s.itemIndex = make(map[string]int, len(items))
	for i := range items {
		s.itemIndex[items[i].VideoID] = i
	}
}

// Items returns the session's ordered feed items.
func (s *FeedSession) Items() []model.FeedItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items
}

// HandleVisibility consumes one visibility sample by fanning it out through
// the session's observer. Crossing the activation threshold makes that video
// the single active item; the most recent crossing wins.
func (s *FeedSession) HandleVisibility(videoID string, ratio float64) {
	s.touch()
	s.visibility.Notify(videoID, ratio)
}

// ObserveVisibility registers an extra visibility listener (metrics, debug
// tooling). The returned cancel must be called before the session closes.
func (s *FeedSession) ObserveVisibility(fn VisibilityFunc) (cancel func()) {
	return s.visibility.Subscribe(fn)
}

// setActive switches the active slot. Deactivating the previous controller
// and activating the new one happen inside one critical section: at no point
// are two slots decoding. Each activation records exactly one view.
func (s *FeedSession) setActive(videoID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || videoID == s.activeID {
		return
	}
	next, ok := s.slots[videoID]
	if !ok {
		return
	}

	if prev, ok := s.slots[s.activeID]; ok {
		prev.ctrl.Deactivate()
	}

	muted := !s.activatedOnce
	next.ctrl.Activate(muted)
	s.activatedOnce = true
	s.activeID = videoID
	s.lastTouched = time.Now()

	if s.views != nil {
		s.views.Record(videoID)
	}
}

// ActiveVideoID returns the id of the currently active item, if any.
func (s *FeedSession) ActiveVideoID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Gesture classifies a touch sequence on a video card and applies its side
// effect: double tap likes (optimistically), swipe moves the slideshow,
// single tap toggles play/pause after the double-tap window passes.
func (s *FeedSession) Gesture(ctx context.Context, videoID string, samples []model.TouchSample) (*model.GestureResponse, error) {
	s.touch()

	kind := s.recognizer.HandleTouch(videoID, samples)
	resp := &model.GestureResponse{Gesture: kind.String()}

	switch kind {
	case GestureDoubleTap:
		liked, err := s.Like(ctx, videoID)
		if err != nil {
			return nil, err
		}
		resp.Liked = &liked
	case GestureSwipeLeft:
		sl := s.moveSlide(videoID, +1)
		resp.Slide = &sl
	case GestureSwipeRight:
		sl := s.moveSlide(videoID, -1)
		resp.Slide = &sl
	}

	if snap, ok := s.Snapshot(videoID); ok {
		resp.Playback = &snap
	}
	return resp, nil
}

// deferredTap is the recognizer's single-tap callback, firing after the
// double-tap window has passed without a second tap.
func (s *FeedSession) deferredTap(videoID string) {
	s.mu.Lock()
	sl, ok := s.slots[videoID]
	closed := s.closed
	s.mu.Unlock()

	if !ok || closed {
		return
	}
	sl.ctrl.ToggleTap()
}

// Like flips the viewer's like on a video with optimistic local mutation:
// the item's flag and counter move immediately, a single remote write is
// attempted, and on failure the flip is reverted. Returns the (possibly
// reverted) final liked state.
func (s *FeedSession) Like(ctx context.Context, videoID string) (bool, error) {
	if s.ViewerID == "" {
		return false, ErrSignInRequired
	}

	s.mu.Lock()
	idx, ok := s.itemIndex[videoID]
	if !ok {
		s.mu.Unlock()
		return false, errors.New("video not in session")
	}
	prevLiked := s.items[idx].Liked
	prevCount := s.items[idx].LikeCount
	s.mu.Unlock()

	target := !prevLiked

	// The item list may be replaced while the write is in flight, so the
	// closures re-resolve the index instead of trusting the captured one.
	apply := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		idx, ok := s.itemIndex[videoID]
		if !ok {
			return
		}
		s.items[idx].Liked = target
		if target {
			s.items[idx].LikeCount = prevCount + 1
		} else {
			s.items[idx].LikeCount = max(prevCount-1, 0)
		}
	}
	revert := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		idx, ok := s.itemIndex[videoID]
		if !ok {
			return
		}
		s.items[idx].Liked = prevLiked
		s.items[idx].LikeCount = prevCount
	}
	write := func(ctx context.Context) error {
		return s.likes.SetLike(ctx, s.ViewerID, videoID, target)
	}

	if err := RunOptimistic(ctx, apply, revert, write); err != nil {
		log.Printf("feed-session %s: like write failed, reverted: %v", s.ID, err)
		return prevLiked, err
	}
	return target, nil
}

// moveSlide advances or retreats a slideshow post's visible slide, clamped
// to the slide range. Non-slideshow posts ignore swipes.
func (s *FeedSession) moveSlide(videoID string, delta int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[videoID]
	if !ok || sl.slides == 0 {
		return 0
	}
	sl.slide += delta
	if sl.slide < 0 {
		sl.slide = 0
	}
	if sl.slide > sl.slides-1 {
		sl.slide = sl.slides - 1
	}
	return sl.slide
}

// Playback applies a manual control to a slot and returns its new snapshot.
func (s *FeedSession) Playback(videoID, op string, position float64) (*model.PlaybackSnapshot, error) {
	s.touch()

	s.mu.Lock()
	sl, ok := s.slots[videoID]
	s.mu.Unlock()
	if !ok {
		return nil, errors.New("video not in session")
	}

	switch op {
	case "seek":
		sl.ctrl.Seek(position)
	case "rate":
		sl.ctrl.CycleRate()
	case "mute":
		sl.ctrl.ToggleMute()
	default:
		return nil, errors.New("unknown playback op: " + op)
	}

	snap := sl.ctrl.Snapshot()
	snap.Slide = s.slideOf(videoID)
	return &snap, nil
}

// Snapshot returns the playback snapshot for one slot.
func (s *FeedSession) Snapshot(videoID string) (model.PlaybackSnapshot, bool) {
	s.mu.Lock()
	sl, ok := s.slots[videoID]
	s.mu.Unlock()
	if !ok {
		return model.PlaybackSnapshot{}, false
	}

	snap := sl.ctrl.Snapshot()
	snap.Slide = s.slideOf(videoID)
	return snap, true
}

func (s *FeedSession) slideOf(videoID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok := s.slots[videoID]; ok {
		return sl.slide
	}
	return 0
}

// Tick drives the active slot's virtual clock so end-of-media loops fire
// without a client round trip.
func (s *FeedSession) Tick() {
	s.mu.Lock()
	sl, ok := s.slots[s.activeID]
	s.mu.Unlock()

	if ok && sl.clock != nil {
		sl.clock.Tick()
	}
}

// IdleSince reports the last time the session saw viewer input.
func (s *FeedSession) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTouched
}

func (s *FeedSession) touch() {
	s.mu.Lock()
	s.lastTouched = time.Now()
	s.mu.Unlock()
}

// Close tears the session down: stops the active slot, cancels the pending
// gesture timer, and releases the visibility subscription. No playback
// survives teardown.
func (s *FeedSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	active := s.slots[s.activeID]
	s.activeID = ""
	s.mu.Unlock()

	if active != nil {
		active.ctrl.Deactivate()
	}
	s.recognizer.Close()
	if s.unsubVis != nil {
		s.unsubVis()
		s.unsubVis = nil
	}
	s.visibility.Close()
}

// defaultOverlayHit marks the interactive overlay regions of a standard video
// card. Clients report pixel positions for a 1080x1920 reference card: the
// action rail on the right edge, the seek bar at the bottom, and the caption
// block above it.
func defaultOverlayHit(x, y float64) bool {
	const (
		cardW = 1080.0
		cardH = 1920.0
	)
	// Action rail: right 15% of the card, lower two thirds.
	if x > cardW*0.85 && y > cardH*0.33 {
		return true
	}
	// Seek bar: bottom 4%.
	if y > cardH*0.96 {
		return true
	}
	// Caption block: left 70%, between 84% and 96% height.
	if x < cardW*0.70 && y > cardH*0.84 && y <= cardH*0.96 {
		return true
	}
	return false
}
