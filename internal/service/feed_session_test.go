package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ViahIsGit/dksocial-sub000/internal/model"
)

type fakeCandidates struct {
	videos   []model.Video
	byAuthor map[string][]model.Video
	err      error
}

func (f *fakeCandidates) FetchCandidates(ctx context.Context, window int) ([]model.Video, error) {
	return f.videos, f.err
}

func (f *fakeCandidates) FetchCandidatesByAuthors(ctx context.Context, authorIDs []string, window int) ([]model.Video, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Video
	for _, a := range authorIDs {
		out = append(out, f.byAuthor[a]...)
	}
	return out, nil
}

type fakeFollows struct {
	authors []string
}

func (f *fakeFollows) FollowedAuthorIDs(ctx context.Context, viewerID string) ([]string, error) {
	return f.authors, nil
}

type fakeViews struct {
	mu      sync.Mutex
	records []string
}

func (f *fakeViews) Record(videoID string) {
	f.mu.Lock()
	f.records = append(f.records, videoID)
	f.mu.Unlock()
}

func (f *fakeViews) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type fakeLikes struct {
	mu      sync.Mutex
	fail    bool
	onWrite func()
	calls   []bool
}

func (f *fakeLikes) SetLike(ctx context.Context, viewerID, videoID string, liked bool) error {
	f.mu.Lock()
	f.calls = append(f.calls, liked)
	fail, hook := f.fail, f.onWrite
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if fail {
		return errors.New("store unavailable")
	}
	return nil
}

// memberLikes mirrors the store's idempotent set membership: adds and
// removes only count when they actually change the set.
type memberLikes struct {
	mu      sync.Mutex
	members map[string]bool
	changed int
}

func (f *memberLikes) SetLike(ctx context.Context, viewerID, videoID string, liked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.members == nil {
		f.members = make(map[string]bool)
	}
	key := viewerID + ":" + videoID
	if liked {
		if !f.members[key] {
			f.members[key] = true
			f.changed++
		}
	} else if f.members[key] {
		delete(f.members, key)
		f.changed++
	}
	return nil
}

func testVideos(n int) []model.Video {
	d := 30.0
	videos := make([]model.Video, n)
	for i := range videos {
		videos[i] = model.Video{
			VideoID:  string(rune('a' + i)),
			AuthorID: "author",
			Duration: &d,
			// Distinct scores keep ranking deterministic.
			LikeCount: n - i,
		}
	}
	return videos
}

func newTestSession(t *testing.T, videos []model.Video, viewerID string, likes LikeSink) (*FeedSession, *fakeViews) {
	t.Helper()

	views := &fakeViews{}
	if likes == nil {
		likes = &fakeLikes{}
	}
	s := NewFeedSession("test-session", model.ModeDiscovery, viewerID,
		&fakeCandidates{videos: videos}, &fakeFollows{}, NewRankService(), views, likes)
	s.newMedia = func(v *model.Video) MediaElement {
		var d float64
		if v.Duration != nil {
			d = *v.Duration
		}
		return newFakeMedia(d)
	}
	t.Cleanup(s.Close)

	loaded := s.Load(context.Background())
	items := make([]model.FeedItem, len(loaded))
	for i := range loaded {
		items[i] = model.FeedItem{
			VideoID:   loaded[i].VideoID,
			LikeCount: loaded[i].LikeCount,
		}
	}
	s.SetItems(items)
	return s, views
}

func findItem(t *testing.T, s *FeedSession, videoID string) model.FeedItem {
	t.Helper()
	for _, item := range s.Items() {
		if item.VideoID == videoID {
			return item
		}
	}
	t.Fatalf("item %q not in session", videoID)
	return model.FeedItem{}
}

func TestSession_LoadDegradesOnFetchError(t *testing.T) {
	s := NewFeedSession("s", model.ModeDiscovery, "",
		&fakeCandidates{err: errors.New("db down")}, &fakeFollows{}, NewRankService(), &fakeViews{}, &fakeLikes{})
	defer s.Close()

	if got := s.Load(context.Background()); len(got) != 0 {
		t.Errorf("loaded %d videos, want 0 on fetch error", len(got))
	}
}

func TestSession_FollowingModeUsesFollowedAuthors(t *testing.T) {
	followed := []model.Video{{VideoID: "f1", AuthorID: "alice"}}
	cand := &fakeCandidates{
		videos:   testVideos(5),
		byAuthor: map[string][]model.Video{"alice": followed},
	}
	s := NewFeedSession("s", model.ModeFollowing, "viewer",
		cand, &fakeFollows{authors: []string{"alice"}}, NewRankService(), &fakeViews{}, &fakeLikes{})
	defer s.Close()

	got := s.Load(context.Background())
	if len(got) != 1 || got[0].VideoID != "f1" {
		t.Errorf("loaded %v, want the single followed-author video", got)
	}
}

func TestSession_AtMostOneActive(t *testing.T) {
	s, _ := newTestSession(t, testVideos(3), "viewer", nil)

	s.HandleVisibility("a", 0.9)
	if got := s.ActiveVideoID(); got != "a" {
		t.Fatalf("active = %q, want a", got)
	}

	s.HandleVisibility("b", 0.8)
	if got := s.ActiveVideoID(); got != "b" {
		t.Fatalf("active = %q, want b", got)
	}

	// The previous slot must be fully unmounted, not paused.
	snapA, _ := s.Snapshot("a")
	snapB, _ := s.Snapshot("b")
	if snapA.State != "unmounted" {
		t.Errorf("slot a state = %s, want unmounted", snapA.State)
	}
	if snapB.State != "playing" {
		t.Errorf("slot b state = %s, want playing", snapB.State)
	}
}

func TestSession_BelowThresholdIgnored(t *testing.T) {
	s, views := newTestSession(t, testVideos(3), "viewer", nil)

	s.HandleVisibility("a", 0.69)
	if got := s.ActiveVideoID(); got != "" {
		t.Errorf("active = %q, want none below the threshold", got)
	}
	if views.count() != 0 {
		t.Errorf("views = %d, want 0", views.count())
	}
}

func TestSession_FirstActivationMuted(t *testing.T) {
	s, _ := newTestSession(t, testVideos(3), "viewer", nil)

	s.HandleVisibility("a", 0.9)
	snap, _ := s.Snapshot("a")
	if !snap.Muted {
		t.Error("first activation should start muted")
	}

	s.HandleVisibility("b", 0.9)
	snap, _ = s.Snapshot("b")
	if snap.Muted {
		t.Error("later activations should start unmuted")
	}
}

func TestSession_OneViewPerActivation(t *testing.T) {
	s, views := newTestSession(t, testVideos(3), "viewer", nil)

	s.HandleVisibility("a", 0.9)
	s.HandleVisibility("a", 0.95) // still active, no new activation
	if views.count() != 1 {
		t.Fatalf("views = %d, want 1", views.count())
	}

	s.HandleVisibility("b", 0.9)
	s.HandleVisibility("a", 0.9) // scroll back counts again
	if views.count() != 3 {
		t.Errorf("views = %d, want 3", views.count())
	}
}

func TestSession_UnknownVideoIgnored(t *testing.T) {
	s, _ := newTestSession(t, testVideos(3), "viewer", nil)

	s.HandleVisibility("nope", 0.9)
	if got := s.ActiveVideoID(); got != "" {
		t.Errorf("active = %q, want none", got)
	}
}

func TestSession_LikeFlipsItemState(t *testing.T) {
	likes := &fakeLikes{}
	s, _ := newTestSession(t, testVideos(3), "viewer", likes)

	liked, err := s.Like(context.Background(), "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !liked {
		t.Fatal("want liked=true after first flip")
	}

	item := findItem(t, s, "a")
	if !item.Liked || item.LikeCount != 4 {
		t.Errorf("item = liked=%v count=%d, want liked=true count=4", item.Liked, item.LikeCount)
	}

	// Second flip unlikes.
	liked, err = s.Like(context.Background(), "a")
	if err != nil || liked {
		t.Errorf("second flip = (%v, %v), want (false, nil)", liked, err)
	}
}

func TestSession_LikeRevertsOnWriteFailure(t *testing.T) {
	likes := &fakeLikes{fail: true}
	s, _ := newTestSession(t, testVideos(3), "viewer", likes)

	liked, err := s.Like(context.Background(), "a")
	if err == nil {
		t.Fatal("expected error from failing writer")
	}
	if liked {
		t.Error("returned state should be the reverted one")
	}

	item := findItem(t, s, "a")
	if item.Liked || item.LikeCount != 3 {
		t.Errorf("item = liked=%v count=%d, want the pre-flip state back", item.Liked, item.LikeCount)
	}
}

func TestSession_LikeRevertSurvivesItemReplacement(t *testing.T) {
	likes := &fakeLikes{fail: true}
	s, _ := newTestSession(t, testVideos(3), "viewer", likes)

	// The item list is replaced while the failing write is in flight, so the
	// revert must not touch the slot the liked video used to occupy.
	likes.onWrite = func() {
		s.SetItems([]model.FeedItem{{VideoID: "zz"}})
	}

	if _, err := s.Like(context.Background(), "a"); err == nil {
		t.Fatal("expected error from failing writer")
	}

	item := findItem(t, s, "zz")
	if item.Liked || item.LikeCount != 0 {
		t.Errorf("replacement item = liked=%v count=%d, want untouched", item.Liked, item.LikeCount)
	}
}

func TestSession_RepeatedLikeAddIsSetNoop(t *testing.T) {
	likes := &memberLikes{}
	s, _ := newTestSession(t, testVideos(3), "viewer", likes)

	if _, err := s.Like(context.Background(), "a"); err != nil {
		t.Fatalf("first like: %v", err)
	}

	// A stale item snapshot makes the session send the directional add a
	// second time; membership must not double up.
	stale := make([]model.FeedItem, len(s.Items()))
	copy(stale, s.Items())
	for i := range stale {
		if stale[i].VideoID == "a" {
			stale[i].Liked = false
		}
	}
	s.SetItems(stale)

	if _, err := s.Like(context.Background(), "a"); err != nil {
		t.Fatalf("repeated like: %v", err)
	}

	likes.mu.Lock()
	members, changed := len(likes.members), likes.changed
	likes.mu.Unlock()
	if members != 1 {
		t.Errorf("membership size = %d, want exactly 1", members)
	}
	if changed != 1 {
		t.Errorf("membership changes = %d, want 1 (second add is a no-op)", changed)
	}
}

func TestSession_AnonymousLikeRejected(t *testing.T) {
	s, _ := newTestSession(t, testVideos(3), "", nil)

	_, err := s.Like(context.Background(), "a")
	if !errors.Is(err, ErrSignInRequired) {
		t.Errorf("err = %v, want ErrSignInRequired", err)
	}
}

func TestSession_SwipeMovesSlideshowSlides(t *testing.T) {
	d := 30.0
	videos := []model.Video{{
		VideoID:   "slides",
		AuthorID:  "author",
		Duration:  &d,
		SlideKeys: []string{"s1", "s2", "s3"},
	}}
	s, _ := newTestSession(t, videos, "viewer", nil)

	if got := s.moveSlide("slides", +1); got != 1 {
		t.Errorf("slide = %d, want 1", got)
	}
	if got := s.moveSlide("slides", +1); got != 2 {
		t.Errorf("slide = %d, want 2", got)
	}
	// Clamped at the last slide.
	if got := s.moveSlide("slides", +1); got != 2 {
		t.Errorf("slide = %d, want 2 (clamped)", got)
	}
	if got := s.moveSlide("slides", -1); got != 1 {
		t.Errorf("slide = %d, want 1", got)
	}
}

func TestSession_SwipeOnPlainVideoNoop(t *testing.T) {
	s, _ := newTestSession(t, testVideos(1), "viewer", nil)

	if got := s.moveSlide("a", +1); got != 0 {
		t.Errorf("slide = %d, want 0 for non-slideshow", got)
	}
}

func TestSession_PlaybackOps(t *testing.T) {
	s, _ := newTestSession(t, testVideos(1), "viewer", nil)
	s.HandleVisibility("a", 0.9)

	snap, err := s.Playback("a", "seek", 12)
	if err != nil {
		t.Fatalf("seek: %v", err)
	}
	if snap.Position != 12 {
		t.Errorf("position = %.1f, want 12", snap.Position)
	}

	snap, _ = s.Playback("a", "rate", 0)
	if snap.Rate != 1.5 {
		t.Errorf("rate = %.1f, want 1.5", snap.Rate)
	}

	snap, _ = s.Playback("a", "mute", 0)
	if !snap.Muted {
		t.Error("want muted after mute op")
	}

	if _, err := s.Playback("a", "rewind", 0); err == nil {
		t.Error("unknown op should error")
	}
	if _, err := s.Playback("zzz", "seek", 0); err == nil {
		t.Error("unknown video should error")
	}
}

func TestSession_DoubleTapGestureLikes(t *testing.T) {
	likes := &fakeLikes{}
	s, _ := newTestSession(t, testVideos(2), "viewer", likes)

	samples := tapAt(400, 900)
	resp, err := s.Gesture(context.Background(), "a", samples)
	if err != nil {
		t.Fatalf("first tap: %v", err)
	}
	if resp.Gesture != "tap" {
		t.Fatalf("gesture = %s, want tap", resp.Gesture)
	}

	resp, err = s.Gesture(context.Background(), "a", samples)
	if err != nil {
		t.Fatalf("second tap: %v", err)
	}
	if resp.Gesture != "double_tap" {
		t.Fatalf("gesture = %s, want double_tap", resp.Gesture)
	}
	if resp.Liked == nil || !*resp.Liked {
		t.Error("double tap should report liked=true")
	}
	if item := findItem(t, s, "a"); !item.Liked {
		t.Error("double tap should flip the item's like flag")
	}
}

func TestSession_CloseStopsPlayback(t *testing.T) {
	s, _ := newTestSession(t, testVideos(2), "viewer", nil)
	s.HandleVisibility("a", 0.9)

	s.Close()

	snap, _ := s.Snapshot("a")
	if snap.State != "unmounted" {
		t.Errorf("state after close = %s, want unmounted", snap.State)
	}
	// Visibility after close must not reactivate anything.
	s.HandleVisibility("b", 0.9)
	if got := s.ActiveVideoID(); got != "" {
		t.Errorf("active after close = %q, want none", got)
	}
}
