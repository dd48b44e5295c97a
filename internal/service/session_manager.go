package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ViahIsGit/dksocial-sub000/internal/model"
)

const (
	// SessionIdleTTL evicts sessions with no viewer input for this long.
	SessionIdleTTL = 10 * time.Minute
	// sessionSweepInterval paces the eviction and clock-tick loop.
	sessionSweepInterval = time.Second
)

// ErrSessionNotFound marks lookups of unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// ItemBuilder resolves ranked videos into viewer-specific feed items
// (media URLs, like/favorite/follow flags, scores).
type ItemBuilder interface {
	BuildItems(ctx context.Context, viewerID string, videos []model.Video) ([]model.FeedItem, error)
}

// SessionManager owns every open feed session, keyed by a server-issued
// uuid. A background loop ticks active playback clocks and evicts idle
// sessions.
type SessionManager struct {
	candidates CandidateSource
	follows    FollowSource
	ranker     *RankService
	views      ViewSink
	likes      LikeSink
	builder    ItemBuilder

	mu       sync.Mutex
	sessions map[string]*FeedSession
}

func NewSessionManager(candidates CandidateSource, follows FollowSource,
	ranker *RankService, views ViewSink, likes LikeSink, builder ItemBuilder) *SessionManager {

	return &SessionManager{
		candidates: candidates,
		follows:    follows,
		ranker:     ranker,
		views:      views,
		likes:      likes,
		builder:    builder,
		sessions:   make(map[string]*FeedSession),
	}
}

// Create opens a new feed session for the viewer, loads and ranks its feed,
// and returns the session with its resolved items installed.
func (m *SessionManager) Create(ctx context.Context, viewerID string, mode model.FeedMode) (*FeedSession, error) {
	sess := NewFeedSession(uuid.NewString(), mode, viewerID,
		m.candidates, m.follows, m.ranker, m.views, m.likes)

	videos := sess.Load(ctx)

	items, err := m.builder.BuildItems(ctx, viewerID, videos)
	if err != nil {
		// Flags and URLs are decoration; the ranked list still serves.
		log.Printf("session %s: item build degraded: %v", sess.ID, err)
		items = make([]model.FeedItem, 0, len(videos))
		for i := range videos {
			v := &videos[i]
			items = append(items, model.FeedItem{
				VideoID:       v.VideoID,
				AuthorID:      v.AuthorID,
				Caption:       v.Caption,
				Duration:      v.Duration,
				Score:         m.ranker.Score(v),
				LikeCount:     v.LikeCount,
				FavoriteCount: v.FavoriteCount,
				CommentCount:  v.CommentCount,
				ViewCount:     v.ViewCount,
				ShareCount:    v.ShareCount,
			})
		}
	}
	sess.SetItems(items)

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	log.Printf("session %s: opened (mode=%s, items=%d)", sess.ID, mode, len(items))
	return sess, nil
}

// Get returns an open session by id.
func (m *SessionManager) Get(id string) (*FeedSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Delete closes and removes a session. Unknown ids are a no-op.
func (m *SessionManager) Delete(id string) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		sess.Close()
		log.Printf("session %s: closed", id)
	}
}

// Count reports the number of open sessions.
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Start runs the sweep loop until ctx is cancelled, then closes every
// remaining session.
func (m *SessionManager) Start(ctx context.Context) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

// sweep ticks every session's active clock and evicts idle sessions.
func (m *SessionManager) sweep() {
	m.mu.Lock()
	live := make([]*FeedSession, 0, len(m.sessions))
	var expired []*FeedSession
	cutoff := time.Now().Add(-SessionIdleTTL)
	for id, sess := range m.sessions {
		if sess.IdleSince().Before(cutoff) {
			delete(m.sessions, id)
			expired = append(expired, sess)
			continue
		}
		live = append(live, sess)
	}
	m.mu.Unlock()

	for _, sess := range live {
		sess.Tick()
	}
	for _, sess := range expired {
		sess.Close()
		log.Printf("session %s: evicted after idle timeout", sess.ID)
	}
}

func (m *SessionManager) closeAll() {
	m.mu.Lock()
	all := make([]*FeedSession, 0, len(m.sessions))
	for _, sess := range m.sessions {
		all = append(all, sess)
	}
	m.sessions = make(map[string]*FeedSession)
	m.mu.Unlock()

	for _, sess := range all {
		sess.Close()
	}
}
