package service

import (
	"sort"
	"time"

	"github.com/ViahIsGit/dksocial-sub000/internal/model"
)

// Engagement weights for the popularity score.
const (
	likeWeight     = 3.0
	commentWeight  = 2.0
	shareWeight    = 2.0
	favoriteWeight = 1.0
	viewWeight     = 0.1
)

// Feed sizes per view.
const (
	RecommendedFeedSize = 30
	GeneralFeedSize     = 50
)

type RankService struct {
	// observe, when set, receives the wall time of each ranking pass.
	observe func(seconds float64)
}

func NewRankService() *RankService {
	return &RankService{}
}

// SetObserver registers a duration callback for ranking passes. Call before
// serving; not safe to swap while rankings run.
func (s *RankService) SetObserver(fn func(seconds float64)) {
	s.observe = fn
}

// Score computes a video's popularity score from its engagement counters:
//
//	score = 3·likes + 2·comments + 2·shares + 1·favorites + 0.1·views
func (s *RankService) Score(v *model.Video) float64 {
	return likeWeight*float64(v.LikeCount) +
		commentWeight*float64(v.CommentCount) +
		shareWeight*float64(v.ShareCount) +
		favoriteWeight*float64(v.FavoriteCount) +
		viewWeight*float64(v.ViewCount)
}

// RankTop sorts the candidates by descending popularity score and returns the
// top n. The sort is stable; order among equal scores carries no meaning and
// must not be relied upon. An empty candidate set yields an empty result.
func (s *RankService) RankTop(videos []model.Video, n int) []model.Video {
	if s.observe != nil {
		start := time.Now()
		defer func() { s.observe(time.Since(start).Seconds()) }()
	}

	ranked := make([]model.Video, len(videos))
	copy(ranked, videos)

	sort.SliceStable(ranked, func(i, j int) bool {
		return s.Score(&ranked[i]) > s.Score(&ranked[j])
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
