package service

import (
	"context"
	"log"
	"time"

	"github.com/ViahIsGit/dksocial-sub000/internal/model"
	"github.com/ViahIsGit/dksocial-sub000/internal/repository"
)

// TrendingRefreshInterval paces the ranked-cache warm cycle.
const TrendingRefreshInterval = 30 * time.Second

// TrendingWorker keeps the discovery ranking warm in the cache so session
// creation does not pay the candidate query on every open. It runs the same
// fetch-and-rank as a discovery session load, minus the shuffle (the shuffle
// is per session, the ranking is global).
type TrendingWorker struct {
	candidates CandidateSource
	ranker     *RankService
	cache      *CacheService
	interval   time.Duration
}

func NewTrendingWorker(candidates CandidateSource, ranker *RankService, cache *CacheService) *TrendingWorker {
	return &TrendingWorker{
		candidates: candidates,
		ranker:     ranker,
		cache:      cache,
		interval:   TrendingRefreshInterval,
	}
}

// Start refreshes the ranked cache on a fixed interval until ctx is
// cancelled. One refresh runs immediately at startup.
func (w *TrendingWorker) Start(ctx context.Context) {
	log.Printf("trending-worker: starting (refresh=%s)", w.interval)

	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("trending-worker: stopping (context cancelled)")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *TrendingWorker) refresh(ctx context.Context) {
	videos, err := w.candidates.FetchCandidates(ctx, repository.CandidateWindow)
	if err != nil {
		log.Printf("trending-worker: candidate fetch error: %v", err)
		return
	}

	ranked := w.ranker.RankTop(videos, GeneralFeedSize)
	if err := w.cache.SetRanked(ctx, string(model.ModeDiscovery), ranked); err != nil {
		log.Printf("trending-worker: cache write error: %v", err)
		return
	}
	log.Printf("trending-worker: refreshed %d ranked videos", len(ranked))
}
