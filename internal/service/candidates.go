package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ViahIsGit/dksocial-sub000/internal/model"
)

// CachedCandidates fronts a candidate source with the ranked cache the
// trending worker keeps warm. Discovery fetches hit the cache first; the
// following feed is viewer-specific and always goes to the store.
type CachedCandidates struct {
	source CandidateSource
	cache  *CacheService
}

func NewCachedCandidates(source CandidateSource, cache *CacheService) *CachedCandidates {
	return &CachedCandidates{source: source, cache: cache}
}

func (c *CachedCandidates) FetchCandidates(ctx context.Context, window int) ([]model.Video, error) {
	if data, err := c.cache.GetRanked(ctx, string(model.ModeDiscovery)); err == nil && data != nil {
		var videos []model.Video
		if err := json.Unmarshal(data, &videos); err != nil {
			log.Printf("candidates: unreadable ranked cache entry ignored: %v", err)
		} else if len(videos) > 0 {
			return videos, nil
		}
	}
	return c.source.FetchCandidates(ctx, window)
}

func (c *CachedCandidates) FetchCandidatesByAuthors(ctx context.Context, authorIDs []string, window int) ([]model.Video, error) {
	return c.source.FetchCandidatesByAuthors(ctx, authorIDs, window)
}
