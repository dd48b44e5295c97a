package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/ViahIsGit/dksocial-sub000/internal/model"
	"github.com/ViahIsGit/dksocial-sub000/internal/repository"
	"github.com/ViahIsGit/dksocial-sub000/internal/storage"
)

// VideoService resolves videos into API shapes: single lookups go through
// the cache, feed batches get presigned URLs and viewer-relative flags.
type VideoService struct {
	videos      *repository.VideoRepo
	engagements *repository.EngagementRepo
	users       *repository.UserRepo
	media       *storage.MediaStore
	ranker      *RankService
	cache       *CacheService
}

func NewVideoService(videos *repository.VideoRepo, engagements *repository.EngagementRepo,
	users *repository.UserRepo, media *storage.MediaStore, ranker *RankService,
	cache *CacheService) *VideoService {

	return &VideoService{
		videos:      videos,
		engagements: engagements,
		users:       users,
		media:       media,
		ranker:      ranker,
		cache:       cache,
	}
}

// GetVideo fetches one video, cache-aside. Cache misses and cache errors
// both fall through to the store.
func (s *VideoService) GetVideo(ctx context.Context, videoID string) (*model.Video, error) {
	if data, err := s.cache.GetVideo(ctx, videoID); err == nil && data != nil {
		var v model.Video
		if err := json.Unmarshal(data, &v); err == nil {
			return &v, nil
		}
	}

	v, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetVideo(ctx, videoID, v); err != nil {
		log.Printf("cache: set video error: %v", err)
	}
	return v, nil
}

// CreateVideo registers an already-uploaded post and returns it.
func (s *VideoService) CreateVideo(ctx context.Context, authorID string, req *model.CreateVideoRequest) (*model.Video, error) {
	v := &model.Video{
		VideoID:   uuid.NewString(),
		AuthorID:  authorID,
		MediaKey:  req.MediaKey,
		SlideKeys: req.SlideKeys,
		Duration:  req.Duration,
	}
	if c := strings.TrimSpace(req.Caption); c != "" {
		v.Caption = &c
	}
	if req.ThumbKey != "" {
		v.ThumbKey = &req.ThumbKey
	}

	if err := s.videos.Insert(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// BuildItems resolves a ranked video batch into feed items: presigned media
// URLs plus the viewer's like/favorite/follow flags, fetched in three batch
// queries rather than per item. Anonymous viewers get all flags false.
func (s *VideoService) BuildItems(ctx context.Context, viewerID string, videos []model.Video) ([]model.FeedItem, error) {
	if len(videos) == 0 {
		return []model.FeedItem{}, nil
	}

	videoIDs := make([]string, 0, len(videos))
	authorIDs := make([]string, 0, len(videos))
	seen := make(map[string]bool, len(videos))
	for i := range videos {
		videoIDs = append(videoIDs, videos[i].VideoID)
		if a := videos[i].AuthorID; !seen[a] {
			seen[a] = true
			authorIDs = append(authorIDs, a)
		}
	}

	var (
		liked, favorited, following map[string]bool
		err                         error
	)
	if viewerID != "" {
		if liked, err = s.engagements.LikedSet(ctx, viewerID, videoIDs); err != nil {
			return nil, err
		}
		if favorited, err = s.engagements.FavoritedSet(ctx, viewerID, videoIDs); err != nil {
			return nil, err
		}
		if following, err = s.users.FollowingSet(ctx, viewerID, authorIDs); err != nil {
			return nil, err
		}
	}

	items := make([]model.FeedItem, 0, len(videos))
	for i := range videos {
		v := &videos[i]
		item := model.FeedItem{
			VideoID:         v.VideoID,
			AuthorID:        v.AuthorID,
			Caption:         v.Caption,
			MediaURL:        s.media.ResolveURL(ctx, v.MediaKey),
			Duration:        v.Duration,
			Score:           s.ranker.Score(v),
			LikeCount:       v.LikeCount,
			FavoriteCount:   v.FavoriteCount,
			CommentCount:    v.CommentCount,
			ViewCount:       v.ViewCount,
			ShareCount:      v.ShareCount,
			Liked:           liked[v.VideoID],
			Favorited:       favorited[v.VideoID],
			FollowingAuthor: following[v.AuthorID],
		}
		if v.ThumbKey != nil {
			item.ThumbnailURL = s.media.ResolveURL(ctx, *v.ThumbKey)
		}
		for _, key := range v.SlideKeys {
			item.SlideURLs = append(item.SlideURLs, s.media.ResolveURL(ctx, key))
		}
		items = append(items, item)
	}
	return items, nil
}
