package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/ViahIsGit/dksocial-sub000/internal/model"
	"github.com/ViahIsGit/dksocial-sub000/internal/repository"
	"github.com/ViahIsGit/dksocial-sub000/internal/storage"
)

// UserService resolves account profiles and platform statistics.
type UserService struct {
	users *repository.UserRepo
	media *storage.MediaStore
	cache *CacheService
}

func NewUserService(users *repository.UserRepo, media *storage.MediaStore, cache *CacheService) *UserService {
	return &UserService{users: users, media: media, cache: cache}
}

// GetProfile returns a user's public profile as seen by the viewer. An empty
// viewerID (anonymous) leaves the following flag false.
func (s *UserService) GetProfile(ctx context.Context, userID, viewerID string) (*model.ProfileResponse, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &model.ProfileResponse{
		UserID:         u.UserID,
		Username:       u.Username,
		Bio:            u.Bio,
		FollowerCount:  u.FollowerCount,
		FollowingCount: u.FollowingCount,
		VideoCount:     u.VideoCount,
		AccountAge:     int(time.Since(u.CreatedAt).Hours() / 24),
	}
	if u.AvatarKey != nil {
		resp.AvatarURL = s.media.ResolveURL(ctx, *u.AvatarKey)
	}
	if viewerID != "" && viewerID != userID {
		following, err := s.users.IsFollowing(ctx, viewerID, userID)
		if err != nil {
			return nil, err
		}
		resp.Following = following
	}
	return resp, nil
}

// GetStats returns platform-wide statistics, cache-aside with a short TTL so
// the aggregate query does not run on every request.
func (s *UserService) GetStats(ctx context.Context) (*model.StatsResponse, error) {
	if data, err := s.cache.GetStats(ctx); err == nil && data != nil {
		var st model.StatsResponse
		if err := json.Unmarshal(data, &st); err == nil {
			return &st, nil
		}
	}

	st, err := s.users.GetStats(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetStats(ctx, st); err != nil {
		log.Printf("cache: set stats error: %v", err)
	}
	return st, nil
}
