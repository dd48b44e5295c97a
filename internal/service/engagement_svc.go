package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/ViahIsGit/dksocial-sub000/internal/model"
	"github.com/ViahIsGit/dksocial-sub000/internal/repository"
)

// ErrSignInRequired is returned when an anonymous viewer attempts an
// engagement action. Rejected locally, before any remote call; the UI turns
// it into a sign-in prompt, not an error state.
var ErrSignInRequired = errors.New("sign-in required")

// ErrSelfFollow rejects a viewer following their own account.
var ErrSelfFollow = errors.New("cannot follow yourself")

// EngagementService performs the remote half of engagement toggles: set
// membership writes, counter maintenance, cache invalidation, and the
// fire-and-forget event stream.
type EngagementService struct {
	repo     *repository.EngagementRepo
	users    *repository.UserRepo
	videos   *repository.VideoRepo
	comments *repository.CommentRepo
	cache    *CacheService
	events   *EventPublisher
}

func NewEngagementService(
	repo *repository.EngagementRepo,
	users *repository.UserRepo,
	videos *repository.VideoRepo,
	comments *repository.CommentRepo,
	cache *CacheService,
	events *EventPublisher,
) *EngagementService {
	return &EngagementService{repo: repo, users: users, videos: videos, comments: comments, cache: cache, events: events}
}

// ToggleLike flips the viewer's membership in the video's like set and
// returns the new state with the refreshed counter.
func (s *EngagementService) ToggleLike(ctx context.Context, viewerID, videoID string) (*model.ToggleResponse, error) {
	if viewerID == "" {
		return nil, ErrSignInRequired
	}

	liked, err := s.repo.HasLike(ctx, videoID, viewerID)
	if err != nil {
		return nil, err
	}

	if err := s.SetLike(ctx, viewerID, videoID, !liked); err != nil {
		return nil, err
	}

	v, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return &model.ToggleResponse{Active: !liked, Count: v.LikeCount}, nil
}

// SetLike writes a directional like mutation: liked=true adds the viewer to
// the set, liked=false removes them. Idempotent either way. Used directly by
// feed sessions as the remote half of an optimistic flip.
func (s *EngagementService) SetLike(ctx context.Context, viewerID, videoID string, liked bool) error {
	if viewerID == "" {
		return ErrSignInRequired
	}

	var err error
	kind := "like"
	if liked {
		_, err = s.repo.AddLike(ctx, videoID, viewerID)
	} else {
		_, err = s.repo.RemoveLike(ctx, videoID, viewerID)
		kind = "unlike"
	}
	if err != nil {
		return fmt.Errorf("%s write: %w", kind, err)
	}

	s.afterWrite(ctx, kind, videoID, viewerID)
	return nil
}

// ToggleFavorite flips the viewer's membership in the video's favorite set.
func (s *EngagementService) ToggleFavorite(ctx context.Context, viewerID, videoID string) (*model.ToggleResponse, error) {
	if viewerID == "" {
		return nil, ErrSignInRequired
	}

	favorited, err := s.repo.HasFavorite(ctx, videoID, viewerID)
	if err != nil {
		return nil, err
	}

	if err := s.SetFavorite(ctx, viewerID, videoID, !favorited); err != nil {
		return nil, err
	}

	v, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return &model.ToggleResponse{Active: !favorited, Count: v.FavoriteCount}, nil
}

// SetFavorite writes a directional favorite mutation.
func (s *EngagementService) SetFavorite(ctx context.Context, viewerID, videoID string, favorited bool) error {
	if viewerID == "" {
		return ErrSignInRequired
	}

	var err error
	kind := "favorite"
	if favorited {
		_, err = s.repo.AddFavorite(ctx, videoID, viewerID)
	} else {
		_, err = s.repo.RemoveFavorite(ctx, videoID, viewerID)
		kind = "unfavorite"
	}
	if err != nil {
		return fmt.Errorf("%s write: %w", kind, err)
	}

	s.afterWrite(ctx, kind, videoID, viewerID)
	return nil
}

// ToggleFollow flips the viewer->author follow relationship.
func (s *EngagementService) ToggleFollow(ctx context.Context, viewerID, authorID string) (*model.ToggleResponse, error) {
	if viewerID == "" {
		return nil, ErrSignInRequired
	}
	if viewerID == authorID {
		return nil, ErrSelfFollow
	}

	following, err := s.users.IsFollowing(ctx, viewerID, authorID)
	if err != nil {
		return nil, err
	}

	kind := "follow"
	if following {
		kind = "unfollow"
		_, err = s.users.Unfollow(ctx, viewerID, authorID)
	} else {
		_, err = s.users.Follow(ctx, viewerID, authorID)
	}
	if err != nil {
		return nil, fmt.Errorf("%s write: %w", kind, err)
	}

	if s.events != nil {
		s.events.Publish(ctx, EngagementEvent{Kind: kind, AuthorID: authorID, ViewerID: viewerID})
	}

	author, err := s.users.FindByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	return &model.ToggleResponse{Active: !following, Count: author.FollowerCount}, nil
}

// Share records one share: monotonic counter bump, anonymous allowed.
func (s *EngagementService) Share(ctx context.Context, viewerID, videoID string) (*model.ShareResponse, error) {
	if err := s.videos.IncrementCounter(ctx, videoID, "share_count", 1); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, "share", videoID, viewerID)

	v, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return &model.ShareResponse{ShareCount: v.ShareCount}, nil
}

// PostComment stores a comment for a signed-in viewer.
func (s *EngagementService) PostComment(ctx context.Context, viewerID, videoID, text string) (*model.Comment, error) {
	if viewerID == "" {
		return nil, ErrSignInRequired
	}

	c := &model.Comment{
		CommentID: uuid.NewString(),
		VideoID:   videoID,
		UserID:    viewerID,
		Text:      text,
	}
	if err := s.comments.Insert(ctx, c); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, "comment", videoID, viewerID)
	return c, nil
}

// Comments lists the newest comments for a video. Fetch failures degrade to
// an empty list at the handler.
func (s *EngagementService) Comments(ctx context.Context, videoID string, limit int) ([]model.Comment, error) {
	return s.comments.ListByVideo(ctx, videoID, limit)
}

func (s *EngagementService) afterWrite(ctx context.Context, kind, videoID, viewerID string) {
	if s.cache != nil {
		if err := s.cache.InvalidateVideo(ctx, videoID); err != nil {
			log.Printf("cache: invalidate video error: %v", err)
		}
	}
	if s.events != nil {
		s.events.Publish(ctx, EngagementEvent{Kind: kind, VideoID: videoID, ViewerID: viewerID})
	}
}
