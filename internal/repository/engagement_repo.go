package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EngagementRepo manages the like and favorite membership sets. Membership is
// idempotent: adding a viewer who is already in a set is a no-op, and the
// counter on the video row only moves when membership actually changed.
type EngagementRepo struct {
	pool *pgxpool.Pool
}

func NewEngagementRepo(pool *pgxpool.Pool) *EngagementRepo {
	return &EngagementRepo{pool: pool}
}

// setTable maps an engagement kind to its membership table and counter column.
type setTable struct {
	table   string
	counter string
}

var (
	likeSet     = setTable{table: "video_likes", counter: "like_count"}
	favoriteSet = setTable{table: "video_favorites", counter: "favorite_count"}
)

// AddLike inserts the viewer into the video's like set. Returns whether
// membership changed.
func (r *EngagementRepo) AddLike(ctx context.Context, videoID, userID string) (bool, error) {
	return r.add(ctx, likeSet, videoID, userID)
}

// RemoveLike removes the viewer from the video's like set. Returns whether
// membership changed.
func (r *EngagementRepo) RemoveLike(ctx context.Context, videoID, userID string) (bool, error) {
	return r.remove(ctx, likeSet, videoID, userID)
}

// AddFavorite inserts the viewer into the video's favorite set.
func (r *EngagementRepo) AddFavorite(ctx context.Context, videoID, userID string) (bool, error) {
	return r.add(ctx, favoriteSet, videoID, userID)
}

// RemoveFavorite removes the viewer from the video's favorite set.
func (r *EngagementRepo) RemoveFavorite(ctx context.Context, videoID, userID string) (bool, error) {
	return r.remove(ctx, favoriteSet, videoID, userID)
}

func (r *EngagementRepo) add(ctx context.Context, s setTable, videoID, userID string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO `+s.table+` (video_id, user_id) VALUES ($1, $2)
		ON CONFLICT (video_id, user_id) DO NOTHING`,
		videoID, userID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		// Already a member; nothing to count.
		return false, tx.Commit(ctx)
	}

	_, err = tx.Exec(ctx, `
		UPDATE videos SET `+s.counter+` = `+s.counter+` + 1, last_updated = NOW()
		WHERE video_id = $1`, videoID)
	if err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (r *EngagementRepo) remove(ctx context.Context, s setTable, videoID, userID string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		DELETE FROM `+s.table+` WHERE video_id = $1 AND user_id = $2`,
		videoID, userID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, tx.Commit(ctx)
	}

	_, err = tx.Exec(ctx, `
		UPDATE videos SET `+s.counter+` = GREATEST(`+s.counter+` - 1, 0), last_updated = NOW()
		WHERE video_id = $1`, videoID)
	if err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

// HasLike reports whether the viewer is in the video's like set.
func (r *EngagementRepo) HasLike(ctx context.Context, videoID, userID string) (bool, error) {
	return r.member(ctx, likeSet, videoID, userID)
}

// HasFavorite reports whether the viewer is in the video's favorite set.
func (r *EngagementRepo) HasFavorite(ctx context.Context, videoID, userID string) (bool, error) {
	return r.member(ctx, favoriteSet, videoID, userID)
}

func (r *EngagementRepo) member(ctx context.Context, s setTable, videoID, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM `+s.table+` WHERE video_id = $1 AND user_id = $2)`,
		videoID, userID).Scan(&exists)
	return exists, err
}

// LikedSet returns, for the given videos, which ones the viewer has liked.
func (r *EngagementRepo) LikedSet(ctx context.Context, userID string, videoIDs []string) (map[string]bool, error) {
	return r.memberSet(ctx, likeSet, userID, videoIDs)
}

// FavoritedSet returns, for the given videos, which ones the viewer has favorited.
func (r *EngagementRepo) FavoritedSet(ctx context.Context, userID string, videoIDs []string) (map[string]bool, error) {
	return r.memberSet(ctx, favoriteSet, userID, videoIDs)
}

func (r *EngagementRepo) memberSet(ctx context.Context, s setTable, userID string, videoIDs []string) (map[string]bool, error) {
	set := make(map[string]bool, len(videoIDs))
	if userID == "" || len(videoIDs) == 0 {
		return set, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT video_id FROM `+s.table+`
		WHERE user_id = $1 AND video_id = ANY($2)`,
		userID, videoIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		set[id] = true
	}
	return set, rows.Err()
}
