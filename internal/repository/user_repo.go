package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ViahIsGit/dksocial-sub000/internal/model"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// FindByID returns a single user by ID.
func (r *UserRepo) FindByID(ctx context.Context, userID string) (*model.User, error) {
	query := `
		SELECT user_id, username, bio, avatar_key, follower_count, following_count,
		       video_count, created_at, last_active
		FROM users
		WHERE user_id = $1`

	var u model.User
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&u.UserID, &u.Username, &u.Bio, &u.AvatarKey, &u.FollowerCount, &u.FollowingCount,
		&u.VideoCount, &u.CreatedAt, &u.LastActive,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EnsureUser inserts a user row if missing and touches last_active.
func (r *UserRepo) EnsureUser(ctx context.Context, userID, username string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (user_id, username) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET last_active = NOW()`,
		userID, username)
	return err
}

// FollowedAuthorIDs returns the IDs of every account the viewer follows.
func (r *UserRepo) FollowedAuthorIDs(ctx context.Context, viewerID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT followee_id FROM follows WHERE follower_id = $1`, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Follow adds viewer->author to the follow set. Idempotent; returns whether
// the relationship was newly created.
func (r *UserRepo) Follow(ctx context.Context, viewerID, authorID string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO follows (follower_id, followee_id) VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING`,
		viewerID, authorID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, tx.Commit(ctx)
	}

	_, err = tx.Exec(ctx, `UPDATE users SET follower_count = follower_count + 1 WHERE user_id = $1`, authorID)
	if err != nil {
		return false, err
	}
	_, err = tx.Exec(ctx, `UPDATE users SET following_count = following_count + 1 WHERE user_id = $1`, viewerID)
	if err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

// Unfollow removes viewer->author from the follow set. Returns whether the
// relationship existed.
func (r *UserRepo) Unfollow(ctx context.Context, viewerID, authorID string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`,
		viewerID, authorID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, tx.Commit(ctx)
	}

	_, err = tx.Exec(ctx, `UPDATE users SET follower_count = GREATEST(follower_count - 1, 0) WHERE user_id = $1`, authorID)
	if err != nil {
		return false, err
	}
	_, err = tx.Exec(ctx, `UPDATE users SET following_count = GREATEST(following_count - 1, 0) WHERE user_id = $1`, viewerID)
	if err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

// IsFollowing reports whether viewer follows author.
func (r *UserRepo) IsFollowing(ctx context.Context, viewerID, authorID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`,
		viewerID, authorID).Scan(&exists)
	return exists, err
}

// FollowingSet returns, for the given authors, which ones the viewer follows.
func (r *UserRepo) FollowingSet(ctx context.Context, viewerID string, authorIDs []string) (map[string]bool, error) {
	set := make(map[string]bool, len(authorIDs))
	if viewerID == "" || len(authorIDs) == 0 {
		return set, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT followee_id FROM follows
		WHERE follower_id = $1 AND followee_id = ANY($2)`,
		viewerID, authorIDs)
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

// GetStats returns aggregate platform statistics.
func (r *UserRepo) GetStats(ctx context.Context) (*model.StatsResponse, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM videos WHERE hidden = false)          AS total_videos,
			(SELECT COUNT(*) FROM users)                                AS total_users,
			(SELECT COALESCE(SUM(like_count), 0) FROM videos)           AS total_likes,
			(SELECT COALESCE(SUM(comment_count), 0) FROM videos)        AS total_comments,
			(SELECT COALESCE(SUM(view_count), 0) FROM videos)           AS total_views,
			(SELECT COUNT(*) FROM users WHERE last_active > NOW() - INTERVAL '24 hours') AS active_users_24h`

	var stats model.StatsResponse
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalVideos, &stats.TotalUsers, &stats.TotalLikes,
		&stats.TotalComments, &stats.TotalViews, &stats.ActiveUsers24,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
