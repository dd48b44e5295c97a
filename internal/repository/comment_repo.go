package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ViahIsGit/dksocial-sub000/internal/model"
)

type CommentRepo struct {
	pool *pgxpool.Pool
}

func NewCommentRepo(pool *pgxpool.Pool) *CommentRepo {
	return &CommentRepo{pool: pool}
}

// ListByVideo returns the newest comments for a video, capped at limit.
func (r *CommentRepo) ListByVideo(ctx context.Context, videoID string, limit int) ([]model.Comment, error) {
	query := `
		SELECT c.comment_id, c.video_id, c.user_id, COALESCE(u.username, ''), c.text, c.created_at
		FROM comments c
		LEFT JOIN users u ON u.user_id = c.user_id
		WHERE c.video_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, videoID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		err := rows.Scan(&c.CommentID, &c.VideoID, &c.UserID, &c.Username, &c.Text, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Insert stores a comment and bumps the video's comment counter in the same
// transaction.
func (r *CommentRepo) Insert(ctx context.Context, c *model.Comment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO comments (comment_id, video_id, user_id, text)
		VALUES ($1, $2, $3, $4)`,
		c.CommentID, c.VideoID, c.UserID, c.Text)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE videos SET comment_count = comment_count + 1, last_updated = NOW()
		WHERE video_id = $1`, c.VideoID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
