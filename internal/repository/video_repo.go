package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ViahIsGit/dksocial-sub000/internal/model"
)

// CandidateWindow caps how many newest videos a feed build considers.
const CandidateWindow = 200

type VideoRepo struct {
	pool *pgxpool.Pool
}

func NewVideoRepo(pool *pgxpool.Pool) *VideoRepo {
	return &VideoRepo{pool: pool}
}

const videoColumns = `
	video_id, author_id, caption, media_key, thumb_key, slide_keys, duration,
	like_count, favorite_count, comment_count, view_count, share_count,
	hidden, created_at, last_updated`

func scanVideo(row interface{ Scan(...any) error }) (model.Video, error) {
	var v model.Video
	err := row.Scan(
		&v.VideoID, &v.AuthorID, &v.Caption, &v.MediaKey, &v.ThumbKey, &v.SlideKeys, &v.Duration,
		&v.LikeCount, &v.FavoriteCount, &v.CommentCount, &v.ViewCount, &v.ShareCount,
		&v.Hidden, &v.CreatedAt, &v.LastUpdated,
	)
	return v, err
}

// FetchCandidates returns the newest non-hidden videos, capped at window.
func (r *VideoRepo) FetchCandidates(ctx context.Context, window int) ([]model.Video, error) {
	query := `
		SELECT ` + videoColumns + `
		FROM videos
		WHERE hidden = false
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, window)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []model.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// FetchCandidatesByAuthors returns the newest non-hidden videos authored by
// any of the given users, capped at window. An empty author list yields an
// empty result.
func (r *VideoRepo) FetchCandidatesByAuthors(ctx context.Context, authorIDs []string, window int) ([]model.Video, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT ` + videoColumns + `
		FROM videos
		WHERE hidden = false AND author_id = ANY($1)
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, authorIDs, window)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []model.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// FindByID returns a single non-hidden video by exact ID.
func (r *VideoRepo) FindByID(ctx context.Context, videoID string) (*model.Video, error) {
	query := `
		SELECT ` + videoColumns + `
		FROM videos
		WHERE video_id = $1 AND hidden = false`

	v, err := scanVideo(r.pool.QueryRow(ctx, query, videoID))
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// counterColumns whitelists the monotonic counters IncrementCounter may touch.
var counterColumns = map[string]bool{
	"view_count":  true,
	"share_count": true,
}

// IncrementCounter adds delta to a monotonic counter column. Used for view
// and share counts; likes/favorites go through the engagement repo so the
// counter stays consistent with set membership.
func (r *VideoRepo) IncrementCounter(ctx context.Context, videoID, column string, delta int) error {
	if !counterColumns[column] {
		return fmt.Errorf("counter column not allowed: %s", column)
	}

	query := fmt.Sprintf(`
		UPDATE videos
		SET %s = %s + $1, last_updated = NOW()
		WHERE video_id = $2`, column, column)

	_, err := r.pool.Exec(ctx, query, delta, videoID)
	return err
}

// Insert registers a new video post.
func (r *VideoRepo) Insert(ctx context.Context, v *model.Video) error {
	query := `
		INSERT INTO videos (video_id, author_id, caption, media_key, thumb_key, slide_keys, duration)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		v.VideoID, v.AuthorID, v.Caption, v.MediaKey, v.ThumbKey, v.SlideKeys, v.Duration)
	return err
}
