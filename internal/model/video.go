package model

import "time"

// Video represents a reel post with its engagement counters.
type Video struct {
	VideoID       string    `json:"videoId"`
	AuthorID      string    `json:"authorId"`
	Caption       *string   `json:"caption,omitempty"`
	MediaKey      string    `json:"-"`
	ThumbKey      *string   `json:"-"`
	SlideKeys     []string  `json:"-"`
	Duration      *float64  `json:"duration,omitempty"`
	LikeCount     int       `json:"likeCount"`
	FavoriteCount int       `json:"favoriteCount"`
	CommentCount  int       `json:"commentCount"`
	ViewCount     int       `json:"viewCount"`
	ShareCount    int       `json:"shareCount"`
	Hidden        bool      `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdated   time.Time `json:"-"`
}

// IsSlideshow reports whether the post is a multi-image post rather than a
// single media stream.
func (v *Video) IsSlideshow() bool {
	return len(v.SlideKeys) > 0
}

// FeedItem is the API representation of a video inside a feed session:
// media keys resolved to fetchable URLs plus viewer-relative flags.
type FeedItem struct {
	VideoID         string   `json:"videoId"`
	AuthorID        string   `json:"authorId"`
	Caption         *string  `json:"caption,omitempty"`
	MediaURL        string   `json:"mediaUrl"`
	ThumbnailURL    string   `json:"thumbnailUrl,omitempty"`
	SlideURLs       []string `json:"slideUrls,omitempty"`
	Duration        *float64 `json:"duration,omitempty"`
	Score           float64  `json:"score"`
	LikeCount       int      `json:"likeCount"`
	FavoriteCount   int      `json:"favoriteCount"`
	CommentCount    int      `json:"commentCount"`
	ViewCount       int      `json:"viewCount"`
	ShareCount      int      `json:"shareCount"`
	Liked           bool     `json:"liked"`
	Favorited       bool     `json:"favorited"`
	FollowingAuthor bool     `json:"followingAuthor"`
}

// CreateVideoRequest is the API request body for registering a new post.
// Media must already be uploaded (see the uploads endpoint); the request
// carries the resulting object keys.
type CreateVideoRequest struct {
	Caption   string   `json:"caption,omitempty"`
	MediaKey  string   `json:"mediaKey"`
	ThumbKey  string   `json:"thumbKey,omitempty"`
	SlideKeys []string `json:"slideKeys,omitempty"`
	Duration  *float64 `json:"duration,omitempty"`
}

// UploadTicket is the API response granting a presigned upload slot.
type UploadTicket struct {
	Key       string `json:"key"`
	UploadURL string `json:"uploadUrl"`
	ExpiresIn int    `json:"expiresIn"`
}
