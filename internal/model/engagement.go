package model

import "time"

// ToggleResponse is the API response after a like/favorite/follow toggle.
type ToggleResponse struct {
	Active bool `json:"active"`
	Count  int  `json:"count"`
}

// Comment represents a single comment on a video.
type Comment struct {
	CommentID string    `json:"commentId"`
	VideoID   string    `json:"videoId"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommentRequest is the API request body for posting a comment.
type CommentRequest struct {
	Text string `json:"text"`
}

// ShareResponse is the API response after recording a share.
type ShareResponse struct {
	ShareCount int `json:"shareCount"`
}
