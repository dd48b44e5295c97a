package model

import "time"

// User represents a DKSocial account.
type User struct {
	UserID         string    `json:"userId"`
	Username       string    `json:"username"`
	Bio            *string   `json:"bio,omitempty"`
	AvatarKey      *string   `json:"-"`
	FollowerCount  int       `json:"followerCount"`
	FollowingCount int       `json:"followingCount"`
	VideoCount     int       `json:"videoCount"`
	CreatedAt      time.Time `json:"-"`
	LastActive     time.Time `json:"-"`
}

// ProfileResponse is the API response for profile lookups.
type ProfileResponse struct {
	UserID         string  `json:"userId"`
	Username       string  `json:"username"`
	Bio            *string `json:"bio,omitempty"`
	AvatarURL      string  `json:"avatarUrl,omitempty"`
	FollowerCount  int     `json:"followerCount"`
	FollowingCount int     `json:"followingCount"`
	VideoCount     int     `json:"videoCount"`
	AccountAge     int     `json:"accountAge"`
	Following      bool    `json:"following"`
}

// StatsResponse is the API response for global platform statistics.
type StatsResponse struct {
	TotalVideos   int `json:"totalVideos"`
	TotalUsers    int `json:"totalUsers"`
	TotalLikes    int `json:"totalLikes"`
	TotalComments int `json:"totalComments"`
	TotalViews    int `json:"totalViews"`
	ActiveUsers24 int `json:"activeUsers24h"`
}
