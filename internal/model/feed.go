package model

// FeedMode selects how a feed session's candidate list is assembled.
type FeedMode string

const (
	// ModeDiscovery is the undifferentiated "for you" view: globally ranked,
	// then shuffled on every load.
	ModeDiscovery FeedMode = "discovery"
	// ModeFollowing restricts candidates to videos authored by accounts the
	// viewer follows, ranked without shuffling.
	ModeFollowing FeedMode = "following"
)

// Valid reports whether the mode is one of the supported feed modes.
func (m FeedMode) Valid() bool {
	return m == ModeDiscovery || m == ModeFollowing
}

// CreateSessionRequest is the API request body for opening a feed session.
type CreateSessionRequest struct {
	Mode FeedMode `json:"mode"`
}

// SessionResponse is the API response after opening a feed session.
type SessionResponse struct {
	SessionID string     `json:"sessionId"`
	Mode      FeedMode   `json:"mode"`
	Items     []FeedItem `json:"items"`
}

// SessionStateResponse is the API response for polling session state.
type SessionStateResponse struct {
	SessionID     string            `json:"sessionId"`
	ActiveVideoID string            `json:"activeVideoId,omitempty"`
	Playback      *PlaybackSnapshot `json:"playback,omitempty"`
}

// VisibilityReport carries one visibility-observer sample from the
// presentation layer: how much of a video's card is currently on screen.
type VisibilityReport struct {
	VideoID string  `json:"videoId"`
	Ratio   float64 `json:"ratio"`
}

// TouchSample is a single point of a touch sequence, relative to the video
// card's top-left corner. At is milliseconds since the sequence began.
type TouchSample struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	At int64   `json:"at"`
}

// GestureRequest carries a completed touch sequence for classification.
type GestureRequest struct {
	VideoID string        `json:"videoId"`
	Samples []TouchSample `json:"samples"`
}

// GestureResponse reports how a touch sequence was classified and any
// side effect it produced.
type GestureResponse struct {
	Gesture  string            `json:"gesture"`
	Liked    *bool             `json:"liked,omitempty"`
	Slide    *int              `json:"slide,omitempty"`
	Playback *PlaybackSnapshot `json:"playback,omitempty"`
}

// PlaybackRequest is a manual playback control: absolute seek, playback-rate
// cycle, or mute toggle.
type PlaybackRequest struct {
	VideoID  string  `json:"videoId"`
	Op       string  `json:"op"` // "seek", "rate", "mute"
	Position float64 `json:"position,omitempty"`
}
