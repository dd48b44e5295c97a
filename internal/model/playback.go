package model

// PlaybackSnapshot is the externally visible state of one playback slot.
type PlaybackSnapshot struct {
	VideoID  string  `json:"videoId"`
	State    string  `json:"state"`
	Position float64 `json:"position"`
	Rate     float64 `json:"rate"`
	Muted    bool    `json:"muted"`
	Slide    int     `json:"slide"`
}
