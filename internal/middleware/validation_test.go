package middleware

import (
	"strings"
	"testing"
)

func TestValidateSessionID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid uuid", "7f2c1c3e-9a7b-4f4e-8c2d-1a2b3c4d5e6f", "7f2c1c3e-9a7b-4f4e-8c2d-1a2b3c4d5e6f", false},
		{"uppercase normalized", "7F2C1C3E-9A7B-4F4E-8C2D-1A2B3C4D5E6F", "7f2c1c3e-9a7b-4f4e-8c2d-1a2b3c4d5e6f", false},
		{"empty", "", "", true},
		{"no dashes", "7f2c1c3e9a7b4f4e8c2d1a2b3c4d5e6f", "", true},
		{"too short", "7f2c1c3e-9a7b", "", true},
		{"non hex", "zzzzzzzz-9a7b-4f4e-8c2d-1a2b3c4d5e6f", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateSessionID(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateVideoID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid uuid form", "7f2c1c3e-9a7b-4f4e-8c2d-1a2b3c4d5e6f", "7f2c1c3e-9a7b-4f4e-8c2d-1a2b3c4d5e6f", false},
		{"valid short", "abc-def_123", "abc-def_123", false},
		{"trims whitespace", "  abc  ", "abc", false},
		{"empty", "", "", true},
		{"too long", strings.Repeat("a", 37), "", true},
		{"exactly 36", strings.Repeat("a", 36), strings.Repeat("a", 36), false},
		{"invalid chars", "abc def", "", true},
		{"sql injection", "a'; DROP--", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateVideoID(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateRatio(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"threshold", 0.7, false},
		{"one", 1, false},
		{"negative", -0.1, true},
		{"above one", 1.01, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errMsg := ValidateRatio(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
		})
	}
}

func TestValidateText(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		limit   int
		want    string
		wantErr bool
	}{
		{"valid", "nice video", 100, "nice video", false},
		{"trims", "  hey  ", 100, "hey", false},
		{"empty", "", 100, "", true},
		{"whitespace only", "   ", 100, "", true},
		{"at limit", strings.Repeat("x", 10), 10, strings.Repeat("x", 10), false},
		{"over limit", strings.Repeat("x", 11), 10, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateText(tt.input, tt.limit)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"session route", "/api/feed/sessions/7f2c1c3e-9a7b-4f4e-8c2d-1a2b3c4d5e6f", "/api/feed/sessions/:sessionId"},
		{"video route", "/api/videos/abc123", "/api/videos/:videoId"},
		{"user route", "/api/users/u-42", "/api/users/:userId"},
		{"static route", "/api/stats", "/api/stats"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizePath(tt.path); got != tt.want {
				t.Errorf("sanitizePath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
