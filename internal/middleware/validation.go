package middleware

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// Field limits matching database schema constraints.
const (
	MaxVideoIDLen = 36  // videos.video_id VARCHAR(36), uuid text form
	MaxUserIDLen  = 64  // users.user_id VARCHAR(64)
	MaxCaptionLen = 500 // videos.caption VARCHAR(500)
	MaxCommentLen = 500 // comments.text VARCHAR(500)
)

var (
	// uuidRe matches canonical lowercase uuid text form.
	uuidRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	// idRe matches external ids: alphanumeric, dash, underscore.
	idRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateSessionID checks that a session id is a well-formed uuid.
func ValidateSessionID(id string) (string, string) {
	id = strings.TrimSpace(strings.ToLower(id))
	if id == "" {
		return "", "sessionId is required"
	}
	if !uuidRe.MatchString(id) {
		return "", "sessionId must be a UUID"
	}
	return id, ""
}

// ValidateVideoID checks that a video id is well-formed and within DB limits.
func ValidateVideoID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "videoId is required"
	}
	if len(id) > MaxVideoIDLen {
		return "", "videoId must be at most 36 characters"
	}
	if !idRe.MatchString(id) {
		return "", "videoId contains invalid characters"
	}
	return id, ""
}

// ValidateUserID checks that a user id is well-formed and within DB limits.
func ValidateUserID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "userId is required"
	}
	if len(id) > MaxUserIDLen {
		return "", "userId must be at most 64 characters"
	}
	if !idRe.MatchString(id) {
		return "", "userId contains invalid characters"
	}
	return id, ""
}

// ValidateRatio checks a visibility ratio is inside [0, 1].
func ValidateRatio(r float64) string {
	if r < 0 || r > 1 {
		return "ratio must be between 0 and 1"
	}
	return ""
}

// ValidateText trims a free-text field and enforces a length limit.
func ValidateText(text string, limit int) (string, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "text is required"
	}
	if len(text) > limit {
		return "", "text exceeds the length limit"
	}
	return text, ""
}
