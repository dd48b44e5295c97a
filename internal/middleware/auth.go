package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ViahIsGit/dksocial-sub000/pkg/hash"
)

// viewerKey is the Locals key holding the authenticated viewer id.
const viewerKey = "viewerID"

// deviceKey is the Locals key holding the pseudonymous device tag for
// anonymous viewers.
const deviceKey = "deviceTag"

// NewAuth returns a middleware that parses an optional Bearer token and puts
// the viewer id into Locals. A missing or invalid token leaves the request
// anonymous; endpoints that need an identity check it themselves.
func NewAuth(secret string) fiber.Handler {
	key := []byte(secret)

	return func(c fiber.Ctx) error {
		if device := c.Get("X-Device-ID"); device != "" {
			c.Locals(deviceKey, hash.AnonymousViewerID(device))
		}

		header := c.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			return c.Next()
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			Logger.Warn().Err(err).Msg("rejected bearer token")
			return c.Next()
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Next()
		}
		if sub, ok := claims["sub"].(string); ok && sub != "" {
			c.Locals(viewerKey, sub)
		}
		return c.Next()
	}
}

// DeviceTag returns the pseudonymous device hash for the request, or "" when
// no device header was sent.
func DeviceTag(c fiber.Ctx) string {
	if v, ok := c.Locals(deviceKey).(string); ok {
		return v
	}
	return ""
}

// ViewerID returns the authenticated viewer id, or "" for anonymous requests.
func ViewerID(c fiber.Ctx) string {
	if v, ok := c.Locals(viewerKey).(string); ok {
		return v
	}
	return ""
}

// RequireViewer rejects anonymous requests with a standard 401.
func RequireViewer(c fiber.Ctx) error {
	if ViewerID(c) == "" {
		return ErrorResponse(c, fiber.StatusUnauthorized, "SIGN_IN_REQUIRED",
			"This action requires a signed-in account.")
	}
	return c.Next()
}
