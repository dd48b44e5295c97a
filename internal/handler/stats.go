package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/ViahIsGit/dksocial-sub000/internal/middleware"
	"github.com/ViahIsGit/dksocial-sub000/internal/service"
)

type StatsHandler struct {
	users    *service.UserService
	sessions *service.SessionManager
}

func NewStatsHandler(users *service.UserService, sessions *service.SessionManager) *StatsHandler {
	return &StatsHandler{users: users, sessions: sessions}
}

// GetStats handles GET /api/stats
func (h *StatsHandler) GetStats(c fiber.Ctx) error {
	st, err := h.users.GetStats(c.Context())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch stats")
	}

	return c.JSON(fiber.Map{
		"totals":       st,
		"openSessions": h.sessions.Count(),
	})
}
