package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"

	"github.com/ViahIsGit/dksocial-sub000/internal/middleware"
	"github.com/ViahIsGit/dksocial-sub000/internal/model"
	"github.com/ViahIsGit/dksocial-sub000/internal/service"
)

type EngagementHandler struct {
	svc *service.EngagementService
}

func NewEngagementHandler(svc *service.EngagementService) *EngagementHandler {
	return &EngagementHandler{svc: svc}
}

// Like handles POST /api/videos/:videoId/like
func (h *EngagementHandler) Like(c fiber.Ctx) error {
	return h.toggle(c, "like", h.svc.ToggleLike)
}

// Favorite handles POST /api/videos/:videoId/favorite
func (h *EngagementHandler) Favorite(c fiber.Ctx) error {
	return h.toggle(c, "favorite", h.svc.ToggleFavorite)
}

func (h *EngagementHandler) toggle(c fiber.Ctx, kind string,
	fn func(ctx context.Context, viewerID, videoID string) (*model.ToggleResponse, error)) error {

	videoID, errMsg := middleware.ValidateVideoID(c.Params("videoId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, err := fn(c.Context(), middleware.ViewerID(c), videoID)
	if err != nil {
		return h.writeError(c, err)
	}

	Metrics.EngagementsTotal.WithLabelValues(kind).Inc()
	return c.JSON(resp)
}

// Share handles POST /api/videos/:videoId/share
func (h *EngagementHandler) Share(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(c.Params("videoId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, err := h.svc.Share(c.Context(), middleware.ViewerID(c), videoID)
	if err != nil {
		return h.writeError(c, err)
	}

	Metrics.EngagementsTotal.WithLabelValues("share").Inc()
	return c.JSON(resp)
}

// Follow handles POST /api/users/:userId/follow
func (h *EngagementHandler) Follow(c fiber.Ctx) error {
	authorID, errMsg := middleware.ValidateUserID(c.Params("userId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, err := h.svc.ToggleFollow(c.Context(), middleware.ViewerID(c), authorID)
	if err != nil {
		return h.writeError(c, err)
	}

	Metrics.EngagementsTotal.WithLabelValues("follow").Inc()
	return c.JSON(resp)
}

func (h *EngagementHandler) writeError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSignInRequired):
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "SIGN_IN_REQUIRED",
			"This action requires a signed-in account.")
	case errors.Is(err, pgx.ErrNoRows):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Not found")
	case errors.Is(err, service.ErrSelfFollow):
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "Cannot follow yourself")
	default:
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Operation failed")
	}
}
