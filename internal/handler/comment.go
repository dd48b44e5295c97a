package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"

	"github.com/ViahIsGit/dksocial-sub000/internal/middleware"
	"github.com/ViahIsGit/dksocial-sub000/internal/model"
	"github.com/ViahIsGit/dksocial-sub000/internal/service"
)

const defaultCommentPage = 50

type CommentHandler struct {
	svc *service.EngagementService
}

func NewCommentHandler(svc *service.EngagementService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// List handles GET /api/videos/:videoId/comments
func (h *CommentHandler) List(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(c.Params("videoId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	limit := defaultCommentPage
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "limit must be 1-200")
		}
		limit = n
	}

	comments, err := h.svc.Comments(c.Context(), videoID, limit)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch comments")
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// Post handles POST /api/videos/:videoId/comments
func (h *CommentHandler) Post(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(c.Params("videoId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	var req model.CommentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	text, errMsg := middleware.ValidateText(req.Text, middleware.MaxCommentLen)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	comment, err := h.svc.PostComment(c.Context(), middleware.ViewerID(c), videoID, text)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSignInRequired):
			return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "SIGN_IN_REQUIRED",
				"Commenting requires a signed-in account.")
		case errors.Is(err, pgx.ErrNoRows):
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Video not found")
		default:
			return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to post comment")
		}
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}
