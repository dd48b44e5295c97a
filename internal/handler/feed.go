package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/ViahIsGit/dksocial-sub000/internal/middleware"
	"github.com/ViahIsGit/dksocial-sub000/internal/model"
	"github.com/ViahIsGit/dksocial-sub000/internal/service"
)

type FeedHandler struct {
	sessions *service.SessionManager
}

func NewFeedHandler(sessions *service.SessionManager) *FeedHandler {
	return &FeedHandler{sessions: sessions}
}

// CreateSession handles POST /api/feed/sessions
func (h *FeedHandler) CreateSession(c fiber.Ctx) error {
	var req model.CreateSessionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	if req.Mode == "" {
		req.Mode = model.ModeDiscovery
	}
	if !req.Mode.Valid() {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD",
			"mode must be \"discovery\" or \"following\"")
	}

	viewerID := middleware.ViewerID(c)
	if req.Mode == model.ModeFollowing && viewerID == "" {
		return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "SIGN_IN_REQUIRED",
			"The following feed requires a signed-in account.")
	}

	sess, err := h.sessions.Create(c.Context(), viewerID, req.Mode)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to open feed session")
	}

	return c.Status(fiber.StatusCreated).JSON(model.SessionResponse{
		SessionID: sess.ID,
		Mode:      sess.Mode,
		Items:     sess.Items(),
	})
}

// GetSession handles GET /api/feed/sessions/:sessionId
func (h *FeedHandler) GetSession(c fiber.Ctx) error {
	sess, errResp := h.lookup(c)
	if sess == nil {
		return errResp
	}

	resp := model.SessionStateResponse{
		SessionID:     sess.ID,
		ActiveVideoID: sess.ActiveVideoID(),
	}
	if resp.ActiveVideoID != "" {
		if snap, ok := sess.Snapshot(resp.ActiveVideoID); ok {
			resp.Playback = &snap
		}
	}
	return c.JSON(resp)
}

// DeleteSession handles DELETE /api/feed/sessions/:sessionId
func (h *FeedHandler) DeleteSession(c fiber.Ctx) error {
	sessionID, errMsg := middleware.ValidateSessionID(c.Params("sessionId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	h.sessions.Delete(sessionID)
	return c.JSON(fiber.Map{"success": true})
}

// Visibility handles POST /api/feed/sessions/:sessionId/visibility
func (h *FeedHandler) Visibility(c fiber.Ctx) error {
	sess, errResp := h.lookup(c)
	if sess == nil {
		return errResp
	}

	var req model.VisibilityReport
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	videoID, errMsg := middleware.ValidateVideoID(req.VideoID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	if errMsg := middleware.ValidateRatio(req.Ratio); errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	before := sess.ActiveVideoID()
	sess.HandleVisibility(videoID, req.Ratio)
	if after := sess.ActiveVideoID(); after != before && after != "" {
		Metrics.ActivationsTotal.Inc()
	}

	resp := model.SessionStateResponse{
		SessionID:     sess.ID,
		ActiveVideoID: sess.ActiveVideoID(),
	}
	if resp.ActiveVideoID != "" {
		if snap, ok := sess.Snapshot(resp.ActiveVideoID); ok {
			resp.Playback = &snap
		}
	}
	return c.JSON(resp)
}

// Gesture handles POST /api/feed/sessions/:sessionId/gesture
func (h *FeedHandler) Gesture(c fiber.Ctx) error {
	sess, errResp := h.lookup(c)
	if sess == nil {
		return errResp
	}

	var req model.GestureRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	videoID, errMsg := middleware.ValidateVideoID(req.VideoID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	if len(req.Samples) == 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "MISSING_FIELDS", "samples are required")
	}

	resp, err := sess.Gesture(c.Context(), videoID, req.Samples)
	if err != nil {
		if errors.Is(err, service.ErrSignInRequired) {
			return middleware.ErrorResponse(c, fiber.StatusUnauthorized, "SIGN_IN_REQUIRED",
				"Liking requires a signed-in account.")
		}
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to apply gesture")
	}

	Metrics.GesturesTotal.WithLabelValues(resp.Gesture).Inc()
	return c.JSON(resp)
}

// Playback handles POST /api/feed/sessions/:sessionId/playback
func (h *FeedHandler) Playback(c fiber.Ctx) error {
	sess, errResp := h.lookup(c)
	if sess == nil {
		return errResp
	}

	var req model.PlaybackRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	videoID, errMsg := middleware.ValidateVideoID(req.VideoID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	snap, err := sess.Playback(videoID, req.Op, req.Position)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", err.Error())
	}
	return c.JSON(snap)
}

// lookup resolves the :sessionId param to an open session. On failure it
// returns nil and the already-written error response.
func (h *FeedHandler) lookup(c fiber.Ctx) (*service.FeedSession, error) {
	sessionID, errMsg := middleware.ValidateSessionID(c.Params("sessionId"))
	if errMsg != "" {
		return nil, middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	sess, err := h.sessions.Get(sessionID)
	if err != nil {
		return nil, middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Session not found or expired")
	}
	return sess, nil
}
