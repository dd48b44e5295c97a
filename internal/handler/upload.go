package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/ViahIsGit/dksocial-sub000/internal/middleware"
	"github.com/ViahIsGit/dksocial-sub000/internal/model"
	"github.com/ViahIsGit/dksocial-sub000/internal/storage"
)

// allowedUploadExts whitelists the media types clients may upload.
var allowedUploadExts = map[string]string{
	"mp4":  "videos",
	"webm": "videos",
	"jpg":  "images",
	"jpeg": "images",
	"png":  "images",
	"webp": "images",
}

type UploadHandler struct {
	media *storage.MediaStore
}

func NewUploadHandler(media *storage.MediaStore) *UploadHandler {
	return &UploadHandler{media: media}
}

// Presign handles POST /api/uploads. The response grants a time-limited PUT
// URL; the client uploads directly to object storage and then registers the
// post with the returned key.
func (h *UploadHandler) Presign(c fiber.Ctx) error {
	var req struct {
		Ext string `json:"ext"`
	}
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	prefix, ok := allowedUploadExts[req.Ext]
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD",
			"ext must be one of: mp4, webm, jpg, jpeg, png, webp")
	}

	key := prefix + "/" + uuid.NewString() + "." + req.Ext
	url, err := h.media.PresignUpload(c.Context(), key)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to grant upload slot")
	}

	return c.Status(fiber.StatusCreated).JSON(model.UploadTicket{
		Key:       key,
		UploadURL: url,
		ExpiresIn: int(storage.PutURLTTL.Seconds()),
	})
}
