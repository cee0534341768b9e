package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wellspring-app/nutrition-service/internal/service"
)

// Uploads larger than this are rejected before touching storage.
const maxPhotoSize = 5 << 20

// PhotoHandler serves the community photo association endpoints.
type PhotoHandler struct {
	photos *service.CommunityPhotoService
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photos *service.CommunityPhotoService) *PhotoHandler {
	return &PhotoHandler{photos: photos}
}

// List returns the photo URLs for a food in upload order.
func (h *PhotoHandler) List(c *gin.Context) {
	fdcID, err := strconv.ParseInt(c.Param("fdcId"), 10, 64)
	if err != nil || fdcID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid fdcId"})
		return
	}

	images := h.photos.GetCommunityPhotos(c.Request.Context(), fdcID)
	c.JSON(http.StatusOK, gin.H{"images": images})
}

// Upload accepts a multipart image for a food. Requires a validated bearer
// token; AuthMiddleware has already stored the user identity in context.
func (h *PhotoHandler) Upload(c *gin.Context) {
	fdcID, err := strconv.ParseInt(c.PostForm("fdcId"), 10, 64)
	if err != nil || fdcID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid fdcId"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if fileHeader.Size > maxPhotoSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds 5MB limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read uploaded file"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	uploadedBy := c.GetString("user_id")

	url, err := h.photos.UploadCommunityPhoto(c.Request.Context(), fdcID, data, contentType, uploadedBy)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store photo"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"imageUrl": url})
}
