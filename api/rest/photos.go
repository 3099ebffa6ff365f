package rest

import (
	"net/http"

	"github.com/gatherly/server/audit"
	mw "github.com/gatherly/server/middleware"
	"github.com/gatherly/server/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PhotoHandler handles event photo upload and listing.
type PhotoHandler struct {
	photos *service.PhotoService
	audit  *audit.Service
	logger *zap.Logger
}

// NewPhotoHandler creates a new PhotoHandler.
func NewPhotoHandler(photos *service.PhotoService, auditSvc *audit.Service, logger *zap.Logger) *PhotoHandler {
	return &PhotoHandler{photos: photos, audit: auditSvc, logger: logger}
}

// Upload handles POST /api/events/:id/photos. The image arrives as the
// multipart field "photo"; an optional "caption" field rides along.
func (h *PhotoHandler) Upload(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing photo field"})
		return
	}
	caption := c.PostForm("caption")

	file, err := fileHeader.Open()
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	defer file.Close()

	userID := mw.GetUserID(c)
	photo, err := h.photos.Upload(c.Request.Context(), userID, eventID,
		fileHeader.Header.Get("Content-Type"), fileHeader.Size, file, caption)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	if h.audit != nil {
		h.audit.Log(audit.Entry{
			TraceID: mw.GetTraceID(c),
			UserID:  &userID,
			EventID: &eventID,
			Action:  "photo_upload",
			Detail:  gin.H{"url": photo.ImageURL, "bytes": fileHeader.Size},
			IP:      c.ClientIP(),
		})
	}
	c.JSON(http.StatusCreated, photo)
}

// List handles GET /api/events/:id/photos.
func (h *PhotoHandler) List(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}
	photos, err := h.photos.Photos(eventID)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": photos})
}
