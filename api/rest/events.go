package rest

import (
	"net/http"
	"time"

	mw "github.com/gatherly/server/middleware"
	"github.com/gatherly/server/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EventHandler handles event CRUD and the visibility-filtered feeds.
type EventHandler struct {
	svc         *service.Service
	feedSize    int
	mobileLimit int
	logger      *zap.Logger
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(svc *service.Service, feedSize, mobileLimit int, logger *zap.Logger) *EventHandler {
	return &EventHandler{svc: svc, feedSize: feedSize, mobileLimit: mobileLimit, logger: logger}
}

type eventRequest struct {
	Name         string    `json:"name" binding:"required,min=1,max=128"`
	Description  string    `json:"description" binding:"max=2000"`
	Location     string    `json:"location" binding:"max=255"`
	Date         time.Time `json:"date" binding:"required"`
	PrivacyLevel string    `json:"privacy_level" binding:"omitempty,oneof=PUBLIC FRIENDS_ONLY PRIVATE"`
}

type eventUpdateRequest struct {
	Name         string    `json:"name" binding:"omitempty,min=1,max=128"`
	Description  string    `json:"description" binding:"max=2000"`
	Location     string    `json:"location" binding:"max=255"`
	Date         time.Time `json:"date"`
	PrivacyLevel string    `json:"privacy_level" binding:"omitempty,oneof=PUBLIC FRIENDS_ONLY PRIVATE"`
}

// Create handles POST /api/events.
func (h *EventHandler) Create(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	event, err := h.svc.CreateEvent(mw.GetUserID(c), service.EventInput{
		Name:         req.Name,
		Description:  req.Description,
		Location:     req.Location,
		Date:         req.Date,
		PrivacyLevel: req.PrivacyLevel,
	})
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// Get handles GET /api/events/:id.
func (h *EventHandler) Get(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}
	event, err := h.svc.GetEvent(mw.GetUserID(c), eventID)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// Update handles PUT /api/events/:id (host only).
func (h *EventHandler) Update(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req eventUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	event, err := h.svc.UpdateEvent(mw.GetUserID(c), eventID, service.EventInput{
		Name:         req.Name,
		Description:  req.Description,
		Location:     req.Location,
		Date:         req.Date,
		PrivacyLevel: req.PrivacyLevel,
	})
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// Delete handles DELETE /api/events/:id (host only).
func (h *EventHandler) Delete(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteEvent(mw.GetUserID(c), eventID); err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "event deleted"})
}

// Feed handles GET /api/events: events visible to the caller, date
// ascending.
func (h *EventHandler) Feed(c *gin.Context) {
	events, err := h.svc.VisibleEvents(mw.GetUserID(c), h.feedSize)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// MobileFeed handles GET /api/events/mobile: the same visibility predicate
// with a tighter cap. Identity comes from the mobile bearer token.
func (h *EventHandler) MobileFeed(c *gin.Context) {
	events, err := h.svc.VisibleEvents(mw.GetUserID(c), h.mobileLimit)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
