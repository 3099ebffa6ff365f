package rest

import (
	"net/http"

	"github.com/gatherly/server/audit"
	mw "github.com/gatherly/server/middleware"
	"github.com/gatherly/server/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RSVPHandler handles the dedicated per-event RSVP endpoints.
type RSVPHandler struct {
	svc    *service.Service
	audit  *audit.Service
	logger *zap.Logger
}

// NewRSVPHandler creates a new RSVPHandler.
func NewRSVPHandler(svc *service.Service, auditSvc *audit.Service, logger *zap.Logger) *RSVPHandler {
	return &RSVPHandler{svc: svc, audit: auditSvc, logger: logger}
}

func (h *RSVPHandler) logActivity(c *gin.Context, action string, eventID int64, detail interface{}) {
	if h.audit == nil {
		return
	}
	userID := mw.GetUserID(c)
	h.audit.Log(audit.Entry{
		TraceID: mw.GetTraceID(c),
		UserID:  &userID,
		EventID: &eventID,
		Action:  action,
		Detail:  detail,
		IP:      c.ClientIP(),
	})
}

// Status handles GET /api/events/:id/rsvp.
func (h *RSVPHandler) Status(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}
	status, err := h.svc.GetRSVPStatus(mw.GetUserID(c), eventID)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

type setRSVPRequest struct {
	// Unlike the attendees endpoint, PENDING is accepted here.
	RSVP string `json:"rsvp" binding:"required,oneof=YES NO MAYBE PENDING"`
}

// Set handles POST /api/events/:id/rsvp: upserts the caller's RSVP.
func (h *RSVPHandler) Set(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req setRSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	att, err := h.svc.SetRSVP(mw.GetUserID(c), eventID, req.RSVP, true)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	h.logActivity(c, "rsvp_set", eventID, gin.H{"rsvp": req.RSVP})
	c.JSON(http.StatusOK, att)
}

// Cancel handles DELETE /api/events/:id/rsvp: removes the caller's
// attendee row.
func (h *RSVPHandler) Cancel(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.CancelRSVP(mw.GetUserID(c), eventID); err != nil {
		fail(c, h.logger, err)
		return
	}
	h.logActivity(c, "rsvp_cancel", eventID, nil)
	c.JSON(http.StatusOK, gin.H{"message": "rsvp canceled"})
}
