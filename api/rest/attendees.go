package rest

import (
	"net/http"

	"github.com/gatherly/server/audit"
	mw "github.com/gatherly/server/middleware"
	"github.com/gatherly/server/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AttendeeHandler handles invitation and attendee-list endpoints.
type AttendeeHandler struct {
	svc    *service.Service
	audit  *audit.Service
	logger *zap.Logger
}

// NewAttendeeHandler creates a new AttendeeHandler.
func NewAttendeeHandler(svc *service.Service, auditSvc *audit.Service, logger *zap.Logger) *AttendeeHandler {
	return &AttendeeHandler{svc: svc, audit: auditSvc, logger: logger}
}

func (h *AttendeeHandler) logActivity(c *gin.Context, action string, eventID int64, detail interface{}) {
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

type inviteRequest struct {
	Username string `json:"username" binding:"required,min=2,max=32"`
}

// Invite handles POST /api/events/:id/attendees: invites a user by username
// with a PENDING RSVP. Repeated invites are idempotent.
func (h *AttendeeHandler) Invite(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req inviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	att, err := h.svc.Invite(eventID, req.Username)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	h.logActivity(c, "invite", eventID, gin.H{"username": req.Username})
	c.JSON(http.StatusCreated, att)
}

// List handles GET /api/events/:id/attendees.
func (h *AttendeeHandler) List(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}
	event, attendees, err := h.svc.Attendees(eventID)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": event, "attendees": attendees})
}

type attendeeRSVPRequest struct {
	// PENDING is deliberately absent here; only the dedicated rsvp
	// endpoint accepts it.
	RSVP string `json:"rsvp" binding:"required,oneof=YES NO MAYBE"`
}

// UpdateRSVP handles PATCH /api/events/:id/attendees: sets the caller's own
// RSVP to YES, NO or MAYBE.
func (h *AttendeeHandler) UpdateRSVP(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req attendeeRSVPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	att, err := h.svc.SetRSVP(mw.GetUserID(c), eventID, req.RSVP, false)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	h.logActivity(c, "rsvp_update", eventID, gin.H{"rsvp": req.RSVP})
	c.JSON(http.StatusOK, att)
}

// Invitations handles GET /api/user/invitations: the caller's unanswered
// invitations.
func (h *AttendeeHandler) Invitations(c *gin.Context) {
	rows, err := h.svc.Invitations(mw.GetUserID(c))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitations": rows})
}
