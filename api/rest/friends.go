package rest

import (
	"net/http"

	"github.com/gatherly/server/audit"
	mw "github.com/gatherly/server/middleware"
	"github.com/gatherly/server/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FriendHandler handles friend requests and the friend list.
type FriendHandler struct {
	svc    *service.Service
	audit  *audit.Service
	logger *zap.Logger
}

// NewFriendHandler creates a new FriendHandler.
func NewFriendHandler(svc *service.Service, auditSvc *audit.Service, logger *zap.Logger) *FriendHandler {
	return &FriendHandler{svc: svc, audit: auditSvc, logger: logger}
}

func (h *FriendHandler) logActivity(c *gin.Context, action string, detail interface{}) {
	if h.audit == nil {
		return
	}
	userID := mw.GetUserID(c)
	h.audit.Log(audit.Entry{
		TraceID: mw.GetTraceID(c),
		UserID:  &userID,
		Action:  action,
		Detail:  detail,
		IP:      c.ClientIP(),
	})
}

type friendRequestRequest struct {
	Username string `json:"username" binding:"required,min=2,max=32"`
}

// SendRequest handles POST /api/friends/requests.
func (h *FriendHandler) SendRequest(c *gin.Context) {
	var req friendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	fr, err := h.svc.SendFriendRequest(mw.GetUserID(c), req.Username)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	h.logActivity(c, "friend_request", gin.H{"username": req.Username})
	c.JSON(http.StatusCreated, fr)
}

// ListRequests handles GET /api/friends/requests.
func (h *FriendHandler) ListRequests(c *gin.Context) {
	incoming, outgoing, err := h.svc.ListFriendRequests(mw.GetUserID(c))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"incoming": incoming, "outgoing": outgoing})
}

// Accept handles POST /api/friends/requests/:id/accept.
func (h *FriendHandler) Accept(c *gin.Context) {
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}
	friendship, err := h.svc.AcceptFriendRequest(mw.GetUserID(c), requestID)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	h.logActivity(c, "friend_accept", gin.H{"request_id": requestID})
	c.JSON(http.StatusOK, friendship)
}

// Decline handles POST /api/friends/requests/:id/decline.
func (h *FriendHandler) Decline(c *gin.Context) {
	requestID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeclineFriendRequest(mw.GetUserID(c), requestID); err != nil {
		fail(c, h.logger, err)
		return
	}
	h.logActivity(c, "friend_decline", gin.H{"request_id": requestID})
	c.JSON(http.StatusOK, gin.H{"message": "request declined"})
}

// List handles GET /api/friends.
func (h *FriendHandler) List(c *gin.Context) {
	friends, err := h.svc.ListFriends(mw.GetUserID(c))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// Remove handles DELETE /api/friends/:id where :id is the other user's ID.
func (h *FriendHandler) Remove(c *gin.Context) {
	otherID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.RemoveFriend(mw.GetUserID(c), otherID); err != nil {
		fail(c, h.logger, err)
		return
	}
	h.logActivity(c, "friend_remove", gin.H{"user_id": otherID})
	c.JSON(http.StatusOK, gin.H{"message": "friend removed"})
}
