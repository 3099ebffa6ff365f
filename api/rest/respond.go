package rest

import (
	"errors"
	"net/http"
	"strconv"

	mw "github.com/gatherly/server/middleware"
	"github.com/gatherly/server/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// fail converts a domain error into an HTTP response. Every handler reports
// failures through here so status mapping and message wording live in one
// place.
func fail(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrAttendeeNotFound),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrFriendshipNotFound),
		errors.Is(err, service.ErrPhotoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotHost):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidRSVP),
		errors.Is(err, service.ErrInvalidPrivacy),
		errors.Is(err, service.ErrSelfFriend),
		errors.Is(err, service.ErrAlreadyFriends),
		errors.Is(err, service.ErrRequestExists),
		errors.Is(err, service.ErrFileTooLarge),
		errors.Is(err, service.ErrBadContentType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateUser):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrStorageDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		log.Error("request failed",
			zap.Error(err),
			zap.String("trace_id", mw.GetTraceID(c)),
			zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// badRequest reports a binding/validation failure with field-level detail.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
}

// pathID parses a numeric :id style route parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
