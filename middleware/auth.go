package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gatherly/server/cache"
	"github.com/gatherly/server/config"
	"github.com/gin-gonic/gin"
)

const UserIDKey = "user_id"

// SessionCookie is the cookie carrying the session token for browser clients.
const SessionCookie = "gatherly_session"

// sessionToken extracts the session token from the Authorization header or,
// failing that, the session cookie.
func sessionToken(ctx *gin.Context) string {
	if header := ctx.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if c, err := ctx.Cookie(SessionCookie); err == nil {
		return c
	}
	return ""
}

func resolveSession(ctx *gin.Context, sec config.SecurityConfig, c cache.Cache) (int64, bool) {
	tokenStr := sessionToken(ctx)
	if tokenStr == "" {
		return 0, false
	}
	claims, err := ParseToken(tokenStr, sec.JWTSecret)
	if err != nil {
		return 0, false
	}

	// The session must still exist server-side; logout revokes it before
	// the JWT expires.
	cacheCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()
	exists, err := c.Exists(cacheCtx, "session:"+tokenStr)
	if err != nil || !exists {
		return 0, false
	}
	return claims.UserID, true
}

// Auth validates the session token (cookie or bearer) and checks the session cache.
func Auth(sec config.SecurityConfig, c cache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, ok := resolveSession(ctx, sec, c)
		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		ctx.Set(UserIDKey, userID)
		ctx.Next()
	}
}

// OptionalAuth resolves the viewer identity when a valid session is present
// but never rejects the request.
func OptionalAuth(sec config.SecurityConfig, c cache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if userID, ok := resolveSession(ctx, sec, c); ok {
			ctx.Set(UserIDKey, userID)
		}
		ctx.Next()
	}
}

// MobileAuth validates a bearer token against the mobile shared secret.
// Unlike Auth it performs no session lookup; identity comes from the
// token claims alone.
func MobileAuth(sec config.SecurityConfig) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		userID, err := ParseMobileToken(strings.TrimPrefix(header, "Bearer "), sec.MobileSecret)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		ctx.Set(UserIDKey, userID)
		ctx.Next()
	}
}

// GetUserID retrieves the authenticated user ID from the Gin context.
// Returns 0 when no viewer is authenticated.
func GetUserID(c *gin.Context) int64 {
	if v, exists := c.Get(UserIDKey); exists {
		return v.(int64)
	}
	return 0
}
