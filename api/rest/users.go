package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gatherly/server/cache"
	"github.com/gatherly/server/config"
	mw "github.com/gatherly/server/middleware"
	"github.com/gatherly/server/model"
	"github.com/gatherly/server/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserHandler handles account and profile endpoints.
type UserHandler struct {
	db     *gorm.DB
	cache  cache.Cache
	svc    *service.Service
	sec    config.SecurityConfig
	logger *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB, c cache.Cache, svc *service.Service, sec config.SecurityConfig, logger *zap.Logger) *UserHandler {
	return &UserHandler{db: db, cache: c, svc: svc, sec: sec, logger: logger}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=2,max=32,alphanum"`
	Name     string `json:"name" binding:"max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=64"`
}

// Register handles POST /api/users.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	user := model.User{
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := h.db.Create(&user).Error; err != nil {
		if isDuplicate(err) {
			fail(c, h.logger, service.ErrDuplicateUser)
		} else {
			fail(c, h.logger, err)
		}
		return
	}

	token, err := issueSession(c, h.cache, h.sec, user.ID)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

// Me handles GET /api/users/me.
func (h *UserHandler) Me(c *gin.Context) {
	var user model.User
	if err := h.db.First(&user, mw.GetUserID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, h.logger, service.ErrUserNotFound)
		} else {
			fail(c, h.logger, err)
		}
		return
	}
	c.JSON(http.StatusOK, user)
}

type updateUserRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=64"`
	Image *string `json:"image" binding:"omitempty,max=255"`
	Bio   *string `json:"bio" binding:"omitempty,max=500"`
}

// Update handles PUT /api/users.
func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Image != nil {
		updates["image"] = *req.Image
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}

	userID := mw.GetUserID(c)
	if len(updates) > 0 {
		if err := h.db.Model(&model.User{}).Where("id = ?", userID).
			Updates(updates).Error; err != nil {
			fail(c, h.logger, err)
			return
		}
	}

	var user model.User
	if err := h.db.First(&user, userID).Error; err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /api/users: removes the account and everything
// hanging off it.
func (h *UserHandler) Delete(c *gin.Context) {
	userID := mw.GetUserID(c)
	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.Attendee{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sender_id = ? OR receiver_id = ?", userID, userID).
			Delete(&model.FriendRequest{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_low_id = ? OR user_high_id = ?", userID, userID).
			Delete(&model.Friendship{}).Error; err != nil {
			return err
		}
		// Hosted events go too, with their attendee and photo rows.
		var hosted []model.Event
		if err := tx.Where("host_id = ?", userID).Find(&hosted).Error; err != nil {
			return err
		}
		for _, e := range hosted {
			if err := tx.Where("event_id = ?", e.ID).Delete(&model.Attendee{}).Error; err != nil {
				return err
			}
			if err := tx.Where("event_id = ?", e.ID).Delete(&model.EventPhoto{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("host_id = ?", userID).Delete(&model.Event{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.User{}, userID).Error
	})
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}

// profileResponse is the public view of a user.
type profileResponse struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	Image        string `json:"image"`
	Bio          string `json:"bio"`
	Relationship string `json:"relationship,omitempty"`
}

// Profile handles GET /api/users/profile/:username. The relationship tag is
// included only when a viewer is authenticated.
func (h *UserHandler) Profile(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing username"})
		return
	}

	user, rel, err := h.svc.Profile(username, mw.GetUserID(c))
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profileResponse{
		ID:           user.ID,
		Username:     user.Username,
		Name:         user.Name,
		Image:        user.Image,
		Bio:          user.Bio,
		Relationship: rel,
	})
}

// isDuplicate detects duplicate-key errors from common database drivers.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "already exists")
}
