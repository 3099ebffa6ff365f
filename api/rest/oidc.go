package rest

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gatherly/server/cache"
	"github.com/gatherly/server/config"
	"github.com/gatherly/server/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

// OIDCHandler implements login through an external OpenID Connect provider.
// Accounts are matched by the verified email claim; first login creates one.
type OIDCHandler struct {
	db       *gorm.DB
	cache    cache.Cache
	sec      config.SecurityConfig
	verifier *oidc.IDTokenVerifier
	oauth    *oauth2.Config
	logger   *zap.Logger
}

// NewOIDCHandler discovers the provider configuration from the issuer URL.
// Returns nil (and no error) when OIDC is not configured.
func NewOIDCHandler(db *gorm.DB, c cache.Cache, sec config.SecurityConfig, oc config.OIDCConfig, logger *zap.Logger) (*OIDCHandler, error) {
	if oc.Issuer == "" {
		return nil, nil
	}
	provider, err := oidc.NewProvider(context.Background(), oc.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}
	return &OIDCHandler{
		db:       db,
		cache:    c,
		sec:      sec,
		verifier: provider.Verifier(&oidc.Config{ClientID: oc.ClientID}),
		oauth: &oauth2.Config{
			ClientID:     oc.ClientID,
			ClientSecret: oc.ClientSecret,
			RedirectURL:  oc.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		logger: logger,
	}, nil
}

func randState() (string, error) {
	b := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Login handles GET /api/auth/oidc/login: hands back the provider's
// authorization URL with a single-use state nonce.
func (h *OIDCHandler) Login(c *gin.Context) {
	state, err := randState()
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	if err := h.cache.Set(c.Request.Context(), "oidc_state:"+state, "1", 5*time.Minute); err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": h.oauth.AuthCodeURL(state)})
}

// Callback handles GET /api/auth/oidc/callback: checks the state nonce,
// exchanges the code, verifies the ID token, and opens a session for the
// matching local account.
func (h *OIDCHandler) Callback(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing state or code"})
		return
	}
	ok, err := h.cache.Exists(c.Request.Context(), "oidc_state:"+state)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown state"})
		return
	}
	_ = h.cache.Del(c.Request.Context(), "oidc_state:"+state)

	token, err := h.oauth.Exchange(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "code exchange failed"})
		return
	}
	rawIDToken, ok2 := token.Extra("id_token").(string)
	if !ok2 {
		c.JSON(http.StatusBadGateway, gin.H{"error": "no id_token in provider response"})
		return
	}
	idToken, err := h.verifier.Verify(c.Request.Context(), rawIDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid id token"})
		return
	}

	var claims struct {
		Email    string `json:"email"`
		Verified bool   `json:"email_verified"`
		Name     string `json:"name"`
		Username string `json:"preferred_username"`
		Picture  string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		fail(c, h.logger, err)
		return
	}
	if claims.Email == "" || !claims.Verified {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "verified email claim required"})
		return
	}

	user, err := h.findOrCreateUser(claims.Email, claims.Username, claims.Name, claims.Picture)
	if err != nil {
		fail(c, h.logger, err)
		return
	}

	sessionToken, err := issueSession(c, h.cache, h.sec, user.ID)
	if err != nil {
		fail(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": sessionToken, "user": user})
}

// findOrCreateUser resolves the provider identity to a local account.
func (h *OIDCHandler) findOrCreateUser(email, username, name, picture string) (*model.User, error) {
	var user model.User
	err := h.db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}
	user = model.User{
		Username: username,
		Name:     name,
		Email:    email,
		Image:    picture,
	}
	if err := h.db.Create(&user).Error; err != nil {
		if !isDuplicate(err) {
			return nil, err
		}
		// Username collision with an unrelated account; add a suffix.
		user.ID = 0
		user.Username = fmt.Sprintf("%s-%d", username, time.Now().UnixMilli()%100000)
		if err := h.db.Create(&user).Error; err != nil {
			return nil, err
		}
	}
	h.logger.Info("account provisioned from identity provider",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username))
	return &user, nil
}
