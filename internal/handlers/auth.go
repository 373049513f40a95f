package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sisgic/backend/internal/config"
	"github.com/sisgic/backend/internal/middleware"
	"github.com/sisgic/backend/internal/services"
	"github.com/sisgic/backend/pkg/response"
	"gorm.io/gorm"
)

type AuthHandler struct {
	authService *services.AuthService
	ldapEnabled bool
}

func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	authService := services.NewAuthService(db, &cfg.LDAP, &cfg.JWT)
	return &AuthHandler{
		authService: authService,
		ldapEnabled: cfg.LDAP.Enabled,
	}
}

type loginResponse struct {
	AccessToken     string      `json:"access_token"`
	AccessExpireAt  int64       `json:"access_expire_at"`
	RefreshToken    string      `json:"refresh_token"`
	RefreshExpireAt int64       `json:"refresh_expire_at"`
	User            interface{} `json:"user"`
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Login(&req, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	response.Success(c, loginResponse{
		AccessToken:     result.AccessToken,
		AccessExpireAt:  result.AccessExpireAt.Unix(),
		RefreshToken:    result.RefreshToken,
		RefreshExpireAt: result.RefreshExpireAt.Unix(),
		User:            result.User,
	})
}

// Refresh rotates a refresh token
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Refresh(req.RefreshToken, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"access_token":      result.AccessToken,
		"access_expire_at":  result.AccessExpireAt.Unix(),
		"refresh_token":     result.RefreshToken,
		"refresh_expire_at": result.RefreshExpireAt.Unix(),
	})
}

// GetCurrentUser returns the session user for the token's id and role.
// A missing or mismatched record fails the session and the client must log
// in again.
// GET /api/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)

	user, err := h.authService.GetSessionUser(userID, role)
	if err != nil {
		response.Unauthorized(c, "session invalid")
		return
	}

	response.Success(c, gin.H{
		"user":     user,
		"initials": user.Initials(),
	})
}

// GetAuthConfig returns authentication configuration
// GET /api/auth/config
func (h *AuthHandler) GetAuthConfig(c *gin.Context) {
	response.Success(c, gin.H{
		"ldap_enabled": h.ldapEnabled,
	})
}

// Logout revokes the refresh token
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	// Body is optional; an access-token-only logout still succeeds
	_ = c.ShouldBindJSON(&req)

	if err := h.authService.RevokeRefreshToken(req.RefreshToken); err != nil {
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"message": "logged out successfully"})
}

// CreateDefaultAdvisorIfNotExists seeds the bootstrap advisor account
func (h *AuthHandler) CreateDefaultAdvisorIfNotExists() error {
	return h.authService.CreateDefaultAdvisorIfNotExists()
}
