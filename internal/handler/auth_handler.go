package handler

import (
	"net/http"
	"time"

	"clinic_manager/internal/middleware"
	"clinic_manager/internal/ratelimit"
	"clinic_manager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const refreshCookieName = "refresh_token"

// AuthHandler handles authentication requests
type AuthHandler struct {
	service    service.AuthService
	limiter    *ratelimit.Limiter
	refreshTTL time.Duration
	log        *logrus.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s service.AuthService, limiter *ratelimit.Limiter, refreshTTL time.Duration, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{service: s, limiter: limiter, refreshTTL: refreshTTL, log: log}
}

// setRefreshCookie stores the refresh token out of reach of scripts.
// It is only ever sent back on the refresh endpoint.
func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token, int(h.refreshTTL.Seconds()), "/api/v1/auth/refresh", "", false, true)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindError(c, err)
		return
	}

	clinic, owner, tokens, err := h.service.RegisterClinic(c.Request.Context(), req)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}

	h.setRefreshCookie(c, tokens.RefreshToken)
	c.JSON(http.StatusCreated, gin.H{
		"message":      "Clinique creee avec succes",
		"clinic":       clinic,
		"user":         owner,
		"access_token": tokens.AccessToken,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Phone    string `json:"phone" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindError(c, err)
		return
	}

	user, tokens, err := h.service.Login(c.Request.Context(), req.Phone, req.Password, c.ClientIP())
	if err != nil {
		RespondError(c, h.log, err)
		return
	}

	h.setRefreshCookie(c, tokens.RefreshToken)
	c.JSON(http.StatusOK, gin.H{
		"message":              "Connexion reussie",
		"user":                 user,
		"access_token":         tokens.AccessToken,
		"must_change_password": user.MustChangePassword,
	})
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := c.Cookie(refreshCookieName)
	if err != nil || token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "authentication_failed",
			"message": "Session expiree",
		})
		return
	}

	user, accessToken, err := h.service.Refresh(c.Request.Context(), token)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"access_token": accessToken,
	})
}

func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindError(c, err)
		return
	}

	if err := h.service.RequestPasswordReset(c.Request.Context(), req.Phone); err != nil {
		RespondError(c, h.log, err)
		return
	}

	// Same response whether or not the phone is known.
	c.JSON(http.StatusOK, gin.H{
		"message": "Si ce numero existe, un code de reinitialisation a ete envoye.",
	})
}

func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req struct {
		Phone       string `json:"phone" binding:"required"`
		Code        string `json:"code" binding:"required,len=6"`
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindError(c, err)
		return
	}

	if err := h.service.ConfirmPasswordReset(c.Request.Context(), req.Phone, req.Code, req.NewPassword); err != nil {
		RespondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Mot de passe reinitialise avec succes"})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, _, _, ok := authIdentity(c)
	if !ok {
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBindError(c, err)
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		RespondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Mot de passe modifie avec succes"})
}

// RegisterAuthRoutes registers auth routes
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", middleware.RateLimit(h.limiter, ratelimit.ScopeRegister, h.log), h.Register)
		authGroup.POST("/login", middleware.RateLimit(h.limiter, ratelimit.ScopeLogin, h.log), h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/password-reset/request", middleware.RateLimit(h.limiter, ratelimit.ScopeSMS, h.log), h.RequestPasswordReset)
		authGroup.POST("/password-reset/confirm", middleware.RateLimit(h.limiter, ratelimit.ScopeLogin, h.log), h.ConfirmPasswordReset)
		authGroup.POST("/change-password", middleware.RequireAuth(), h.ChangePassword)
	}
}
