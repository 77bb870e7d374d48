package controllers

import (
	"net/http"

	"storefront-service/apperrors"
	"storefront-service/middleware"
	"storefront-service/models"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	sessionService services.SessionService
	tokenGuard     services.TokenGuard
}

func NewAuthController(sessionService services.SessionService, tokenGuard services.TokenGuard) *AuthController {
	return &AuthController{sessionService: sessionService, tokenGuard: tokenGuard}
}

// Login handles POST /auth/login.
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginBody
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	info, err := ac.sessionService.Login(c.Request.Context(), middleware.SessionID(c), req.PhoneNumber, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Logout handles POST /auth/logout.
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.sessionService.Logout(c.Request.Context(), middleware.SessionID(c)); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me handles GET /auth/me.
func (ac *AuthController) Me(c *gin.Context) {
	info, err := ac.sessionService.Session(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Token handles GET /auth/token. It reports whether the session still holds
// a usable token without exposing it.
func (ac *AuthController) Token(c *gin.Context) {
	if _, ok := ac.tokenGuard.EnsureValidToken(c.Request.Context(), middleware.SessionID(c)); !ok {
		_ = c.Error(apperrors.ErrNotAuthenticated)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}
