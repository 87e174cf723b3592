package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lifesync-engine/internal/domain"
	"lifesync-engine/internal/service"
	"lifesync-engine/internal/validators"
)

// AuthHandler expone registro, login y reseteo de contrasena.
type AuthHandler struct {
	logger *zap.Logger
	auth   *service.AuthService
}

func NewAuthHandler(logger *zap.Logger, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{logger: logger, auth: auth}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignUp maneja POST /v1/auth/signup.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(c, gin.H{"error": "invalid payload"}))
		return
	}

	result, err := h.auth.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			c.JSON(http.StatusConflict, errorBody(c, gin.H{"error": "email already registered"}))
		case errors.Is(err, validators.ErrInvalidEmail), errors.Is(err, validators.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, errorBody(c, gin.H{"error": err.Error()}))
		default:
			h.logger.Error("signup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, errorBody(c, gin.H{"error": "internal error"}))
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

// SignIn maneja POST /v1/auth/login.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(c, gin.H{"error": "invalid payload"}))
		return
	}

	result, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, errorBody(c, gin.H{"error": "invalid credentials"}))
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody(c, gin.H{"error": "internal error"}))
		return
	}
	c.JSON(http.StatusOK, result)
}

// Refresh maneja POST /v1/auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(c, gin.H{"error": "invalid payload"}))
		return
	}

	pair, err := h.auth.Refresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, errorBody(c, gin.H{"error": "invalid token"}))
		return
	}
	c.JSON(http.StatusOK, pair)
}

// SignOut maneja POST /v1/auth/logout.
func (h *AuthHandler) SignOut(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(c, gin.H{"error": "invalid payload"}))
		return
	}
	if err := h.auth.SignOut(req.RefreshToken); err != nil {
		c.JSON(http.StatusUnauthorized, errorBody(c, gin.H{"error": "invalid token"}))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}

// RequestReset maneja POST /v1/auth/reset-password. La respuesta es identica
// exista o no la cuenta.
func (h *AuthHandler) RequestReset(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(c, gin.H{"error": "invalid payload"}))
		return
	}
	if err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.logger.Error("reset request failed", zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"status": "if the account exists, an email was sent"})
}

// ConfirmReset maneja POST /v1/auth/update-password.
func (h *AuthHandler) ConfirmReset(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(c, gin.H{"error": "invalid payload"}))
		return
	}

	err := h.auth.ConfirmPasswordReset(c.Request.Context(), req.Token, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidToken):
			c.JSON(http.StatusUnauthorized, errorBody(c, gin.H{"error": "invalid or expired token"}))
		case errors.Is(err, validators.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, errorBody(c, gin.H{"error": err.Error()}))
		default:
			h.logger.Error("reset confirm failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, errorBody(c, gin.H{"error": "internal error"}))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "password updated"})
}
