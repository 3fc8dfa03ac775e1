package handlers

import (
	"errors"
	"juba-homez/internal/api/respond"
	"juba-homez/internal/config"
	"juba-homez/internal/models"
	"juba-homez/internal/obs"
	"juba-homez/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

type RegisterRequest struct {
	Role     string `json:"role" binding:"required,oneof=customer broker owner photographer"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Name     string `json:"name" binding:"omitempty,min=2,max=100"`
	Phone    string `json:"phone" binding:"omitempty,min=7,max=30"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=128"`
}

// AuthResponse carries the account and its session token. Token is null
// for accounts that still wait for approval.
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token *string      `json:"token"`
}

type MessageResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// Register handles self-service sign-up
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Role:     req.Role,
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
	})
	if err != nil {
		c.Error(err)
		return
	}

	respond.Created(c, AuthResponse{User: user, Token: token})
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	obs.ObserveLogin(loginOutcome(err))
	if err != nil {
		c.Error(err)
		return
	}

	respond.OK(c, AuthResponse{User: user, Token: &token})
}

func loginOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, services.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, services.ErrTemporarilyLocked):
		return "locked"
	case errors.Is(err, services.ErrAccountNotActive):
		return "inactive"
	default:
		return "error"
	}
}

// ForgotPassword answers the same way whether or not the email exists
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}

	token, err := h.authService.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		c.Error(err)
		return
	}

	resp := MessageResponse{Message: "If the email exists, reset instructions were sent."}
	if h.cfg.Security.ExposeResetToken {
		resp.Token = token
	}
	respond.OK(c, resp)
}

// ResetPassword consumes a reset token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		c.Error(err)
		return
	}

	respond.OK(c, MessageResponse{Message: "Password reset successful"})
}
