package handlers

import (
	"juba-homez/internal/api/middleware"
	"juba-homez/internal/api/respond"
	"juba-homez/internal/models"
	"juba-homez/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type UpdateProfileRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=2,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,min=7,max=30"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,url,max=500"`
}

type UserResponse struct {
	User *models.User `json:"user"`
}

type ProfileResponse struct {
	Profile *models.PublicProfile `json:"profile"`
}

// GetMe returns current user information
func (h *UserHandler) GetMe(c *gin.Context) {
	respond.OK(c, UserResponse{User: middleware.CurrentUser(c)})
}

// UpdateMe edits the caller's own profile
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}

	user, err := h.userService.UpdateMe(c.Request.Context(), middleware.Identity(c).UserID, services.ProfileUpdate{
		Name:      req.Name,
		Phone:     req.Phone,
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		c.Error(err)
		return
	}

	respond.OK(c, UserResponse{User: user})
}

// GetPublicProfile returns the public part of an active account
func (h *UserHandler) GetPublicProfile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	profile, err := h.userService.PublicProfile(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	respond.OK(c, ProfileResponse{Profile: profile})
}
