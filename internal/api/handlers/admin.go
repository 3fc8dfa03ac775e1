package handlers

import (
	"juba-homez/internal/api/middleware"
	"juba-homez/internal/api/respond"
	"juba-homez/internal/obs"
	"juba-homez/internal/services"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves moderation, audit and announcements.
type AdminHandler struct {
	approvalService     *services.ApprovalService
	userService         *services.UserService
	propertyService     *services.PropertyService
	mediaService        *services.MediaService
	auditService        *services.AuditService
	announcementService *services.AnnouncementService
}

func NewAdminHandler(
	approvalService *services.ApprovalService,
	userService *services.UserService,
	propertyService *services.PropertyService,
	mediaService *services.MediaService,
	auditService *services.AuditService,
	announcementService *services.AnnouncementService,
) *AdminHandler {
	return &AdminHandler{
		approvalService:     approvalService,
		userService:         userService,
		propertyService:     propertyService,
		mediaService:        mediaService,
		auditService:        auditService,
		announcementService: announcementService,
	}
}

type ReasonRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

type ModerationQuery struct {
	PageQuery
	Status string `form:"status"`
}

type UserQuery struct {
	PageQuery
	Status string `form:"status" binding:"omitempty,oneof=pending active rejected suspended"`
	Role   string `form:"role" binding:"omitempty,oneof=customer broker owner photographer admin staff"`
	Query  string `form:"q"`
}

type AuditQuery struct {
	PageQuery
	Action     string `form:"action"`
	EntityType string `form:"entity_type"`
	ActorID    *uint  `form:"actor_id"`
	EntityID   *uint  `form:"entity_id"`
}

type AnnouncementRequest struct {
	Title    string   `json:"title" binding:"required,min=3,max=200"`
	Message  string   `json:"message" binding:"required,min=1,max=5000"`
	Audience []string `json:"audience" binding:"omitempty,dive,oneof=all customer broker owner photographer admin staff"`
}

// ListUsers returns accounts for review
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var q UserQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(err)
		return
	}

	users, meta, err := h.userService.ListUsers(c.Request.Context(), services.UserFilter{
		Status: q.Status,
		Role:   q.Role,
		Query:  q.Query,
	}, q.page())
	if err != nil {
		c.Error(err)
		return
	}

	respond.Page(c, users, meta)
}

// ListProperties returns listings of any approval state
func (h *AdminHandler) ListProperties(c *gin.Context) {
	var q ModerationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(err)
		return
	}

	properties, meta, err := h.propertyService.ListForModeration(c.Request.Context(), q.Status, q.page())
	if err != nil {
		c.Error(err)
		return
	}

	respond.Page(c, properties, meta)
}

// ListMedia returns media of any approval state
func (h *AdminHandler) ListMedia(c *gin.Context) {
	var q ModerationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(err)
		return
	}

	media, meta, err := h.mediaService.ListForModeration(c.Request.Context(), q.Status, q.page())
	if err != nil {
		c.Error(err)
		return
	}

	respond.Page(c, media, meta)
}

// Moderate returns the handler applying action to entities of kind
func (h *AdminHandler) Moderate(kind services.Kind, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		var req ReasonRequest
		if err := bindOptionalJSON(c, &req); err != nil {
			c.Error(err)
			return
		}

		result, err := h.approvalService.Transition(c.Request.Context(), kind, id, action, middleware.Identity(c), req.Reason)
		if err != nil {
			c.Error(err)
			return
		}
		obs.ObserveModeration(string(kind), action)

		respond.OK(c, result)
	}
}

// ListAuditLogs returns audit entries, newest first
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	var q AuditQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(err)
		return
	}

	logs, meta, err := h.auditService.List(c.Request.Context(), services.AuditFilter{
		Action:     q.Action,
		EntityType: q.EntityType,
		ActorID:    q.ActorID,
		EntityID:   q.EntityID,
	}, q.page())
	if err != nil {
		c.Error(err)
		return
	}

	respond.Page(c, logs, meta)
}

// CreateAnnouncement broadcasts a message to the audience roles
func (h *AdminHandler) CreateAnnouncement(c *gin.Context) {
	var req AnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}

	announcement, err := h.announcementService.Create(c.Request.Context(), middleware.Identity(c), services.AnnouncementInput{
		Title:    req.Title,
		Message:  req.Message,
		Audience: req.Audience,
	})
	if err != nil {
		c.Error(err)
		return
	}

	respond.Created(c, announcement)
}

// ListAnnouncements returns past announcements
func (h *AdminHandler) ListAnnouncements(c *gin.Context) {
	var q PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(err)
		return
	}

	announcements, meta, err := h.announcementService.List(c.Request.Context(), q.page())
	if err != nil {
		c.Error(err)
		return
	}

	respond.Page(c, announcements, meta)
}
