package handlers

import (
	"juba-homez/internal/api/middleware"
	"juba-homez/internal/api/respond"
	"juba-homez/internal/services"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

type NotificationQuery struct {
	PageQuery
	Unread string `form:"unread"`
}

// NotificationMeta adds the unread counter to the page meta.
type NotificationMeta struct {
	services.PageMeta
	Unread int64 `json:"unread"`
}

type MarkedResponse struct {
	Updated int64 `json:"updated"`
}

// ListNotifications returns the caller's notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	var q NotificationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(err)
		return
	}

	ctx := c.Request.Context()
	userID := middleware.Identity(c).UserID
	notes, meta, err := h.notificationService.List(ctx, userID, trueParam(q.Unread), q.page())
	if err != nil {
		c.Error(err)
		return
	}
	unread, err := h.notificationService.UnreadCount(ctx, userID)
	if err != nil {
		c.Error(err)
		return
	}

	respond.Page(c, notes, NotificationMeta{PageMeta: meta, Unread: unread})
}

// MarkRead marks one notification as read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	note, err := h.notificationService.MarkRead(c.Request.Context(), middleware.Identity(c).UserID, id)
	if err != nil {
		c.Error(err)
		return
	}

	respond.OK(c, note)
}

// MarkAllRead marks every unread notification of the caller as read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.notificationService.MarkAllRead(c.Request.Context(), middleware.Identity(c).UserID)
	if err != nil {
		c.Error(err)
		return
	}

	respond.OK(c, MarkedResponse{Updated: n})
}
