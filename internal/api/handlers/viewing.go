package handlers

import (
	"juba-homez/internal/api/middleware"
	"juba-homez/internal/api/respond"
	"juba-homez/internal/services"
	"time"

	"github.com/gin-gonic/gin"
)

type ViewingHandler struct {
	viewingService *services.ViewingService
}

func NewViewingHandler(viewingService *services.ViewingService) *ViewingHandler {
	return &ViewingHandler{viewingService: viewingService}
}

type ViewingRequestRequest struct {
	Name        string     `json:"name" binding:"omitempty,min=2,max=100"`
	Email       string     `json:"email" binding:"omitempty,email,max=255"`
	Phone       string     `json:"phone" binding:"omitempty,min=7,max=30"`
	PreferredAt *time.Time `json:"preferred_at"`
	Message     string     `json:"message" binding:"omitempty,max=2000"`
}

type ScheduleViewingRequest struct {
	PropertyID  uint      `json:"property_id"`
	RequestID   *uint     `json:"request_id"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Notes       string    `json:"notes" binding:"omitempty,max=2000"`
	AssignedTo  *uint     `json:"assigned_to"`
}

type RescheduleViewingRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Notes       string    `json:"notes" binding:"omitempty,max=2000"`
}

type CancelViewingRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

type ViewingRequestQuery struct {
	PageQuery
	Status string `form:"status" binding:"omitempty,oneof=pending scheduled"`
}

type ViewingQuery struct {
	PageQuery
	From string `form:"from"`
	To   string `form:"to"`
}

// CreateRequest asks for a viewing of a live listing
func (h *ViewingHandler) CreateRequest(c *gin.Context) {
	id, ok := pathID(c, "propertyId")
	if !ok {
		return
	}

	var req ViewingRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}

	request, err := h.viewingService.CreateRequest(c.Request.Context(), middleware.Identity(c), id, services.ViewingRequestInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		PreferredAt: req.PreferredAt,
		Message:     req.Message,
	})
	if err != nil {
		c.Error(err)
		return
	}

	respond.Created(c, request)
}

// ListRequests returns viewing requests on listings the caller manages
func (h *ViewingHandler) ListRequests(c *gin.Context) {
	var q ViewingRequestQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(err)
		return
	}

	requests, meta, err := h.viewingService.ListRequests(c.Request.Context(), middleware.Identity(c), q.Status, q.page())
	if err != nil {
		c.Error(err)
		return
	}

	respond.Page(c, requests, meta)
}

// Schedule books a viewing
func (h *ViewingHandler) Schedule(c *gin.Context) {
	var req ScheduleViewingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}

	viewing, err := h.viewingService.Schedule(c.Request.Context(), middleware.Identity(c), services.ScheduleInput{
		PropertyID:  req.PropertyID,
		RequestID:   req.RequestID,
		ScheduledAt: req.ScheduledAt,
		Notes:       req.Notes,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		c.Error(err)
		return
	}

	respond.Created(c, viewing)
}

// ListViewings returns the caller's viewings within an optional time window
func (h *ViewingHandler) ListViewings(c *gin.Context) {
	var q ViewingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(err)
		return
	}
	from, err := parseTime("from", q.From)
	if err != nil {
		c.Error(err)
		return
	}
	to, err := parseTime("to", q.To)
	if err != nil {
		c.Error(err)
		return
	}

	viewings, meta, err := h.viewingService.List(c.Request.Context(), middleware.Identity(c), services.ViewingWindow{From: from, To: to}, q.page())
	if err != nil {
		c.Error(err)
		return
	}

	respond.Page(c, viewings, meta)
}

// Reschedule moves a viewing to a new time
func (h *ViewingHandler) Reschedule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req RescheduleViewingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}

	viewing, err := h.viewingService.Reschedule(c.Request.Context(), middleware.Identity(c), id, req.ScheduledAt, req.Notes)
	if err != nil {
		c.Error(err)
		return
	}

	respond.OK(c, viewing)
}

// Cancel cancels a viewing
func (h *ViewingHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req CancelViewingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}

	viewing, err := h.viewingService.Cancel(c.Request.Context(), middleware.Identity(c), id, req.Reason)
	if err != nil {
		c.Error(err)
		return
	}

	respond.OK(c, viewing)
}
