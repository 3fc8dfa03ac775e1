package handlers

import (
	"juba-homez/internal/api/middleware"
	"juba-homez/internal/api/respond"
	"juba-homez/internal/services"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

type EventRequest struct {
	PropertyID uint   `json:"property_id" binding:"required"`
	Type       string `json:"type" binding:"required,oneof=view share favorite contact_click inquiry_click"`
	SessionID  string `json:"session_id" binding:"omitempty,max=64"`
}

// TrackEvent records an interaction with a live listing
func (h *AnalyticsHandler) TrackEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}

	event, err := h.analyticsService.Track(c.Request.Context(), middleware.Identity(c), services.EventInput{
		PropertyID: req.PropertyID,
		Type:       req.Type,
		SessionID:  req.SessionID,
	})
	if err != nil {
		c.Error(err)
		return
	}

	respond.Created(c, event)
}

// MyProperties returns engagement counts for the caller's listings
func (h *AnalyticsHandler) MyProperties(c *gin.Context) {
	stats, err := h.analyticsService.MyProperties(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		c.Error(err)
		return
	}

	respond.OK(c, stats)
}

// PropertyReport returns the detailed analytics of one listing
func (h *AnalyticsHandler) PropertyReport(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	report, err := h.analyticsService.Property(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	respond.OK(c, report)
}
