package handlers

import (
	"errors"
	"io"
	"juba-homez/internal/api/middleware"
	"juba-homez/internal/api/respond"
	"juba-homez/internal/services"
	"time"

	"github.com/gin-gonic/gin"
)

type PhotoJobHandler struct {
	photoJobService *services.PhotoJobService
}

func NewPhotoJobHandler(photoJobService *services.PhotoJobService) *PhotoJobHandler {
	return &PhotoJobHandler{photoJobService: photoJobService}
}

type PhotoJobRequest struct {
	Notes         string     `json:"notes" binding:"omitempty,max=2000"`
	Budget        float64    `json:"budget" binding:"omitempty,min=0"`
	PreferredDate *time.Time `json:"preferred_date"`
}

// JobChangeRequest is the optional body of a job transition.
type JobChangeRequest struct {
	PhotographerID *uint      `json:"photographer_id"`
	ScheduledAt    *time.Time `json:"scheduled_at"`
	Reason         string     `json:"reason" binding:"omitempty,max=500"`
}

type MessageRequest struct {
	Message string `json:"message" binding:"required,min=1,max=2000"`
}

type PhotoJobQuery struct {
	PageQuery
	Status string `form:"status" binding:"omitempty,oneof=open accepted rejected scheduled completed"`
}

// CreateJob opens a photo job on a listing
func (h *PhotoJobHandler) CreateJob(c *gin.Context) {
	id, ok := pathID(c, "propertyId")
	if !ok {
		return
	}

	var req PhotoJobRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	job, err := h.photoJobService.Create(c.Request.Context(), middleware.Identity(c), id, services.PhotoJobInput{
		Notes:         req.Notes,
		Budget:        req.Budget,
		PreferredDate: req.PreferredDate,
	})
	if err != nil {
		c.Error(err)
		return
	}

	respond.Created(c, job)
}

// ListOpenJobs returns jobs waiting for a photographer
func (h *PhotoJobHandler) ListOpenJobs(c *gin.Context) {
	var q PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(err)
		return
	}

	jobs, meta, err := h.photoJobService.ListOpen(c.Request.Context(), q.page())
	if err != nil {
		c.Error(err)
		return
	}

	respond.Page(c, jobs, meta)
}

// ListJobs returns the caller's jobs
func (h *PhotoJobHandler) ListJobs(c *gin.Context) {
	var q PhotoJobQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(err)
		return
	}

	jobs, meta, err := h.photoJobService.List(c.Request.Context(), middleware.Identity(c), q.Status, q.page())
	if err != nil {
		c.Error(err)
		return
	}

	respond.Page(c, jobs, meta)
}

// Transition returns the handler for one job action
func (h *PhotoJobHandler) Transition(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		var req JobChangeRequest
		if err := bindOptionalJSON(c, &req); err != nil {
			c.Error(err)
			return
		}

		job, err := h.photoJobService.Transition(c.Request.Context(), middleware.Identity(c), id, action, services.JobChange{
			PhotographerID: req.PhotographerID,
			ScheduledAt:    req.ScheduledAt,
			Reason:         req.Reason,
		})
		if err != nil {
			c.Error(err)
			return
		}

		respond.OK(c, job)
	}
}

// ListMessages returns the conversation on a job
func (h *PhotoJobHandler) ListMessages(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	messages, err := h.photoJobService.Messages(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	respond.OK(c, messages)
}

// SendMessage posts to a job's conversation
func (h *PhotoJobHandler) SendMessage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}

	msg, err := h.photoJobService.SendMessage(c.Request.Context(), middleware.Identity(c), id, req.Message)
	if err != nil {
		c.Error(err)
		return
	}

	respond.Created(c, msg)
}

// bindOptionalJSON binds a body that may be absent.
func bindOptionalJSON(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
