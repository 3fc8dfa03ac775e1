package handlers

import (
	"context"
	"juba-homez/internal/api/respond"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const pingTimeout = 2 * time.Second

type HealthHandler struct {
	db      *gorm.DB
	started time.Time
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now()}
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}

// GetHealth reports whether the API can reach its database
func (h *HealthHandler) GetHealth(c *gin.Context) {
	if err := h.ping(c.Request.Context()); err != nil {
		log.Printf("health check: database ping failed: %v", err)
		c.Error(respond.NewError(http.StatusServiceUnavailable, "Database unreachable"))
		return
	}

	respond.OK(c, HealthResponse{
		Status:   "ok",
		Database: "up",
		Uptime:   time.Since(h.started).Round(time.Second).String(),
	})
}

func (h *HealthHandler) ping(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
