package handlers

import (
	"juba-homez/internal/api/respond"
	"juba-homez/internal/services"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// PageQuery is the pagination part of a list query string.
type PageQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

func (q PageQuery) page() services.Page {
	return services.Page{Page: q.Page, Limit: q.Limit}
}

// pathID reads a positive numeric path parameter. On failure it records a
// 400 and returns false.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.Error(respond.BadRequest("Invalid " + name))
		return 0, false
	}
	return uint(id), true
}

// parseTime accepts RFC 3339 timestamps and plain dates.
func parseTime(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, respond.BadRequest("Validation error", field+": must be an RFC 3339 time or a date")
}

func trueParam(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
