package handlers

import (
	"juba-homez/internal/api/middleware"
	"juba-homez/internal/api/respond"
	"juba-homez/internal/services"

	"github.com/gin-gonic/gin"
)

type PropertyHandler struct {
	propertyService *services.PropertyService
}

func NewPropertyHandler(propertyService *services.PropertyService) *PropertyHandler {
	return &PropertyHandler{propertyService: propertyService}
}

// PropertyRequest is the body of create and update. Create requires title,
// listing_type, property_type and price; update leaves absent fields unchanged.
type PropertyRequest struct {
	OwnerID      *uint    `json:"owner_id"`
	BrokerID     *uint    `json:"broker_id"`
	Title        *string  `json:"title" binding:"omitempty,min=3,max=200"`
	Description  *string  `json:"description" binding:"omitempty,max=5000"`
	ListingType  *string  `json:"listing_type" binding:"omitempty,oneof=sale rent"`
	PropertyType *string  `json:"property_type" binding:"omitempty,oneof=house apartment land commercial office other"`
	Price        *float64 `json:"price" binding:"omitempty,min=0"`
	Currency     *string  `json:"currency" binding:"omitempty,len=3"`
	City         *string  `json:"city" binding:"omitempty,max=100"`
	Area         *string  `json:"area" binding:"omitempty,max=100"`
	Address      *string  `json:"address" binding:"omitempty,max=255"`
	Bedrooms     *int     `json:"bedrooms" binding:"omitempty,min=0,max=100"`
	Bathrooms    *int     `json:"bathrooms" binding:"omitempty,min=0,max=100"`
	SizeSqm      *float64 `json:"size_sqm" binding:"omitempty,min=0"`
}

func (r PropertyRequest) input() services.PropertyInput {
	return services.PropertyInput{
		OwnerID:      r.OwnerID,
		BrokerID:     r.BrokerID,
		Title:        r.Title,
		Description:  r.Description,
		ListingType:  r.ListingType,
		PropertyType: r.PropertyType,
		Price:        r.Price,
		Currency:     r.Currency,
		City:         r.City,
		Area:         r.Area,
		Address:      r.Address,
		Bedrooms:     r.Bedrooms,
		Bathrooms:    r.Bathrooms,
		SizeSqm:      r.SizeSqm,
	}
}

type PropertyStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=available under_offer sold rented off_market"`
}

type PropertyQuery struct {
	PageQuery
	Query        string   `form:"q"`
	City         string   `form:"city"`
	Area         string   `form:"area"`
	ListingType  string   `form:"listing_type" binding:"omitempty,oneof=sale rent"`
	PropertyType string   `form:"property_type"`
	MinPrice     *float64 `form:"min_price" binding:"omitempty,min=0"`
	MaxPrice     *float64 `form:"max_price" binding:"omitempty,min=0"`
	Bedrooms     *int     `form:"bedrooms" binding:"omitempty,min=0"`
	Mine         string   `form:"mine"`
}

// ListProperties searches live listings, or the caller's own with mine=true
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	var q PropertyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(err)
		return
	}

	properties, meta, err := h.propertyService.List(c.Request.Context(), middleware.Identity(c), services.PropertyFilter{
		Query:        q.Query,
		City:         q.City,
		Area:         q.Area,
		ListingType:  q.ListingType,
		PropertyType: q.PropertyType,
		MinPrice:     q.MinPrice,
		MaxPrice:     q.MaxPrice,
		Bedrooms:     q.Bedrooms,
		Mine:         trueParam(q.Mine),
	}, q.page())
	if err != nil {
		c.Error(err)
		return
	}

	respond.Page(c, properties, meta)
}

// GetProperty returns a listing visible to the caller
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	property, err := h.propertyService.Get(c.Request.Context(), middleware.Identity(c), id)
	if err != nil {
		c.Error(err)
		return
	}

	respond.OK(c, property)
}

// GetAreas returns listing counts per city and area
func (h *PropertyHandler) GetAreas(c *gin.Context) {
	areas, err := h.propertyService.Areas(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	respond.OK(c, areas)
}

// CreateProperty creates a pending listing
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	var req PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}

	property, err := h.propertyService.Create(c.Request.Context(), middleware.Identity(c), req.input())
	if err != nil {
		c.Error(err)
		return
	}

	respond.Created(c, property)
}

// UpdateProperty edits a listing the caller manages
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}

	property, err := h.propertyService.Update(c.Request.Context(), middleware.Identity(c), id, req.input())
	if err != nil {
		c.Error(err)
		return
	}

	respond.OK(c, property)
}

// UpdateStatus changes the market status of a listing
func (h *PropertyHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req PropertyStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}

	property, err := h.propertyService.SetStatus(c.Request.Context(), middleware.Identity(c), id, req.Status)
	if err != nil {
		c.Error(err)
		return
	}

	respond.OK(c, property)
}

type DeletedResponse struct {
	ID      uint `json:"id"`
	Deleted bool `json:"deleted"`
}

// DeleteProperty soft-deletes a listing
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.propertyService.Delete(c.Request.Context(), middleware.Identity(c), id); err != nil {
		c.Error(err)
		return
	}

	respond.OK(c, DeletedResponse{ID: id, Deleted: true})
}
