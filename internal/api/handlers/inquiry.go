package handlers

import (
	"juba-homez/internal/api/middleware"
	"juba-homez/internal/api/respond"
	"juba-homez/internal/services"

	"github.com/gin-gonic/gin"
)

type InquiryHandler struct {
	inquiryService *services.InquiryService
}

func NewInquiryHandler(inquiryService *services.InquiryService) *InquiryHandler {
	return &InquiryHandler{inquiryService: inquiryService}
}

// InquiryRequest is sent by visitors. Signed-in visitors may omit name and email.
type InquiryRequest struct {
	PropertyID uint   `json:"property_id"`
	Name       string `json:"name" binding:"omitempty,min=2,max=100"`
	Email      string `json:"email" binding:"omitempty,email,max=255"`
	Phone      string `json:"phone" binding:"omitempty,min=7,max=30"`
	Message    string `json:"message" binding:"required,min=2,max=2000"`
}

type ReplyRequest struct {
	Message string `json:"message" binding:"required,min=1,max=2000"`
}

type InquiryQuery struct {
	PageQuery
	Status string `form:"status" binding:"omitempty,oneof=new replied"`
}

// CreateInquiry records an inquiry on the listing named in the path
func (h *InquiryHandler) CreateInquiry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req InquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}
	req.PropertyID = id
	h.create(c, req)
}

// CreateInquiryFromBody records an inquiry on the listing named by property_id
func (h *InquiryHandler) CreateInquiryFromBody(c *gin.Context) {
	var req InquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}
	if req.PropertyID == 0 {
		c.Error(respond.BadRequest("Validation error", "property_id: is required"))
		return
	}
	h.create(c, req)
}

func (h *InquiryHandler) create(c *gin.Context, req InquiryRequest) {
	inquiry, err := h.inquiryService.Create(c.Request.Context(), middleware.Identity(c), services.InquiryInput{
		PropertyID: req.PropertyID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Message:    req.Message,
	})
	if err != nil {
		c.Error(err)
		return
	}

	respond.Created(c, inquiry)
}

// ListInquiries returns inquiries on listings the caller manages
func (h *InquiryHandler) ListInquiries(c *gin.Context) {
	var q InquiryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(err)
		return
	}

	inquiries, meta, err := h.inquiryService.List(c.Request.Context(), middleware.Identity(c), q.Status, q.page())
	if err != nil {
		c.Error(err)
		return
	}

	respond.Page(c, inquiries, meta)
}

// GetInquiry returns one inquiry with its replies
func (h *InquiryHandler) GetInquiry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	inquiry, err := h.inquiryService.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	respond.OK(c, inquiry)
}

// ReplyInquiry answers an inquiry
func (h *InquiryHandler) ReplyInquiry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(err)
		return
	}

	reply, err := h.inquiryService.Reply(c.Request.Context(), middleware.Identity(c), id, req.Message)
	if err != nil {
		c.Error(err)
		return
	}

	respond.Created(c, reply)
}
