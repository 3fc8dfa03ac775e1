package handlers

import (
	"errors"
	"juba-homez/internal/api/middleware"
	"juba-homez/internal/api/respond"
	"juba-homez/internal/authz"
	"juba-homez/internal/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	mediaService *services.MediaService
	loaders      *services.Loaders
}

func NewMediaHandler(mediaService *services.MediaService, loaders *services.Loaders) *MediaHandler {
	return &MediaHandler{mediaService: mediaService, loaders: loaders}
}

// ListPropertyMedia returns the approved media of a live listing. Managers of
// the listing and admins see every item regardless of approval.
func (h *MediaHandler) ListPropertyMedia(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if viewer := middleware.Identity(c); viewer != nil {
		res, err := h.loaders.Property(ctx, id)
		if err != nil {
			c.Error(err)
			return
		}
		if authz.Check(viewer, authz.MediaDelete, res).Allowed {
			media, err := h.mediaService.ListForProperty(ctx, id)
			if err != nil {
				c.Error(err)
				return
			}
			respond.OK(c, media)
			return
		}
	}

	media, err := h.mediaService.ListPublic(ctx, id)
	if err != nil {
		c.Error(err)
		return
	}

	respond.OK(c, media)
}

// UploadMedia stores the "files" parts of a multipart form as pending media
func (h *MediaHandler) UploadMedia(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			c.Error(respond.BadRequest("Expected a multipart/form-data body"))
			return
		}
		c.Error(err)
		return
	}

	media, err := h.mediaService.Upload(c.Request.Context(), middleware.Identity(c), id, form.File["files"])
	if err != nil {
		c.Error(err)
		return
	}

	respond.Created(c, media)
}

// DeleteMedia soft-deletes a media item
func (h *MediaHandler) DeleteMedia(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.mediaService.Delete(c.Request.Context(), middleware.Identity(c), id); err != nil {
		c.Error(err)
		return
	}

	respond.OK(c, DeletedResponse{ID: id, Deleted: true})
}
