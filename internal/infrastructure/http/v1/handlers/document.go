package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"stockledger/internal/core/id"
	"stockledger/internal/domain"
	"stockledger/internal/domain/documents"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// DocumentService is the operation set every document kind exposes.
type DocumentService[T documents.Document, C any, U any] interface {
	Create(ctx context.Context, req C) (T, error)
	Update(ctx context.Context, docID id.ID, req U) (T, error)
	Confirm(ctx context.Context, docID id.ID) (T, error)
	Remove(ctx context.Context, docID id.ID) (documents.RemoveOutcome, error)
	PermanentRemove(ctx context.Context, docID id.ID) error
	Get(ctx context.Context, docID id.ID, includeDeleted bool) (T, error)
	List(ctx context.Context, filter documents.ListFilter) (domain.ListResult[T], error)
}

// DocumentHandler serves one document kind.
// C and U are the kind's create and update request bodies.
type DocumentHandler[T documents.Document, C any, U any] struct {
	*BaseHandler
	service DocumentService[T, C, U]
}

// NewDocumentHandler creates a handler over service.
func NewDocumentHandler[T documents.Document, C any, U any](
	base *BaseHandler,
	service DocumentService[T, C, U],
) *DocumentHandler[T, C, U] {
	return &DocumentHandler[T, C, U]{BaseHandler: base, service: service}
}

// Create handles POST /<documents>
func (h *DocumentHandler[T, C, U]) Create(c *gin.Context) {
	var req C
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, doc)
}

// Get handles GET /<documents>/:id
func (h *DocumentHandler[T, C, U]) Get(c *gin.Context) {
	docID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var q dto.GetQuery
	if !h.BindQuery(c, &q) {
		return
	}

	doc, err := h.service.Get(c.Request.Context(), docID, q.IncludeDeleted)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// List handles GET /<documents>
func (h *DocumentHandler[T, C, U]) List(c *gin.Context) {
	var q dto.DocumentListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.Filter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// Update handles PATCH /<documents>/:id
func (h *DocumentHandler[T, C, U]) Update(c *gin.Context) {
	docID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req U
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.Update(c.Request.Context(), docID, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// Confirm handles POST /<documents>/:id/confirm
func (h *DocumentHandler[T, C, U]) Confirm(c *gin.Context) {
	docID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.Confirm(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// Remove handles DELETE /<documents>/:id
// Drafts are deleted outright, confirmed documents are soft-deleted.
func (h *DocumentHandler[T, C, U]) Remove(c *gin.Context) {
	docID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	outcome, err := h.service.Remove(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.RemoveResponse{ID: docID.String(), Outcome: outcome})
}

// PermanentRemove handles DELETE /<documents>/:id/permanent
func (h *DocumentHandler[T, C, U]) PermanentRemove(c *gin.Context) {
	docID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.service.PermanentRemove(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes mounts the standard document routes on rg.
func (h *DocumentHandler[T, C, U]) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.Update)
	rg.POST("/:id/confirm", h.Confirm)
	rg.DELETE("/:id", h.Remove)
	rg.DELETE("/:id/permanent", h.PermanentRemove)
}
