package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/domain"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// CatalogRequest builds a new entity from a request body.
type CatalogRequest[T domain.CatalogEntity] interface {
	Build() T
}

// CatalogHandler serves one master-data entity.
type CatalogHandler[T domain.CatalogEntity, R CatalogRequest[T]] struct {
	*BaseHandler
	service *domain.CatalogService[T]
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler[T domain.CatalogEntity, R CatalogRequest[T]](
	base *BaseHandler,
	service *domain.CatalogService[T],
) *CatalogHandler[T, R] {
	return &CatalogHandler[T, R]{BaseHandler: base, service: service}
}

// Create handles POST /<catalog>
func (h *CatalogHandler[T, R]) Create(c *gin.Context) {
	var req R
	if !h.BindJSON(c, &req) {
		return
	}

	entity := req.Build()
	if err := h.service.Create(c.Request.Context(), entity); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, entity)
}

// Get handles GET /<catalog>/:id
func (h *CatalogHandler[T, R]) Get(c *gin.Context) {
	entityID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	entity, err := h.service.GetByID(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entity)
}

// List handles GET /<catalog>
func (h *CatalogHandler[T, R]) List(c *gin.Context) {
	var q dto.CatalogListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	result, err := h.service.List(c.Request.Context(), q.Filter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// RegisterRoutes mounts the catalog routes on rg.
func (h *CatalogHandler[T, R]) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
}
