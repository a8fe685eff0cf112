package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/domain/documents/stock_take"
)

// StockTakeHandler adds the variance view to the stock-take routes.
type StockTakeHandler struct {
	*DocumentHandler[*stock_take.StockTake, stock_take.CreateRequest, stock_take.UpdateRequest]
	service *stock_take.Service
}

// NewStockTakeHandler creates a stock-take handler.
func NewStockTakeHandler(base *BaseHandler, service *stock_take.Service) *StockTakeHandler {
	return &StockTakeHandler{
		DocumentHandler: NewDocumentHandler[*stock_take.StockTake, stock_take.CreateRequest, stock_take.UpdateRequest](base, service),
		service:         service,
	}
}

// Variance handles GET /stock-takes/:id/variance
func (h *StockTakeHandler) Variance(c *gin.Context) {
	docID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}

	variance, err := h.service.Variance(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, variance)
}

// RegisterRoutes mounts the document routes plus /:id/variance.
func (h *StockTakeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	h.DocumentHandler.RegisterRoutes(rg)
	rg.GET("/:id/variance", h.Variance)
}
