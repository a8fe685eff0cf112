package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/domain/registers/stock"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// BalanceHandler exposes the stock balance register.
type BalanceHandler struct {
	*BaseHandler
	service *stock.Service
}

// NewBalanceHandler creates a balance handler.
func NewBalanceHandler(base *BaseHandler, service *stock.Service) *BalanceHandler {
	return &BalanceHandler{BaseHandler: base, service: service}
}

// List handles GET /balances
func (h *BalanceHandler) List(c *gin.Context) {
	var q dto.BalanceQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.Filter()
	if err != nil {
		h.Error(c, err)
		return
	}

	balances, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": balances})
}

// Get handles GET /balances/:warehouseId/:productId
// A pair without a row reports zero.
func (h *BalanceHandler) Get(c *gin.Context) {
	warehouseID, ok := h.ParamID(c, "warehouseId")
	if !ok {
		return
	}
	productID, ok := h.ParamID(c, "productId")
	if !ok {
		return
	}

	balance, err := h.service.Get(c.Request.Context(), stock.Key{WarehouseID: warehouseID, ProductID: productID})
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, balance)
}

// RegisterRoutes mounts the balance routes on rg.
func (h *BalanceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:warehouseId/:productId", h.Get)
}
