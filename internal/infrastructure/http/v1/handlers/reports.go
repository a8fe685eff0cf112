package handlers

import (
	"github.com/gin-gonic/gin"

	"stockledger/internal/domain/reports"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// ReportsHandler serves the read-only reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// Reconcile handles GET /reports/reconciliation
func (h *ReportsHandler) Reconcile(c *gin.Context) {
	var q dto.ReconcileQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.Filter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.Reconcile(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, result)
}

// LowStock handles GET /reports/low-stock
func (h *ReportsHandler) LowStock(c *gin.Context) {
	var q dto.LowStockQuery
	if !h.BindQuery(c, &q) {
		return
	}
	warehouseID, err := dto.OptionalID("warehouseId", q.WarehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	lines, err := h.service.LowStock(c.Request.Context(), warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if lines == nil {
		lines = []reports.LowStockLine{}
	}
	h.OK(c, gin.H{"items": lines})
}

// Summary handles GET /reports/summary/:kind
func (h *ReportsHandler) Summary(c *gin.Context) {
	var q dto.SummaryQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.Filter(c.Param("kind"))
	if err != nil {
		h.Error(c, err)
		return
	}

	summary, err := h.service.PeriodSummary(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, summary)
}

// RegisterRoutes mounts the report routes on rg.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/reconciliation", h.Reconcile)
	rg.GET("/low-stock", h.LowStock)
	rg.GET("/summary/:kind", h.Summary)
}
