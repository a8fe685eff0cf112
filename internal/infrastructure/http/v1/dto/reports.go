package dto

import (
	"stockledger/internal/domain/documents"
	"stockledger/internal/domain/registers/stock"
	"stockledger/internal/domain/reports"
)

// BalanceQuery is the query string of GET /balances.
type BalanceQuery struct {
	WarehouseID string `form:"warehouseId"`
	ProductID   string `form:"productId"`
	ExcludeZero bool   `form:"excludeZero"`
}

// Filter converts the query to a stock.Filter.
func (q BalanceQuery) Filter() (stock.Filter, error) {
	warehouseID, err := OptionalID("warehouseId", q.WarehouseID)
	if err != nil {
		return stock.Filter{}, err
	}
	productID, err := OptionalID("productId", q.ProductID)
	if err != nil {
		return stock.Filter{}, err
	}
	return stock.Filter{WarehouseID: warehouseID, ProductID: productID, ExcludeZero: q.ExcludeZero}, nil
}

// ReconcileQuery is the query string of GET /reports/reconciliation.
type ReconcileQuery struct {
	WarehouseID    string `form:"warehouseId"`
	ProductID      string `form:"productId"`
	OnlyMismatches bool   `form:"onlyMismatches"`
}

// Filter converts the query to a reports.ReconcileFilter.
func (q ReconcileQuery) Filter() (reports.ReconcileFilter, error) {
	warehouseID, err := OptionalID("warehouseId", q.WarehouseID)
	if err != nil {
		return reports.ReconcileFilter{}, err
	}
	productID, err := OptionalID("productId", q.ProductID)
	if err != nil {
		return reports.ReconcileFilter{}, err
	}
	return reports.ReconcileFilter{
		WarehouseID:    warehouseID,
		ProductID:      productID,
		OnlyMismatches: q.OnlyMismatches,
	}, nil
}

// LowStockQuery is the query string of GET /reports/low-stock.
type LowStockQuery struct {
	WarehouseID string `form:"warehouseId"`
}

// SummaryQuery is the query string of GET /reports/summary/:kind.
type SummaryQuery struct {
	Type        string `form:"type" binding:"required"`
	Year        int    `form:"year" binding:"required"`
	Month       int    `form:"month"`
	Quarter     int    `form:"quarter"`
	WarehouseID string `form:"warehouseId"`
}

// Filter converts the query to a reports.SummaryFilter for kind.
func (q SummaryQuery) Filter(kind string) (reports.SummaryFilter, error) {
	warehouseID, err := OptionalID("warehouseId", q.WarehouseID)
	if err != nil {
		return reports.SummaryFilter{}, err
	}
	return reports.SummaryFilter{
		Kind: documents.Kind(kind),
		Period: reports.Period{
			Type:    reports.PeriodType(q.Type),
			Year:    q.Year,
			Month:   q.Month,
			Quarter: q.Quarter,
		},
		WarehouseID: warehouseID,
	}, nil
}
