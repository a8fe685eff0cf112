// Package reports provides read-only views over the ledger:
// reconciliation of balances against documents, period summaries and low-stock alerts.
package reports

import (
	"fmt"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/documents"
)

// --- Reconciliation ---

// ReconcileFilter narrows a reconciliation run.
type ReconcileFilter struct {
	WarehouseID *id.ID
	ProductID   *id.ID
	// OnlyMismatches drops lines whose balance agrees with the documents.
	OnlyMismatches bool
}

// ExpectedBalance is the quantity implied by confirmed documents.
type ExpectedBalance struct {
	WarehouseID id.ID          `db:"warehouse_id"`
	ProductID   id.ID          `db:"product_id"`
	Quantity    types.Quantity `db:"quantity"`
}

// ReconcileLine compares one balance row with its documents.
type ReconcileLine struct {
	WarehouseID id.ID          `json:"warehouseId"`
	ProductID   id.ID          `json:"productId"`
	Expected    types.Quantity `json:"expected"`
	Actual      types.Quantity `json:"actual"`
	// Drift is Actual - Expected.
	Drift types.Quantity `json:"drift"`
}

// Reconciliation is the result of a reconciliation run.
type Reconciliation struct {
	CheckedAt  time.Time       `json:"checkedAt"`
	Checked    int             `json:"checked"`
	Mismatches int             `json:"mismatches"`
	Lines      []ReconcileLine `json:"lines"`
}

// Consistent reports whether no balance drifted.
func (r *Reconciliation) Consistent() bool {
	return r.Mismatches == 0
}

// --- Period summary ---

// PeriodType selects the bucket granularity.
type PeriodType string

const (
	PeriodMonth   PeriodType = "month"
	PeriodQuarter PeriodType = "quarter"
	PeriodYear    PeriodType = "year"
)

// Period selects the reporting window.
//
//	month:   one bucket, Month required
//	quarter: one bucket when Quarter is set, otherwise Q1..Q4
//	year:    twelve monthly buckets
type Period struct {
	Type    PeriodType `json:"type"`
	Year    int        `json:"year"`
	Month   int        `json:"month,omitempty"`
	Quarter int        `json:"quarter,omitempty"`
}

// Validate checks the period parameters.
func (p Period) Validate() error {
	if p.Year < 1 || p.Year > 9999 {
		return apperror.NewValidation("year is required").WithDetail("field", "year")
	}
	switch p.Type {
	case PeriodMonth:
		if p.Month < 1 || p.Month > 12 {
			return apperror.NewValidation("month is required and must be 1-12").WithDetail("field", "month")
		}
	case PeriodQuarter:
		if p.Quarter < 0 || p.Quarter > 4 {
			return apperror.NewValidation("quarter must be 1-4").WithDetail("field", "quarter")
		}
	case PeriodYear:
	default:
		return apperror.NewValidation("type must be month, quarter or year").WithDetail("field", "type")
	}
	return nil
}

// Label formats the whole period: YYYY-MM, Qn-YYYY or YYYY.
func (p Period) Label() string {
	switch p.Type {
	case PeriodMonth:
		return monthLabel(p.Year, p.Month)
	case PeriodQuarter:
		if p.Quarter > 0 {
			return quarterLabel(p.Year, p.Quarter)
		}
	}
	return fmt.Sprintf("%04d", p.Year)
}

// Bucket is a half-open time window [From, To).
type Bucket struct {
	Label string
	From  time.Time
	To    time.Time
}

// Buckets splits the period into its reporting windows (UTC).
func (p Period) Buckets() []Bucket {
	switch p.Type {
	case PeriodMonth:
		return []Bucket{monthBucket(p.Year, p.Month)}
	case PeriodQuarter:
		if p.Quarter > 0 {
			return []Bucket{quarterBucket(p.Year, p.Quarter)}
		}
		out := make([]Bucket, 0, 4)
		for q := 1; q <= 4; q++ {
			out = append(out, quarterBucket(p.Year, q))
		}
		return out
	default:
		out := make([]Bucket, 0, 12)
		for m := 1; m <= 12; m++ {
			out = append(out, monthBucket(p.Year, m))
		}
		return out
	}
}

func monthBucket(year, month int) Bucket {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return Bucket{Label: monthLabel(year, month), From: from, To: from.AddDate(0, 1, 0)}
}

func quarterBucket(year, quarter int) Bucket {
	from := time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
	return Bucket{Label: quarterLabel(year, quarter), From: from, To: from.AddDate(0, 3, 0)}
}

func monthLabel(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

func quarterLabel(year, quarter int) string {
	return fmt.Sprintf("Q%d-%04d", quarter, year)
}

// SummaryFilter selects documents for a period summary.
type SummaryFilter struct {
	Kind        documents.Kind
	Period      Period
	WarehouseID *id.ID
}

// ConfirmedDocument is the reporting projection of a confirmed document.
type ConfirmedDocument struct {
	ID            id.ID          `db:"id"`
	ConfirmedAt   time.Time      `db:"confirmed_at"`
	TotalQuantity types.Quantity `db:"total_quantity"`
}

// PeriodBucket aggregates one window.
type PeriodBucket struct {
	Period        string         `json:"period"`
	DocumentCount int            `json:"documentCount"`
	TotalQuantity types.Quantity `json:"totalQuantity"`
}

// PeriodSummary aggregates confirmed documents of one kind over a period.
type PeriodSummary struct {
	Kind          documents.Kind `json:"kind"`
	Period        string         `json:"period"`
	WarehouseID   *id.ID         `json:"warehouseId,omitempty"`
	Buckets       []PeriodBucket `json:"buckets"`
	DocumentCount int            `json:"documentCount"`
	TotalQuantity types.Quantity `json:"totalQuantity"`
}

// --- Low stock ---

// LowStockLine is a balance below the product's minimum.
type LowStockLine struct {
	WarehouseID   id.ID          `db:"warehouse_id" json:"warehouseId"`
	WarehouseName string         `db:"warehouse_name" json:"warehouseName"`
	ProductID     id.ID          `db:"product_id" json:"productId"`
	SKU           string         `db:"sku" json:"sku"`
	ProductName   string         `db:"product_name" json:"productName"`
	Quantity      types.Quantity `db:"quantity" json:"quantity"`
	MinQuantity   types.Quantity `db:"min_quantity" json:"minQuantity"`
}
