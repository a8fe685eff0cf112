package reports

import (
	"context"
	"time"

	"stockledger/internal/core/id"
	"stockledger/internal/domain/documents"
)

// Repository defines report data access.
type Repository interface {
	// ExpectedBalances nets the movements of every confirmed document,
	// soft-deleted ones included, per (warehouse, product).
	ExpectedBalances(ctx context.Context, filter ReconcileFilter) ([]ExpectedBalance, error)

	// ConfirmedDocuments returns live confirmed documents of kind whose
	// confirmed_at falls in [from, to), optionally touching warehouseID.
	ConfirmedDocuments(ctx context.Context, kind documents.Kind, from, to time.Time, warehouseID *id.ID) ([]ConfirmedDocument, error)

	// LowStock returns balances strictly below the product's minimum quantity.
	LowStock(ctx context.Context, warehouseID *id.ID) ([]LowStockLine, error)
}

// Notifier delivers report results to operators.
type Notifier interface {
	NotifyLowStock(ctx context.Context, lines []LowStockLine) error
	NotifySummary(ctx context.Context, summary *PeriodSummary) error
}
