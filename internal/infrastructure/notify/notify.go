// Package notify delivers report results (low stock, period summaries)
// to operators.
package notify

import (
	"context"
	"errors"

	"stockledger/internal/domain/reports"
	"stockledger/pkg/logger"
)

// Observer receives delivery outcomes; *metrics.Metrics implements it.
type Observer interface {
	RecordNotification(channel, kind string, err error)
	SetCircuitBreakerState(name string, state int)
}

type noopObserver struct{}

func (noopObserver) RecordNotification(string, string, error) {}
func (noopObserver) SetCircuitBreakerState(string, int)       {}

const (
	TypeLowStock = "low_stock"
	TypeSummary  = "period_summary"
)

// LogNotifier writes notifications as structured log lines.
type LogNotifier struct{}

var _ reports.Notifier = LogNotifier{}

func (LogNotifier) NotifyLowStock(ctx context.Context, lines []reports.LowStockLine) error {
	if len(lines) == 0 {
		return nil
	}
	logger.Warn(ctx, "low stock", "count", len(lines))
	for _, l := range lines {
		logger.Warn(ctx, "low stock item",
			"warehouse_id", l.WarehouseID,
			"warehouse", l.WarehouseName,
			"product_id", l.ProductID,
			"sku", l.SKU,
			"quantity", l.Quantity.String(),
			"min_quantity", l.MinQuantity.String(),
		)
	}
	return nil
}

func (LogNotifier) NotifySummary(ctx context.Context, s *reports.PeriodSummary) error {
	if s == nil {
		return nil
	}
	logger.Info(ctx, "period summary",
		"kind", s.Kind,
		"period", s.Period,
		"documents", s.DocumentCount,
		"total_quantity", s.TotalQuantity.String(),
	)
	return nil
}

// Fanout sends every notification to all targets and joins their errors.
type Fanout []reports.Notifier

var _ reports.Notifier = Fanout(nil)

func (f Fanout) NotifyLowStock(ctx context.Context, lines []reports.LowStockLine) error {
	var errs []error
	for _, n := range f {
		if err := n.NotifyLowStock(ctx, lines); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f Fanout) NotifySummary(ctx context.Context, s *reports.PeriodSummary) error {
	var errs []error
	for _, n := range f {
		if err := n.NotifySummary(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
