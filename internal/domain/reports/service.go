package reports

import (
	"context"
	"fmt"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/tx"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/documents"
	"stockledger/internal/domain/registers/stock"
	"stockledger/pkg/logger"
)

// BalanceLister reads current balances.
type BalanceLister interface {
	List(ctx context.Context, filter stock.Filter) ([]stock.Balance, error)
}

// Service provides report generation operations.
type Service struct {
	repo      Repository
	balances  BalanceLister
	txManager tx.ReadOnlyManager
	now       func() time.Time
}

// NewService creates a new reports service.
func NewService(repo Repository, balances BalanceLister, txManager tx.ReadOnlyManager) *Service {
	return &Service{
		repo:      repo,
		balances:  balances,
		txManager: txManager,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Reconcile compares every balance row with the net effect of confirmed
// documents. A mismatch means the ledger invariant was broken.
//
// Both sides are read in one read-only transaction; a confirm committing
// between the two reads would otherwise show up as drift.
func (s *Service) Reconcile(ctx context.Context, filter ReconcileFilter) (*Reconciliation, error) {
	var (
		expected []ExpectedBalance
		actual   []stock.Balance
	)
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		if expected, err = s.repo.ExpectedBalances(ctx, filter); err != nil {
			return fmt.Errorf("expected balances: %w", err)
		}
		actual, err = s.balances.List(ctx, stock.Filter{WarehouseID: filter.WarehouseID, ProductID: filter.ProductID})
		if err != nil {
			return fmt.Errorf("actual balances: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	exp := make(map[stock.Key]types.Quantity, len(expected))
	keys := make([]stock.Key, 0, len(expected)+len(actual))
	for _, e := range expected {
		k := stock.Key{WarehouseID: e.WarehouseID, ProductID: e.ProductID}
		if _, ok := exp[k]; !ok {
			keys = append(keys, k)
		}
		exp[k] = e.Quantity
	}
	act := make(map[stock.Key]types.Quantity, len(actual))
	for _, b := range actual {
		k := b.Key()
		if _, ok := exp[k]; !ok {
			if _, seen := act[k]; !seen {
				keys = append(keys, k)
			}
		}
		act[k] = b.Quantity
	}
	stock.SortKeys(keys)

	result := &Reconciliation{CheckedAt: s.now(), Lines: make([]ReconcileLine, 0, len(keys))}
	for _, k := range keys {
		e, ok := exp[k]
		if !ok {
			e = types.ZeroQuantity()
		}
		a, ok := act[k]
		if !ok {
			a = types.ZeroQuantity()
		}
		drift := a.Sub(e)
		result.Checked++
		if !drift.IsZero() {
			result.Mismatches++
		} else if filter.OnlyMismatches {
			continue
		}
		result.Lines = append(result.Lines, ReconcileLine{
			WarehouseID: k.WarehouseID,
			ProductID:   k.ProductID,
			Expected:    e,
			Actual:      a,
			Drift:       drift,
		})
	}

	if result.Mismatches > 0 {
		logger.Warn(ctx, "balance drift detected", "mismatches", result.Mismatches, "checked", result.Checked)
	}
	return result, nil
}

// PeriodSummary counts confirmed documents of one kind per bucket of the period.
func (s *Service) PeriodSummary(ctx context.Context, filter SummaryFilter) (*PeriodSummary, error) {
	if !filter.Kind.Valid() {
		return nil, apperror.NewValidation("unknown document kind").
			WithDetail("field", "kind").
			WithDetail("value", string(filter.Kind))
	}
	if err := filter.Period.Validate(); err != nil {
		return nil, err
	}

	buckets := filter.Period.Buckets()
	from, to := buckets[0].From, buckets[len(buckets)-1].To

	docs, err := s.repo.ConfirmedDocuments(ctx, filter.Kind, from, to, filter.WarehouseID)
	if err != nil {
		return nil, fmt.Errorf("confirmed documents: %w", err)
	}

	summary := &PeriodSummary{
		Kind:          filter.Kind,
		Period:        filter.Period.Label(),
		WarehouseID:   filter.WarehouseID,
		Buckets:       make([]PeriodBucket, len(buckets)),
		TotalQuantity: types.ZeroQuantity(),
	}
	for i, b := range buckets {
		summary.Buckets[i] = PeriodBucket{Period: b.Label, TotalQuantity: types.ZeroQuantity()}
	}

	for _, d := range docs {
		at := d.ConfirmedAt.UTC()
		for i, b := range buckets {
			if at.Before(b.From) || !at.Before(b.To) {
				continue
			}
			summary.Buckets[i].DocumentCount++
			summary.Buckets[i].TotalQuantity = summary.Buckets[i].TotalQuantity.Add(d.TotalQuantity)
			summary.DocumentCount++
			summary.TotalQuantity = summary.TotalQuantity.Add(d.TotalQuantity)
			break
		}
	}
	return summary, nil
}

// CurrentMonth returns the month period containing now.
func (s *Service) CurrentMonth() Period {
	now := s.now()
	return Period{Type: PeriodMonth, Year: now.Year(), Month: int(now.Month())}
}

// LowStock lists balances below their product's minimum quantity.
func (s *Service) LowStock(ctx context.Context, warehouseID *id.ID) ([]LowStockLine, error) {
	lines, err := s.repo.LowStock(ctx, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	return lines, nil
}

// MovementKinds are the document kinds summarised by the scheduled report.
var MovementKinds = []documents.Kind{
	documents.KindStockIn,
	documents.KindStockOut,
	documents.KindStockTransfer,
}
