package memory

import (
	"context"
	"sort"
	"time"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/catalogs"
	"stockledger/internal/domain/documents"
	"stockledger/internal/domain/posting"
	"stockledger/internal/domain/registers/stock"
	"stockledger/internal/domain/reports"
)

// ReportRepo implements reports.Repository by scanning the tables.
type ReportRepo struct {
	store      *Store
	balances   *BalanceRepo
	warehouses *CatalogRepo[*catalogs.Warehouse]
	products   *CatalogRepo[*catalogs.Product]
}

var _ reports.Repository = (*ReportRepo)(nil)

func NewReportRepo(store *Store, balances *BalanceRepo, warehouses *CatalogRepo[*catalogs.Warehouse], products *CatalogRepo[*catalogs.Product]) *ReportRepo {
	return &ReportRepo{store: store, balances: balances, warehouses: warehouses, products: products}
}

func (r *ReportRepo) ExpectedBalances(ctx context.Context, filter reports.ReconcileFilter) ([]reports.ExpectedBalance, error) {
	var movements []posting.Movement
	r.store.read(ctx, func() {
		for _, table := range r.store.docTables {
			for _, doc := range table.snapshot() {
				if doc.Header().Status != entity.StatusConfirmed {
					continue
				}
				movements = append(movements, doc.Movements()...)
			}
		}
	})

	sums := make(map[stock.Key]reports.ExpectedBalance)
	keys := make([]stock.Key, 0)
	for _, m := range movements {
		if filter.WarehouseID != nil && m.WarehouseID != *filter.WarehouseID {
			continue
		}
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		k := m.Key()
		cur, ok := sums[k]
		if !ok {
			keys = append(keys, k)
			cur = reports.ExpectedBalance{WarehouseID: k.WarehouseID, ProductID: k.ProductID, Quantity: m.Delta}
		} else {
			cur.Quantity = cur.Quantity.Add(m.Delta)
		}
		sums[k] = cur
	}

	stock.SortKeys(keys)
	out := make([]reports.ExpectedBalance, 0, len(keys))
	for _, k := range keys {
		out = append(out, sums[k])
	}
	return out, nil
}

func (r *ReportRepo) ConfirmedDocuments(ctx context.Context, kind documents.Kind, from, to time.Time, warehouseID *id.ID) ([]reports.ConfirmedDocument, error) {
	var out []reports.ConfirmedDocument
	r.store.read(ctx, func() {
		table, ok := r.store.docTables[kind]
		if !ok {
			return
		}
		for _, doc := range table.snapshot() {
			h := doc.Header()
			if h.Status != entity.StatusConfirmed || h.IsDeleted() || h.ConfirmedAt == nil {
				continue
			}
			if h.ConfirmedAt.Before(from) || !h.ConfirmedAt.Before(to) {
				continue
			}
			if warehouseID != nil && !documents.ContainsID(doc.References().Warehouses, *warehouseID) {
				continue
			}
			out = append(out, reports.ConfirmedDocument{
				ID:            h.ID,
				ConfirmedAt:   *h.ConfirmedAt,
				TotalQuantity: doc.TotalQuantity(),
			})
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ConfirmedAt.Before(out[j].ConfirmedAt) })
	return out, nil
}

func (r *ReportRepo) LowStock(ctx context.Context, warehouseID *id.ID) ([]reports.LowStockLine, error) {
	balances, err := r.balances.List(ctx, stock.Filter{WarehouseID: warehouseID})
	if err != nil {
		return nil, err
	}

	var out []reports.LowStockLine
	for _, b := range balances {
		p, err := r.products.GetByID(ctx, b.ProductID)
		if err != nil || !p.IsLow(b.Quantity) {
			continue
		}
		line := reports.LowStockLine{
			WarehouseID: b.WarehouseID,
			ProductID:   b.ProductID,
			SKU:         p.SKU,
			ProductName: p.Name,
			Quantity:    b.Quantity,
			MinQuantity: p.MinQuantity,
		}
		if w, err := r.warehouses.GetByID(ctx, b.WarehouseID); err == nil {
			line.WarehouseName = w.Name
		}
		out = append(out, line)
	}
	return out, nil
}
