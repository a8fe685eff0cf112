package memory

import (
	"context"

	"stockledger/internal/domain/registers/stock"
)

// BalanceRepo implements stock.Repository.
type BalanceRepo struct {
	store *Store
	rows  map[stock.Key]stock.Balance
}

var _ stock.Repository = (*BalanceRepo)(nil)

func NewBalanceRepo(store *Store) *BalanceRepo {
	return &BalanceRepo{store: store, rows: make(map[stock.Key]stock.Balance)}
}

func (r *BalanceRepo) Get(ctx context.Context, key stock.Key) (stock.Balance, error) {
	var b stock.Balance
	r.store.read(ctx, func() {
		row, ok := r.rows[key]
		if !ok {
			row = stock.NewBalance(key)
		}
		b = row
	})
	return b, nil
}

// LockOrCreate inserts an empty row if absent. The row outlives a rolled
// back transaction only if it was created outside one.
func (r *BalanceRepo) LockOrCreate(ctx context.Context, key stock.Key) (stock.Balance, error) {
	var b stock.Balance
	err := r.store.write(ctx, func(onUndo func(func())) {
		row, ok := r.rows[key]
		if !ok {
			row = stock.NewBalance(key)
			r.rows[key] = row
			onUndo(func() { delete(r.rows, key) })
		}
		b = row
	})
	return b, err
}

func (r *BalanceRepo) Save(ctx context.Context, b stock.Balance) error {
	key := b.Key()
	return r.store.write(ctx, func(onUndo func(func())) {
		prev, existed := r.rows[key]
		r.rows[key] = b
		onUndo(func() {
			if existed {
				r.rows[key] = prev
			} else {
				delete(r.rows, key)
			}
		})
	})
}

// List returns balances in lock order.
func (r *BalanceRepo) List(ctx context.Context, filter stock.Filter) ([]stock.Balance, error) {
	var out []stock.Balance
	r.store.read(ctx, func() {
		keys := make([]stock.Key, 0, len(r.rows))
		for k, b := range r.rows {
			if filter.WarehouseID != nil && k.WarehouseID != *filter.WarehouseID {
				continue
			}
			if filter.ProductID != nil && k.ProductID != *filter.ProductID {
				continue
			}
			if filter.ExcludeZero && b.Quantity.IsZero() {
				continue
			}
			keys = append(keys, k)
		}
		stock.SortKeys(keys)
		out = make([]stock.Balance, 0, len(keys))
		for _, k := range keys {
			out = append(out, r.rows[k])
		}
	})
	return out, nil
}
