package stock

import (
	"context"
)

// Repository persists balance rows.
type Repository interface {
	// Get returns the balance for key, or a zero balance when no row exists.
	Get(ctx context.Context, key Key) (Balance, error)

	// LockOrCreate inserts the row if absent and locks it until the
	// enclosing transaction ends. Must be called inside a transaction.
	LockOrCreate(ctx context.Context, key Key) (Balance, error)

	// Save writes the quantity of a row previously returned by LockOrCreate.
	Save(ctx context.Context, balance Balance) error

	// List returns balances ordered by (warehouse_id, product_id).
	List(ctx context.Context, filter Filter) ([]Balance, error)
}
