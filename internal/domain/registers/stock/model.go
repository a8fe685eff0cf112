// Package stock provides the balance register: the current quantity of each
// product in each warehouse.
package stock

import (
	"sort"
	"time"

	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// Key identifies a balance row.
type Key struct {
	WarehouseID id.ID `json:"warehouseId"`
	ProductID   id.ID `json:"productId"`
}

// Less defines the system-wide lock order: warehouse first, then product.
func (k Key) Less(other Key) bool {
	if c := id.Compare(k.WarehouseID, other.WarehouseID); c != 0 {
		return c < 0
	}
	return id.Compare(k.ProductID, other.ProductID) < 0
}

// SortKeys orders keys for lock acquisition.
func SortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}

// Balance is the persisted quantity of a product in a warehouse.
// A row is created on first movement and never removed.
type Balance struct {
	WarehouseID id.ID          `db:"warehouse_id" json:"warehouseId"`
	ProductID   id.ID          `db:"product_id" json:"productId"`
	Quantity    types.Quantity `db:"quantity" json:"quantity"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// NewBalance returns an empty balance for key.
func NewBalance(key Key) Balance {
	return Balance{
		WarehouseID: key.WarehouseID,
		ProductID:   key.ProductID,
		Quantity:    types.ZeroQuantity(),
	}
}

// Key returns the row identity.
func (b Balance) Key() Key {
	return Key{WarehouseID: b.WarehouseID, ProductID: b.ProductID}
}

// Filter narrows balance listings.
type Filter struct {
	WarehouseID *id.ID
	ProductID   *id.ID
	ExcludeZero bool
}
