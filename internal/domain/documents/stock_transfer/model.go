// Package stock_transfer provides the StockTransfer document: goods moved
// between two warehouses.
package stock_transfer

import (
	"context"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/documents"
	"stockledger/internal/domain/posting"
)

// StockTransfer moves goods from one warehouse to another.
type StockTransfer struct {
	entity.BaseDocument

	FromWarehouseID id.ID `db:"from_warehouse_id" json:"fromWarehouseId"`
	ToWarehouseID   id.ID `db:"to_warehouse_id" json:"toWarehouseId"`

	Items []entity.LineItem `db:"-" json:"items"`
}

// New creates a draft transfer.
func New(code, createdBy string, from, to id.ID) *StockTransfer {
	return &StockTransfer{
		BaseDocument:    entity.NewBaseDocument(code, createdBy),
		FromWarehouseID: from,
		ToWarehouseID:   to,
		Items:           make([]entity.LineItem, 0),
	}
}

// Validate implements entity.Validatable.
func (d *StockTransfer) Validate(ctx context.Context) error {
	if err := d.ValidateHeader(ctx); err != nil {
		return err
	}
	if id.IsNil(d.FromWarehouseID) {
		return apperror.NewValidation("source warehouse is required").
			WithDetail("field", "fromWarehouseId")
	}
	if id.IsNil(d.ToWarehouseID) {
		return apperror.NewValidation("destination warehouse is required").
			WithDetail("field", "toWarehouseId")
	}
	if d.FromWarehouseID == d.ToWarehouseID {
		return apperror.NewValidation("source and destination warehouses must differ").
			WithDetail("field", "toWarehouseId")
	}
	return entity.ValidateLineItems(d.Items)
}

// Movements takes each line out of the source and into the destination.
func (d *StockTransfer) Movements() []posting.Movement {
	out := make([]posting.Movement, 0, 2*len(d.Items))
	for _, it := range d.Items {
		out = append(out,
			posting.Movement{WarehouseID: d.FromWarehouseID, ProductID: it.ProductID, Delta: it.Quantity.Neg()},
			posting.Movement{WarehouseID: d.ToWarehouseID, ProductID: it.ProductID, Delta: it.Quantity},
		)
	}
	return out
}

func (d *StockTransfer) References() documents.References {
	return documents.References{
		Warehouses: []id.ID{d.FromWarehouseID, d.ToWarehouseID},
		Products:   entity.ProductIDs(d.Items),
	}
}

func (d *StockTransfer) ItemCount() int {
	return len(d.Items)
}

func (d *StockTransfer) TotalQuantity() types.Quantity {
	return documents.TotalOf(d.Items)
}

// Clone returns a deep copy.
func (d *StockTransfer) Clone() *StockTransfer {
	c := *d
	c.BaseDocument = d.BaseDocument.Clone()
	c.Items = entity.CloneLineItems(d.Items)
	return &c
}

var _ documents.Document = (*StockTransfer)(nil)
