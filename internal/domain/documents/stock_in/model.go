// Package stock_in provides the StockIn document: goods received into a warehouse.
package stock_in

import (
	"context"
	"time"
	"unicode/utf8"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/documents"
	"stockledger/internal/domain/posting"
)

// MaxTypeLength bounds StockInType.
const MaxTypeLength = 50

// StockIn records goods arriving at a warehouse, optionally from a supplier.
type StockIn struct {
	entity.BaseDocument

	WarehouseID id.ID  `db:"warehouse_id" json:"warehouseId"`
	SupplierID  *id.ID `db:"supplier_id" json:"supplierId,omitempty"`

	// ReceivedDate is the delivery date printed on the supplier paperwork.
	ReceivedDate *time.Time `db:"received_date" json:"receivedDate,omitempty"`
	StockInType  string     `db:"stock_in_type" json:"stockInType,omitempty"`

	Items []entity.LineItem `db:"-" json:"items"`
}

// New creates a draft stock-in.
func New(code, createdBy string, warehouseID id.ID) *StockIn {
	return &StockIn{
		BaseDocument: entity.NewBaseDocument(code, createdBy),
		WarehouseID:  warehouseID,
		Items:        make([]entity.LineItem, 0),
	}
}

// Validate implements entity.Validatable.
func (d *StockIn) Validate(ctx context.Context) error {
	if err := d.ValidateHeader(ctx); err != nil {
		return err
	}
	if id.IsNil(d.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}
	if d.SupplierID != nil && id.IsNil(*d.SupplierID) {
		return apperror.NewValidation("supplier must be a valid id").
			WithDetail("field", "supplierId")
	}
	if utf8.RuneCountInString(d.StockInType) > MaxTypeLength {
		return apperror.NewValidation("stock-in type is too long").
			WithDetail("field", "stockInType")
	}
	return entity.ValidateLineItems(d.Items)
}

// Movements adds every line to the receiving warehouse.
func (d *StockIn) Movements() []posting.Movement {
	out := make([]posting.Movement, 0, len(d.Items))
	for _, it := range d.Items {
		out = append(out, posting.Movement{
			WarehouseID: d.WarehouseID,
			ProductID:   it.ProductID,
			Delta:       it.Quantity,
		})
	}
	return out
}

func (d *StockIn) References() documents.References {
	refs := documents.References{
		Warehouses: []id.ID{d.WarehouseID},
		Products:   entity.ProductIDs(d.Items),
	}
	if d.SupplierID != nil {
		refs.Suppliers = []id.ID{*d.SupplierID}
	}
	return refs
}

func (d *StockIn) ItemCount() int {
	return len(d.Items)
}

func (d *StockIn) TotalQuantity() types.Quantity {
	return documents.TotalOf(d.Items)
}

// Clone returns a deep copy.
func (d *StockIn) Clone() *StockIn {
	c := *d
	c.Items = entity.CloneLineItems(d.Items)
	if d.SupplierID != nil {
		v := *d.SupplierID
		c.SupplierID = &v
	}
	if d.ReceivedDate != nil {
		v := *d.ReceivedDate
		c.ReceivedDate = &v
	}
	c.BaseDocument = d.BaseDocument.Clone()
	return &c
}

var _ documents.Document = (*StockIn)(nil)
