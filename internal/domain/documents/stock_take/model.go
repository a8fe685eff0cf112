// Package stock_take provides the StockTake document: a physical count of a
// warehouse compared against the ledger. Confirming a stock-take never
// changes balances; corrections go through stock-in/stock-out documents.
package stock_take

import (
	"context"
	"fmt"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/documents"
	"stockledger/internal/domain/posting"
)

// CountItem is one counted product.
type CountItem struct {
	DocumentID id.ID `db:"document_id" json:"-"`

	LineNo    int   `db:"line_no" json:"lineNo"`
	ProductID id.ID `db:"product_id" json:"productId"`

	// SystemQuantity is the balance snapshot taken when the item set was last saved.
	SystemQuantity types.Quantity `db:"system_quantity" json:"systemQuantity"`
	ActualQuantity types.Quantity `db:"actual_quantity" json:"actualQuantity"`
	Difference     types.Quantity `db:"difference" json:"difference"`

	// actualFromSystem marks a count left blank by the caller.
	actualFromSystem bool
}

// StockTake is a count of one warehouse.
type StockTake struct {
	entity.BaseDocument

	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	Items []CountItem `db:"-" json:"items"`
}

// New creates a draft stock-take.
func New(code, createdBy string, warehouseID id.ID) *StockTake {
	return &StockTake{
		BaseDocument: entity.NewBaseDocument(code, createdBy),
		WarehouseID:  warehouseID,
		Items:        make([]CountItem, 0),
	}
}

// Validate implements entity.Validatable.
func (d *StockTake) Validate(ctx context.Context) error {
	if err := d.ValidateHeader(ctx); err != nil {
		return err
	}
	if id.IsNil(d.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}
	if len(d.Items) == 0 {
		return apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}

	seen := make(map[id.ID]struct{}, len(d.Items))
	for i, it := range d.Items {
		field := fmt.Sprintf("items[%d]", i)
		if id.IsNil(it.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", field+".productId")
		}
		if _, dup := seen[it.ProductID]; dup {
			return apperror.NewValidation("product is counted more than once").
				WithDetail("field", field+".productId").
				WithDetail("productId", it.ProductID.String())
		}
		seen[it.ProductID] = struct{}{}

		if it.actualFromSystem {
			continue
		}
		if it.ActualQuantity.IsNegative() {
			return apperror.NewValidation("actual quantity must not be negative").
				WithDetail("field", field+".actualQuantity")
		}
		if !types.HasValidScale(it.ActualQuantity) || !types.InRange(it.ActualQuantity) {
			return apperror.NewValidation("quantity exceeds supported precision").
				WithDetail("field", field+".actualQuantity")
		}
	}
	return nil
}

// Movements is empty: a stock-take has no balance effect.
func (d *StockTake) Movements() []posting.Movement {
	return nil
}

func (d *StockTake) References() documents.References {
	products := make([]id.ID, 0, len(d.Items))
	for _, it := range d.Items {
		products = append(products, it.ProductID)
	}
	return documents.References{
		Warehouses: []id.ID{d.WarehouseID},
		Products:   products,
	}
}

func (d *StockTake) ItemCount() int {
	return len(d.Items)
}

// TotalQuantity sums the counted quantities.
func (d *StockTake) TotalQuantity() types.Quantity {
	total := types.ZeroQuantity()
	for _, it := range d.Items {
		total = total.Add(it.ActualQuantity)
	}
	return total
}

// Snapshot records the system quantity of every item and recomputes differences.
// Items counted without an actual quantity take the system quantity.
func (d *StockTake) Snapshot(system func(productID id.ID) (types.Quantity, error)) error {
	for i := range d.Items {
		it := &d.Items[i]
		q, err := system(it.ProductID)
		if err != nil {
			return err
		}
		it.SystemQuantity = q
		if it.actualFromSystem {
			it.ActualQuantity = q
			it.actualFromSystem = false
		}
		it.Difference = it.ActualQuantity.Sub(it.SystemQuantity)
	}
	return nil
}

// Clone returns a deep copy.
func (d *StockTake) Clone() *StockTake {
	c := *d
	c.BaseDocument = d.BaseDocument.Clone()
	if d.Items != nil {
		c.Items = make([]CountItem, len(d.Items))
		copy(c.Items, d.Items)
	}
	return &c
}

// CountInput is one counted product supplied by a caller.
// A nil ActualQuantity means "matches the system".
type CountInput struct {
	ProductID      id.ID           `json:"productId"`
	ActualQuantity *types.Quantity `json:"actualQuantity,omitempty"`
}

// CountItems converts inputs to numbered items awaiting a snapshot.
func CountItems(in []CountInput) []CountItem {
	items := make([]CountItem, len(in))
	for i, c := range in {
		items[i] = CountItem{
			LineNo:         i + 1,
			ProductID:      c.ProductID,
			SystemQuantity: types.ZeroQuantity(),
			Difference:     types.ZeroQuantity(),
		}
		if c.ActualQuantity == nil {
			items[i].ActualQuantity = types.ZeroQuantity()
			items[i].actualFromSystem = true
		} else {
			items[i].ActualQuantity = *c.ActualQuantity
		}
	}
	return items
}

var _ documents.Document = (*StockTake)(nil)
