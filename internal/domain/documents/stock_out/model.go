// Package stock_out provides the StockOut document: goods issued from a warehouse.
package stock_out

import (
	"context"
	"net/mail"
	"unicode/utf8"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/documents"
	"stockledger/internal/domain/posting"
)

const (
	MaxReceiverNameLength  = 100
	MaxReceiverEmailLength = 150
)

// StockOut records goods leaving a warehouse, optionally to a customer.
type StockOut struct {
	entity.BaseDocument

	WarehouseID id.ID  `db:"warehouse_id" json:"warehouseId"`
	CustomerID  *id.ID `db:"customer_id" json:"customerId,omitempty"`

	// Receiver identifies the person who signed for the goods.
	ReceiverName  string `db:"receiver_name" json:"receiverName,omitempty"`
	ReceiverEmail string `db:"receiver_email" json:"receiverEmail,omitempty"`

	Items []entity.LineItem `db:"-" json:"items"`
}

// New creates a draft stock-out.
func New(code, createdBy string, warehouseID id.ID) *StockOut {
	return &StockOut{
		BaseDocument: entity.NewBaseDocument(code, createdBy),
		WarehouseID:  warehouseID,
		Items:        make([]entity.LineItem, 0),
	}
}

// Validate implements entity.Validatable.
func (d *StockOut) Validate(ctx context.Context) error {
	if err := d.ValidateHeader(ctx); err != nil {
		return err
	}
	if id.IsNil(d.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}
	if d.CustomerID != nil && id.IsNil(*d.CustomerID) {
		return apperror.NewValidation("customer must be a valid id").
			WithDetail("field", "customerId")
	}
	if utf8.RuneCountInString(d.ReceiverName) > MaxReceiverNameLength {
		return apperror.NewValidation("receiver name is too long").
			WithDetail("field", "receiverName")
	}
	if d.ReceiverEmail != "" {
		if len(d.ReceiverEmail) > MaxReceiverEmailLength {
			return apperror.NewValidation("receiver email is too long").
				WithDetail("field", "receiverEmail")
		}
		if _, err := mail.ParseAddress(d.ReceiverEmail); err != nil {
			return apperror.NewValidation("receiver email is invalid").
				WithDetail("field", "receiverEmail")
		}
	}
	return entity.ValidateLineItems(d.Items)
}

// Movements removes every line from the issuing warehouse.
func (d *StockOut) Movements() []posting.Movement {
	out := make([]posting.Movement, 0, len(d.Items))
	for _, it := range d.Items {
		out = append(out, posting.Movement{
			WarehouseID: d.WarehouseID,
			ProductID:   it.ProductID,
			Delta:       it.Quantity.Neg(),
		})
	}
	return out
}

func (d *StockOut) References() documents.References {
	refs := documents.References{
		Warehouses: []id.ID{d.WarehouseID},
		Products:   entity.ProductIDs(d.Items),
	}
	if d.CustomerID != nil {
		refs.Customers = []id.ID{*d.CustomerID}
	}
	return refs
}

func (d *StockOut) ItemCount() int {
	return len(d.Items)
}

func (d *StockOut) TotalQuantity() types.Quantity {
	return documents.TotalOf(d.Items)
}

// Clone returns a deep copy.
func (d *StockOut) Clone() *StockOut {
	c := *d
	c.BaseDocument = d.BaseDocument.Clone()
	c.Items = entity.CloneLineItems(d.Items)
	if d.CustomerID != nil {
		v := *d.CustomerID
		c.CustomerID = &v
	}
	return &c
}

var _ documents.Document = (*StockOut)(nil)
