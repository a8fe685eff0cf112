package documents

import (
	"strings"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// ItemInput is a product/quantity pair supplied by a caller.
type ItemInput struct {
	ProductID id.ID          `json:"productId"`
	Quantity  types.Quantity `json:"quantity"`
}

// LineItems converts inputs to numbered line items.
func LineItems(in []ItemInput) []entity.LineItem {
	items := make([]entity.LineItem, len(in))
	for i, it := range in {
		items[i] = entity.LineItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	entity.NumberLines(items)
	return items
}

// TotalOf sums line quantities.
func TotalOf(items []entity.LineItem) types.Quantity {
	total := types.ZeroQuantity()
	for _, it := range items {
		total = total.Add(it.Quantity)
	}
	return total
}

// HeaderPatch carries the header fields every kind can change on a draft.
type HeaderPatch struct {
	Code *string `json:"code,omitempty"`
	Note *string `json:"note,omitempty"`
}

// ApplyTo writes the present fields to h.
func (p HeaderPatch) ApplyTo(h *entity.BaseDocument) {
	if p.Code != nil {
		h.Code = strings.TrimSpace(*p.Code)
	}
	if p.Note != nil {
		h.Note = *p.Note
	}
}

// ContainsID reports whether ids holds target.
func ContainsID(ids []id.ID, target id.ID) bool {
	for _, v := range ids {
		if v == target {
			return true
		}
	}
	return false
}
