package entity

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// Status is the lifecycle state of a stock document.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	// StatusCancelled is recognised by the guards but no operation produces it.
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// MaxCodeLength matches the code column width.
const MaxCodeLength = 50

// BaseDocument holds the header fields shared by all stock document kinds.
type BaseDocument struct {
	ID     id.ID  `db:"id" json:"id"`
	Code   string `db:"code" json:"code"`
	Status Status `db:"status" json:"status"`
	Note   string `db:"note" json:"note,omitempty"`

	CreatedBy   string     `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
	ConfirmedAt *time.Time `db:"confirmed_at" json:"confirmedAt,omitempty"`

	// DeletedAt is set by soft-delete; the row stays until permanently removed.
	DeletedAt *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`
}

// NewBaseDocument creates a draft header with generated ID and timestamps.
func NewBaseDocument(code, createdBy string) BaseDocument {
	now := time.Now().UTC()
	return BaseDocument{
		ID:        id.New(),
		Code:      strings.TrimSpace(code),
		Status:    StatusDraft,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Header gives generic code access to the shared header.
func (d *BaseDocument) Header() *BaseDocument {
	return d
}

// Clone returns a copy that shares no pointers with d.
func (d BaseDocument) Clone() BaseDocument {
	if d.ConfirmedAt != nil {
		t := *d.ConfirmedAt
		d.ConfirmedAt = &t
	}
	if d.DeletedAt != nil {
		t := *d.DeletedAt
		d.DeletedAt = &t
	}
	return d
}

// IsDraft reports whether the document is still editable.
func (d *BaseDocument) IsDraft() bool {
	return d.Status == StatusDraft
}

// IsDeleted reports whether the document has been soft-deleted.
func (d *BaseDocument) IsDeleted() bool {
	return d.DeletedAt != nil
}

// Touch updates the UpdatedAt timestamp.
func (d *BaseDocument) Touch(now time.Time) {
	d.UpdatedAt = now
}

// MarkConfirmed flips the status and stamps the confirmation time.
func (d *BaseDocument) MarkConfirmed(now time.Time) {
	d.Status = StatusConfirmed
	d.ConfirmedAt = &now
	d.UpdatedAt = now
}

// MarkDeleted sets the soft-delete timestamp.
func (d *BaseDocument) MarkDeleted(now time.Time) {
	d.DeletedAt = &now
	d.UpdatedAt = now
}

// ValidateHeader checks the shared header invariants.
func (d *BaseDocument) ValidateHeader(ctx context.Context) error {
	if d.Code == "" {
		return apperror.NewValidation("code is required").
			WithDetail("field", "code")
	}
	if utf8.RuneCountInString(d.Code) > MaxCodeLength {
		return apperror.NewValidation(fmt.Sprintf("code must be at most %d characters", MaxCodeLength)).
			WithDetail("field", "code")
	}
	if !d.Status.Valid() {
		return apperror.NewValidation("unknown status").
			WithDetail("field", "status").
			WithDetail("value", string(d.Status))
	}
	return nil
}

// LineItem is a product/quantity line of a movement document.
type LineItem struct {
	DocumentID id.ID `db:"document_id" json:"-"`

	LineNo    int            `db:"line_no" json:"lineNo"`
	ProductID id.ID          `db:"product_id" json:"productId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
}

// ValidateLineItems checks the item set of a movement document:
// at least one line, product set, quantity strictly positive and representable.
func ValidateLineItems(items []LineItem) error {
	if len(items) == 0 {
		return apperror.NewValidation("at least one item is required").
			WithDetail("field", "items")
	}
	for i, item := range items {
		field := fmt.Sprintf("items[%d]", i)
		if id.IsNil(item.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", field+".productId")
		}
		if !item.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", field+".quantity").
				WithDetail("value", item.Quantity.String())
		}
		if !types.HasValidScale(item.Quantity) || !types.InRange(item.Quantity) {
			return apperror.NewValidation("quantity exceeds supported precision").
				WithDetail("field", field+".quantity").
				WithDetail("value", item.Quantity.String())
		}
	}
	return nil
}

// NumberLines assigns 1-based line numbers in slice order.
func NumberLines(items []LineItem) {
	for i := range items {
		items[i].LineNo = i + 1
	}
}

// ProductIDs returns the distinct products referenced by items, in first-seen order.
func ProductIDs(items []LineItem) []id.ID {
	seen := make(map[id.ID]struct{}, len(items))
	out := make([]id.ID, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		out = append(out, item.ProductID)
	}
	return out
}

// CloneLineItems returns an independent copy of items.
func CloneLineItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
