// Package documents implements the lifecycle shared by every stock document kind.
//
//	draft --confirm--> confirmed --remove--> soft-deleted --permanentRemove--> gone (effect reversed)
//	draft --remove--> gone (no effect to undo)
package documents

import (
	"context"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain"
	"stockledger/internal/domain/posting"
)

// Kind names a document variant.
type Kind string

const (
	KindStockIn       Kind = "stock_in"
	KindStockOut      Kind = "stock_out"
	KindStockTransfer Kind = "stock_transfer"
	KindStockTake     Kind = "stock_take"
)

// Kinds lists all document variants.
var Kinds = []Kind{KindStockIn, KindStockOut, KindStockTransfer, KindStockTake}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// References lists the master-data rows a document points to.
type References struct {
	Warehouses []id.ID
	Products   []id.ID
	Suppliers  []id.ID
	Customers  []id.ID
}

// Document is implemented by every document kind.
type Document interface {
	entity.Validatable
	posting.Postable

	// Header exposes the shared header fields.
	Header() *entity.BaseDocument
	References() References
	ItemCount() int
	// TotalQuantity sums the item quantities (actual counts for stock-takes).
	TotalQuantity() types.Quantity
}

// GetOptions controls how a document is loaded.
type GetOptions struct {
	// ForUpdate locks the header row until the transaction ends.
	ForUpdate bool
	// IncludeDeleted also returns soft-deleted documents.
	IncludeDeleted bool
}

// DeletedFilter selects live and/or soft-deleted documents in lists.
type DeletedFilter string

const (
	LiveOnly       DeletedFilter = ""
	IncludeDeleted DeletedFilter = "include"
	DeletedOnly    DeletedFilter = "only"
)

// ListFilter narrows document listings.
type ListFilter struct {
	Status *entity.Status
	// WarehouseID matches any warehouse column of the kind.
	WarehouseID *id.ID
	// Code matches a substring of the code, case-insensitively.
	Code    string
	Deleted DeletedFilter
	domain.Page
}

// Repository persists headers and items of one document kind.
type Repository[T Document] interface {
	// Create inserts header and items.
	Create(ctx context.Context, doc T) error

	// Update writes the header and replaces the whole item set.
	Update(ctx context.Context, doc T) error

	// SaveHeader writes header fields only (status, timestamps, deleted_at).
	SaveHeader(ctx context.Context, doc T) error

	// GetByID loads header and items. Returns NotFound when absent or,
	// unless opts.IncludeDeleted, soft-deleted.
	GetByID(ctx context.Context, id id.ID, opts GetOptions) (T, error)

	// CodeExists checks live documents of the kind, ignoring excludeID.
	CodeExists(ctx context.Context, code string, excludeID id.ID) (bool, error)

	// HardDelete removes items then header.
	HardDelete(ctx context.Context, id id.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[T], error)
}

// RemoveOutcome tells the caller which kind of deletion remove performed.
type RemoveOutcome string

const (
	HardDeleted RemoveOutcome = "hard_deleted"
	SoftDeleted RemoveOutcome = "soft_deleted"
)

// Recorder observes lifecycle transitions (metrics).
type Recorder interface {
	ObserveTransition(kind, operation string, err error)
}

type noopRecorder struct{}

func (noopRecorder) ObserveTransition(string, string, error) {}
