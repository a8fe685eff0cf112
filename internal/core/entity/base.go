// Package entity holds the shapes shared by every persisted ledger record.
package entity

import (
	"context"
	"time"

	"stockledger/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// BaseCatalog is embedded by master-data records.
type BaseCatalog struct {
	ID        id.ID     `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseCatalog creates a new BaseCatalog with generated ID.
func NewBaseCatalog() BaseCatalog {
	now := time.Now().UTC()
	return BaseCatalog{
		ID:        id.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GetID returns the record ID.
func (b *BaseCatalog) GetID() id.ID {
	return b.ID
}
