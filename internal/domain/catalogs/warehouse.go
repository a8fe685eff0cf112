// Package catalogs provides the master-data records referenced by stock documents:
// warehouses, products, suppliers and customers.
package catalogs

import (
	"context"
	"strings"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
)

// Warehouse represents a storage location for goods.
type Warehouse struct {
	entity.BaseCatalog

	Code    string `db:"code" json:"code"`
	Name    string `db:"name" json:"name"`
	Address string `db:"address" json:"address,omitempty"`
}

// NewWarehouse creates a new Warehouse with required fields.
func NewWarehouse(code, name string) *Warehouse {
	return &Warehouse{
		BaseCatalog: entity.NewBaseCatalog(),
		Code:        strings.TrimSpace(code),
		Name:        strings.TrimSpace(name),
	}
}

// Validate implements entity.Validatable interface.
func (w *Warehouse) Validate(ctx context.Context) error {
	if err := validateCodeName(w.Code, w.Name); err != nil {
		return err
	}
	return nil
}

// NaturalKey implements domain.CatalogEntity.
func (w *Warehouse) NaturalKey() (string, string) {
	return "code", w.Code
}

func validateCodeName(code, name string) error {
	if code == "" {
		return apperror.NewValidation("code is required").
			WithDetail("field", "code")
	}
	if len(code) > entity.MaxCodeLength {
		return apperror.NewValidation("code is too long").
			WithDetail("field", "code")
	}
	if name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}
