package catalogs

import (
	"context"
	"strings"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/types"
)

// Product is a stocked item.
type Product struct {
	entity.BaseCatalog

	SKU  string `db:"sku" json:"sku"`
	Name string `db:"name" json:"name"`
	Unit string `db:"unit" json:"unit,omitempty"`

	// MinQuantity is the low-stock threshold; zero disables the alert.
	MinQuantity types.Quantity  `db:"min_quantity" json:"minQuantity"`
	MaxQuantity *types.Quantity `db:"max_quantity" json:"maxQuantity,omitempty"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(sku, name, unit string) *Product {
	return &Product{
		BaseCatalog: entity.NewBaseCatalog(),
		SKU:         strings.TrimSpace(sku),
		Name:        strings.TrimSpace(name),
		Unit:        strings.TrimSpace(unit),
		MinQuantity: types.ZeroQuantity(),
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if p.SKU == "" {
		return apperror.NewValidation("sku is required").
			WithDetail("field", "sku")
	}
	if len(p.SKU) > entity.MaxCodeLength {
		return apperror.NewValidation("sku is too long").
			WithDetail("field", "sku")
	}
	if p.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if p.MinQuantity.IsNegative() || !types.HasValidScale(p.MinQuantity) {
		return apperror.NewValidation("minQuantity must be a non-negative quantity").
			WithDetail("field", "minQuantity")
	}
	if p.MaxQuantity != nil && p.MaxQuantity.LessThan(p.MinQuantity) {
		return apperror.NewValidation("maxQuantity must not be below minQuantity").
			WithDetail("field", "maxQuantity")
	}
	return nil
}

// NaturalKey implements domain.CatalogEntity.
func (p *Product) NaturalKey() (string, string) {
	return "sku", p.SKU
}

// IsLow reports whether quantity is under the product's threshold.
func (p *Product) IsLow(quantity types.Quantity) bool {
	return p.MinQuantity.IsPositive() && quantity.LessThan(p.MinQuantity)
}
