// Package types provides common value types shared by the domain packages.
package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Quantity is a stock quantity. It is always handled as an exact decimal.
type Quantity = decimal.Decimal

// QuantityScale is the number of fractional digits stored for quantities (NUMERIC(18,2)).
const QuantityScale int32 = 2

// MaxQuantity bounds a single quantity to what NUMERIC(18,2) can hold.
var MaxQuantity = decimal.RequireFromString("9999999999999999.99")

// ZeroQuantity returns the zero quantity.
func ZeroQuantity() Quantity {
	return decimal.Zero
}

// NewQuantity creates a quantity from an integer amount.
func NewQuantity(v int64) Quantity {
	return decimal.NewFromInt(v)
}

// ParseQuantity parses a decimal string ("12", "3.50").
func ParseQuantity(s string) (Quantity, error) {
	q, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse quantity %q: %w", s, err)
	}
	return q, nil
}

// MustQuantity parses a decimal string, panics on error.
// Use only for constants and tests.
func MustQuantity(s string) Quantity {
	return decimal.RequireFromString(s)
}

// HasValidScale reports whether q fits the stored precision without rounding.
func HasValidScale(q Quantity) bool {
	return q.Equal(q.Round(QuantityScale))
}

// InRange reports whether |q| fits the stored column.
func InRange(q Quantity) bool {
	return q.Abs().LessThanOrEqual(MaxQuantity)
}

// SumQuantities adds all values.
func SumQuantities(values ...Quantity) Quantity {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
