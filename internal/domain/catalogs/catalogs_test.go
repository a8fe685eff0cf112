package catalogs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/types"
)

func TestProduct_Validate(t *testing.T) {
	ctx := context.Background()

	p := NewProduct("SKU-1", "Cement", "bag")
	assert.NoError(t, p.Validate(ctx))

	p.MinQuantity = types.NewQuantity(-1)
	assert.True(t, apperror.IsValidation(p.Validate(ctx)))

	p.MinQuantity = types.NewQuantity(10)
	max := types.NewQuantity(5)
	p.MaxQuantity = &max
	assert.True(t, apperror.IsValidation(p.Validate(ctx)))

	p.SKU = ""
	assert.True(t, apperror.IsValidation(p.Validate(ctx)))
}

func TestProduct_IsLow(t *testing.T) {
	p := NewProduct("SKU-1", "Cement", "bag")
	assert.False(t, p.IsLow(types.ZeroQuantity()), "zero threshold never alerts")

	p.MinQuantity = types.NewQuantity(10)
	assert.True(t, p.IsLow(types.NewQuantity(9)))
	assert.False(t, p.IsLow(types.NewQuantity(10)))
}

func TestCounterparties_Validate(t *testing.T) {
	ctx := context.Background()

	s := NewSupplier("SUP-1", "Acme")
	assert.NoError(t, s.Validate(ctx))
	s.Email = "not-an-email"
	assert.True(t, apperror.IsValidation(s.Validate(ctx)))

	c := NewCustomer("", "Bob")
	assert.True(t, apperror.IsValidation(c.Validate(ctx)))

	w := NewWarehouse("W1", "")
	assert.True(t, apperror.IsValidation(w.Validate(ctx)))
}
