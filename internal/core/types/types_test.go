package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasValidScale(t *testing.T) {
	assert.True(t, HasValidScale(MustQuantity("10")))
	assert.True(t, HasValidScale(MustQuantity("10.25")))
	assert.False(t, HasValidScale(MustQuantity("10.255")))
}

func TestInRange(t *testing.T) {
	assert.True(t, InRange(MustQuantity("9999999999999999.99")))
	assert.False(t, InRange(MustQuantity("10000000000000000")))
}

func TestSumQuantities(t *testing.T) {
	got := SumQuantities(MustQuantity("1.5"), MustQuantity("2.25"), NewQuantity(3))
	assert.True(t, got.Equal(MustQuantity("6.75")))
	assert.True(t, SumQuantities().IsZero())
}

type patch struct {
	SupplierID Nullable[string] `json:"supplier_id"`
}

func TestNullable_DistinguishesAbsentFromNull(t *testing.T) {
	var absent, null, set patch

	require.NoError(t, json.Unmarshal([]byte(`{}`), &absent))
	require.NoError(t, json.Unmarshal([]byte(`{"supplier_id":null}`), &null))
	require.NoError(t, json.Unmarshal([]byte(`{"supplier_id":"s-1"}`), &set))

	assert.False(t, absent.SupplierID.Set)
	assert.True(t, null.SupplierID.Set)
	assert.Nil(t, null.SupplierID.Value)
	require.True(t, set.SupplierID.Set)
	assert.Equal(t, "s-1", *set.SupplierID.Value)
}

func TestNullable_ApplyTo(t *testing.T) {
	current := "old"
	dst := &current

	Nullable[string]{}.ApplyTo(&dst)
	require.NotNil(t, dst)
	assert.Equal(t, "old", *dst)

	Some("new").ApplyTo(&dst)
	require.NotNil(t, dst)
	assert.Equal(t, "new", *dst)

	Null[string]().ApplyTo(&dst)
	assert.Nil(t, dst)
}
