package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	all := []int{1, 2, 3, 4, 5}

	res := Paginate(all, Page{Limit: 2, Offset: 1})
	assert.Equal(t, []int{2, 3}, res.Items)
	assert.EqualValues(t, 5, res.TotalCount)

	res = Paginate(all, Page{Limit: 10, Offset: 4})
	assert.Equal(t, []int{5}, res.Items)

	res = Paginate(all, Page{Offset: 9})
	assert.Empty(t, res.Items)
	assert.Equal(t, DefaultLimit, res.Limit)
}

func TestPage_NormalizeClampsLimit(t *testing.T) {
	assert.Equal(t, MaxLimit, Page{Limit: MaxLimit + 1}.Normalize().Limit)
	assert.Equal(t, 0, Page{Offset: -3}.Normalize().Offset)
}

func TestHookRegistry_StopsAtFirstError(t *testing.T) {
	reg := NewHookRegistry[*int]()
	calls := 0
	boom := errors.New("boom")

	reg.OnBeforeCreate(func(ctx context.Context, v *int) error { calls++; return boom })
	reg.OnBeforeCreate(func(ctx context.Context, v *int) error { calls++; return nil })

	n := 1
	err := reg.Run(context.Background(), BeforeCreate, &n)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)

	assert.NoError(t, reg.Run(context.Background(), AfterConfirm, &n))
}
