package stock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

type fakeRepo struct {
	rows   map[Key]Balance
	locked []Key
	saves  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: map[Key]Balance{}}
}

func (r *fakeRepo) Get(ctx context.Context, key Key) (Balance, error) {
	if b, ok := r.rows[key]; ok {
		return b, nil
	}
	return NewBalance(key), nil
}

func (r *fakeRepo) LockOrCreate(ctx context.Context, key Key) (Balance, error) {
	r.locked = append(r.locked, key)
	b, ok := r.rows[key]
	if !ok {
		b = NewBalance(key)
		r.rows[key] = b
	}
	return b, nil
}

func (r *fakeRepo) Save(ctx context.Context, b Balance) error {
	r.saves++
	r.rows[b.Key()] = b
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter Filter) ([]Balance, error) {
	var out []Balance
	for _, b := range r.rows {
		out = append(out, b)
	}
	return out, nil
}

func TestAdjust_CreatesRowLazily(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	key := Key{WarehouseID: id.New(), ProductID: id.New()}

	b, err := svc.Get(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, b.Quantity.IsZero())

	b, err = svc.Adjust(context.Background(), key, types.NewQuantity(100))
	require.NoError(t, err)
	assert.True(t, b.Quantity.Equal(types.NewQuantity(100)))
	assert.Equal(t, []Key{key}, repo.locked)
}

func TestAdjust_RejectsNegativeResult(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	key := Key{WarehouseID: id.New(), ProductID: id.New()}

	_, err := svc.Adjust(context.Background(), key, types.NewQuantity(70))
	require.NoError(t, err)

	_, err = svc.Adjust(context.Background(), key, types.NewQuantity(-100))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
	assert.Equal(t, "100", appErr.Details["requested"])
	assert.Equal(t, "70", appErr.Details["available"])

	b, _ := svc.Get(context.Background(), key)
	assert.True(t, b.Quantity.Equal(types.NewQuantity(70)))
	assert.Equal(t, 1, repo.saves)
}

func TestAdjust_ToExactlyZeroIsAllowed(t *testing.T) {
	svc := NewService(newFakeRepo())
	key := Key{WarehouseID: id.New(), ProductID: id.New()}

	_, err := svc.Adjust(context.Background(), key, types.MustQuantity("2.5"))
	require.NoError(t, err)
	b, err := svc.Adjust(context.Background(), key, types.MustQuantity("-2.5"))
	require.NoError(t, err)
	assert.True(t, b.Quantity.IsZero())
}

func TestSortKeys_TotalOrder(t *testing.T) {
	w1 := id.MustParse("00000000-0000-0000-0000-000000000001")
	w2 := id.MustParse("00000000-0000-0000-0000-000000000002")
	p1 := id.MustParse("00000000-0000-0000-0000-00000000000a")
	p2 := id.MustParse("00000000-0000-0000-0000-00000000000b")

	keys := []Key{
		{WarehouseID: w2, ProductID: p1},
		{WarehouseID: w1, ProductID: p2},
		{WarehouseID: w1, ProductID: p1},
	}
	SortKeys(keys)

	assert.Equal(t, []Key{
		{WarehouseID: w1, ProductID: p1},
		{WarehouseID: w1, ProductID: p2},
		{WarehouseID: w2, ProductID: p1},
	}, keys)
}
