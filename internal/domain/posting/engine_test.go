package posting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/registers/stock"
)

type recordingBalances struct {
	quantities map[stock.Key]types.Quantity
	order      []stock.Key
}

func newRecordingBalances() *recordingBalances {
	return &recordingBalances{quantities: map[stock.Key]types.Quantity{}}
}

func (r *recordingBalances) Adjust(ctx context.Context, key stock.Key, delta types.Quantity) (stock.Balance, error) {
	r.order = append(r.order, key)
	cur := r.quantities[key]
	next := cur.Add(delta)
	if next.IsNegative() {
		return stock.Balance{}, apperror.NewInsufficientStock(key.WarehouseID.String(), key.ProductID.String(), delta.Neg().String(), cur.String())
	}
	r.quantities[key] = next
	return stock.Balance{WarehouseID: key.WarehouseID, ProductID: key.ProductID, Quantity: next}, nil
}

type movementsDoc []Movement

func (d movementsDoc) Movements() []Movement { return d }

var (
	w1 = id.MustParse("00000000-0000-0000-0000-000000000001")
	w2 = id.MustParse("00000000-0000-0000-0000-000000000002")
	p1 = id.MustParse("00000000-0000-0000-0000-00000000000a")
	p2 = id.MustParse("00000000-0000-0000-0000-00000000000b")
)

func TestNet_AggregatesAndSorts(t *testing.T) {
	changes := Net([]Movement{
		{WarehouseID: w2, ProductID: p1, Delta: types.NewQuantity(5)},
		{WarehouseID: w1, ProductID: p2, Delta: types.NewQuantity(-3)},
		{WarehouseID: w2, ProductID: p1, Delta: types.NewQuantity(2)},
		{WarehouseID: w1, ProductID: p1, Delta: types.NewQuantity(4)},
		{WarehouseID: w1, ProductID: p1, Delta: types.NewQuantity(-4)},
	}, false)

	require.Len(t, changes, 2)
	assert.Equal(t, stock.Key{WarehouseID: w1, ProductID: p2}, changes[0].Key)
	assert.True(t, changes[0].Delta.Equal(types.NewQuantity(-3)))
	assert.Equal(t, stock.Key{WarehouseID: w2, ProductID: p1}, changes[1].Key)
	assert.True(t, changes[1].Delta.Equal(types.NewQuantity(7)))
}

func TestNet_Negate(t *testing.T) {
	changes := Net([]Movement{{WarehouseID: w1, ProductID: p1, Delta: types.NewQuantity(5)}}, true)
	require.Len(t, changes, 1)
	assert.True(t, changes[0].Delta.Equal(types.NewQuantity(-5)))
}

func TestEngine_TransferLocksInCanonicalOrder(t *testing.T) {
	bal := newRecordingBalances()
	bal.quantities[stock.Key{WarehouseID: w2, ProductID: p1}] = types.NewQuantity(50)
	engine := NewEngine(bal)

	// from w2 to w1: the semantic order is w2 then w1, lock order must be w1 then w2
	doc := movementsDoc{
		{WarehouseID: w2, ProductID: p1, Delta: types.NewQuantity(-20)},
		{WarehouseID: w1, ProductID: p1, Delta: types.NewQuantity(20)},
	}
	require.NoError(t, engine.Post(context.Background(), doc))

	assert.Equal(t, []stock.Key{
		{WarehouseID: w1, ProductID: p1},
		{WarehouseID: w2, ProductID: p1},
	}, bal.order)
	assert.True(t, bal.quantities[stock.Key{WarehouseID: w1, ProductID: p1}].Equal(types.NewQuantity(20)))
	assert.True(t, bal.quantities[stock.Key{WarehouseID: w2, ProductID: p1}].Equal(types.NewQuantity(30)))
}

func TestEngine_ReverseInvertsPost(t *testing.T) {
	bal := newRecordingBalances()
	engine := NewEngine(bal)
	doc := movementsDoc{{WarehouseID: w1, ProductID: p1, Delta: types.NewQuantity(100)}}

	require.NoError(t, engine.Post(context.Background(), doc))
	require.NoError(t, engine.Reverse(context.Background(), doc))
	assert.True(t, bal.quantities[stock.Key{WarehouseID: w1, ProductID: p1}].IsZero())
}

func TestEngine_PropagatesInsufficientStock(t *testing.T) {
	engine := NewEngine(newRecordingBalances())
	doc := movementsDoc{{WarehouseID: w1, ProductID: p1, Delta: types.NewQuantity(-1)}}

	err := engine.Post(context.Background(), doc)
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestEngine_EmptyDocumentIsNoop(t *testing.T) {
	bal := newRecordingBalances()
	require.NoError(t, NewEngine(bal).Post(context.Background(), movementsDoc{}))
	assert.Empty(t, bal.order)
}
