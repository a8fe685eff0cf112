// Package posting applies the balance effect of stock documents.
//
// A document describes its effect as a list of movements. Post applies them,
// Reverse applies their inverse. Both run inside the caller's transaction and
// lock balance rows in ascending (warehouse_id, product_id) order.
package posting

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain/registers/stock"
	"stockledger/pkg/logger"
)

var tracer = otel.Tracer("stockledger/posting")

// Movement is a signed quantity change for one (warehouse, product) pair.
type Movement struct {
	WarehouseID id.ID
	ProductID   id.ID
	Delta       types.Quantity
}

// Key returns the balance row the movement touches.
func (m Movement) Key() stock.Key {
	return stock.Key{WarehouseID: m.WarehouseID, ProductID: m.ProductID}
}

// Postable is implemented by documents with a balance effect.
// Documents without one return an empty slice.
type Postable interface {
	Movements() []Movement
}

// Balances is the subset of the balance register used by the engine.
type Balances interface {
	Adjust(ctx context.Context, key stock.Key, delta types.Quantity) (stock.Balance, error)
}

// Change is the net delta for one balance row.
type Change struct {
	Key   stock.Key
	Delta types.Quantity
}

// Engine posts and reverses documents against the balance register.
type Engine struct {
	balances Balances
}

// NewEngine creates a posting engine.
func NewEngine(balances Balances) *Engine {
	return &Engine{balances: balances}
}

// Post applies the document's movements.
func (e *Engine) Post(ctx context.Context, doc Postable) error {
	return e.apply(ctx, "post", Net(doc.Movements(), false))
}

// Reverse applies the inverse of the document's movements.
func (e *Engine) Reverse(ctx context.Context, doc Postable) error {
	return e.apply(ctx, "reverse", Net(doc.Movements(), true))
}

func (e *Engine) apply(ctx context.Context, op string, changes []Change) error {
	ctx, span := tracer.Start(ctx, "posting."+op,
		trace.WithAttributes(attribute.Int("posting.changes", len(changes))))
	defer span.End()

	for _, ch := range changes {
		if _, err := e.balances.Adjust(ctx, ch.Key, ch.Delta); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, op+" failed")
			return fmt.Errorf("%s movement %s/%s: %w", op, ch.Key.WarehouseID, ch.Key.ProductID, err)
		}
	}

	logger.Debug(ctx, "movements applied", "op", op, "changes", len(changes))
	return nil
}

// Net folds movements into one change per balance row, sorted in lock order.
// Rows whose deltas cancel out are dropped. With negate set every delta is inverted.
func Net(movements []Movement, negate bool) []Change {
	sums := make(map[stock.Key]types.Quantity, len(movements))
	keys := make([]stock.Key, 0, len(movements))
	for _, m := range movements {
		k := m.Key()
		cur, ok := sums[k]
		if !ok {
			keys = append(keys, k)
			cur = types.ZeroQuantity()
		}
		sums[k] = cur.Add(m.Delta)
	}

	stock.SortKeys(keys)

	changes := make([]Change, 0, len(keys))
	for _, k := range keys {
		delta := sums[k]
		if delta.IsZero() {
			continue
		}
		if negate {
			delta = delta.Neg()
		}
		changes = append(changes, Change{Key: k, Delta: delta})
	}
	return changes
}
