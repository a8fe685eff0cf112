// Package tx provides transaction management abstractions.
// Domain services depend on these interfaces; storage backends implement them.
package tx

import (
	"context"
)

// Manager runs a unit of work atomically.
//
// The active transaction travels in the context passed to fn. Repositories
// resolve it from that context, so every read, lock and write issued with
// the inner ctx belongs to the same unit of work.
type Manager interface {
	// RunInTransaction executes fn within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager with read-only transaction support.
// Reports use it to read a consistent snapshot without taking row locks.
type ReadOnlyManager interface {
	Manager

	// ReadOnly executes fn in a read-only transaction.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
