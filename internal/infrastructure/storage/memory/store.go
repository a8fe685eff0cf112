// Package memory provides an in-process storage backend.
//
// A transaction holds the store's write lock for its whole duration, so
// transactions are fully serialised; writes record undo steps that are
// replayed in reverse when the transaction fails. Reads outside a
// transaction take the read lock.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"stockledger/internal/core/tx"
	"stockledger/internal/domain/documents"
)

// Store holds all tables.
type Store struct {
	mu sync.RWMutex

	// documents indexes the document tables for cross-kind reports.
	docTables map[documents.Kind]documentTable
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{docTables: make(map[documents.Kind]documentTable)}
}

// ErrReadOnly is returned by writes issued inside ReadOnly.
var ErrReadOnly = errors.New("memory: write in read-only transaction")

type txKey struct{}

type memTx struct {
	undo []func()
	// readOnly transactions hold only the read lock.
	readOnly bool
}

func (t *memTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func txFromContext(ctx context.Context) *memTx {
	t, _ := ctx.Value(txKey{}).(*memTx)
	return t
}

// read runs fn under the read lock unless ctx already owns the store.
func (s *Store) read(ctx context.Context, fn func()) {
	if txFromContext(ctx) != nil {
		fn()
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

// write runs fn with exclusive access. Inside a transaction undo steps are
// kept for rollback; outside one the write is final.
func (s *Store) write(ctx context.Context, fn func(onUndo func(func()))) error {
	if t := txFromContext(ctx); t != nil {
		if t.readOnly {
			return ErrReadOnly
		}
		fn(func(u func()) { t.undo = append(t.undo, u) })
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(func(func()) {})
	return nil
}

// TxManager implements tx.ReadOnlyManager over a Store.
type TxManager struct {
	store *Store
}

var _ tx.ReadOnlyManager = (*TxManager)(nil)

// NewTxManager creates a transaction manager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// RunInTransaction executes fn with exclusive access to the store.
// Nested calls join the outer transaction.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if t := txFromContext(ctx); t != nil {
		if t.readOnly {
			return ErrReadOnly
		}
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	t := &memTx{}
	defer func() {
		if p := recover(); p != nil {
			t.rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		t.rollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		t.rollback()
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ReadOnly runs fn under the read lock, so every read inside fn sees the
// same state. Writes inside fn fail with ErrReadOnly.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	return fn(context.WithValue(ctx, txKey{}, &memTx{readOnly: true}))
}
