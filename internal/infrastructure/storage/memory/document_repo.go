package memory

import (
	"context"
	"sort"
	"strings"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/domain"
	"stockledger/internal/domain/documents"
)

// Cloneable documents can be copied in and out of the store.
type Cloneable[T any] interface {
	documents.Document
	Clone() T
}

// documentTable is the kind-independent view used by reports.
type documentTable interface {
	snapshot() []documents.Document
}

// DocumentRepo stores one document kind.
type DocumentRepo[T Cloneable[T]] struct {
	store *Store
	kind  documents.Kind
	rows  map[id.ID]T
}

// NewDocumentRepo creates the table for kind and registers it with the store.
func NewDocumentRepo[T Cloneable[T]](store *Store, kind documents.Kind) *DocumentRepo[T] {
	r := &DocumentRepo[T]{store: store, kind: kind, rows: make(map[id.ID]T)}
	store.mu.Lock()
	store.docTables[kind] = r
	store.mu.Unlock()
	return r
}

func (r *DocumentRepo[T]) Create(ctx context.Context, doc T) error {
	docID := doc.Header().ID
	var err error
	if werr := r.store.write(ctx, func(onUndo func(func())) {
		if _, exists := r.rows[docID]; exists {
			err = apperror.NewConflict("document already exists").WithDetail("id", docID.String())
			return
		}
		r.rows[docID] = doc.Clone()
		onUndo(func() { delete(r.rows, docID) })
	}); werr != nil {
		return werr
	}
	return err
}

func (r *DocumentRepo[T]) Update(ctx context.Context, doc T) error {
	return r.replace(ctx, doc)
}

// SaveHeader keeps the stored items and overwrites everything else.
// Items are immutable once a document leaves draft, so replacing the whole
// row is equivalent.
func (r *DocumentRepo[T]) SaveHeader(ctx context.Context, doc T) error {
	return r.replace(ctx, doc)
}

func (r *DocumentRepo[T]) replace(ctx context.Context, doc T) error {
	docID := doc.Header().ID
	var err error
	if werr := r.store.write(ctx, func(onUndo func(func())) {
		prev, ok := r.rows[docID]
		if !ok {
			err = apperror.NewNotFound(string(r.kind), docID.String())
			return
		}
		r.rows[docID] = doc.Clone()
		onUndo(func() { r.rows[docID] = prev })
	}); werr != nil {
		return werr
	}
	return err
}

// GetByID returns a copy. ForUpdate needs no extra work: transactions
// already hold the store exclusively.
func (r *DocumentRepo[T]) GetByID(ctx context.Context, docID id.ID, opts documents.GetOptions) (T, error) {
	var (
		out T
		err error
	)
	r.store.read(ctx, func() {
		row, ok := r.rows[docID]
		if !ok || (row.Header().IsDeleted() && !opts.IncludeDeleted) {
			err = apperror.NewNotFound(string(r.kind), docID.String())
			return
		}
		out = row.Clone()
	})
	return out, err
}

func (r *DocumentRepo[T]) CodeExists(ctx context.Context, code string, excludeID id.ID) (bool, error) {
	exists := false
	r.store.read(ctx, func() {
		for docID, row := range r.rows {
			h := row.Header()
			if docID != excludeID && !h.IsDeleted() && h.Code == code {
				exists = true
				return
			}
		}
	})
	return exists, nil
}

func (r *DocumentRepo[T]) HardDelete(ctx context.Context, docID id.ID) error {
	var err error
	if werr := r.store.write(ctx, func(onUndo func(func())) {
		prev, ok := r.rows[docID]
		if !ok {
			err = apperror.NewNotFound(string(r.kind), docID.String())
			return
		}
		delete(r.rows, docID)
		onUndo(func() { r.rows[docID] = prev })
	}); werr != nil {
		return werr
	}
	return err
}

// List returns matching documents, newest first.
func (r *DocumentRepo[T]) List(ctx context.Context, filter documents.ListFilter) (domain.ListResult[T], error) {
	code := strings.ToLower(filter.Code)
	var matched []T
	r.store.read(ctx, func() {
		for _, row := range r.rows {
			h := row.Header()
			switch filter.Deleted {
			case documents.LiveOnly:
				if h.IsDeleted() {
					continue
				}
			case documents.DeletedOnly:
				if !h.IsDeleted() {
					continue
				}
			}
			if filter.Status != nil && h.Status != *filter.Status {
				continue
			}
			if code != "" && !strings.Contains(strings.ToLower(h.Code), code) {
				continue
			}
			if filter.WarehouseID != nil && !documents.ContainsID(row.References().Warehouses, *filter.WarehouseID) {
				continue
			}
			matched = append(matched, row.Clone())
		}
	})

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i].Header(), matched[j].Header()
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return id.Compare(a.ID, b.ID) > 0
	})
	return domain.Paginate(matched, filter.Page), nil
}

// snapshot is called with the store lock held.
func (r *DocumentRepo[T]) snapshot() []documents.Document {
	out := make([]documents.Document, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row)
	}
	return out
}
