package memory

import (
	"context"
	"sort"
	"strings"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/domain"
)

// CatalogRepo stores one master-data entity.
type CatalogRepo[T domain.CatalogEntity] struct {
	store  *Store
	entity string
	name   func(T) string
	rows   map[id.ID]T
}

// NewCatalogRepo creates a table. name extracts the display name used by search.
func NewCatalogRepo[T domain.CatalogEntity](store *Store, entity string, name func(T) string) *CatalogRepo[T] {
	return &CatalogRepo[T]{store: store, entity: entity, name: name, rows: make(map[id.ID]T)}
}

func (r *CatalogRepo[T]) Create(ctx context.Context, e T) error {
	var err error
	if werr := r.store.write(ctx, func(onUndo func(func())) {
		eid := e.GetID()
		if _, exists := r.rows[eid]; exists {
			err = apperror.NewConflict(r.entity + " already exists")
			return
		}
		r.rows[eid] = e
		onUndo(func() { delete(r.rows, eid) })
	}); werr != nil {
		return werr
	}
	return err
}

func (r *CatalogRepo[T]) GetByID(ctx context.Context, eid id.ID) (T, error) {
	var (
		out T
		ok  bool
	)
	r.store.read(ctx, func() {
		out, ok = r.rows[eid]
	})
	if !ok {
		return out, apperror.NewNotFound(r.entity, eid.String())
	}
	return out, nil
}

func (r *CatalogRepo[T]) ExistsByKey(ctx context.Context, value string) (bool, error) {
	found := false
	r.store.read(ctx, func() {
		for _, row := range r.rows {
			if _, v := row.NaturalKey(); strings.EqualFold(v, value) {
				found = true
				return
			}
		}
	})
	return found, nil
}

// List orders by natural key.
func (r *CatalogRepo[T]) List(ctx context.Context, filter domain.CatalogFilter) (domain.ListResult[T], error) {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var matched []T
	r.store.read(ctx, func() {
		for _, row := range r.rows {
			if search != "" {
				_, key := row.NaturalKey()
				if !strings.Contains(strings.ToLower(key), search) &&
					!strings.Contains(strings.ToLower(r.name(row)), search) {
					continue
				}
			}
			matched = append(matched, row)
		}
	})
	sort.Slice(matched, func(i, j int) bool {
		_, a := matched[i].NaturalKey()
		_, b := matched[j].NaturalKey()
		return a < b
	})
	return domain.Paginate(matched, filter.Page), nil
}
