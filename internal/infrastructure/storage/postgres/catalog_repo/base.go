// Package catalog_repo provides PostgreSQL repositories for master data.
package catalog_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/domain"
	"stockledger/internal/infrastructure/storage/postgres"
)

// BaseCatalogRepo implements domain.CatalogRepository for one table.
// keyCol holds the natural key; keyCol and nameCol are searched by List.
type BaseCatalogRepo[T domain.CatalogEntity] struct {
	db         *postgres.TxManager
	entityName string
	tableName  string
	selectCols []string
	keyCol     string
	nameCol    string
	newFn      func() T
}

// NewBaseCatalogRepo creates a catalog repository.
func NewBaseCatalogRepo[T domain.CatalogEntity](
	db *postgres.TxManager,
	entityName, tableName string,
	selectCols []string,
	keyCol, nameCol string,
	newFn func() T,
) *BaseCatalogRepo[T] {
	return &BaseCatalogRepo[T]{
		db:         db,
		entityName: entityName,
		tableName:  tableName,
		selectCols: selectCols,
		keyCol:     keyCol,
		nameCol:    nameCol,
		newFn:      newFn,
	}
}

// Create inserts a new entity using its "db" tags.
func (r *BaseCatalogRepo[T]) Create(ctx context.Context, entity T) error {
	data := postgres.StructToMap(entity)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in %s", r.entityName)
	}

	sql, args, err := postgres.Builder().
		Insert(r.tableName).
		SetMap(data).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			field, value := entity.NaturalKey()
			return apperror.NewDuplicate(r.entityName, field, value)
		}
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}
	return nil
}

func (r *BaseCatalogRepo[T]) baseSelect() squirrel.SelectBuilder {
	return postgres.Builder().
		Select(r.selectCols...).
		From(r.tableName)
}

// GetByID loads one record. Inside a transaction the row is share-locked
// so a document referencing it cannot commit against a vanished record.
func (r *BaseCatalogRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	entity := r.newFn()
	q := r.baseSelect().Where(squirrel.Eq{"id": entityID})
	if postgres.InTransaction(ctx) {
		q = q.Suffix("FOR SHARE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.db.GetQuerier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.entityName, entityID.String())
		}
		return entity, fmt.Errorf("get %s: %w", r.tableName, err)
	}
	return entity, nil
}

// ExistsByKey matches the natural key case-insensitively.
func (r *BaseCatalogRepo[T]) ExistsByKey(ctx context.Context, value string) (bool, error) {
	sql := "SELECT EXISTS(SELECT 1 FROM " + r.tableName + " WHERE LOWER(" + r.keyCol + ") = LOWER($1))"

	var exists bool
	if err := r.db.GetQuerier(ctx).QueryRow(ctx, sql, value).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists %s: %w", r.tableName, err)
	}
	return exists, nil
}

// List orders by natural key.
func (r *BaseCatalogRepo[T]) List(ctx context.Context, filter domain.CatalogFilter) (domain.ListResult[T], error) {
	page := filter.Page.Normalize()
	result := domain.ListResult[T]{Items: []T{}, Limit: page.Limit, Offset: page.Offset}

	q := r.applySearch(r.baseSelect(), filter.Search)

	countSQL, countArgs, err := postgres.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub").
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.db.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.tableName, err)
	}

	sql, args, err := q.
		OrderBy(r.keyCol).
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset)).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return result, nil
}

func (r *BaseCatalogRepo[T]) applySearch(q squirrel.SelectBuilder, search string) squirrel.SelectBuilder {
	search = strings.TrimSpace(search)
	if search == "" {
		return q
	}
	pattern := "%" + search + "%"
	return q.Where(squirrel.Or{
		squirrel.ILike{r.keyCol: pattern},
		squirrel.ILike{r.nameCol: pattern},
	})
}
