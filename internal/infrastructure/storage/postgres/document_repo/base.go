// Package document_repo provides PostgreSQL repositories for stock documents.
// Each kind has a header table and a lines table keyed by (document_id, line_no).
package document_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/domain"
	"stockledger/internal/domain/documents"
	"stockledger/internal/infrastructure/storage/postgres"
)

// immutableCols are never rewritten by Update.
var immutableCols = []string{"id", "created_by", "created_at"}

// headerStateCols are the columns SaveHeader writes.
var headerStateCols = []string{"status", "confirmed_at", "deleted_at", "updated_at"}

// Lines describes how a kind stores its item rows.
type Lines[T documents.Document, L any] struct {
	Table   string
	Columns []string
	Get     func(doc T) []L
	Set     func(doc T, lines []L)
	Owner   func(line L) id.ID
}

// BaseDocumentRepo implements documents.Repository for one kind.
type BaseDocumentRepo[T documents.Document, L any] struct {
	db          *postgres.TxManager
	kind        documents.Kind
	table       string
	cols        []string
	warehouseBy []string
	lines       Lines[T, L]
	newFn       func() T
}

// NewBaseDocumentRepo creates a repository for kind.
// warehouseCols lists the header columns matched by ListFilter.WarehouseID.
func NewBaseDocumentRepo[T documents.Document, L any](
	db *postgres.TxManager,
	kind documents.Kind,
	table string,
	cols []string,
	warehouseCols []string,
	lines Lines[T, L],
	newFn func() T,
) *BaseDocumentRepo[T, L] {
	return &BaseDocumentRepo[T, L]{
		db:          db,
		kind:        kind,
		table:       table,
		cols:        cols,
		warehouseBy: warehouseCols,
		lines:       lines,
		newFn:       newFn,
	}
}

func (r *BaseDocumentRepo[T, L]) Create(ctx context.Context, doc T) error {
	q := postgres.Builder().
		Insert(r.table).
		SetMap(r.values(doc, r.cols))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate(string(r.kind), "code", doc.Header().Code)
		}
		return fmt.Errorf("insert %s: %w", r.table, err)
	}
	return r.insertLines(ctx, doc)
}

func (r *BaseDocumentRepo[T, L]) Update(ctx context.Context, doc T) error {
	if err := r.updateHeader(ctx, doc, postgres.Without(r.cols, immutableCols...)); err != nil {
		return err
	}
	if err := r.deleteLines(ctx, doc.Header().ID); err != nil {
		return err
	}
	return r.insertLines(ctx, doc)
}

func (r *BaseDocumentRepo[T, L]) SaveHeader(ctx context.Context, doc T) error {
	return r.updateHeader(ctx, doc, headerStateCols)
}

func (r *BaseDocumentRepo[T, L]) updateHeader(ctx context.Context, doc T, cols []string) error {
	docID := doc.Header().ID
	q := postgres.Builder().
		Update(r.table).
		SetMap(r.values(doc, cols)).
		Where(squirrel.Eq{"id": docID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.db.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return apperror.NewDuplicate(string(r.kind), "code", doc.Header().Code)
		}
		return fmt.Errorf("update %s: %w", r.table, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(string(r.kind), docID.String())
	}
	return nil
}

func (r *BaseDocumentRepo[T, L]) GetByID(ctx context.Context, docID id.ID, opts documents.GetOptions) (T, error) {
	doc := r.newFn()
	q := postgres.Builder().
		Select(r.cols...).
		From(r.table).
		Where(squirrel.Eq{"id": docID})
	if !opts.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deleted_at": nil})
	}
	if opts.ForUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return doc, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.db.GetQuerier(ctx), doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return doc, apperror.NewNotFound(string(r.kind), docID.String())
		}
		return doc, fmt.Errorf("get %s: %w", r.table, err)
	}

	byDoc, err := r.loadLines(ctx, []id.ID{docID})
	if err != nil {
		return doc, err
	}
	r.lines.Set(doc, byDoc[docID])
	return doc, nil
}

func (r *BaseDocumentRepo[T, L]) CodeExists(ctx context.Context, code string, excludeID id.ID) (bool, error) {
	sql := "SELECT EXISTS(SELECT 1 FROM " + r.table +
		" WHERE code = $1 AND deleted_at IS NULL AND id <> $2)"

	var exists bool
	if err := r.db.GetQuerier(ctx).QueryRow(ctx, sql, code, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("code exists %s: %w", r.table, err)
	}
	return exists, nil
}

func (r *BaseDocumentRepo[T, L]) HardDelete(ctx context.Context, docID id.ID) error {
	if err := r.deleteLines(ctx, docID); err != nil {
		return err
	}

	sql, args, err := postgres.Builder().
		Delete(r.table).
		Where(squirrel.Eq{"id": docID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.db.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.table, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(string(r.kind), docID.String())
	}
	return nil
}

func (r *BaseDocumentRepo[T, L]) List(ctx context.Context, filter documents.ListFilter) (domain.ListResult[T], error) {
	page := filter.Page.Normalize()
	result := domain.ListResult[T]{Items: []T{}, Limit: page.Limit, Offset: page.Offset}

	q := r.filtered(postgres.Builder().Select(r.cols...).From(r.table), filter)

	countSQL, countArgs, err := postgres.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub").
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.db.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.table, err)
	}

	sql, args, err := q.
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset)).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list %s: %w", r.table, err)
	}
	if len(result.Items) == 0 {
		return result, nil
	}

	ids := make([]id.ID, len(result.Items))
	for i, doc := range result.Items {
		ids[i] = doc.Header().ID
	}
	byDoc, err := r.loadLines(ctx, ids)
	if err != nil {
		return result, err
	}
	for _, doc := range result.Items {
		r.lines.Set(doc, byDoc[doc.Header().ID])
	}
	return result, nil
}

func (r *BaseDocumentRepo[T, L]) filtered(q squirrel.SelectBuilder, filter documents.ListFilter) squirrel.SelectBuilder {
	switch filter.Deleted {
	case documents.IncludeDeleted:
	case documents.DeletedOnly:
		q = q.Where(squirrel.NotEq{"deleted_at": nil})
	default:
		q = q.Where(squirrel.Eq{"deleted_at": nil})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.WarehouseID != nil && len(r.warehouseBy) > 0 {
		match := make(squirrel.Or, len(r.warehouseBy))
		for i, col := range r.warehouseBy {
			match[i] = squirrel.Eq{col: *filter.WarehouseID}
		}
		q = q.Where(match)
	}
	if code := strings.TrimSpace(filter.Code); code != "" {
		q = q.Where(squirrel.ILike{"code": "%" + code + "%"})
	}
	return q
}

// values picks cols from the row representation of doc.
func (r *BaseDocumentRepo[T, L]) values(doc T, cols []string) map[string]any {
	data := postgres.StructToMap(doc)
	out := make(map[string]any, len(cols))
	for _, col := range cols {
		if v, ok := data[col]; ok {
			out[col] = v
		}
	}
	return out
}

func (r *BaseDocumentRepo[T, L]) loadLines(ctx context.Context, docIDs []id.ID) (map[id.ID][]L, error) {
	sql, args, err := postgres.Builder().
		Select(r.lines.Columns...).
		From(r.lines.Table).
		Where(squirrel.Eq{"document_id": docIDs}).
		OrderBy("document_id", "line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lines query: %w", err)
	}

	var rows []L
	if err := pgxscan.Select(ctx, r.db.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines %s: %w", r.lines.Table, err)
	}

	out := make(map[id.ID][]L, len(docIDs))
	for _, line := range rows {
		owner := r.lines.Owner(line)
		out[owner] = append(out[owner], line)
	}
	return out, nil
}

func (r *BaseDocumentRepo[T, L]) insertLines(ctx context.Context, doc T) error {
	lines := r.lines.Get(doc)
	if len(lines) == 0 {
		return nil
	}

	docID := doc.Header().ID
	q := postgres.Builder().
		Insert(r.lines.Table).
		Columns(r.lines.Columns...)
	for _, line := range lines {
		data := postgres.StructToMap(line)
		data["document_id"] = docID
		row := make([]any, len(r.lines.Columns))
		for i, col := range r.lines.Columns {
			row[i] = data[col]
		}
		q = q.Values(row...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build lines insert: %w", err)
	}
	if _, err := r.db.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines %s: %w", r.lines.Table, err)
	}
	return nil
}

func (r *BaseDocumentRepo[T, L]) deleteLines(ctx context.Context, docID id.ID) error {
	sql := "DELETE FROM " + r.lines.Table + " WHERE document_id = $1"
	if _, err := r.db.GetQuerier(ctx).Exec(ctx, sql, docID); err != nil {
		return fmt.Errorf("delete lines %s: %w", r.lines.Table, err)
	}
	return nil
}
