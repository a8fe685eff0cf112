// Package report_repo provides the PostgreSQL queries behind ledger reports.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/documents"
	"stockledger/internal/domain/reports"
	"stockledger/internal/infrastructure/storage/postgres"
)

// kindTables describes how a document kind is laid out for aggregation.
type kindTables struct {
	header        string
	lines         string
	quantityCol   string
	warehouseCols []string
}

var tablesByKind = map[documents.Kind]kindTables{
	documents.KindStockIn: {
		header: "doc_stock_ins", lines: "doc_stock_in_lines",
		quantityCol: "quantity", warehouseCols: []string{"warehouse_id"},
	},
	documents.KindStockOut: {
		header: "doc_stock_outs", lines: "doc_stock_out_lines",
		quantityCol: "quantity", warehouseCols: []string{"warehouse_id"},
	},
	documents.KindStockTransfer: {
		header: "doc_stock_transfers", lines: "doc_stock_transfer_lines",
		quantityCol: "quantity", warehouseCols: []string{"from_warehouse_id", "to_warehouse_id"},
	},
	documents.KindStockTake: {
		header: "doc_stock_takes", lines: "doc_stock_take_lines",
		quantityCol: "actual_quantity", warehouseCols: []string{"warehouse_id"},
	},
}

// expectedBalancesSQL replays the movements of every confirmed document.
// Soft-deleted documents keep their effect until permanently removed.
const expectedBalancesSQL = `
WITH movements AS (
	SELECT d.warehouse_id, l.product_id, l.quantity AS delta
	FROM doc_stock_ins d JOIN doc_stock_in_lines l ON l.document_id = d.id
	WHERE d.status = 'confirmed'
	UNION ALL
	SELECT d.warehouse_id, l.product_id, -l.quantity
	FROM doc_stock_outs d JOIN doc_stock_out_lines l ON l.document_id = d.id
	WHERE d.status = 'confirmed'
	UNION ALL
	SELECT d.from_warehouse_id, l.product_id, -l.quantity
	FROM doc_stock_transfers d JOIN doc_stock_transfer_lines l ON l.document_id = d.id
	WHERE d.status = 'confirmed'
	UNION ALL
	SELECT d.to_warehouse_id, l.product_id, l.quantity
	FROM doc_stock_transfers d JOIN doc_stock_transfer_lines l ON l.document_id = d.id
	WHERE d.status = 'confirmed'
)
SELECT warehouse_id, product_id, SUM(delta) AS quantity
FROM movements
WHERE ($1::uuid IS NULL OR warehouse_id = $1)
  AND ($2::uuid IS NULL OR product_id = $2)
GROUP BY warehouse_id, product_id
ORDER BY warehouse_id, product_id`

const lowStockSQL = `
SELECT b.warehouse_id, w.name AS warehouse_name,
       b.product_id, p.sku, p.name AS product_name,
       b.quantity, p.min_quantity
FROM reg_stock_balances b
JOIN cat_products p ON p.id = b.product_id
JOIN cat_warehouses w ON w.id = b.warehouse_id
WHERE p.min_quantity > 0
  AND b.quantity < p.min_quantity
  AND ($1::uuid IS NULL OR b.warehouse_id = $1)
ORDER BY b.warehouse_id, b.product_id`

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	db *postgres.TxManager
}

var _ reports.Repository = (*ReportRepo)(nil)

func NewReportRepo(db *postgres.TxManager) *ReportRepo {
	return &ReportRepo{db: db}
}

func (r *ReportRepo) ExpectedBalances(ctx context.Context, filter reports.ReconcileFilter) ([]reports.ExpectedBalance, error) {
	out := make([]reports.ExpectedBalance, 0)
	err := pgxscan.Select(ctx, r.db.GetQuerier(ctx), &out, expectedBalancesSQL, filter.WarehouseID, filter.ProductID)
	if err != nil {
		return nil, fmt.Errorf("expected balances: %w", err)
	}
	return out, nil
}

func (r *ReportRepo) ConfirmedDocuments(ctx context.Context, kind documents.Kind, from, to time.Time, warehouseID *id.ID) ([]reports.ConfirmedDocument, error) {
	sql, args, err := confirmedDocumentsQuery(kind, from, to, warehouseID)
	if err != nil {
		return nil, err
	}

	out := make([]reports.ConfirmedDocument, 0)
	if err := pgxscan.Select(ctx, r.db.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("confirmed %s documents: %w", kind, err)
	}
	return out, nil
}

func confirmedDocumentsQuery(kind documents.Kind, from, to time.Time, warehouseID *id.ID) (string, []any, error) {
	t, ok := tablesByKind[kind]
	if !ok {
		return "", nil, apperror.NewValidation("unknown document kind").WithDetail("kind", string(kind))
	}

	q := postgres.Builder().
		Select(
			"d.id",
			"d.confirmed_at",
			fmt.Sprintf("COALESCE(SUM(l.%s), 0) AS total_quantity", t.quantityCol),
		).
		From(t.header+" d").
		LeftJoin(t.lines+" l ON l.document_id = d.id").
		Where(squirrel.Eq{"d.status": entity.StatusConfirmed, "d.deleted_at": nil}).
		Where(squirrel.GtOrEq{"d.confirmed_at": from}).
		Where(squirrel.Lt{"d.confirmed_at": to}).
		GroupBy("d.id", "d.confirmed_at").
		OrderBy("d.confirmed_at")

	if warehouseID != nil {
		match := make(squirrel.Or, len(t.warehouseCols))
		for i, col := range t.warehouseCols {
			match[i] = squirrel.Eq{"d." + col: *warehouseID}
		}
		q = q.Where(match)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build query: %w", err)
	}
	return sql, args, nil
}

func (r *ReportRepo) LowStock(ctx context.Context, warehouseID *id.ID) ([]reports.LowStockLine, error) {
	out := make([]reports.LowStockLine, 0)
	if err := pgxscan.Select(ctx, r.db.GetQuerier(ctx), &out, lowStockSQL, warehouseID); err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	return out, nil
}
