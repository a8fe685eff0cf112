// Package register_repo provides the PostgreSQL balance register.
package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/domain/registers/stock"
	"stockledger/internal/infrastructure/storage/postgres"
)

const stockBalancesTable = "reg_stock_balances"

var balanceCols = postgres.ExtractDBColumns[stock.Balance]()

// StockRepo implements stock.Repository.
type StockRepo struct {
	db *postgres.TxManager
}

var _ stock.Repository = (*StockRepo)(nil)

// NewStockRepo creates the balance repository.
func NewStockRepo(db *postgres.TxManager) *StockRepo {
	return &StockRepo{db: db}
}

// Get reads a balance without locking. Missing rows read as zero.
func (r *StockRepo) Get(ctx context.Context, key stock.Key) (stock.Balance, error) {
	sql, args, err := postgres.Builder().
		Select(balanceCols...).
		From(stockBalancesTable).
		Where(squirrel.Eq{"warehouse_id": key.WarehouseID, "product_id": key.ProductID}).
		ToSql()
	if err != nil {
		return stock.Balance{}, fmt.Errorf("build query: %w", err)
	}

	var b stock.Balance
	if err := pgxscan.Get(ctx, r.db.GetQuerier(ctx), &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return stock.NewBalance(key), nil
		}
		return b, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

// LockOrCreate inserts a zero row when absent and then locks it.
// Concurrent inserters of the same key serialize on the primary key.
func (r *StockRepo) LockOrCreate(ctx context.Context, key stock.Key) (stock.Balance, error) {
	if !postgres.InTransaction(ctx) {
		return stock.Balance{}, apperror.NewInternal(fmt.Errorf("lock balance outside transaction"))
	}

	querier := r.db.GetQuerier(ctx)
	const insertSQL = `
		INSERT INTO reg_stock_balances (warehouse_id, product_id, quantity, updated_at)
		VALUES ($1, $2, 0, NOW())
		ON CONFLICT (warehouse_id, product_id) DO NOTHING`
	if _, err := querier.Exec(ctx, insertSQL, key.WarehouseID, key.ProductID); err != nil {
		return stock.Balance{}, fmt.Errorf("ensure balance row: %w", err)
	}

	sql, args, err := postgres.Builder().
		Select(balanceCols...).
		From(stockBalancesTable).
		Where(squirrel.Eq{"warehouse_id": key.WarehouseID, "product_id": key.ProductID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return stock.Balance{}, fmt.Errorf("build query: %w", err)
	}

	var b stock.Balance
	if err := pgxscan.Get(ctx, querier, &b, sql, args...); err != nil {
		return b, fmt.Errorf("lock balance: %w", err)
	}
	return b, nil
}

func (r *StockRepo) Save(ctx context.Context, b stock.Balance) error {
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = time.Now().UTC()
	}
	sql, args, err := postgres.Builder().
		Update(stockBalancesTable).
		Set("quantity", b.Quantity).
		Set("updated_at", b.UpdatedAt).
		Where(squirrel.Eq{"warehouse_id": b.WarehouseID, "product_id": b.ProductID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.db.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("save balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("balance", b.WarehouseID.String()+"/"+b.ProductID.String())
	}
	return nil
}

// List returns balances in (warehouse_id, product_id) order.
func (r *StockRepo) List(ctx context.Context, filter stock.Filter) ([]stock.Balance, error) {
	q := postgres.Builder().
		Select(balanceCols...).
		From(stockBalancesTable).
		OrderBy("warehouse_id", "product_id")
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
	}
	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"quantity": 0})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	out := make([]stock.Balance, 0)
	if err := pgxscan.Select(ctx, r.db.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	return out, nil
}
