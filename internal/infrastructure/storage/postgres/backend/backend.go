// Package backend assembles the PostgreSQL repositories into app.Repositories.
package backend

import (
	"stockledger/internal/app"
	"stockledger/internal/infrastructure/storage/postgres"
	"stockledger/internal/infrastructure/storage/postgres/catalog_repo"
	"stockledger/internal/infrastructure/storage/postgres/document_repo"
	"stockledger/internal/infrastructure/storage/postgres/register_repo"
	"stockledger/internal/infrastructure/storage/postgres/report_repo"
)

// New builds the repositories over pool. Every repository reads the
// transaction that txManager placed in the context.
func New(pool *postgres.Pool, opts postgres.TxOptions) app.Repositories {
	txm := postgres.NewTxManager(pool, opts)
	return app.Repositories{
		TxManager:      txm,
		Catalogs:       catalog_repo.NewRepositories(txm),
		Balances:       register_repo.NewStockRepo(txm),
		StockIns:       document_repo.NewStockInRepo(txm),
		StockOuts:      document_repo.NewStockOutRepo(txm),
		StockTransfers: document_repo.NewStockTransferRepo(txm),
		StockTakes:     document_repo.NewStockTakeRepo(txm),
		Reports:        report_repo.NewReportRepo(txm),
	}
}
