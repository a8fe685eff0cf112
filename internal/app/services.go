// Package app assembles the domain services over a storage backend.
package app

import (
	"time"

	"stockledger/internal/core/tx"
	"stockledger/internal/domain/catalogs"
	"stockledger/internal/domain/documents"
	"stockledger/internal/domain/documents/stock_in"
	"stockledger/internal/domain/documents/stock_out"
	"stockledger/internal/domain/documents/stock_take"
	"stockledger/internal/domain/documents/stock_transfer"
	"stockledger/internal/domain/posting"
	"stockledger/internal/domain/registers/stock"
	"stockledger/internal/domain/reports"
)

// Repositories is what a storage backend provides.
type Repositories struct {
	TxManager tx.ReadOnlyManager

	Catalogs catalogs.Repositories
	Balances stock.Repository

	StockIns       stock_in.Repository
	StockOuts      stock_out.Repository
	StockTransfers stock_transfer.Repository
	StockTakes     stock_take.Repository

	Reports reports.Repository
}

// Options tune the assembled services.
type Options struct {
	// Recorder observes document transitions; optional.
	Recorder documents.Recorder
	// Now overrides the clock; optional.
	Now func() time.Time
}

// Services is the full domain surface.
type Services struct {
	Catalogs *catalogs.Directory
	Balances *stock.Service
	Engine   *posting.Engine

	StockIns       *stock_in.Service
	StockOuts      *stock_out.Service
	StockTransfers *stock_transfer.Service
	StockTakes     *stock_take.Service

	Reports *reports.Service
}

// NewServices wires the domain services.
func NewServices(repos Repositories, opts Options) *Services {
	directory := catalogs.NewDirectory(repos.Catalogs, repos.TxManager)
	balances := stock.NewService(repos.Balances)
	engine := posting.NewEngine(balances)

	return &Services{
		Catalogs: directory,
		Balances: balances,
		Engine:   engine,

		StockIns: stock_in.NewService(documents.LifecycleConfig[*stock_in.StockIn]{
			Repo: repos.StockIns, Engine: engine, Catalogs: directory,
			TxManager: repos.TxManager, Recorder: opts.Recorder, Now: opts.Now,
		}),
		StockOuts: stock_out.NewService(documents.LifecycleConfig[*stock_out.StockOut]{
			Repo: repos.StockOuts, Engine: engine, Catalogs: directory,
			TxManager: repos.TxManager, Recorder: opts.Recorder, Now: opts.Now,
		}),
		StockTransfers: stock_transfer.NewService(documents.LifecycleConfig[*stock_transfer.StockTransfer]{
			Repo: repos.StockTransfers, Engine: engine, Catalogs: directory,
			TxManager: repos.TxManager, Recorder: opts.Recorder, Now: opts.Now,
		}),
		StockTakes: stock_take.NewService(documents.LifecycleConfig[*stock_take.StockTake]{
			Repo: repos.StockTakes, Engine: engine, Catalogs: directory,
			TxManager: repos.TxManager, Recorder: opts.Recorder, Now: opts.Now,
		}, balances),

		Reports: reports.NewService(repos.Reports, balances, repos.TxManager),
	}
}
