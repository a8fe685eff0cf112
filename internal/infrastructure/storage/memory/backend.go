package memory

import (
	"stockledger/internal/app"
	"stockledger/internal/domain/catalogs"
	"stockledger/internal/domain/documents"
	"stockledger/internal/domain/documents/stock_in"
	"stockledger/internal/domain/documents/stock_out"
	"stockledger/internal/domain/documents/stock_take"
	"stockledger/internal/domain/documents/stock_transfer"
)

// Backend bundles every repository over one Store.
type Backend struct {
	Store     *Store
	TxManager *TxManager

	Balances   *BalanceRepo
	Warehouses *CatalogRepo[*catalogs.Warehouse]
	Products   *CatalogRepo[*catalogs.Product]
	Suppliers  *CatalogRepo[*catalogs.Supplier]
	Customers  *CatalogRepo[*catalogs.Customer]

	StockIns       *DocumentRepo[*stock_in.StockIn]
	StockOuts      *DocumentRepo[*stock_out.StockOut]
	StockTransfers *DocumentRepo[*stock_transfer.StockTransfer]
	StockTakes     *DocumentRepo[*stock_take.StockTake]

	Reports *ReportRepo
}

// New creates an empty backend.
func New() *Backend {
	s := NewStore()
	b := &Backend{
		Store:     s,
		TxManager: NewTxManager(s),
		Balances:  NewBalanceRepo(s),

		Warehouses: NewCatalogRepo(s, "warehouse", func(w *catalogs.Warehouse) string { return w.Name }),
		Products:   NewCatalogRepo(s, "product", func(p *catalogs.Product) string { return p.Name }),
		Suppliers:  NewCatalogRepo(s, "supplier", func(v *catalogs.Supplier) string { return v.Name }),
		Customers:  NewCatalogRepo(s, "customer", func(c *catalogs.Customer) string { return c.Name }),

		StockIns:       NewDocumentRepo[*stock_in.StockIn](s, documents.KindStockIn),
		StockOuts:      NewDocumentRepo[*stock_out.StockOut](s, documents.KindStockOut),
		StockTransfers: NewDocumentRepo[*stock_transfer.StockTransfer](s, documents.KindStockTransfer),
		StockTakes:     NewDocumentRepo[*stock_take.StockTake](s, documents.KindStockTake),
	}
	b.Reports = NewReportRepo(s, b.Balances, b.Warehouses, b.Products)
	return b
}

// Repositories exposes the backend to app.NewServices.
func (b *Backend) Repositories() app.Repositories {
	return app.Repositories{
		TxManager:      b.TxManager,
		Catalogs:       b.Catalogs(),
		Balances:       b.Balances,
		StockIns:       b.StockIns,
		StockOuts:      b.StockOuts,
		StockTransfers: b.StockTransfers,
		StockTakes:     b.StockTakes,
		Reports:        b.Reports,
	}
}

// Catalogs returns the master-data repositories.
func (b *Backend) Catalogs() catalogs.Repositories {
	return catalogs.Repositories{
		Warehouses: b.Warehouses,
		Products:   b.Products,
		Suppliers:  b.Suppliers,
		Customers:  b.Customers,
	}
}
