package document_repo

import (
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/documents"
	"stockledger/internal/domain/documents/stock_in"
	"stockledger/internal/domain/documents/stock_out"
	"stockledger/internal/domain/documents/stock_take"
	"stockledger/internal/domain/documents/stock_transfer"
	"stockledger/internal/infrastructure/storage/postgres"
)

const (
	stockInsTable           = "doc_stock_ins"
	stockInLinesTable       = "doc_stock_in_lines"
	stockOutsTable          = "doc_stock_outs"
	stockOutLinesTable      = "doc_stock_out_lines"
	stockTransfersTable     = "doc_stock_transfers"
	stockTransferLinesTable = "doc_stock_transfer_lines"
	stockTakesTable         = "doc_stock_takes"
	stockTakeLinesTable     = "doc_stock_take_lines"
)

var (
	lineItemCols  = postgres.ExtractDBColumns[entity.LineItem]()
	countItemCols = postgres.ExtractDBColumns[stock_take.CountItem]()
)

func lineItemOwner(l entity.LineItem) id.ID { return l.DocumentID }

// NewStockInRepo creates the stock-in repository.
func NewStockInRepo(db *postgres.TxManager) *BaseDocumentRepo[*stock_in.StockIn, entity.LineItem] {
	return NewBaseDocumentRepo(
		db,
		documents.KindStockIn,
		stockInsTable,
		postgres.ExtractDBColumns[stock_in.StockIn](),
		[]string{"warehouse_id"},
		Lines[*stock_in.StockIn, entity.LineItem]{
			Table:   stockInLinesTable,
			Columns: lineItemCols,
			Get:     func(d *stock_in.StockIn) []entity.LineItem { return d.Items },
			Set:     func(d *stock_in.StockIn, l []entity.LineItem) { d.Items = nonNil(l) },
			Owner:   lineItemOwner,
		},
		func() *stock_in.StockIn { return &stock_in.StockIn{} },
	)
}

// NewStockOutRepo creates the stock-out repository.
func NewStockOutRepo(db *postgres.TxManager) *BaseDocumentRepo[*stock_out.StockOut, entity.LineItem] {
	return NewBaseDocumentRepo(
		db,
		documents.KindStockOut,
		stockOutsTable,
		postgres.ExtractDBColumns[stock_out.StockOut](),
		[]string{"warehouse_id"},
		Lines[*stock_out.StockOut, entity.LineItem]{
			Table:   stockOutLinesTable,
			Columns: lineItemCols,
			Get:     func(d *stock_out.StockOut) []entity.LineItem { return d.Items },
			Set:     func(d *stock_out.StockOut, l []entity.LineItem) { d.Items = nonNil(l) },
			Owner:   lineItemOwner,
		},
		func() *stock_out.StockOut { return &stock_out.StockOut{} },
	)
}

// NewStockTransferRepo creates the stock-transfer repository. The warehouse
// filter matches either side of the transfer.
func NewStockTransferRepo(db *postgres.TxManager) *BaseDocumentRepo[*stock_transfer.StockTransfer, entity.LineItem] {
	return NewBaseDocumentRepo(
		db,
		documents.KindStockTransfer,
		stockTransfersTable,
		postgres.ExtractDBColumns[stock_transfer.StockTransfer](),
		[]string{"from_warehouse_id", "to_warehouse_id"},
		Lines[*stock_transfer.StockTransfer, entity.LineItem]{
			Table:   stockTransferLinesTable,
			Columns: lineItemCols,
			Get:     func(d *stock_transfer.StockTransfer) []entity.LineItem { return d.Items },
			Set:     func(d *stock_transfer.StockTransfer, l []entity.LineItem) { d.Items = nonNil(l) },
			Owner:   lineItemOwner,
		},
		func() *stock_transfer.StockTransfer { return &stock_transfer.StockTransfer{} },
	)
}

// NewStockTakeRepo creates the stock-take repository.
func NewStockTakeRepo(db *postgres.TxManager) *BaseDocumentRepo[*stock_take.StockTake, stock_take.CountItem] {
	return NewBaseDocumentRepo(
		db,
		documents.KindStockTake,
		stockTakesTable,
		postgres.ExtractDBColumns[stock_take.StockTake](),
		[]string{"warehouse_id"},
		Lines[*stock_take.StockTake, stock_take.CountItem]{
			Table:   stockTakeLinesTable,
			Columns: countItemCols,
			Get:     func(d *stock_take.StockTake) []stock_take.CountItem { return d.Items },
			Set:     func(d *stock_take.StockTake, l []stock_take.CountItem) { d.Items = nonNil(l) },
			Owner:   func(l stock_take.CountItem) id.ID { return l.DocumentID },
		},
		func() *stock_take.StockTake { return &stock_take.StockTake{} },
	)
}

func nonNil[L any](lines []L) []L {
	if lines == nil {
		return []L{}
	}
	return lines
}

var (
	_ stock_in.Repository       = (*BaseDocumentRepo[*stock_in.StockIn, entity.LineItem])(nil)
	_ stock_out.Repository      = (*BaseDocumentRepo[*stock_out.StockOut, entity.LineItem])(nil)
	_ stock_transfer.Repository = (*BaseDocumentRepo[*stock_transfer.StockTransfer, entity.LineItem])(nil)
	_ stock_take.Repository     = (*BaseDocumentRepo[*stock_take.StockTake, stock_take.CountItem])(nil)
)
