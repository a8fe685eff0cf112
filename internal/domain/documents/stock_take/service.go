package stock_take

import (
	"context"

	appctx "stockledger/internal/core/context"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain"
	"stockledger/internal/domain/documents"
	"stockledger/internal/domain/registers/stock"
)

// Repository persists stock-take documents.
type Repository = documents.Repository[*StockTake]

// BalanceReader reads the current balance used for the system snapshot.
type BalanceReader interface {
	Get(ctx context.Context, key stock.Key) (stock.Balance, error)
}

// CreateRequest is the input for Create.
type CreateRequest struct {
	Code        string       `json:"code"`
	WarehouseID id.ID        `json:"warehouseId"`
	Note        string       `json:"note,omitempty"`
	Items       []CountInput `json:"items"`
}

// UpdateRequest changes a draft. Every update re-snapshots system quantities.
type UpdateRequest struct {
	documents.HeaderPatch
	WarehouseID *id.ID        `json:"warehouseId,omitempty"`
	Items       *[]CountInput `json:"items,omitempty"`
}

// VarianceLine compares the count of one product with the ledger.
type VarianceLine struct {
	ProductID      id.ID          `json:"productId"`
	SystemQuantity types.Quantity `json:"systemQuantity"`
	ActualQuantity types.Quantity `json:"actualQuantity"`
	Difference     types.Quantity `json:"difference"`
}

// Variance is the reconciliation record of a stock-take.
type Variance struct {
	DocumentID  id.ID          `json:"documentId"`
	Code        string         `json:"code"`
	Status      entity.Status  `json:"status"`
	WarehouseID id.ID          `json:"warehouseId"`
	Lines       []VarianceLine `json:"lines"`
	// Surplus sums positive differences, Shortage the absolute negative ones.
	Surplus  types.Quantity `json:"surplus"`
	Shortage types.Quantity `json:"shortage"`
}

// Service provides business operations for stock-take documents.
type Service struct {
	lc       *documents.Lifecycle[*StockTake]
	balances BalanceReader
}

// NewService creates a stock-take service and registers the snapshot hooks.
func NewService(cfg documents.LifecycleConfig[*StockTake], balances BalanceReader) *Service {
	cfg.Kind = documents.KindStockTake
	s := &Service{lc: documents.NewLifecycle(cfg), balances: balances}
	s.lc.Hooks().OnBeforeCreate(s.snapshot)
	s.lc.Hooks().OnBeforeUpdate(s.snapshot)
	return s
}

func (s *Service) Lifecycle() *documents.Lifecycle[*StockTake] {
	return s.lc
}

// snapshot runs inside the create/update transaction.
func (s *Service) snapshot(ctx context.Context, doc *StockTake) error {
	return doc.Snapshot(func(productID id.ID) (types.Quantity, error) {
		b, err := s.balances.Get(ctx, stock.Key{WarehouseID: doc.WarehouseID, ProductID: productID})
		if err != nil {
			return types.ZeroQuantity(), err
		}
		return b.Quantity, nil
	})
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*StockTake, error) {
	doc := New(req.Code, appctx.GetUserID(ctx), req.WarehouseID)
	doc.Note = req.Note
	doc.Items = CountItems(req.Items)

	if err := s.lc.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) Update(ctx context.Context, docID id.ID, req UpdateRequest) (*StockTake, error) {
	return s.lc.Update(ctx, docID, func(_ context.Context, doc *StockTake) error {
		req.HeaderPatch.ApplyTo(&doc.BaseDocument)
		if req.WarehouseID != nil {
			doc.WarehouseID = *req.WarehouseID
		}
		if req.Items != nil {
			doc.Items = CountItems(*req.Items)
		}
		return nil
	})
}

// Confirm only flips the status; balances are untouched.
func (s *Service) Confirm(ctx context.Context, docID id.ID) (*StockTake, error) {
	return s.lc.Confirm(ctx, docID)
}

func (s *Service) Remove(ctx context.Context, docID id.ID) (documents.RemoveOutcome, error) {
	return s.lc.Remove(ctx, docID)
}

func (s *Service) PermanentRemove(ctx context.Context, docID id.ID) error {
	return s.lc.PermanentRemove(ctx, docID)
}

func (s *Service) Get(ctx context.Context, docID id.ID, includeDeleted bool) (*StockTake, error) {
	return s.lc.Get(ctx, docID, includeDeleted)
}

func (s *Service) List(ctx context.Context, filter documents.ListFilter) (domain.ListResult[*StockTake], error) {
	return s.lc.List(ctx, filter)
}

// Variance reports the recorded differences of a stock-take. Read-only.
func (s *Service) Variance(ctx context.Context, docID id.ID) (*Variance, error) {
	doc, err := s.lc.Get(ctx, docID, false)
	if err != nil {
		return nil, err
	}

	v := &Variance{
		DocumentID:  doc.ID,
		Code:        doc.Code,
		Status:      doc.Status,
		WarehouseID: doc.WarehouseID,
		Lines:       make([]VarianceLine, 0, len(doc.Items)),
		Surplus:     types.ZeroQuantity(),
		Shortage:    types.ZeroQuantity(),
	}
	for _, it := range doc.Items {
		v.Lines = append(v.Lines, VarianceLine{
			ProductID:      it.ProductID,
			SystemQuantity: it.SystemQuantity,
			ActualQuantity: it.ActualQuantity,
			Difference:     it.Difference,
		})
		switch {
		case it.Difference.IsPositive():
			v.Surplus = v.Surplus.Add(it.Difference)
		case it.Difference.IsNegative():
			v.Shortage = v.Shortage.Add(it.Difference.Abs())
		}
	}
	return v, nil
}
