package stock_in

import (
	"context"
	"time"

	appctx "stockledger/internal/core/context"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain"
	"stockledger/internal/domain/documents"
)

// Repository persists stock-in documents.
type Repository = documents.Repository[*StockIn]

// CreateRequest is the input for Create.
type CreateRequest struct {
	Code         string                `json:"code"`
	WarehouseID  id.ID                 `json:"warehouseId"`
	SupplierID   *id.ID                `json:"supplierId,omitempty"`
	Note         string                `json:"note,omitempty"`
	ReceivedDate *time.Time            `json:"receivedDate,omitempty"`
	StockInType  string                `json:"stockInType,omitempty"`
	Items        []documents.ItemInput `json:"items"`
}

// UpdateRequest changes a draft. Absent fields are left untouched;
// Items, when present, replaces the whole item set.
type UpdateRequest struct {
	documents.HeaderPatch
	WarehouseID  *id.ID                    `json:"warehouseId,omitempty"`
	SupplierID   types.Nullable[id.ID]     `json:"supplierId"`
	ReceivedDate types.Nullable[time.Time] `json:"receivedDate"`
	StockInType  *string                   `json:"stockInType,omitempty"`
	Items        *[]documents.ItemInput    `json:"items,omitempty"`
}

// Service provides business operations for stock-in documents.
type Service struct {
	lc *documents.Lifecycle[*StockIn]
}

// NewService creates a stock-in service. cfg.Kind is forced to stock_in.
func NewService(cfg documents.LifecycleConfig[*StockIn]) *Service {
	cfg.Kind = documents.KindStockIn
	return &Service{lc: documents.NewLifecycle(cfg)}
}

// Lifecycle exposes the underlying controller (hooks, clock).
func (s *Service) Lifecycle() *documents.Lifecycle[*StockIn] {
	return s.lc
}

// Create stores a new draft.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*StockIn, error) {
	doc := New(req.Code, appctx.GetUserID(ctx), req.WarehouseID)
	doc.SupplierID = req.SupplierID
	doc.Note = req.Note
	doc.ReceivedDate = req.ReceivedDate
	doc.StockInType = req.StockInType
	doc.Items = documents.LineItems(req.Items)

	if err := s.lc.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Update changes a draft.
func (s *Service) Update(ctx context.Context, docID id.ID, req UpdateRequest) (*StockIn, error) {
	return s.lc.Update(ctx, docID, func(_ context.Context, doc *StockIn) error {
		req.HeaderPatch.ApplyTo(&doc.BaseDocument)
		if req.WarehouseID != nil {
			doc.WarehouseID = *req.WarehouseID
		}
		req.SupplierID.ApplyTo(&doc.SupplierID)
		req.ReceivedDate.ApplyTo(&doc.ReceivedDate)
		if req.StockInType != nil {
			doc.StockInType = *req.StockInType
		}
		if req.Items != nil {
			doc.Items = documents.LineItems(*req.Items)
		}
		return nil
	})
}

// Confirm adds the received quantities to the warehouse.
func (s *Service) Confirm(ctx context.Context, docID id.ID) (*StockIn, error) {
	return s.lc.Confirm(ctx, docID)
}

func (s *Service) Remove(ctx context.Context, docID id.ID) (documents.RemoveOutcome, error) {
	return s.lc.Remove(ctx, docID)
}

func (s *Service) PermanentRemove(ctx context.Context, docID id.ID) error {
	return s.lc.PermanentRemove(ctx, docID)
}

func (s *Service) Get(ctx context.Context, docID id.ID, includeDeleted bool) (*StockIn, error) {
	return s.lc.Get(ctx, docID, includeDeleted)
}

func (s *Service) List(ctx context.Context, filter documents.ListFilter) (domain.ListResult[*StockIn], error) {
	return s.lc.List(ctx, filter)
}
