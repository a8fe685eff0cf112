package stock_transfer

import (
	"context"

	appctx "stockledger/internal/core/context"
	"stockledger/internal/core/id"
	"stockledger/internal/domain"
	"stockledger/internal/domain/documents"
)

// Repository persists transfer documents.
type Repository = documents.Repository[*StockTransfer]

// CreateRequest is the input for Create.
type CreateRequest struct {
	Code            string                `json:"code"`
	FromWarehouseID id.ID                 `json:"fromWarehouseId"`
	ToWarehouseID   id.ID                 `json:"toWarehouseId"`
	Note            string                `json:"note,omitempty"`
	Items           []documents.ItemInput `json:"items"`
}

// UpdateRequest changes a draft. Items, when present, replaces the item set.
type UpdateRequest struct {
	documents.HeaderPatch
	FromWarehouseID *id.ID                 `json:"fromWarehouseId,omitempty"`
	ToWarehouseID   *id.ID                 `json:"toWarehouseId,omitempty"`
	Items           *[]documents.ItemInput `json:"items,omitempty"`
}

// Service provides business operations for transfer documents.
type Service struct {
	lc *documents.Lifecycle[*StockTransfer]
}

// NewService creates a transfer service.
func NewService(cfg documents.LifecycleConfig[*StockTransfer]) *Service {
	cfg.Kind = documents.KindStockTransfer
	return &Service{lc: documents.NewLifecycle(cfg)}
}

func (s *Service) Lifecycle() *documents.Lifecycle[*StockTransfer] {
	return s.lc
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*StockTransfer, error) {
	doc := New(req.Code, appctx.GetUserID(ctx), req.FromWarehouseID, req.ToWarehouseID)
	doc.Note = req.Note
	doc.Items = documents.LineItems(req.Items)

	if err := s.lc.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) Update(ctx context.Context, docID id.ID, req UpdateRequest) (*StockTransfer, error) {
	return s.lc.Update(ctx, docID, func(_ context.Context, doc *StockTransfer) error {
		req.HeaderPatch.ApplyTo(&doc.BaseDocument)
		if req.FromWarehouseID != nil {
			doc.FromWarehouseID = *req.FromWarehouseID
		}
		if req.ToWarehouseID != nil {
			doc.ToWarehouseID = *req.ToWarehouseID
		}
		if req.Items != nil {
			doc.Items = documents.LineItems(*req.Items)
		}
		return nil
	})
}

// Confirm moves the quantities. Both endpoints are adjusted in one
// transaction; the source must cover every line.
func (s *Service) Confirm(ctx context.Context, docID id.ID) (*StockTransfer, error) {
	return s.lc.Confirm(ctx, docID)
}

func (s *Service) Remove(ctx context.Context, docID id.ID) (documents.RemoveOutcome, error) {
	return s.lc.Remove(ctx, docID)
}

// PermanentRemove moves confirmed quantities back to the source.
func (s *Service) PermanentRemove(ctx context.Context, docID id.ID) error {
	return s.lc.PermanentRemove(ctx, docID)
}

func (s *Service) Get(ctx context.Context, docID id.ID, includeDeleted bool) (*StockTransfer, error) {
	return s.lc.Get(ctx, docID, includeDeleted)
}

func (s *Service) List(ctx context.Context, filter documents.ListFilter) (domain.ListResult[*StockTransfer], error) {
	return s.lc.List(ctx, filter)
}
