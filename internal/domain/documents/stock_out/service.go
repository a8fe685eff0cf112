package stock_out

import (
	"context"
	"strings"

	appctx "stockledger/internal/core/context"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
	"stockledger/internal/domain"
	"stockledger/internal/domain/documents"
)

// Repository persists stock-out documents.
type Repository = documents.Repository[*StockOut]

// CreateRequest is the input for Create.
type CreateRequest struct {
	Code          string                `json:"code"`
	WarehouseID   id.ID                 `json:"warehouseId"`
	CustomerID    *id.ID                `json:"customerId,omitempty"`
	Note          string                `json:"note,omitempty"`
	ReceiverName  string                `json:"receiverName,omitempty"`
	ReceiverEmail string                `json:"receiverEmail,omitempty"`
	Items         []documents.ItemInput `json:"items"`
}

// UpdateRequest changes a draft. Items, when present, replaces the item set.
type UpdateRequest struct {
	documents.HeaderPatch
	WarehouseID   *id.ID                 `json:"warehouseId,omitempty"`
	CustomerID    types.Nullable[id.ID]  `json:"customerId"`
	ReceiverName  *string                `json:"receiverName,omitempty"`
	ReceiverEmail *string                `json:"receiverEmail,omitempty"`
	Items         *[]documents.ItemInput `json:"items,omitempty"`
}

// Service provides business operations for stock-out documents.
type Service struct {
	lc *documents.Lifecycle[*StockOut]
}

// NewService creates a stock-out service.
func NewService(cfg documents.LifecycleConfig[*StockOut]) *Service {
	cfg.Kind = documents.KindStockOut
	return &Service{lc: documents.NewLifecycle(cfg)}
}

func (s *Service) Lifecycle() *documents.Lifecycle[*StockOut] {
	return s.lc
}

// Create stores a new draft. Availability is not checked until confirm.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*StockOut, error) {
	doc := New(req.Code, appctx.GetUserID(ctx), req.WarehouseID)
	doc.CustomerID = req.CustomerID
	doc.Note = req.Note
	doc.ReceiverName = strings.TrimSpace(req.ReceiverName)
	doc.ReceiverEmail = strings.TrimSpace(req.ReceiverEmail)
	doc.Items = documents.LineItems(req.Items)

	if err := s.lc.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) Update(ctx context.Context, docID id.ID, req UpdateRequest) (*StockOut, error) {
	return s.lc.Update(ctx, docID, func(_ context.Context, doc *StockOut) error {
		req.HeaderPatch.ApplyTo(&doc.BaseDocument)
		if req.WarehouseID != nil {
			doc.WarehouseID = *req.WarehouseID
		}
		req.CustomerID.ApplyTo(&doc.CustomerID)
		if req.ReceiverName != nil {
			doc.ReceiverName = strings.TrimSpace(*req.ReceiverName)
		}
		if req.ReceiverEmail != nil {
			doc.ReceiverEmail = strings.TrimSpace(*req.ReceiverEmail)
		}
		if req.Items != nil {
			doc.Items = documents.LineItems(*req.Items)
		}
		return nil
	})
}

// Confirm removes the issued quantities; fails with InsufficientStock
// when any (warehouse, product) would go negative.
func (s *Service) Confirm(ctx context.Context, docID id.ID) (*StockOut, error) {
	return s.lc.Confirm(ctx, docID)
}

func (s *Service) Remove(ctx context.Context, docID id.ID) (documents.RemoveOutcome, error) {
	return s.lc.Remove(ctx, docID)
}

func (s *Service) PermanentRemove(ctx context.Context, docID id.ID) error {
	return s.lc.PermanentRemove(ctx, docID)
}

func (s *Service) Get(ctx context.Context, docID id.ID, includeDeleted bool) (*StockOut, error) {
	return s.lc.Get(ctx, docID, includeDeleted)
}

func (s *Service) List(ctx context.Context, filter documents.ListFilter) (domain.ListResult[*StockOut], error) {
	return s.lc.List(ctx, filter)
}
