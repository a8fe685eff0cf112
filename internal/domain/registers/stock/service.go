package stock

import (
	"context"
	"fmt"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/types"
	"stockledger/pkg/logger"
)

// Service provides business operations for the balance register.
// Transactions are managed by the caller (movement engine).
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new balance register service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the current quantity for key (zero if the pair never moved).
func (s *Service) Get(ctx context.Context, key Key) (Balance, error) {
	b, err := s.repo.Get(ctx, key)
	if err != nil {
		return b, fmt.Errorf("get balance: %w", err)
	}
	return b, nil
}

// Adjust locks (or creates) the row for key and applies delta.
// A result below zero is rejected with InsufficientStock and nothing is written.
func (s *Service) Adjust(ctx context.Context, key Key, delta types.Quantity) (Balance, error) {
	current, err := s.repo.LockOrCreate(ctx, key)
	if err != nil {
		return current, fmt.Errorf("lock balance: %w", err)
	}
	if delta.IsZero() {
		return current, nil
	}

	next := current.Quantity.Add(delta)
	if next.IsNegative() {
		return current, apperror.NewInsufficientStock(
			key.WarehouseID.String(),
			key.ProductID.String(),
			delta.Neg().String(),
			current.Quantity.String(),
		)
	}

	current.Quantity = next
	current.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, current); err != nil {
		return current, fmt.Errorf("save balance: %w", err)
	}

	logger.Debug(ctx, "balance adjusted",
		"warehouse_id", key.WarehouseID,
		"product_id", key.ProductID,
		"delta", delta.String(),
		"quantity", next.String(),
	)

	return current, nil
}

// List returns balances matching filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]Balance, error) {
	balances, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	return balances, nil
}
