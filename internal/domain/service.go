package domain

import (
	"context"
	"fmt"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/tx"
	"stockledger/pkg/logger"
)

// CatalogEntity is a master-data record with a natural unique key.
type CatalogEntity interface {
	entity.Validatable
	GetID() id.ID
	// NaturalKey returns the unique business key (column name and value).
	NaturalKey() (field, value string)
}

// CatalogFilter contains filtering options for catalog lists.
type CatalogFilter struct {
	// Search matches the natural key or name
	Search string
	Page
}

// CatalogRepository defines persistence operations for master-data records.
type CatalogRepository[T CatalogEntity] interface {
	Create(ctx context.Context, entity T) error

	// GetByID retrieves the record. Inside a transaction implementations
	// take a shared row lock so the record cannot vanish before commit.
	GetByID(ctx context.Context, id id.ID) (T, error)

	ExistsByKey(ctx context.Context, value string) (bool, error)
	List(ctx context.Context, filter CatalogFilter) (ListResult[T], error)
}

// CatalogService provides business logic for catalog entities.
type CatalogService[T CatalogEntity] struct {
	repo       CatalogRepository[T]
	txManager  tx.Manager
	entityName string
}

// NewCatalogService creates a new catalog service.
func NewCatalogService[T CatalogEntity](repo CatalogRepository[T], txManager tx.Manager, entityName string) *CatalogService[T] {
	return &CatalogService[T]{
		repo:       repo,
		txManager:  txManager,
		entityName: entityName,
	}
}

func (s *CatalogService[T]) normalizeGetErr(err error, entityID id.ID) error {
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, entityID.String())
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", entityID.String())
}

// Create validates and stores a new record; the natural key must be unused.
func (s *CatalogService[T]) Create(ctx context.Context, entity T) error {
	if err := entity.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		field, value := entity.NaturalKey()
		exists, err := s.repo.ExistsByKey(ctx, value)
		if err != nil {
			return fmt.Errorf("check %s %s: %w", s.entityName, field, err)
		}
		if exists {
			return apperror.NewDuplicate(s.entityName, field, value)
		}
		if err := s.repo.Create(ctx, entity); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return apperror.Normalize(err)
	}

	logger.Info(ctx, "catalog record created", "entity", s.entityName, "id", entity.GetID())
	return nil
}

// GetByID retrieves a record by ID.
func (s *CatalogService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	entity, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return entity, s.normalizeGetErr(err, entityID)
	}
	return entity, nil
}

// List retrieves records with filtering.
func (s *CatalogService[T]) List(ctx context.Context, filter CatalogFilter) (ListResult[T], error) {
	filter.Page = filter.Page.Normalize()
	res, err := s.repo.List(ctx, filter)
	if err != nil {
		return res, apperror.Normalize(err)
	}
	return res, nil
}
