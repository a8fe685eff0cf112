package catalogs

import (
	"context"

	"stockledger/internal/core/id"
	"stockledger/internal/core/tx"
	"stockledger/internal/domain"
)

// Lookup resolves references held by stock documents.
// Each method returns a NotFound AppError for unknown ids.
type Lookup interface {
	FindWarehouse(ctx context.Context, id id.ID) (*Warehouse, error)
	FindProduct(ctx context.Context, id id.ID) (*Product, error)
	FindSupplier(ctx context.Context, id id.ID) (*Supplier, error)
	FindCustomer(ctx context.Context, id id.ID) (*Customer, error)
}

// Repositories groups the per-entity stores.
type Repositories struct {
	Warehouses domain.CatalogRepository[*Warehouse]
	Products   domain.CatalogRepository[*Product]
	Suppliers  domain.CatalogRepository[*Supplier]
	Customers  domain.CatalogRepository[*Customer]
}

// Directory exposes the master-data services and implements Lookup.
type Directory struct {
	Warehouses *domain.CatalogService[*Warehouse]
	Products   *domain.CatalogService[*Product]
	Suppliers  *domain.CatalogService[*Supplier]
	Customers  *domain.CatalogService[*Customer]
}

var _ Lookup = (*Directory)(nil)

// NewDirectory wires a catalog service per entity.
func NewDirectory(repos Repositories, txManager tx.Manager) *Directory {
	return &Directory{
		Warehouses: domain.NewCatalogService(repos.Warehouses, txManager, "warehouse"),
		Products:   domain.NewCatalogService(repos.Products, txManager, "product"),
		Suppliers:  domain.NewCatalogService(repos.Suppliers, txManager, "supplier"),
		Customers:  domain.NewCatalogService(repos.Customers, txManager, "customer"),
	}
}

func (d *Directory) FindWarehouse(ctx context.Context, id id.ID) (*Warehouse, error) {
	return d.Warehouses.GetByID(ctx, id)
}

func (d *Directory) FindProduct(ctx context.Context, id id.ID) (*Product, error) {
	return d.Products.GetByID(ctx, id)
}

func (d *Directory) FindSupplier(ctx context.Context, id id.ID) (*Supplier, error) {
	return d.Suppliers.GetByID(ctx, id)
}

func (d *Directory) FindCustomer(ctx context.Context, id id.ID) (*Customer, error) {
	return d.Customers.GetByID(ctx, id)
}
