package catalog_repo

import (
	"stockledger/internal/domain/catalogs"
	"stockledger/internal/infrastructure/storage/postgres"
)

const (
	warehousesTable = "cat_warehouses"
	productsTable   = "cat_products"
	suppliersTable  = "cat_suppliers"
	customersTable  = "cat_customers"
)

func NewWarehouseRepo(db *postgres.TxManager) *BaseCatalogRepo[*catalogs.Warehouse] {
	return NewBaseCatalogRepo(db, "warehouse", warehousesTable,
		postgres.ExtractDBColumns[catalogs.Warehouse](), "code", "name",
		func() *catalogs.Warehouse { return &catalogs.Warehouse{} })
}

func NewProductRepo(db *postgres.TxManager) *BaseCatalogRepo[*catalogs.Product] {
	return NewBaseCatalogRepo(db, "product", productsTable,
		postgres.ExtractDBColumns[catalogs.Product](), "sku", "name",
		func() *catalogs.Product { return &catalogs.Product{} })
}

func NewSupplierRepo(db *postgres.TxManager) *BaseCatalogRepo[*catalogs.Supplier] {
	return NewBaseCatalogRepo(db, "supplier", suppliersTable,
		postgres.ExtractDBColumns[catalogs.Supplier](), "code", "name",
		func() *catalogs.Supplier { return &catalogs.Supplier{} })
}

func NewCustomerRepo(db *postgres.TxManager) *BaseCatalogRepo[*catalogs.Customer] {
	return NewBaseCatalogRepo(db, "customer", customersTable,
		postgres.ExtractDBColumns[catalogs.Customer](), "code", "name",
		func() *catalogs.Customer { return &catalogs.Customer{} })
}

// NewRepositories creates all master-data repositories.
func NewRepositories(db *postgres.TxManager) catalogs.Repositories {
	return catalogs.Repositories{
		Warehouses: NewWarehouseRepo(db),
		Products:   NewProductRepo(db),
		Suppliers:  NewSupplierRepo(db),
		Customers:  NewCustomerRepo(db),
	}
}
