package dto

import (
	"stockledger/internal/core/types"
	"stockledger/internal/domain/catalogs"
)

// WarehouseRequest creates a warehouse.
type WarehouseRequest struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (r WarehouseRequest) Build() *catalogs.Warehouse {
	w := catalogs.NewWarehouse(r.Code, r.Name)
	w.Address = r.Address
	return w
}

// ProductRequest creates a product.
type ProductRequest struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Unit        string          `json:"unit"`
	MinQuantity *types.Quantity `json:"minQuantity"`
	MaxQuantity *types.Quantity `json:"maxQuantity"`
}

func (r ProductRequest) Build() *catalogs.Product {
	p := catalogs.NewProduct(r.SKU, r.Name, r.Unit)
	if r.MinQuantity != nil {
		p.MinQuantity = *r.MinQuantity
	}
	p.MaxQuantity = r.MaxQuantity
	return p
}

// SupplierRequest creates a supplier.
type SupplierRequest struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

func (r SupplierRequest) Build() *catalogs.Supplier {
	s := catalogs.NewSupplier(r.Code, r.Name)
	s.Contact = catalogs.Contact{Phone: r.Phone, Email: r.Email}
	return s
}

// CustomerRequest creates a customer.
type CustomerRequest struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

func (r CustomerRequest) Build() *catalogs.Customer {
	c := catalogs.NewCustomer(r.Code, r.Name)
	c.Contact = catalogs.Contact{Phone: r.Phone, Email: r.Email}
	c.Address = r.Address
	return c
}
