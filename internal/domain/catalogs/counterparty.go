package catalogs

import (
	"context"
	"net/mail"
	"strings"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
)

// Contact holds the contact fields shared by suppliers and customers.
type Contact struct {
	Phone string `db:"phone" json:"phone,omitempty"`
	Email string `db:"email" json:"email,omitempty"`
}

func (c Contact) validate() error {
	if c.Email == "" {
		return nil
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return apperror.NewValidation("invalid email").
			WithDetail("field", "email")
	}
	return nil
}

// Supplier delivers goods recorded by stock-in documents.
type Supplier struct {
	entity.BaseCatalog
	Contact

	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

// NewSupplier creates a new Supplier with required fields.
func NewSupplier(code, name string) *Supplier {
	return &Supplier{
		BaseCatalog: entity.NewBaseCatalog(),
		Code:        strings.TrimSpace(code),
		Name:        strings.TrimSpace(name),
	}
}

// Validate implements entity.Validatable interface.
func (s *Supplier) Validate(ctx context.Context) error {
	if err := validateCodeName(s.Code, s.Name); err != nil {
		return err
	}
	return s.Contact.validate()
}

// NaturalKey implements domain.CatalogEntity.
func (s *Supplier) NaturalKey() (string, string) {
	return "code", s.Code
}

// Customer receives goods recorded by stock-out documents.
type Customer struct {
	entity.BaseCatalog
	Contact

	Code    string `db:"code" json:"code"`
	Name    string `db:"name" json:"name"`
	Address string `db:"address" json:"address,omitempty"`
}

// NewCustomer creates a new Customer with required fields.
func NewCustomer(code, name string) *Customer {
	return &Customer{
		BaseCatalog: entity.NewBaseCatalog(),
		Code:        strings.TrimSpace(code),
		Name:        strings.TrimSpace(name),
	}
}

// Validate implements entity.Validatable interface.
func (c *Customer) Validate(ctx context.Context) error {
	if err := validateCodeName(c.Code, c.Name); err != nil {
		return err
	}
	return c.Contact.validate()
}

// NaturalKey implements domain.CatalogEntity.
func (c *Customer) NaturalKey() (string, string) {
	return "code", c.Code
}
