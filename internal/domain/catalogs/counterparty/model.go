// Package counterparty provides the Counterparty catalog.
// Counterparties are the suppliers purchase orders buy from and the
// customers sales orders sell to.
package counterparty

import (
	"context"
	"regexp"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/entity"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// CounterpartyType defines the type of counterparty.
type CounterpartyType string

const (
	TypeCustomer CounterpartyType = "customer"
	TypeSupplier CounterpartyType = "supplier"
	TypeBoth     CounterpartyType = "both"
)

// Counterparty represents a business partner.
type Counterparty struct {
	entity.Catalog

	// Type defines whether this is a customer, supplier, or both
	Type CounterpartyType `db:"type" json:"type"`

	// ContactPerson is the primary contact name
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`

	// Phone is the primary contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Email is the primary contact email
	Email *string `db:"email" json:"email,omitempty"`

	// Address is the billing/shipping address
	Address *string `db:"address" json:"address,omitempty"`

	// PaymentTermsDays is the invoice due offset in days
	PaymentTermsDays int `db:"payment_terms_days" json:"paymentTermsDays"`

	// LeadTimeDays is the expected supplier delivery time in days
	LeadTimeDays int `db:"lead_time_days" json:"leadTimeDays"`

	// IsActive indicates whether new documents may reference this counterparty
	IsActive bool `db:"is_active" json:"isActive"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewCounterparty creates a new Counterparty with required fields.
func NewCounterparty(code, name string, cpType CounterpartyType) *Counterparty {
	return &Counterparty{
		Catalog:          entity.NewCatalog(code, name),
		Type:             cpType,
		PaymentTermsDays: 30,
		IsActive:         true,
	}
}

// Validate implements entity.Validatable interface.
func (c *Counterparty) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidCounterpartyType(c.Type) {
		return apperror.NewValidation("invalid counterparty type").
			WithDetail("field", "type").
			WithDetail("value", string(c.Type))
	}

	if c.Email != nil && *c.Email != "" && !emailRE.MatchString(*c.Email) {
		return apperror.NewValidation("invalid email").
			WithDetail("field", "email").
			WithDetail("value", *c.Email)
	}

	if c.PaymentTermsDays < 0 {
		return apperror.NewValidation("payment terms cannot be negative").
			WithDetail("field", "paymentTermsDays")
	}
	if c.LeadTimeDays < 0 {
		return apperror.NewValidation("lead time cannot be negative").
			WithDetail("field", "leadTimeDays")
	}

	return nil
}

// IsSupplier reports whether purchase orders may reference this counterparty.
func (c *Counterparty) IsSupplier() bool {
	return c.Type == TypeSupplier || c.Type == TypeBoth
}

// IsCustomer reports whether sales orders may reference this counterparty.
func (c *Counterparty) IsCustomer() bool {
	return c.Type == TypeCustomer || c.Type == TypeBoth
}

func isValidCounterpartyType(t CounterpartyType) bool {
	switch t {
	case TypeCustomer, TypeSupplier, TypeBoth:
		return true
	}
	return false
}
