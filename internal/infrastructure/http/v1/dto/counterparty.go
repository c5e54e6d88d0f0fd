package dto

import (
	"stockroom/internal/domain/catalogs/counterparty"
)

// CreateCounterpartyRequest is the request body for creating a counterparty.
type CreateCounterpartyRequest struct {
	Code             string                        `json:"code"`
	Name             string                        `json:"name" binding:"required"`
	Type             counterparty.CounterpartyType `json:"type" binding:"required"`
	ContactPerson    *string                       `json:"contactPerson"`
	Phone            *string                       `json:"phone"`
	Email            *string                       `json:"email"`
	Address          *string                       `json:"address"`
	PaymentTermsDays int                           `json:"paymentTermsDays"`
	LeadTimeDays     int                           `json:"leadTimeDays"`
	Comment          *string                       `json:"comment"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCounterpartyRequest) ToEntity() *counterparty.Counterparty {
	cp := counterparty.NewCounterparty(r.Code, r.Name, r.Type)
	cp.ContactPerson = r.ContactPerson
	cp.Phone = r.Phone
	cp.Email = r.Email
	cp.Address = r.Address
	if r.PaymentTermsDays > 0 {
		cp.PaymentTermsDays = r.PaymentTermsDays
	}
	cp.LeadTimeDays = r.LeadTimeDays
	cp.Comment = r.Comment
	return cp
}

// UpdateCounterpartyRequest is the request body for updating a counterparty.
type UpdateCounterpartyRequest struct {
	Name             string                        `json:"name" binding:"required"`
	Type             counterparty.CounterpartyType `json:"type" binding:"required"`
	ContactPerson    *string                       `json:"contactPerson"`
	Phone            *string                       `json:"phone"`
	Email            *string                       `json:"email"`
	Address          *string                       `json:"address"`
	PaymentTermsDays int                           `json:"paymentTermsDays"`
	LeadTimeDays     int                           `json:"leadTimeDays"`
	IsActive         *bool                         `json:"isActive"`
	Comment          *string                       `json:"comment"`
	Version          int                           `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateCounterpartyRequest) ApplyTo(cp *counterparty.Counterparty) {
	cp.Name = r.Name
	cp.Type = r.Type
	cp.ContactPerson = r.ContactPerson
	cp.Phone = r.Phone
	cp.Email = r.Email
	cp.Address = r.Address
	if r.PaymentTermsDays > 0 {
		cp.PaymentTermsDays = r.PaymentTermsDays
	}
	cp.LeadTimeDays = r.LeadTimeDays
	if r.IsActive != nil {
		cp.IsActive = *r.IsActive
	}
	cp.Comment = r.Comment
	cp.Version = r.Version
}
