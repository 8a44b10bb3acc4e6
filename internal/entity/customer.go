package entity

import (
	"context"
	"time"
	// IMPORTANTE: NÃO adicione imports de usecase ou infra aqui!
)

type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "Active"
	CustomerStatusInactive CustomerStatus = "Inactive"
)

func (s CustomerStatus) Valid() bool {
	return s == CustomerStatusActive || s == CustomerStatusInactive
}

// Entidade: Customer
type Customer struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone,omitempty"`
	Company   string         `json:"company,omitempty"`
	Location  string         `json:"location,omitempty"`
	Status    CustomerStatus `json:"status"`
	JoinDate  time.Time      `json:"join_date"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewCustomerFromLead cria o cliente ativo que nasce de uma conversão.
func NewCustomerFromLead(lead *Lead, now time.Time) *Customer {
	return &Customer{
		Name:     lead.Name,
		Email:    lead.Email,
		Phone:    lead.Phone,
		Company:  lead.Company,
		Location: lead.Location,
		Status:   CustomerStatusActive,
		JoinDate: now,
	}
}

type CustomerPatch struct {
	Name     *string         `json:"name,omitempty"`
	Email    *string         `json:"email,omitempty"`
	Phone    *string         `json:"phone,omitempty"`
	Company  *string         `json:"company,omitempty"`
	Location *string         `json:"location,omitempty"`
	Status   *CustomerStatus `json:"status,omitempty"`
	JoinDate *time.Time      `json:"join_date,omitempty"`
}

func (p CustomerPatch) Apply(c *Customer) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Company != nil {
		c.Company = *p.Company
	}
	if p.Location != nil {
		c.Location = *p.Location
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.JoinDate != nil {
		c.JoinDate = *p.JoinDate
	}
}

type CustomerRepositoryInterface interface {
	FetchAll(ctx context.Context) ([]*Customer, error)
	FindByID(ctx context.Context, id string) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	Insert(ctx context.Context, c *Customer) (*Customer, error)
	Update(ctx context.Context, id string, patch CustomerPatch) (*Customer, error)
	Delete(ctx context.Context, id string) (bool, error)
}
