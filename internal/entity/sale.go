package entity

import (
	"context"
	"time"
)

type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "Pending"
	SaleStatusCompleted SaleStatus = "Completed"
	SaleStatusCancelled SaleStatus = "Cancelled"
)

func (s SaleStatus) Valid() bool {
	return s == SaleStatusPending || s == SaleStatusCompleted || s == SaleStatusCancelled
}

// ConvertedLeadProduct é o produto padrão da venda gerada por uma conversão.
const ConvertedLeadProduct = "Converted Lead"

// Entidade: Sale
type Sale struct {
	ID         string     `json:"id"`
	CustomerID string     `json:"customer_id,omitempty"`
	LeadID     string     `json:"lead_id,omitempty"`
	Customer   string     `json:"customer"` // nome para exibição
	Product    string     `json:"product"`
	Amount     Amount     `json:"amount"`
	Date       time.Time  `json:"date"`
	Status     SaleStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CustomerKey é a chave de agrupamento nas análises: o ID quando existe,
// senão o nome (vendas antigas sem FK).
func (s *Sale) CustomerKey() string {
	if s.CustomerID != "" {
		return "id:" + s.CustomerID
	}
	return "name:" + s.Customer
}

// NewSaleFromLead monta a venda pendente de um lead convertido.
func NewSaleFromLead(lead *Lead, customerID string, now time.Time) *Sale {
	return &Sale{
		CustomerID: customerID,
		LeadID:     lead.ID,
		Customer:   lead.Name,
		Product:    ConvertedLeadProduct,
		Amount:     lead.Value,
		Date:       now,
		Status:     SaleStatusPending,
	}
}

type SalePatch struct {
	CustomerID *string     `json:"customer_id,omitempty"`
	Customer   *string     `json:"customer,omitempty"`
	Product    *string     `json:"product,omitempty"`
	Amount     *Amount     `json:"amount,omitempty"`
	Date       *time.Time  `json:"date,omitempty"`
	Status     *SaleStatus `json:"status,omitempty"`
}

func (p SalePatch) Apply(s *Sale) {
	if p.CustomerID != nil {
		s.CustomerID = *p.CustomerID
	}
	if p.Customer != nil {
		s.Customer = *p.Customer
	}
	if p.Product != nil {
		s.Product = *p.Product
	}
	if p.Amount != nil {
		s.Amount = *p.Amount
	}
	if p.Date != nil {
		s.Date = *p.Date
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
}

type SaleRepositoryInterface interface {
	FetchAll(ctx context.Context) ([]*Sale, error)
	FindByID(ctx context.Context, id string) (*Sale, error)
	Insert(ctx context.Context, sale *Sale) (*Sale, error)
	Update(ctx context.Context, id string, patch SalePatch) (*Sale, error)
	Delete(ctx context.Context, id string) (bool, error)
}
