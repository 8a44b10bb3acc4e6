package usecase

import (
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type CreateLeadInput struct {
	Name          string            `json:"name" validate:"required,min=2,max=200"`
	Email         string            `json:"email" validate:"required,email"`
	Phone         string            `json:"phone" validate:"omitempty,phone"`
	Company       string            `json:"company"`
	Location      string            `json:"location"`
	Status        entity.LeadStatus `json:"status" validate:"omitempty,oneof=new contacted qualified lost"`
	Source        string            `json:"source"`
	Value         entity.Amount     `json:"value" validate:"min=0"`
	Score         int               `json:"score" validate:"min=0,max=100"`
	AssignedTo    string            `json:"assigned_to"`
	CreatedDate   *time.Time        `json:"created_date"`
	LastContacted *time.Time        `json:"last_contacted"`
}

type CreateSaleInput struct {
	CustomerID string            `json:"customer_id"`
	Customer   string            `json:"customer" validate:"required_without=CustomerID"`
	Product    string            `json:"product" validate:"required"`
	Amount     entity.Amount     `json:"amount" validate:"min=0"`
	Date       *time.Time        `json:"date"`
	Status     entity.SaleStatus `json:"status" validate:"omitempty,oneof=Pending Completed Cancelled"`
}

type CreateCustomerInput struct {
	Name     string                `json:"name" validate:"required,min=2,max=200"`
	Email    string                `json:"email" validate:"required,email"`
	Phone    string                `json:"phone" validate:"omitempty,phone"`
	Company  string                `json:"company"`
	Location string                `json:"location"`
	Status   entity.CustomerStatus `json:"status" validate:"omitempty,oneof=Active Inactive"`
	JoinDate *time.Time            `json:"join_date"`
}

type CreateTaskInput struct {
	Title          string              `json:"title" validate:"required,max=200"`
	Description    string              `json:"description"`
	Priority       entity.TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status         entity.TaskStatus   `json:"status" validate:"omitempty,oneof=todo in-progress completed overdue"`
	DueDate        *time.Time          `json:"due_date"`
	AssignedTo     string              `json:"assigned_to"`
	Category       string              `json:"category"`
	EstimatedHours float64             `json:"estimated_hours" validate:"gte=0"`
	ActualHours    float64             `json:"actual_hours" validate:"gte=0"`
}

// ConvertLeadOutput: Sale e Customer só vêm preenchidos quando a atualização
// disparou uma conversão.
type ConvertLeadOutput struct {
	Lead     *entity.Lead     `json:"lead"`
	Sale     *entity.Sale     `json:"sale,omitempty"`
	Customer *entity.Customer `json:"customer,omitempty"`
}
