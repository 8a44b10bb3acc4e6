package entity

import (
	"context"
	"time"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

// LeadStatuses na ordem do funil.
var LeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusConverted,
	LeadStatusLost,
}

func (s LeadStatus) Valid() bool {
	for _, st := range LeadStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Entidade: Lead
type Lead struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Company        string     `json:"company,omitempty"`
	Location       string     `json:"location,omitempty"`
	Status         LeadStatus `json:"status"`
	Source         string     `json:"source,omitempty"`
	Value          Amount     `json:"value"`
	Score          int        `json:"score"`
	AssignedTo     string     `json:"assigned_to,omitempty"`
	CreatedDate    time.Time  `json:"created_date"`
	ConversionDate *time.Time `json:"conversion_date,omitempty"`
	LastContacted  *time.Time `json:"last_contacted,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (l *Lead) IsConverted() bool {
	return l.Status == LeadStatusConverted
}

// LeadPatch é um update parcial: só campos não-nil são aplicados.
type LeadPatch struct {
	Name          *string     `json:"name,omitempty"`
	Email         *string     `json:"email,omitempty"`
	Phone         *string     `json:"phone,omitempty"`
	Company       *string     `json:"company,omitempty"`
	Location      *string     `json:"location,omitempty"`
	Status        *LeadStatus `json:"status,omitempty"`
	Source        *string     `json:"source,omitempty"`
	Value         *Amount     `json:"value,omitempty"`
	Score         *int        `json:"score,omitempty"`
	AssignedTo    *string     `json:"assigned_to,omitempty"`
	LastContacted *time.Time  `json:"last_contacted,omitempty"`

	// Só o workflow de conversão preenche; não vem do JSON.
	ConversionDate *time.Time `json:"-"`
}

// Apply copia os campos presentes no patch para o lead.
func (p LeadPatch) Apply(l *Lead) {
	if p.Name != nil {
		l.Name = *p.Name
	}
	if p.Email != nil {
		l.Email = *p.Email
	}
	if p.Phone != nil {
		l.Phone = *p.Phone
	}
	if p.Company != nil {
		l.Company = *p.Company
	}
	if p.Location != nil {
		l.Location = *p.Location
	}
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.Source != nil {
		l.Source = *p.Source
	}
	if p.Value != nil {
		l.Value = *p.Value
	}
	if p.Score != nil {
		l.Score = *p.Score
	}
	if p.AssignedTo != nil {
		l.AssignedTo = *p.AssignedTo
	}
	if p.LastContacted != nil {
		t := *p.LastContacted
		l.LastContacted = &t
	}
	if p.ConversionDate != nil {
		t := *p.ConversionDate
		l.ConversionDate = &t
	}
}

type LeadRepositoryInterface interface {
	FetchAll(ctx context.Context) ([]*Lead, error)
	FindByID(ctx context.Context, id string) (*Lead, error)
	Insert(ctx context.Context, lead *Lead) (*Lead, error)
	Update(ctx context.Context, id string, patch LeadPatch) (*Lead, error)
	// Replace sobrescreve a linha inteira (usado na compensação da conversão).
	Replace(ctx context.Context, lead *Lead) error
	Delete(ctx context.Context, id string) (bool, error)
}
