package usecase

import (
	"context"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/events"
)

// SalesNotifier recebe o aviso de "vendas mudaram" (events.Bus implementa).
type SalesNotifier interface {
	EmitSalesChanged(evt events.SalesChanged)
}

// ConversionAlerter avisa a equipe quando uma conversão fica inconsistente.
type ConversionAlerter interface {
	SendPartialConversionAlert(ctx context.Context, lead *entity.Lead, cause error) error
}

// ConversionMetrics conta os desfechos da conversão.
type ConversionMetrics interface {
	RecordConversion(outcome string)
}

const (
	OutcomeConverted         = "converted"
	OutcomeNoop              = "noop"
	OutcomeLeadUpdateFailed  = "lead_update_failed"
	OutcomeSaleFailed        = "sale_failed"
	OutcomePartialConversion = "partial"
)

type noopNotifier struct{}

func (noopNotifier) EmitSalesChanged(events.SalesChanged) {}

type noopMetrics struct{}

func (noopMetrics) RecordConversion(string) {}
