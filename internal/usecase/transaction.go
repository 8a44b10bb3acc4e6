package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/xavierca1/ligue-crm/internal/logger"
)

// Transaction é uma saga: operações em ordem e, se uma falhar, as
// compensações das anteriores rodam em ordem inversa.
// A compensação de índice i desfaz a operação de índice i.
type Transaction struct {
	operations    []Operation
	compensations []Compensation
	log           logger.Logger
}

type Operation struct {
	Name string
	Fn   func(context.Context) error
}

type Compensation struct {
	Name string
	Fn   func(context.Context) error
}

// SagaError descreve qual operação falhou e se o rollback foi completo.
type SagaError struct {
	Operation          string
	Index              int
	Err                error
	CompensationErrors []*CompensationError
}

type CompensationError struct {
	Name string
	Err  error
}

func (e *CompensationError) Error() string {
	return fmt.Sprintf("compensation '%s': %v", e.Name, e.Err)
}

func (e *CompensationError) Unwrap() error {
	return e.Err
}

func (e *SagaError) Error() string {
	msg := fmt.Sprintf("operation '%s' failed: %v (rolled back %d operations)", e.Operation, e.Err, e.Index)
	if len(e.CompensationErrors) > 0 {
		msg += fmt.Sprintf(", %d compensation(s) failed", len(e.CompensationErrors))
	}
	return msg
}

func (e *SagaError) Unwrap() error {
	return e.Err
}

// Compensated é true quando todas as compensações rodaram sem erro.
func (e *SagaError) Compensated() bool {
	return len(e.CompensationErrors) == 0
}

// CompensationFailed diz se a compensação com esse nome falhou.
func (e *SagaError) CompensationFailed(name string) bool {
	for _, ce := range e.CompensationErrors {
		if ce.Name == name {
			return true
		}
	}
	return false
}

func (e *SagaError) CompensationErr() error {
	errs := make([]error, 0, len(e.CompensationErrors))
	for _, ce := range e.CompensationErrors {
		errs = append(errs, ce)
	}
	return errors.Join(errs...)
}

func NewTransaction(log logger.Logger) *Transaction {
	if log == nil {
		log = logger.Nop()
	}
	return &Transaction{
		operations:    []Operation{},
		compensations: []Compensation{},
		log:           log,
	}
}

func (t *Transaction) AddOperation(name string, fn func(context.Context) error) {
	t.operations = append(t.operations, Operation{name, fn})
}

func (t *Transaction) AddCompensation(name string, fn func(context.Context) error) {
	t.compensations = append(t.compensations, Compensation{name, fn})
}

// Execute devolve *SagaError quando alguma operação falha.
func (t *Transaction) Execute(ctx context.Context) error {
	for i, op := range t.operations {
		if err := op.Fn(ctx); err != nil {
			t.log.Warn("saga operation failed", "operation", op.Name, "error", err)
			return &SagaError{
				Operation:          op.Name,
				Index:              i,
				Err:                err,
				CompensationErrors: t.rollback(ctx, i),
			}
		}
	}
	return nil
}

func (t *Transaction) rollback(ctx context.Context, failedAtIndex int) []*CompensationError {
	// rollback roda mesmo com o request cancelado
	ctx = context.WithoutCancel(ctx)

	var errs []*CompensationError
	for i := failedAtIndex - 1; i >= 0; i-- {
		if i >= len(t.compensations) {
			continue
		}
		comp := t.compensations[i]
		if comp.Fn == nil {
			continue
		}
		if err := comp.Fn(ctx); err != nil {
			t.log.Error("compensation failed, inconsistency risk", "compensation", comp.Name, "error", err)
			errs = append(errs, &CompensationError{Name: comp.Name, Err: err})
		}
	}
	return errs
}
