package usecase

import (
	"errors"
	"fmt"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeLeadUpdateFailed   = "LEAD_UPDATE_FAILED"
	CodeSaleCreationFailed = "SALE_CREATION_FAILED"
	CodePersistence        = "PERSISTENCE_ERROR"
	CodePartialConversion  = "PARTIAL_CONVERSION"
)

// DomainError: erro de regra de negócio, mostrado ao usuário.
type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// HasCode diz se err (ou algo que ele embrulha) é um DomainError com o código.
func HasCode(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}

// TechnicalError: falha de infraestrutura (banco, rede).
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// PartialConversionError: o lead ficou convertido mas a venda não foi criada
// e a compensação também falhou. Lead é o estado já gravado.
type PartialConversionError struct {
	Lead            *entity.Lead
	Err             error
	CompensationErr error
}

func (e *PartialConversionError) Error() string {
	return fmt.Sprintf("lead %s converted but sale not created: %v", e.Lead.ID, e.Err)
}

func (e *PartialConversionError) Unwrap() error {
	return e.Err
}

func validationFailed(fields []ValidationError) *DomainError {
	msg := "validation failed: "
	for i, f := range fields {
		if i > 0 {
			msg += ", "
		}
		msg += f.Field + " (" + f.Message + ")"
	}
	return &DomainError{Code: CodeValidation, Message: msg, Fields: fields}
}

// storeError traduz erros de repositório para a taxonomia dos use cases.
func storeError(err error, action string) error {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return &DomainError{Code: CodeNotFound, Message: action + ": not found", Err: err}
	case errors.Is(err, entity.ErrEmailAlreadyExists):
		return &DomainError{Code: CodeEmailExists, Message: action + ": email already registered", Err: err}
	default:
		return &TechnicalError{Code: CodePersistence, Message: action, Err: err}
	}
}
