package usecase

import (
	"errors"
	"fmt"
	"strings"
)

const (
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeForbidden          = "FORBIDDEN"
	CodeValidation         = "VALIDATION_ERROR"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeInvalidCloseReason = "INVALID_CLOSE_REASON"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
)

// DomainError é um erro recuperável exibido ao chamador.
type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is compara apenas o código, permitindo errors.Is(err, ErrForbidden).
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

var (
	ErrUnauthenticated = &DomainError{Code: CodeUnauthenticated, Message: "autenticação necessária"}
	ErrForbidden       = &DomainError{Code: CodeForbidden, Message: "sem permissão"}
	ErrNotFound        = &DomainError{Code: CodeNotFound, Message: "recurso não encontrado"}
	ErrConflict        = &DomainError{Code: CodeConflict, Message: "conflito"}
	ErrValidation      = &DomainError{Code: CodeValidation, Message: "dados inválidos"}
	ErrTransition      = &DomainError{Code: CodeInvalidTransition, Message: "transição inválida"}
	ErrCloseReason     = &DomainError{Code: CodeInvalidCloseReason, Message: "motivo de fechamento inválido"}
)

func forbidden(msg string) *DomainError {
	return &DomainError{Code: CodeForbidden, Message: msg}
}

func notFound(msg string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: msg}
}

func conflict(msg string) *DomainError {
	return &DomainError{Code: CodeConflict, Message: msg}
}

func validationFailed(fields ...ValidationError) *DomainError {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.Error())
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: " + strings.Join(parts, ", "),
		Fields:  fields,
	}
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// AsDomainError extrai o DomainError da cadeia, se houver.
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// TechnicalError embrulha falhas de storage e infraestrutura.
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

func technical(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) || IsTechnicalError(err) {
		return err
	}
	return &TechnicalError{Code: "STORAGE_ERROR", Message: op, Err: err}
}
