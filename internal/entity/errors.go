package entity

import "errors"

var (
	ErrLeadNotFound        = errors.New("lead not found")
	ErrCompanyNotFound     = errors.New("company not found")
	ErrContactNotFound     = errors.New("contact not found")
	ErrInteractionNotFound = errors.New("interaction not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrCNPJAlreadyExists   = errors.New("cnpj already exists")
)
