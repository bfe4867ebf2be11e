package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xavierca1/ls-leads/internal/auth"
	"github.com/xavierca1/ls-leads/internal/entity"
)

type LoginUseCase struct {
	UoW    entity.UnitOfWork
	Tokens TokenGenerator
	Now    func() time.Time
}

func NewLoginUseCase(uow entity.UnitOfWork, tokens TokenGenerator) *LoginUseCase {
	return &LoginUseCase{UoW: uow, Tokens: tokens, Now: time.Now}
}

var errInvalidCredentials = &DomainError{Code: CodeUnauthenticated, Message: "email ou senha inválidos"}

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs...)
	}

	repos := uc.UoW.Repositories()
	user, err := repos.Users.FindByEmail(ctx, input.Email)
	if errors.Is(err, entity.ErrUserNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, technical("login", err)
	}
	if !auth.CheckPassword(user.PasswordHash, input.Password) {
		return nil, errInvalidCredentials
	}
	if !user.Active {
		return nil, &DomainError{Code: CodeUnauthenticated, Message: "usuário inativo"}
	}

	now := uc.Now()
	user.LastLoginAt = &now
	if err := repos.Users.Update(ctx, user); err != nil {
		return nil, technical("login", err)
	}

	token, expiresAt, err := uc.Tokens.Generate(user)
	if err != nil {
		return nil, technical("login", err)
	}
	return &LoginOutput{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
