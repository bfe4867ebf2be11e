package usecase

import (
	"context"
	"strings"

	"github.com/xavierca1/ls-leads/internal/auth"
	"github.com/xavierca1/ls-leads/internal/entity"
	"github.com/xavierca1/ls-leads/internal/permission"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ListLeadsUseCase struct {
	UoW entity.UnitOfWork
}

func NewListLeadsUseCase(uow entity.UnitOfWork) *ListLeadsUseCase {
	return &ListLeadsUseCase{UoW: uow}
}

func (uc *ListLeadsUseCase) Execute(ctx context.Context, actor auth.Actor, input ListLeadsInput) (*ListLeadsOutput, error) {
	if err := requirePermission(actor, permission.LeadReadOwn); err != nil {
		return nil, err
	}

	status, err := parseStatusFilter(input.Status)
	if err != nil {
		return nil, err
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	// O escopo do papel vem antes de qualquer filtro do usuário.
	q := entity.LeadQuery{
		Scope:          permission.ScopeFor(actor.Role, actor.ID),
		Search:         strings.TrimSpace(input.Search),
		Status:         status,
		ProspeccaoOnly: input.Prospeccao,
		Offset:         (page - 1) * limit,
		Limit:          limit,
	}

	out := &ListLeadsOutput{Data: []entity.LeadListItem{}, Page: page, Limit: limit}
	if q.Scope.Denies() {
		return out, nil
	}

	rows, total, err := uc.UoW.Repositories().Leads.List(ctx, q)
	if err != nil {
		return nil, technical("list leads", err)
	}
	if rows != nil {
		out.Data = rows
	}
	out.Total = total
	out.TotalPages = (total + limit - 1) / limit
	return out, nil
}

// parseStatusFilter aceita "", "all" ou um status válido.
func parseStatusFilter(raw string) (entity.LeadStatus, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return "", nil
	}
	s := entity.LeadStatus(strings.ToUpper(raw))
	if !s.Valid() {
		return "", validationFailed(ValidationError{Field: "status", Message: "must be all or one of: PENDENTE ATRIBUIDA EM_CONTATO QUALIFICADA ENCERRADA INATIVO"})
	}
	return s, nil
}
