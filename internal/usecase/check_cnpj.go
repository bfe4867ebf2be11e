package usecase

import (
	"context"
	"errors"

	"github.com/xavierca1/ls-leads/internal/auth"
	"github.com/xavierca1/ls-leads/internal/entity"
)

type CheckCNPJUseCase struct {
	UoW entity.UnitOfWork
}

func NewCheckCNPJUseCase(uow entity.UnitOfWork) *CheckCNPJUseCase {
	return &CheckCNPJUseCase{UoW: uow}
}

// Execute não devolve erro para CNPJ inválido: o chamador recebe valid=false.
func (uc *CheckCNPJUseCase) Execute(ctx context.Context, actor auth.Actor, raw string) (*CheckCNPJOutput, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	cnpj := OnlyDigits(raw)
	if !IsValidCNPJ(cnpj) {
		return &CheckCNPJOutput{Valid: false}, nil
	}
	out := &CheckCNPJOutput{Valid: true}

	repos := uc.UoW.Repositories()
	company, err := repos.Companies.FindByCNPJ(ctx, cnpj)
	if errors.Is(err, entity.ErrCompanyNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, technical("check cnpj", err)
	}
	out.Company = company

	lead, err := repos.Leads.FindActiveByCompany(ctx, company.ID)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, technical("check cnpj active lead", err)
	}

	out.Exists = true
	out.ActiveLead = &ActiveLeadRef{ID: lead.ID, Status: lead.Status}
	if lead.ResponsavelID != nil {
		responsavel, err := repos.Users.FindByID(ctx, *lead.ResponsavelID)
		if err != nil && !errors.Is(err, entity.ErrUserNotFound) {
			return nil, technical("check cnpj responsavel", err)
		}
		if responsavel != nil {
			out.ActiveLead.ResponsavelName = &responsavel.Name
		}
	}
	return out, nil
}
