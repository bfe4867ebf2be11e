package usecase

import (
	"context"

	"github.com/xavierca1/ls-leads/internal/auth"
	"github.com/xavierca1/ls-leads/internal/entity"
	"github.com/xavierca1/ls-leads/internal/lifecycle"
	"github.com/xavierca1/ls-leads/internal/permission"
)

type GetLeadUseCase struct {
	UoW entity.UnitOfWork
}

func NewGetLeadUseCase(uow entity.UnitOfWork) *GetLeadUseCase {
	return &GetLeadUseCase{UoW: uow}
}

func (uc *GetLeadUseCase) Execute(ctx context.Context, actor auth.Actor, leadID string) (*LeadDetail, error) {
	if err := requirePermission(actor, permission.LeadReadOwn); err != nil {
		return nil, err
	}

	repos := uc.UoW.Repositories()
	lead, err := loadAccessibleLead(ctx, repos, actor, leadID)
	if err != nil {
		return nil, technical("get lead", err)
	}

	detail := &LeadDetail{
		Lead:                 *lead,
		AvailableTransitions: lifecycle.AvailableTransitions(lead.Status),
	}

	if detail.Company, err = repos.Companies.FindByID(ctx, lead.CompanyID); err != nil {
		return nil, technical("get lead company", translate(err))
	}
	if lead.ContactID != nil {
		if detail.Contact, err = repos.Contacts.FindByID(ctx, *lead.ContactID); err != nil {
			return nil, technical("get lead contact", translate(err))
		}
	}

	registrador, err := repos.Users.FindByID(ctx, lead.RegistradorID)
	if err != nil {
		return nil, technical("get lead registrador", translate(err))
	}
	detail.Registrador = summarize(registrador)

	if lead.ResponsavelID != nil {
		responsavel, err := repos.Users.FindByID(ctx, *lead.ResponsavelID)
		if err != nil {
			return nil, technical("get lead responsavel", translate(err))
		}
		detail.Responsavel = summarize(responsavel)
	}

	if detail.Interactions, err = repos.Interactions.ListByLead(ctx, lead.ID); err != nil {
		return nil, technical("list interactions", err)
	}
	if detail.StatusHistory, err = repos.History.StatusByLead(ctx, lead.ID); err != nil {
		return nil, technical("list status history", err)
	}
	if detail.Assignments, err = repos.History.AssignmentsByLead(ctx, lead.ID); err != nil {
		return nil, technical("list assignments", err)
	}
	detail.InteractionCount = len(detail.Interactions)

	return detail, nil
}
