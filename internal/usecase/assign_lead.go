package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xavierca1/ls-leads/internal/auth"
	"github.com/xavierca1/ls-leads/internal/entity"
	"github.com/xavierca1/ls-leads/internal/infra/logger"
	"github.com/xavierca1/ls-leads/internal/infra/queue"
	"github.com/xavierca1/ls-leads/internal/lifecycle"
	"github.com/xavierca1/ls-leads/internal/permission"
)

const reasonLeadAssigned = "Lead atribuído"

type AssignLeadUseCase struct {
	UoW     entity.UnitOfWork
	Queue   QueueProducerInterface
	Metrics MetricsRecorder
	Log     logger.Logger
	Now     func() time.Time
}

func NewAssignLeadUseCase(uow entity.UnitOfWork, producer QueueProducerInterface, metrics MetricsRecorder, log logger.Logger) *AssignLeadUseCase {
	return &AssignLeadUseCase{UoW: uow, Queue: producer, Metrics: metrics, Log: log, Now: time.Now}
}

func (uc *AssignLeadUseCase) Execute(ctx context.Context, actor auth.Actor, leadID string, input AssignLeadInput) (*entity.Lead, error) {
	if err := requirePermission(actor, permission.LeadAssign); err != nil {
		return nil, err
	}
	input.ResponsavelID = strings.TrimSpace(input.ResponsavelID)
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs...)
	}

	now := uc.Now()
	notes := normalizeText(input.Notes)
	var (
		lead     *entity.Lead
		assignee *entity.User
		company  *entity.Company
		change   lifecycle.Change
	)

	err := runInTx(ctx, uc.UoW, "assign lead", func(repos entity.Repositories) error {
		var err error
		lead, err = repos.Leads.FindByID(ctx, leadID)
		if err != nil {
			return translate(err)
		}
		// ALIADO só atribui os leads que ele mesmo registrou.
		if actor.Role != entity.RoleAdmin && lead.RegistradorID != actor.ID {
			return forbidden("você só pode atribuir leads que você criou")
		}

		assignee, err = repos.Users.FindByID(ctx, input.ResponsavelID)
		if errors.Is(err, entity.ErrUserNotFound) {
			return notFound("responsável não encontrado")
		}
		if err != nil {
			return err
		}
		if !assignee.CanOwnLeads() {
			return validationFailed(ValidationError{Field: "responsavelId", Message: "must be an active ADMIN or GERENTE"})
		}

		company, err = repos.Companies.FindByID(ctx, lead.CompanyID)
		if err != nil {
			return translate(err)
		}

		previous := lead.Status
		lead.ResponsavelID = &assignee.ID
		if lead.Status == entity.StatusPendente {
			change, err = lifecycle.Apply(lead, lifecycle.Request{Target: entity.StatusAtribuida}, now)
			if err != nil {
				return transitionError(err)
			}
		} else {
			change = lifecycle.Change{From: previous, To: previous}
		}
		lead.AssignedAt = &now
		lead.UpdatedAt = now

		if err := repos.Leads.Update(ctx, lead); err != nil {
			return err
		}
		if change.Moved() {
			reason := reasonLeadAssigned
			if err := repos.History.AppendStatus(ctx, entity.NewStatusHistory(lead.ID, &previous, change.To, &reason, actor.ID, now)); err != nil {
				return err
			}
		}
		return repos.History.AppendAssignment(ctx, entity.NewAssignment(lead.ID, assignee.ID, actor.ID, notes, now))
	})
	if err != nil {
		return nil, err
	}

	uc.Metrics.LeadAssigned()
	if change.Moved() {
		uc.Metrics.StatusChanged(change.From, change.To)
	}
	uc.Log.WithFields(map[string]interface{}{
		"lead_id":        lead.ID,
		"responsavel_id": assignee.ID,
		"actor":          actor.ID,
	}).Info("lead atribuído")

	payload := queue.LeadAssignedPayload{
		LeadID:           lead.ID,
		CompanyName:      company.RazaoSocial,
		ResponsavelID:    assignee.ID,
		ResponsavelName:  assignee.Name,
		ResponsavelEmail: assignee.Email,
		AssignedByName:   actor.Name,
		AssignedAt:       now,
	}
	if notes != nil {
		payload.Notes = *notes
	}
	publishAssignment(ctx, uc.Queue, uc.Log, payload)

	return lead, nil
}
