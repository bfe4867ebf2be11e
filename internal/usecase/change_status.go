package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xavierca1/ls-leads/internal/auth"
	"github.com/xavierca1/ls-leads/internal/entity"
	"github.com/xavierca1/ls-leads/internal/infra/logger"
	"github.com/xavierca1/ls-leads/internal/lifecycle"
	"github.com/xavierca1/ls-leads/internal/permission"
)

type ChangeStatusUseCase struct {
	UoW     entity.UnitOfWork
	Metrics MetricsRecorder
	Log     logger.Logger
	Now     func() time.Time
}

func NewChangeStatusUseCase(uow entity.UnitOfWork, metrics MetricsRecorder, log logger.Logger) *ChangeStatusUseCase {
	return &ChangeStatusUseCase{UoW: uow, Metrics: metrics, Log: log, Now: time.Now}
}

func (uc *ChangeStatusUseCase) Execute(ctx context.Context, actor auth.Actor, leadID string, input ChangeStatusInput) (*entity.Lead, error) {
	// Papel é checado antes de qualquer leitura: ALIADO recebe 403 mesmo para lead inexistente.
	if err := requirePermission(actor, permission.LeadChangeStatus); err != nil {
		return nil, err
	}

	req := lifecycle.Request{
		Target:            entity.LeadStatus(strings.TrimSpace(input.Status)),
		CloseReasonDetail: normalizeText(input.CloseReasonDetail),
	}
	if cr := normalizeText(input.CloseReason); cr != nil {
		reason := entity.CloseReason(*cr)
		req.CloseReason = &reason
		if !permission.HasPermission(actor.Role, permission.LeadClose) {
			return nil, forbidden("sem permissão para encerrar leads")
		}
	}
	if req.Target == "" && req.CloseReason == nil {
		return nil, validationFailed(ValidationError{Field: "status", Message: "is required"})
	}

	now := uc.Now()
	var (
		lead   *entity.Lead
		change lifecycle.Change
	)

	err := runInTx(ctx, uc.UoW, "change lead status", func(repos entity.Repositories) error {
		var err error
		lead, err = loadAccessibleLead(ctx, repos, actor, leadID)
		if err != nil {
			return err
		}

		change, err = lifecycle.Apply(lead, req, now)
		if err != nil {
			return transitionError(err)
		}

		// Fora de PENDENTE o lead precisa de responsável; quem move um lead órfão o assume.
		if lead.ResponsavelID == nil && lead.Status != entity.StatusPendente {
			lead.ResponsavelID = &actor.ID
			if lead.AssignedAt == nil {
				lead.AssignedAt = &now
			}
			note := "Assumido na mudança de status"
			if err := repos.History.AppendAssignment(ctx, entity.NewAssignment(lead.ID, actor.ID, actor.ID, &note, now)); err != nil {
				return err
			}
		}

		if err := repos.Leads.Update(ctx, lead); err != nil {
			return err
		}

		reason := normalizeText(input.Reason)
		if reason == nil {
			reason = req.CloseReasonDetail
		}
		previous := change.From
		return repos.History.AppendStatus(ctx, entity.NewStatusHistory(lead.ID, &previous, change.To, reason, actor.ID, now))
	})
	if err != nil {
		return nil, err
	}

	uc.Metrics.StatusChanged(change.From, change.To)
	uc.Log.WithFields(map[string]interface{}{
		"lead_id": lead.ID,
		"from":    change.From,
		"to":      change.To,
		"actor":   actor.ID,
	}).Info("status do lead alterado")

	return lead, nil
}

func transitionError(err error) error {
	var te *lifecycle.TransitionError
	switch {
	case errors.As(err, &te):
		return &DomainError{Code: CodeInvalidTransition, Message: te.Error()}
	case errors.Is(err, lifecycle.ErrInvalidCloseReason):
		return &DomainError{Code: CodeInvalidCloseReason, Message: err.Error()}
	case errors.Is(err, lifecycle.ErrUnknownStatus):
		return validationFailed(ValidationError{Field: "status", Message: "must be one of: PENDENTE ATRIBUIDA EM_CONTATO QUALIFICADA ENCERRADA INATIVO"})
	default:
		return err
	}
}
