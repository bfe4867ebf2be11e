package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xavierca1/ls-leads/internal/auth"
	"github.com/xavierca1/ls-leads/internal/entity"
	"github.com/xavierca1/ls-leads/internal/infra/logger"
	"github.com/xavierca1/ls-leads/internal/permission"
)

type RecordInteractionUseCase struct {
	UoW entity.UnitOfWork
	Log logger.Logger
	Now func() time.Time
}

func NewRecordInteractionUseCase(uow entity.UnitOfWork, log logger.Logger) *RecordInteractionUseCase {
	return &RecordInteractionUseCase{UoW: uow, Log: log, Now: time.Now}
}

func (uc *RecordInteractionUseCase) Execute(ctx context.Context, actor auth.Actor, leadID string, input RecordInteractionInput) (*entity.Interaction, error) {
	if err := requirePermission(actor, permission.InteractionCreate); err != nil {
		return nil, err
	}

	itype, result, errs := parseInteractionKind(&input.Type, input.Result, true)
	if input.DurationMinutes != nil && *input.DurationMinutes < 0 {
		errs = append(errs, ValidationError{Field: "durationMinutes", Message: "must be greater than or equal to 0"})
	}
	if len(errs) > 0 {
		return nil, validationFailed(errs...)
	}

	now := uc.Now()
	var interaction *entity.Interaction

	err := runInTx(ctx, uc.UoW, "record interaction", func(repos entity.Repositories) error {
		lead, err := loadAccessibleLead(ctx, repos, actor, leadID)
		if err != nil {
			return err
		}

		authorID := strings.TrimSpace(input.AuthorID)
		switch {
		case authorID != "":
			if _, err := repos.Users.FindByID(ctx, authorID); err != nil {
				if errors.Is(err, entity.ErrUserNotFound) {
					return validationFailed(ValidationError{Field: "authorId", Message: "user not found"})
				}
				return err
			}
		case lead.ResponsavelID != nil:
			authorID = *lead.ResponsavelID
		default:
			authorID = lead.RegistradorID
		}

		interaction = entity.NewInteraction(lead.ID, *itype, authorID, entity.OriginUser, now)
		interaction.Result = result
		interaction.Notes = normalizeText(input.Notes)
		interaction.NextStep = normalizeText(input.NextStep)
		interaction.NextStepDate = input.NextStepDate
		interaction.DurationMinutes = input.DurationMinutes
		if input.OccurredAt != nil {
			interaction.OccurredAt = *input.OccurredAt
		}
		return repos.Interactions.Create(ctx, interaction)
	})
	if err != nil {
		return nil, err
	}

	uc.Log.WithFields(map[string]interface{}{
		"lead_id":        leadID,
		"interaction_id": interaction.ID,
		"type":           interaction.Type,
	}).Debug("interação registrada")
	return interaction, nil
}

type AmendInteractionUseCase struct {
	UoW entity.UnitOfWork
	Log logger.Logger
}

func NewAmendInteractionUseCase(uow entity.UnitOfWork, log logger.Logger) *AmendInteractionUseCase {
	return &AmendInteractionUseCase{UoW: uow, Log: log}
}

func (uc *AmendInteractionUseCase) Execute(ctx context.Context, actor auth.Actor, leadID string, input AmendInteractionInput) (*entity.Interaction, error) {
	if err := requirePermission(actor, permission.InteractionUpdate); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.InteractionID) == "" {
		return nil, validationFailed(ValidationError{Field: "interactionId", Message: "is required"})
	}

	itype, result, errs := parseInteractionKind(input.Type, input.Result, false)
	if input.DurationMinutes != nil && *input.DurationMinutes < 0 {
		errs = append(errs, ValidationError{Field: "durationMinutes", Message: "must be greater than or equal to 0"})
	}
	if len(errs) > 0 {
		return nil, validationFailed(errs...)
	}

	var interaction *entity.Interaction
	err := runInTx(ctx, uc.UoW, "amend interaction", func(repos entity.Repositories) error {
		if _, err := loadAccessibleLead(ctx, repos, actor, leadID); err != nil {
			return err
		}

		var err error
		interaction, err = repos.Interactions.FindByID(ctx, input.InteractionID)
		if err != nil {
			return translate(err)
		}
		if interaction.LeadID != leadID {
			return notFound("interação não encontrada para este lead")
		}
		if interaction.Origin == entity.OriginAudit {
			return forbidden("registros de auditoria não podem ser alterados")
		}

		if itype != nil {
			interaction.Type = *itype
		}
		if input.Result != nil {
			interaction.Result = result
		}
		if input.Notes != nil {
			interaction.Notes = normalizeText(input.Notes)
		}
		if input.NextStep != nil {
			interaction.NextStep = normalizeText(input.NextStep)
		}
		if input.NextStepDate != nil {
			interaction.NextStepDate = input.NextStepDate
		}
		if input.DurationMinutes != nil {
			interaction.DurationMinutes = input.DurationMinutes
		}
		return repos.Interactions.Update(ctx, interaction)
	})
	if err != nil {
		return nil, err
	}
	return interaction, nil
}

// parseInteractionKind valida tipo e resultado; resultado vazio vira nulo.
func parseInteractionKind(rawType, rawResult *string, typeRequired bool) (*entity.InteractionType, *entity.InteractionResult, []ValidationError) {
	var errs []ValidationError
	var itype *entity.InteractionType

	if t := normalizeText(rawType); t != nil {
		v := entity.InteractionType(strings.ToUpper(*t))
		if v.Valid() {
			itype = &v
		} else {
			errs = append(errs, ValidationError{Field: "type", Message: "must be one of: LIGACAO WHATSAPP EMAIL REUNIAO NOTA"})
		}
	} else if typeRequired || rawType != nil {
		errs = append(errs, ValidationError{Field: "type", Message: "is required"})
	}

	var result *entity.InteractionResult
	if r := normalizeText(rawResult); r != nil {
		v := entity.InteractionResult(strings.ToUpper(*r))
		if v.Valid() {
			result = &v
		} else {
			errs = append(errs, ValidationError{Field: "result", Message: "must be one of: SEM_RESPOSTA CAIXA_POSTAL OCUPADO CONTATO_REALIZADO CONTATO_SUCESSO"})
		}
	}
	return itype, result, errs
}
