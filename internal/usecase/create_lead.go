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

const reasonLeadCreated = "Lead criado"

type CreateLeadUseCase struct {
	UoW     entity.UnitOfWork
	Queue   QueueProducerInterface
	Metrics MetricsRecorder
	Log     logger.Logger
	Now     func() time.Time
}

func NewCreateLeadUseCase(uow entity.UnitOfWork, producer QueueProducerInterface, metrics MetricsRecorder, log logger.Logger) *CreateLeadUseCase {
	return &CreateLeadUseCase{UoW: uow, Queue: producer, Metrics: metrics, Log: log, Now: time.Now}
}

func (uc *CreateLeadUseCase) Execute(ctx context.Context, actor auth.Actor, input CreateLeadInput) (*entity.Lead, error) {
	// Indicação e prospecção têm papéis diferentes autorizados.
	action := permission.LeadCreate
	if input.IsProspeccao {
		action = permission.ProspeccaoCreate
	}
	if err := requirePermission(actor, action); err != nil {
		return nil, err
	}

	// Enums e UF chegam em qualquer caixa, como no PUT.
	input.Urgency = strings.ToUpper(strings.TrimSpace(input.Urgency))
	input.Size = strings.ToUpper(strings.TrimSpace(input.Size))
	input.State = strings.ToUpper(strings.TrimSpace(input.State))
	if errs := validateStruct(input); len(errs) > 0 {
		return nil, validationFailed(errs...)
	}

	now := uc.Now()
	cnpj := OnlyDigits(input.CNPJ)
	responsavelID := strings.TrimSpace(input.ResponsavelID)
	if responsavelID == "" && input.IsProspeccao && actor.Role == entity.RoleGerente {
		responsavelID = actor.ID
	}

	var (
		lead     *entity.Lead
		company  *entity.Company
		assignee *entity.User
	)

	err := runInTx(ctx, uc.UoW, "create lead", func(repos entity.Repositories) error {
		var err error
		company, err = uc.upsertCompany(ctx, repos, cnpj, input, now)
		if err != nil {
			return err
		}

		if responsavelID != "" {
			assignee, err = repos.Users.FindByID(ctx, responsavelID)
			if errors.Is(err, entity.ErrUserNotFound) {
				return validationFailed(ValidationError{Field: "responsavelId", Message: "user not found"})
			}
			if err != nil {
				return err
			}
			if !assignee.CanOwnLeads() {
				return validationFailed(ValidationError{Field: "responsavelId", Message: "must be an active ADMIN or GERENTE"})
			}
		}

		contact := entity.NewContact(company.ID, strings.TrimSpace(input.ContactName), now)
		contact.Email = textOrNil(input.ContactEmail)
		contact.Phone = normalizeDigits(&input.ContactPhone)
		contact.Whatsapp = contact.Phone
		contact.Position = textOrNil(input.ContactPosition)
		contact.Consentimento = input.Consentimento
		contact.IsPrimary = true
		if err := repos.Contacts.Create(ctx, contact); err != nil {
			return err
		}

		lead = entity.NewLead(company.ID, actor.ID, input.IsProspeccao, now)
		lead.ContactID = &contact.ID
		lead.Source = textOrNil(input.Source)
		lead.Necessity = textOrNil(input.Necessity)
		lead.Notes = textOrNil(input.Notes)
		lead.ImageURL = textOrNil(input.ImageURL)
		if u := textOrNil(input.Urgency); u != nil {
			urgency := entity.Urgency(*u)
			lead.Urgency = &urgency
		}

		if assignee != nil {
			lead.ResponsavelID = &assignee.ID
			if _, err := lifecycle.Apply(lead, lifecycle.Request{Target: entity.StatusAtribuida}, now); err != nil {
				return err
			}
		}
		lead.LeadScore = ComputeLeadScore(lead, company, contact)

		if err := repos.Leads.Create(ctx, lead); err != nil {
			return err
		}

		reason := reasonLeadCreated
		if err := repos.History.AppendStatus(ctx, entity.NewStatusHistory(lead.ID, nil, lead.Status, &reason, actor.ID, now)); err != nil {
			return err
		}

		if assignee != nil {
			return repos.History.AppendAssignment(ctx, entity.NewAssignment(lead.ID, assignee.ID, actor.ID, nil, now))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	kind := "indicacao"
	if lead.IsProspeccao {
		kind = "prospeccao"
	}
	uc.Metrics.LeadCreated(kind)
	uc.Log.WithFields(map[string]interface{}{
		"lead_id": lead.ID,
		"cnpj":    cnpj,
		"status":  lead.Status,
		"actor":   actor.ID,
	}).Info("lead criado")

	// Auto-atribuição de prospecção não precisa de aviso.
	if assignee != nil && assignee.ID != actor.ID {
		publishAssignment(ctx, uc.Queue, uc.Log, queue.LeadAssignedPayload{
			LeadID:           lead.ID,
			CompanyName:      company.RazaoSocial,
			ResponsavelID:    assignee.ID,
			ResponsavelName:  assignee.Name,
			ResponsavelEmail: assignee.Email,
			AssignedByName:   actor.Name,
			AssignedAt:       now,
		})
	}

	return lead, nil
}

func (uc *CreateLeadUseCase) upsertCompany(ctx context.Context, repos entity.Repositories, cnpj string, input CreateLeadInput, now time.Time) (*entity.Company, error) {
	company, err := repos.Companies.FindByCNPJ(ctx, cnpj)
	switch {
	case errors.Is(err, entity.ErrCompanyNotFound):
		company = entity.NewCompany(cnpj, strings.TrimSpace(input.RazaoSocial), now)
		applyCompanyFields(company, input)
		if err := repos.Companies.Create(ctx, company); err != nil {
			return nil, err
		}
		return company, nil
	case err != nil:
		return nil, err
	}

	active, err := repos.Leads.FindActiveByCompany(ctx, company.ID)
	if err == nil {
		return nil, conflict("já existe um lead ativo para este CNPJ (" + string(active.Status) + ")")
	}
	if !errors.Is(err, entity.ErrLeadNotFound) {
		return nil, err
	}

	company.RazaoSocial = strings.TrimSpace(input.RazaoSocial)
	applyCompanyFields(company, input)
	company.UpdatedAt = now
	if err := repos.Companies.Update(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func applyCompanyFields(c *entity.Company, input CreateLeadInput) {
	c.NomeFantasia = textOrNil(input.NomeFantasia)
	c.City = textOrNil(input.City)
	c.State = textOrNil(input.State)
	c.Segment = textOrNil(input.Segment)
	c.Size = textOrNil(input.Size)
	c.Website = textOrNil(input.Website)
	c.Consentimento = input.Consentimento
}

// publishAssignment roda depois do commit; falha de fila só é logada.
func publishAssignment(ctx context.Context, producer QueueProducerInterface, log logger.Logger, payload queue.LeadAssignedPayload) {
	if producer == nil {
		return
	}
	if err := producer.PublishLeadAssigned(ctx, payload); err != nil {
		log.WithFields(map[string]interface{}{
			"lead_id": payload.LeadID,
			"error":   err.Error(),
		}).Warn("falha ao publicar evento de atribuição")
	}
}
