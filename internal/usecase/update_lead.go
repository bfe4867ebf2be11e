package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xavierca1/ls-leads/internal/auth"
	"github.com/xavierca1/ls-leads/internal/entity"
	"github.com/xavierca1/ls-leads/internal/infra/logger"
	"github.com/xavierca1/ls-leads/internal/permission"
)

const auditHeader = "Campos atualizados:"

type capability int

const (
	// capOwner: registrador do lead ou gestor.
	capOwner capability = iota + 1
	// capManager: lead:update e acesso ao lead.
	capManager
)

type normalizer func(*string) *string

func upperText(s *string) *string {
	v := normalizeText(s)
	if v == nil {
		return nil
	}
	u := strings.ToUpper(*v)
	return &u
}

// leadRecord agrupa o lead e seus sub-registros editáveis.
type leadRecord struct {
	lead    *entity.Lead
	company *entity.Company
	contact *entity.Contact
}

type fieldRule struct {
	name      string
	requires  capability
	normalize normalizer
	input     func(UpdateLeadInput) *string
	get       func(*leadRecord) *string
	set       func(*leadRecord, *string)
	// validate devolve a mensagem de erro ou "".
	validate func(string) string
}

func oneOf(values ...string) func(string) string {
	return func(v string) string {
		for _, allowed := range values {
			if v == allowed {
				return ""
			}
		}
		return "must be one of: " + strings.Join(values, " ")
	}
}

func phoneRule(v string) string {
	if !IsValidPhone(v) {
		return "must be a valid phone number"
	}
	return ""
}

// updateSchema é a tabela campo -> capacidade mínima consultada genericamente.
var updateSchema = []fieldRule{
	{
		name: "necessity", requires: capManager, normalize: normalizeText,
		input:    func(in UpdateLeadInput) *string { return in.Necessity },
		get:      func(r *leadRecord) *string { return r.lead.Necessity },
		set:      func(r *leadRecord, v *string) { r.lead.Necessity = v },
		validate: tagRule("max=120"),
	},
	{
		name: "urgency", requires: capManager, normalize: upperText,
		input: func(in UpdateLeadInput) *string { return in.Urgency },
		get: func(r *leadRecord) *string {
			if r.lead.Urgency == nil {
				return nil
			}
			s := string(*r.lead.Urgency)
			return &s
		},
		set: func(r *leadRecord, v *string) {
			if v == nil {
				r.lead.Urgency = nil
				return
			}
			u := entity.Urgency(*v)
			r.lead.Urgency = &u
		},
		validate: oneOf("BAIXA", "MEDIA", "ALTA", "IMEDIATA"),
	},
	{
		name: "source", requires: capManager, normalize: normalizeText,
		input:    func(in UpdateLeadInput) *string { return in.Source },
		get:      func(r *leadRecord) *string { return r.lead.Source },
		set:      func(r *leadRecord, v *string) { r.lead.Source = v },
		validate: tagRule("max=120"),
	},
	{
		name: "closeReasonDetail", requires: capManager, normalize: normalizeText,
		input: func(in UpdateLeadInput) *string { return in.CloseReasonDetail },
		get:   func(r *leadRecord) *string { return r.lead.CloseReasonDetail },
		set:   func(r *leadRecord, v *string) { r.lead.CloseReasonDetail = v },
	},
	{
		name: "imageUrl", requires: capManager, normalize: normalizeText,
		input:    func(in UpdateLeadInput) *string { return in.ImageURL },
		get:      func(r *leadRecord) *string { return r.lead.ImageURL },
		set:      func(r *leadRecord, v *string) { r.lead.ImageURL = v },
		validate: tagRule("url"),
	},
	{
		name: "notes", requires: capOwner, normalize: normalizeText,
		input: func(in UpdateLeadInput) *string { return in.Notes },
		get:   func(r *leadRecord) *string { return r.lead.Notes },
		set:   func(r *leadRecord, v *string) { r.lead.Notes = v },
	},
	{
		name: "razaoSocial", requires: capManager, normalize: normalizeText,
		input: func(in UpdateLeadInput) *string { return in.RazaoSocial },
		get:   func(r *leadRecord) *string { return &r.company.RazaoSocial },
		set: func(r *leadRecord, v *string) {
			if v != nil {
				r.company.RazaoSocial = *v
			}
		},
		validate: tagRule("max=255"),
	},
	{
		name: "nomeFantasia", requires: capManager, normalize: normalizeText,
		input:    func(in UpdateLeadInput) *string { return in.NomeFantasia },
		get:      func(r *leadRecord) *string { return r.company.NomeFantasia },
		set:      func(r *leadRecord, v *string) { r.company.NomeFantasia = v },
		validate: tagRule("max=255"),
	},
	{
		name: "city", requires: capManager, normalize: normalizeText,
		input:    func(in UpdateLeadInput) *string { return in.City },
		get:      func(r *leadRecord) *string { return r.company.City },
		set:      func(r *leadRecord, v *string) { r.company.City = v },
		validate: tagRule("max=120"),
	},
	{
		name: "state", requires: capManager, normalize: upperText,
		input:    func(in UpdateLeadInput) *string { return in.State },
		get:      func(r *leadRecord) *string { return r.company.State },
		set:      func(r *leadRecord, v *string) { r.company.State = v },
		validate: tagRule("len=2"),
	},
	{
		name: "segment", requires: capManager, normalize: normalizeText,
		input:    func(in UpdateLeadInput) *string { return in.Segment },
		get:      func(r *leadRecord) *string { return r.company.Segment },
		set:      func(r *leadRecord, v *string) { r.company.Segment = v },
		validate: tagRule("max=60"),
	},
	{
		name: "size", requires: capManager, normalize: upperText,
		input:    func(in UpdateLeadInput) *string { return in.Size },
		get:      func(r *leadRecord) *string { return r.company.Size },
		set:      func(r *leadRecord, v *string) { r.company.Size = v },
		validate: oneOf("MICRO", "PEQUENA", "MEDIA", "GRANDE"),
	},
	{
		name: "website", requires: capManager, normalize: normalizeText,
		input:    func(in UpdateLeadInput) *string { return in.Website },
		get:      func(r *leadRecord) *string { return r.company.Website },
		set:      func(r *leadRecord, v *string) { r.company.Website = v },
		validate: tagRule("max=255"),
	},
	{
		name: "contactName", requires: capManager, normalize: normalizeText,
		input: func(in UpdateLeadInput) *string { return in.ContactName },
		get:   func(r *leadRecord) *string { return &r.contact.Name },
		set: func(r *leadRecord, v *string) {
			if v != nil {
				r.contact.Name = *v
			}
		},
		validate: tagRule("max=200"),
	},
	{
		name: "contactEmail", requires: capManager, normalize: normalizeText,
		input:    func(in UpdateLeadInput) *string { return in.ContactEmail },
		get:      func(r *leadRecord) *string { return r.contact.Email },
		set:      func(r *leadRecord, v *string) { r.contact.Email = v },
		validate: tagRule("email,max=255"),
	},
	{
		name: "contactPhone", requires: capManager, normalize: normalizeDigits,
		input:    func(in UpdateLeadInput) *string { return in.ContactPhone },
		get:      func(r *leadRecord) *string { return r.contact.Phone },
		set:      func(r *leadRecord, v *string) { r.contact.Phone = v },
		validate: phoneRule,
	},
	{
		name: "contactWhatsapp", requires: capManager, normalize: normalizeDigits,
		input:    func(in UpdateLeadInput) *string { return in.ContactWhatsapp },
		get:      func(r *leadRecord) *string { return r.contact.Whatsapp },
		set:      func(r *leadRecord, v *string) { r.contact.Whatsapp = v },
		validate: phoneRule,
	},
	{
		name: "contactPosition", requires: capManager, normalize: normalizeText,
		input:    func(in UpdateLeadInput) *string { return in.ContactPosition },
		get:      func(r *leadRecord) *string { return r.contact.Position },
		set:      func(r *leadRecord, v *string) { r.contact.Position = v },
		validate: tagRule("max=120"),
	},
}

// fieldChange é uma linha do diff de auditoria.
type fieldChange struct {
	field    string
	old, new *string
}

func (c fieldChange) String() string {
	return fmt.Sprintf("%s: %q -> %q", c.field, display(c.old), display(c.new))
}

func display(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}

func sameValue(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// auditBody monta o texto da nota de auditoria.
func auditBody(changes []fieldChange) string {
	lines := make([]string, 0, len(changes)+1)
	lines = append(lines, auditHeader)
	for _, c := range changes {
		lines = append(lines, c.String())
	}
	return strings.Join(lines, "\n")
}

type UpdateLeadUseCase struct {
	UoW entity.UnitOfWork
	Log logger.Logger
	Now func() time.Time
}

func NewUpdateLeadUseCase(uow entity.UnitOfWork, log logger.Logger) *UpdateLeadUseCase {
	return &UpdateLeadUseCase{UoW: uow, Log: log, Now: time.Now}
}

func (uc *UpdateLeadUseCase) Execute(ctx context.Context, actor auth.Actor, leadID string, input UpdateLeadInput) (*entity.Lead, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	now := uc.Now()
	var lead *entity.Lead

	err := runInTx(ctx, uc.UoW, "update lead", func(repos entity.Repositories) error {
		var err error
		lead, err = repos.Leads.FindByID(ctx, leadID)
		if err != nil {
			return translate(err)
		}

		isManager := permission.HasPermission(actor.Role, permission.LeadUpdate) &&
			permission.CanAccessLead(actor.Role, actor.ID, lead)
		isOwner := lead.RegistradorID == actor.ID
		if !isManager && !isOwner {
			return forbidden("sem permissão para editar este lead")
		}

		rec := &leadRecord{lead: lead}
		if rec.company, err = repos.Companies.FindByID(ctx, lead.CompanyID); err != nil {
			return translate(err)
		}
		if lead.ContactID != nil {
			if rec.contact, err = repos.Contacts.FindByID(ctx, *lead.ContactID); err != nil {
				return translate(err)
			}
		}

		changes, errs := diffAndApply(rec, input, isManager, isOwner)
		if len(errs) > 0 {
			return validationFailed(errs...)
		}
		if len(changes) == 0 {
			return nil
		}

		lead.LeadScore = ComputeLeadScore(lead, rec.company, rec.contact)
		lead.UpdatedAt = now
		if err := repos.Leads.Update(ctx, lead); err != nil {
			return err
		}
		if touched(changes, companyFields) {
			rec.company.UpdatedAt = now
			if err := repos.Companies.Update(ctx, rec.company); err != nil {
				return err
			}
		}
		if rec.contact != nil && touched(changes, contactFields) {
			rec.contact.UpdatedAt = now
			if err := repos.Contacts.Update(ctx, rec.contact); err != nil {
				return err
			}
		}

		note := entity.NewInteraction(lead.ID, entity.InteractionNota, actor.ID, entity.OriginAudit, now)
		body := auditBody(changes)
		note.Notes = &body
		return repos.Interactions.Create(ctx, note)
	})
	if err != nil {
		return nil, err
	}
	return lead, nil
}

var (
	companyFields = map[string]bool{"razaoSocial": true, "nomeFantasia": true, "city": true, "state": true, "segment": true, "size": true, "website": true}
	contactFields = map[string]bool{"contactName": true, "contactEmail": true, "contactPhone": true, "contactWhatsapp": true, "contactPosition": true}
)

func touched(changes []fieldChange, set map[string]bool) bool {
	for _, c := range changes {
		if set[c.field] {
			return true
		}
	}
	return false
}

// diffAndApply percorre o schema, ignora campos sem capacidade e aplica o resto.
func diffAndApply(rec *leadRecord, input UpdateLeadInput, isManager, isOwner bool) ([]fieldChange, []ValidationError) {
	var (
		changes []fieldChange
		errs    []ValidationError
	)
	for _, rule := range updateSchema {
		raw := rule.input(input)
		if raw == nil {
			continue
		}
		switch rule.requires {
		case capManager:
			if !isManager {
				continue
			}
		case capOwner:
			if !isManager && !isOwner {
				continue
			}
		}
		if rec.contact == nil && contactFields[rule.name] {
			continue
		}

		next := rule.normalize(raw)
		if next != nil && rule.validate != nil {
			if msg := rule.validate(*next); msg != "" {
				errs = append(errs, ValidationError{Field: rule.name, Message: msg})
				continue
			}
		}
		if next == nil && (rule.name == "razaoSocial" || rule.name == "contactName") {
			errs = append(errs, ValidationError{Field: rule.name, Message: "is required"})
			continue
		}

		old := rule.get(rec)
		if sameValue(old, next) {
			continue
		}
		var prev *string
		if old != nil {
			v := *old
			prev = &v
		}
		rule.set(rec, next)
		changes = append(changes, fieldChange{field: rule.name, old: prev, new: next})
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return changes, nil
}
