package entity

import (
	"context"
	"time"
)

type LeadRepository interface {
	Create(ctx context.Context, l *Lead) error
	Update(ctx context.Context, l *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	// FindActiveByCompany devolve o lead ativo mais recente da empresa ou ErrLeadNotFound.
	FindActiveByCompany(ctx context.Context, companyID string) (*Lead, error)
	List(ctx context.Context, q LeadQuery) ([]LeadListItem, int, error)
}

type CompanyRepository interface {
	Create(ctx context.Context, c *Company) error
	Update(ctx context.Context, c *Company) error
	FindByID(ctx context.Context, id string) (*Company, error)
	FindByCNPJ(ctx context.Context, cnpj string) (*Company, error)
}

type ContactRepository interface {
	Create(ctx context.Context, c *Contact) error
	Update(ctx context.Context, c *Contact) error
	FindByID(ctx context.Context, id string) (*Contact, error)
}

type InteractionRepository interface {
	Create(ctx context.Context, i *Interaction) error
	Update(ctx context.Context, i *Interaction) error
	FindByID(ctx context.Context, id string) (*Interaction, error)
	ListByLead(ctx context.Context, leadID string) ([]Interaction, error)
}

type HistoryRepository interface {
	AppendStatus(ctx context.Context, h *StatusHistory) error
	AppendAssignment(ctx context.Context, a *Assignment) error
	StatusByLead(ctx context.Context, leadID string) ([]StatusHistory, error)
	AssignmentsByLead(ctx context.Context, leadID string) ([]Assignment, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, f UserFilter) ([]User, error)
}

// ManagerLead é o recorte mínimo de um lead usado no relatório de performance.
type ManagerLead struct {
	ResponsavelID  string
	Status         LeadStatus
	CreatedAt      time.Time
	FirstContactAt *time.Time
}

type ReportRepository interface {
	CountByStatus(ctx context.Context, scope LeadScope) (map[LeadStatus]int, error)
	CountCreatedBetween(ctx context.Context, scope LeadScope, from, to time.Time) (int, error)
	LeadsByResponsavel(ctx context.Context, responsavelIDs []string) ([]ManagerLead, error)
	CountStalePending(ctx context.Context, createdBefore time.Time) (int, error)
}

type Repositories struct {
	Leads        LeadRepository
	Companies    CompanyRepository
	Contacts     ContactRepository
	Interactions InteractionRepository
	History      HistoryRepository
	Users        UserRepository
	Reports      ReportRepository
}

// UnitOfWork agrupa a mutação e a linha de histórico na mesma transação.
type UnitOfWork interface {
	Repositories() Repositories
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}
