package usecase

import (
	"time"

	"github.com/xavierca1/ls-leads/internal/entity"
)

type CreateLeadInput struct {
	RazaoSocial     string `json:"razaoSocial" validate:"required,max=255"`
	CNPJ            string `json:"cnpj" validate:"required,cnpj"`
	NomeFantasia    string `json:"nomeFantasia" validate:"max=255"`
	City            string `json:"city" validate:"max=120"`
	State           string `json:"state" validate:"omitempty,len=2"`
	Segment         string `json:"segment" validate:"max=60"`
	Size            string `json:"size" validate:"omitempty,oneof=MICRO PEQUENA MEDIA GRANDE"`
	Website         string `json:"website" validate:"max=255"`
	ContactName     string `json:"contactName" validate:"required,max=200"`
	ContactEmail    string `json:"contactEmail" validate:"omitempty,email,max=255"`
	ContactPhone    string `json:"contactPhone" validate:"required,br_phone"`
	ContactPosition string `json:"contactPosition" validate:"max=120"`
	Consentimento   bool   `json:"consentimento"`
	Source          string `json:"source" validate:"max=120"`
	Necessity       string `json:"necessity" validate:"max=120"`
	Urgency         string `json:"urgency" validate:"omitempty,oneof=BAIXA MEDIA ALTA IMEDIATA"`
	Notes           string `json:"notes"`
	ImageURL        string `json:"imageUrl" validate:"omitempty,url"`
	IsProspeccao    bool   `json:"isProspeccao"`
	ResponsavelID   string `json:"responsavelId"`
}

// UpdateLeadInput: nil significa "não enviado"; string vazia limpa o campo.
type UpdateLeadInput struct {
	Necessity         *string `json:"necessity"`
	Urgency           *string `json:"urgency"`
	Source            *string `json:"source"`
	Notes             *string `json:"notes"`
	CloseReasonDetail *string `json:"closeReasonDetail"`
	ImageURL          *string `json:"imageUrl"`

	RazaoSocial  *string `json:"razaoSocial"`
	NomeFantasia *string `json:"nomeFantasia"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	Segment      *string `json:"segment"`
	Size         *string `json:"size"`
	Website      *string `json:"website"`

	ContactName     *string `json:"contactName"`
	ContactEmail    *string `json:"contactEmail"`
	ContactPhone    *string `json:"contactPhone"`
	ContactWhatsapp *string `json:"contactWhatsapp"`
	ContactPosition *string `json:"contactPosition"`
}

type ChangeStatusInput struct {
	Status            string  `json:"status"`
	Reason            *string `json:"reason"`
	CloseReason       *string `json:"closeReason"`
	CloseReasonDetail *string `json:"closeReasonDetail"`
}

type AssignLeadInput struct {
	ResponsavelID string  `json:"responsavelId" validate:"required"`
	Notes         *string `json:"notes"`
}

type RecordInteractionInput struct {
	Type            string     `json:"type"`
	Result          *string    `json:"result"`
	Notes           *string    `json:"notes"`
	NextStep        *string    `json:"nextStep"`
	NextStepDate    *time.Time `json:"nextStepDate"`
	DurationMinutes *int       `json:"durationMinutes"`
	OccurredAt      *time.Time `json:"occurredAt"`
	// AuthorID vazio cai no responsável e depois no registrador do lead.
	AuthorID string `json:"authorId"`
}

type AmendInteractionInput struct {
	InteractionID   string     `json:"interactionId"`
	Type            *string    `json:"type"`
	Result          *string    `json:"result"`
	Notes           *string    `json:"notes"`
	NextStep        *string    `json:"nextStep"`
	NextStepDate    *time.Time `json:"nextStepDate"`
	DurationMinutes *int       `json:"durationMinutes"`
}

type ListLeadsInput struct {
	Status     string
	Search     string
	Page       int
	Limit      int
	Prospeccao bool
}

type ListLeadsOutput struct {
	Data       []entity.LeadListItem `json:"data"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"totalPages"`
}

type UserSummary struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  entity.Role `json:"role"`
}

func summarize(u *entity.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type LeadDetail struct {
	entity.Lead
	Company              *entity.Company        `json:"company"`
	Contact              *entity.Contact        `json:"contact"`
	Registrador          *UserSummary           `json:"registrador"`
	Responsavel          *UserSummary           `json:"responsavel"`
	Interactions         []entity.Interaction   `json:"interactions"`
	StatusHistory        []entity.StatusHistory `json:"statusHistory"`
	Assignments          []entity.Assignment    `json:"assignments"`
	InteractionCount     int                    `json:"interactionCount"`
	AvailableTransitions []entity.LeadStatus    `json:"availableTransitions"`
}

type ActiveLeadRef struct {
	ID              string            `json:"id"`
	Status          entity.LeadStatus `json:"status"`
	ResponsavelName *string           `json:"responsavel"`
}

type CheckCNPJOutput struct {
	Valid      bool            `json:"valid"`
	Exists     bool            `json:"exists"`
	Company    *entity.Company `json:"company"`
	ActiveLead *ActiveLeadRef  `json:"activeLead"`
}

type FunnelStep struct {
	Status entity.LeadStatus `json:"status"`
	Count  int               `json:"count"`
}

type PeriodComparison struct {
	Current  int     `json:"current"`
	Previous int     `json:"previous"`
	Change   float64 `json:"change"`
}

type DashboardStats struct {
	TotalLeads       int                       `json:"totalLeads"`
	LeadsCreated     int                       `json:"leadsCreated"`
	PendingLeads     int                       `json:"pendingLeads"`
	InativoCount     int                       `json:"inativoCount"`
	ConversionRate   float64                   `json:"conversionRate"`
	StatusCounts     map[entity.LeadStatus]int `json:"statusCounts"`
	Funnel           []FunnelStep              `json:"funnel"`
	PeriodComparison PeriodComparison          `json:"periodComparison"`
	RecentLeads      []entity.LeadListItem     `json:"recentLeads"`
	PendingQueue     []entity.LeadListItem     `json:"pendingQueue"`
	GeneratedAt      time.Time                 `json:"generatedAt"`
}

type ManagerPerformance struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Email            string      `json:"email"`
	Role             entity.Role `json:"role"`
	LeadsAssigned    int         `json:"leadsAssigned"`
	LeadsQualified   int         `json:"leadsQualified"`
	ConversionRate   float64     `json:"conversionRate"`
	AvgTimeToContact float64     `json:"avgTimeToContact"`
	TotalActiveLeads int         `json:"totalActiveLeads"`
}

type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

type ExportLeadsInput struct {
	Format string
	Status string
}

type ExportLeadsOutput struct {
	Format ExportFormat
	Rows   []entity.LeadListItem
}

type CreateUserInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=200"`
	Role     string `json:"role" validate:"required,oneof=ADMIN GERENTE ALIADO"`
	Password string `json:"password" validate:"required,min=8"`
}

type UpdateUserInput struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Name     *string `json:"name" validate:"omitempty,min=2,max=200"`
	Role     *string `json:"role" validate:"omitempty,oneof=ADMIN GERENTE ALIADO"`
	Active   *bool   `json:"active"`
	Password *string `json:"password" validate:"omitempty,min=8"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginOutput struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *entity.User `json:"user"`
}
