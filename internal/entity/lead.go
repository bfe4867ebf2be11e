package entity

import (
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	StatusPendente    LeadStatus = "PENDENTE"
	StatusAtribuida   LeadStatus = "ATRIBUIDA"
	StatusEmContato   LeadStatus = "EM_CONTATO"
	StatusQualificada LeadStatus = "QUALIFICADA"
	StatusEncerrada   LeadStatus = "ENCERRADA"
	StatusInativo     LeadStatus = "INATIVO"
)

// AllStatuses segue a ordem do funil.
var AllStatuses = []LeadStatus{
	StatusPendente,
	StatusAtribuida,
	StatusEmContato,
	StatusQualificada,
	StatusEncerrada,
	StatusInativo,
}

// ActiveStatuses bloqueiam um novo lead para o mesmo CNPJ.
var ActiveStatuses = []LeadStatus{
	StatusPendente,
	StatusAtribuida,
	StatusEmContato,
	StatusQualificada,
}

func (s LeadStatus) Valid() bool {
	for _, st := range AllStatuses {
		if st == s {
			return true
		}
	}
	return false
}

func (s LeadStatus) IsActive() bool {
	for _, st := range ActiveStatuses {
		if st == s {
			return true
		}
	}
	return false
}

func (s LeadStatus) IsClosed() bool {
	return s == StatusEncerrada || s == StatusInativo
}

type Urgency string

const (
	UrgencyBaixa    Urgency = "BAIXA"
	UrgencyMedia    Urgency = "MEDIA"
	UrgencyAlta     Urgency = "ALTA"
	UrgencyImediata Urgency = "IMEDIATA"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyBaixa, UrgencyMedia, UrgencyAlta, UrgencyImediata:
		return true
	}
	return false
}

type CloseReason string

const (
	CloseVendaRealizada        CloseReason = "VENDA_REALIZADA"
	CloseSemInteresse          CloseReason = "SEM_INTERESSE"
	CloseSemFit                CloseReason = "SEM_FIT"
	CloseJaCliente             CloseReason = "JA_CLIENTE"
	CloseDuplicada             CloseReason = "DUPLICADA"
	CloseSemConsentimento      CloseReason = "SEM_CONSENTIMENTO"
	CloseNaoFoiPossivelContato CloseReason = "NAO_FOI_POSSIVEL_CONTATO"
	CloseOptouConcorrente      CloseReason = "OPTOU_CONCORRENTE"
	CloseTimingInadequado      CloseReason = "TIMING_INADEQUADO"
	CloseOutroMotivo           CloseReason = "OUTRO_MOTIVO"
)

type Lead struct {
	ID                string       `json:"id"`
	Status            LeadStatus   `json:"status"`
	Urgency           *Urgency     `json:"urgency"`
	Necessity         *string      `json:"necessity"`
	Source            *string      `json:"source"`
	Notes             *string      `json:"notes"`
	LeadScore         int          `json:"leadScore"`
	CloseReason       *CloseReason `json:"closeReason"`
	CloseReasonDetail *string      `json:"closeReasonDetail"`
	IsProspeccao      bool         `json:"isProspeccao"`
	ImageURL          *string      `json:"imageUrl"`

	CompanyID     string  `json:"companyId"`
	ContactID     *string `json:"contactId"`
	RegistradorID string  `json:"registradorId"`
	ResponsavelID *string `json:"responsavelId"`

	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	AssignedAt     *time.Time `json:"assignedAt"`
	FirstContactAt *time.Time `json:"firstContactAt"`
	QualifiedAt    *time.Time `json:"qualifiedAt"`
	ClosedAt       *time.Time `json:"closedAt"`
}

// NewLead cria um lead PENDENTE; o status inicial definitivo é decidido pelo caso de uso.
func NewLead(companyID, registradorID string, isProspeccao bool, now time.Time) *Lead {
	return &Lead{
		ID:            uuid.New().String(),
		Status:        StatusPendente,
		CompanyID:     companyID,
		RegistradorID: registradorID,
		IsProspeccao:  isProspeccao,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (l *Lead) IsResponsavel(userID string) bool {
	return l.ResponsavelID != nil && *l.ResponsavelID == userID
}

// LeadListItem é a linha desnormalizada usada em listagens e exportações.
type LeadListItem struct {
	Lead
	CompanyCNPJ        string  `json:"companyCnpj"`
	CompanyRazaoSocial string  `json:"companyRazaoSocial"`
	CompanyFantasia    *string `json:"companyNomeFantasia"`
	CompanyCity        *string `json:"companyCity"`
	CompanyState       *string `json:"companyState"`
	ContactName        *string `json:"contactName"`
	ContactEmail       *string `json:"contactEmail"`
	ContactPhone       *string `json:"contactPhone"`
	RegistradorName    string  `json:"registradorName"`
	ResponsavelName    *string `json:"responsavelName"`
	InteractionCount   int     `json:"interactionCount"`
}

// LeadScope expressa a visibilidade de um usuário como dado, para ser
// aplicada tanto em memória quanto na query SQL.
type LeadScope struct {
	Unrestricted      bool
	ResponsavelID     string
	ProspeccaoOwnerID string
	RegistradorID     string
}

func (s LeadScope) Matches(l *Lead) bool {
	if s.Unrestricted {
		return true
	}
	if s.ResponsavelID != "" && l.IsResponsavel(s.ResponsavelID) {
		return true
	}
	if s.ProspeccaoOwnerID != "" && l.IsProspeccao && l.RegistradorID == s.ProspeccaoOwnerID {
		return true
	}
	if s.RegistradorID != "" && l.RegistradorID == s.RegistradorID {
		return true
	}
	return false
}

// Denies indica que o escopo nunca casa com nenhum lead.
func (s LeadScope) Denies() bool {
	return !s.Unrestricted && s.ResponsavelID == "" && s.ProspeccaoOwnerID == "" && s.RegistradorID == ""
}

type LeadQuery struct {
	Scope          LeadScope
	Search         string
	Status         LeadStatus
	ProspeccaoOnly bool
	Offset         int
	// Limit zero devolve todas as linhas (exportação).
	Limit int
}
