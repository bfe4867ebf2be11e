package entity

import (
	"time"

	"github.com/google/uuid"
)

type InteractionType string

const (
	InteractionLigacao  InteractionType = "LIGACAO"
	InteractionWhatsapp InteractionType = "WHATSAPP"
	InteractionEmail    InteractionType = "EMAIL"
	InteractionReuniao  InteractionType = "REUNIAO"
	InteractionNota     InteractionType = "NOTA"
)

func (t InteractionType) Valid() bool {
	switch t {
	case InteractionLigacao, InteractionWhatsapp, InteractionEmail, InteractionReuniao, InteractionNota:
		return true
	}
	return false
}

type InteractionResult string

const (
	ResultSemResposta      InteractionResult = "SEM_RESPOSTA"
	ResultCaixaPostal      InteractionResult = "CAIXA_POSTAL"
	ResultOcupado          InteractionResult = "OCUPADO"
	ResultContatoRealizado InteractionResult = "CONTATO_REALIZADO"
	ResultContatoSucesso   InteractionResult = "CONTATO_SUCESSO"
)

func (r InteractionResult) Valid() bool {
	switch r {
	case ResultSemResposta, ResultCaixaPostal, ResultOcupado, ResultContatoRealizado, ResultContatoSucesso:
		return true
	}
	return false
}

// InteractionOrigin separa eventos digitados por usuários das notas de auditoria geradas pelo sistema.
type InteractionOrigin string

const (
	OriginUser  InteractionOrigin = "USER"
	OriginAudit InteractionOrigin = "AUDIT"
)

type Interaction struct {
	ID              string             `json:"id"`
	LeadID          string             `json:"leadId"`
	Type            InteractionType    `json:"type"`
	Result          *InteractionResult `json:"result"`
	Notes           *string            `json:"notes"`
	NextStep        *string            `json:"nextStep"`
	NextStepDate    *time.Time         `json:"nextStepDate"`
	DurationMinutes *int               `json:"durationMinutes"`
	AuthorID        string             `json:"authorId"`
	AuthorName      string             `json:"authorName,omitempty"`
	Origin          InteractionOrigin  `json:"origin"`
	OccurredAt      time.Time          `json:"occurredAt"`
	CreatedAt       time.Time          `json:"createdAt"`
}

func NewInteraction(leadID string, t InteractionType, authorID string, origin InteractionOrigin, now time.Time) *Interaction {
	return &Interaction{
		ID:         uuid.New().String(),
		LeadID:     leadID,
		Type:       t,
		AuthorID:   authorID,
		Origin:     origin,
		OccurredAt: now,
		CreatedAt:  now,
	}
}
