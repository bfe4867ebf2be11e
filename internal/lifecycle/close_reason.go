package lifecycle

import "github.com/xavierca1/ls-leads/internal/entity"

type CloseClass string

const (
	ClassWin        CloseClass = "WIN"
	ClassLoss       CloseClass = "LOSS"
	ClassRecyclable CloseClass = "RECYCLABLE"
)

var closeReasons = map[entity.CloseReason]CloseClass{
	entity.CloseVendaRealizada: ClassWin,

	entity.CloseSemInteresse:     ClassLoss,
	entity.CloseSemFit:           ClassLoss,
	entity.CloseJaCliente:        ClassLoss,
	entity.CloseDuplicada:        ClassLoss,
	entity.CloseSemConsentimento: ClassLoss,

	entity.CloseNaoFoiPossivelContato: ClassRecyclable,
	entity.CloseOptouConcorrente:      ClassRecyclable,
	entity.CloseTimingInadequado:      ClassRecyclable,
	entity.CloseOutroMotivo:           ClassRecyclable,
}

// Classify devolve a classe do motivo; ok é false para códigos desconhecidos.
func Classify(reason entity.CloseReason) (CloseClass, bool) {
	c, ok := closeReasons[reason]
	return c, ok
}

// Target é o único status em que um motivo desta classe pode fechar o lead.
func (c CloseClass) Target() entity.LeadStatus {
	if c == ClassRecyclable {
		return entity.StatusInativo
	}
	return entity.StatusEncerrada
}

func CloseReasons() []entity.CloseReason {
	out := make([]entity.CloseReason, 0, len(closeReasons))
	for r := range closeReasons {
		out = append(out, r)
	}
	return out
}
