// Package lifecycle é a máquina de estados do lead. As transições válidas e os
// marcos que cada estado grava na entrada ou limpa na saída ficam numa só tabela.
package lifecycle

import (
	"errors"
	"fmt"
	"time"

	"github.com/xavierca1/ls-leads/internal/entity"
)

var (
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidCloseReason = errors.New("invalid close reason")
	ErrUnknownStatus      = errors.New("unknown status")
)

type TransitionError struct {
	From entity.LeadStatus
	To   entity.LeadStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transição inválida: %s -> %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

type effect func(l *entity.Lead, at time.Time)

type state struct {
	next    []entity.LeadStatus
	onEnter []effect
	onExit  []effect
}

func stampOnce(field func(*entity.Lead) **time.Time) effect {
	return func(l *entity.Lead, at time.Time) {
		if p := field(l); *p == nil {
			t := at
			*p = &t
		}
	}
}

func stamp(field func(*entity.Lead) **time.Time) effect {
	return func(l *entity.Lead, at time.Time) {
		t := at
		*field(l) = &t
	}
}

func clearClosed(l *entity.Lead, _ time.Time) {
	l.ClosedAt = nil
	l.CloseReason = nil
	l.CloseReasonDetail = nil
}

var (
	assignedAt     = func(l *entity.Lead) **time.Time { return &l.AssignedAt }
	firstContactAt = func(l *entity.Lead) **time.Time { return &l.FirstContactAt }
	qualifiedAt    = func(l *entity.Lead) **time.Time { return &l.QualifiedAt }
	closedAt       = func(l *entity.Lead) **time.Time { return &l.ClosedAt }
)

var states = map[entity.LeadStatus]state{
	entity.StatusPendente: {
		next: []entity.LeadStatus{entity.StatusAtribuida, entity.StatusEncerrada, entity.StatusInativo},
	},
	entity.StatusAtribuida: {
		next:    []entity.LeadStatus{entity.StatusEmContato, entity.StatusEncerrada, entity.StatusInativo},
		onEnter: []effect{stampOnce(assignedAt)},
	},
	entity.StatusEmContato: {
		next:    []entity.LeadStatus{entity.StatusQualificada, entity.StatusEncerrada, entity.StatusInativo},
		onEnter: []effect{stampOnce(firstContactAt)},
	},
	entity.StatusQualificada: {
		next:    []entity.LeadStatus{entity.StatusEncerrada, entity.StatusInativo},
		onEnter: []effect{stampOnce(qualifiedAt)},
	},
	entity.StatusEncerrada: {
		onEnter: []effect{stamp(closedAt)},
	},
	entity.StatusInativo: {
		next:    []entity.LeadStatus{entity.StatusPendente},
		onEnter: []effect{stamp(closedAt)},
		onExit:  []effect{clearClosed},
	},
}

func CanTransition(from, to entity.LeadStatus) bool {
	for _, s := range states[from].next {
		if s == to {
			return true
		}
	}
	return false
}

// AvailableTransitions lista os status alcançáveis a partir de s em um passo.
func AvailableTransitions(s entity.LeadStatus) []entity.LeadStatus {
	next := states[s].next
	out := make([]entity.LeadStatus, len(next))
	copy(out, next)
	return out
}

type Request struct {
	// Target pode ficar vazio quando CloseReason é informado.
	Target            entity.LeadStatus
	CloseReason       *entity.CloseReason
	CloseReasonDetail *string
}

type Change struct {
	From entity.LeadStatus
	To   entity.LeadStatus
}

func (c Change) Moved() bool {
	return c.From != c.To
}

// ResolveTarget define o status de destino; o motivo de fechamento tem precedência.
func ResolveTarget(req Request) (entity.LeadStatus, error) {
	if req.CloseReason != nil {
		class, ok := Classify(*req.CloseReason)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrInvalidCloseReason, *req.CloseReason)
		}
		derived := class.Target()
		if req.Target != "" && req.Target != derived {
			return "", fmt.Errorf("%w: %s encerra como %s, não %s", ErrInvalidCloseReason, *req.CloseReason, derived, req.Target)
		}
		return derived, nil
	}
	if !req.Target.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, req.Target)
	}
	return req.Target, nil
}

// Apply valida o pedido contra a tabela e altera o lead no lugar.
// Pedido para o mesmo status não valida aresta e só atualiza os dados de fechamento.
func Apply(l *entity.Lead, req Request, at time.Time) (Change, error) {
	target, err := ResolveTarget(req)
	if err != nil {
		return Change{}, err
	}

	from := l.Status
	if from != target && !CanTransition(from, target) {
		return Change{}, &TransitionError{From: from, To: target}
	}

	if from != target {
		for _, fx := range states[from].onExit {
			fx(l, at)
		}
		l.Status = target
		for _, fx := range states[target].onEnter {
			fx(l, at)
		}
	}

	if req.CloseReason != nil {
		reason := *req.CloseReason
		l.CloseReason = &reason
	}
	if req.CloseReasonDetail != nil {
		l.CloseReasonDetail = req.CloseReasonDetail
	}
	l.UpdatedAt = at

	return Change{From: from, To: target}, nil
}
