package database

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/xavierca1/ls-leads/internal/entity"
)

// scopeCondition traduz o LeadScope para SQL sobre o alias "l". Devolve nil
// quando não há restrição; um escopo vazio vira FALSE.
func scopeCondition(s entity.LeadScope) sq.Sqlizer {
	if s.Unrestricted {
		return nil
	}

	var or sq.Or
	if s.ResponsavelID != "" {
		or = append(or, sq.Eq{"l.responsavel_id": s.ResponsavelID})
	}
	if s.ProspeccaoOwnerID != "" {
		or = append(or, sq.And{
			sq.Eq{"l.is_prospeccao": true},
			sq.Eq{"l.registrador_id": s.ProspeccaoOwnerID},
		})
	}
	if s.RegistradorID != "" {
		or = append(or, sq.Eq{"l.registrador_id": s.RegistradorID})
	}

	if len(or) == 0 {
		return sq.Expr("FALSE")
	}
	return or
}

func withScope(b sq.SelectBuilder, s entity.LeadScope) sq.SelectBuilder {
	if cond := scopeCondition(s); cond != nil {
		return b.Where(cond)
	}
	return b
}
