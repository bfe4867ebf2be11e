package usecase

import (
	"context"

	"github.com/xavierca1/ls-leads/internal/auth"
	"github.com/xavierca1/ls-leads/internal/entity"
	"github.com/xavierca1/ls-leads/internal/permission"
)

type ManagerPerformanceUseCase struct {
	UoW entity.UnitOfWork
}

func NewManagerPerformanceUseCase(uow entity.UnitOfWork) *ManagerPerformanceUseCase {
	return &ManagerPerformanceUseCase{UoW: uow}
}

func (uc *ManagerPerformanceUseCase) Execute(ctx context.Context, actor auth.Actor) ([]ManagerPerformance, error) {
	if err := requirePermission(actor, permission.DashboardTeam); err != nil {
		return nil, err
	}

	repos := uc.UoW.Repositories()
	managers, err := repos.Users.List(ctx, entity.UserFilter{Roles: []entity.Role{entity.RoleGerente}, ActiveOnly: true})
	if err != nil {
		return nil, technical("list managers", err)
	}
	if len(managers) == 0 {
		return []ManagerPerformance{}, nil
	}

	ids := make([]string, 0, len(managers))
	for _, m := range managers {
		ids = append(ids, m.ID)
	}
	leads, err := repos.Reports.LeadsByResponsavel(ctx, ids)
	if err != nil {
		return nil, technical("manager leads", err)
	}
	return computePerformance(managers, leads), nil
}

func computePerformance(managers []entity.User, leads []entity.ManagerLead) []ManagerPerformance {
	byManager := make(map[string][]entity.ManagerLead, len(managers))
	for _, l := range leads {
		byManager[l.ResponsavelID] = append(byManager[l.ResponsavelID], l)
	}

	out := make([]ManagerPerformance, 0, len(managers))
	for _, m := range managers {
		p := ManagerPerformance{ID: m.ID, Name: m.Name, Email: m.Email, Role: m.Role}

		var contacted int
		var totalHours float64
		for _, l := range byManager[m.ID] {
			p.LeadsAssigned++
			if l.Status == entity.StatusQualificada {
				p.LeadsQualified++
			}
			if !l.Status.IsClosed() {
				p.TotalActiveLeads++
			}
			if l.FirstContactAt != nil {
				contacted++
				totalHours += l.FirstContactAt.Sub(l.CreatedAt).Hours()
			}
		}

		p.ConversionRate = percent(p.LeadsQualified, p.LeadsAssigned)
		if contacted > 0 {
			p.AvgTimeToContact = round1(totalHours / float64(contacted))
		}
		out = append(out, p)
	}
	return out
}
