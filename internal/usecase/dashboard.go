package usecase

import (
	"context"
	"math"
	"time"

	"github.com/xavierca1/ls-leads/internal/auth"
	"github.com/xavierca1/ls-leads/internal/entity"
	"github.com/xavierca1/ls-leads/internal/infra/logger"
	"github.com/xavierca1/ls-leads/internal/permission"
)

const recentLeadsLimit = 8

type DashboardStatsUseCase struct {
	UoW   entity.UnitOfWork
	Cache StatsCache
	Log   logger.Logger
	Now   func() time.Time
}

func NewDashboardStatsUseCase(uow entity.UnitOfWork, cache StatsCache, log logger.Logger) *DashboardStatsUseCase {
	return &DashboardStatsUseCase{UoW: uow, Cache: cache, Log: log, Now: time.Now}
}

func (uc *DashboardStatsUseCase) Execute(ctx context.Context, actor auth.Actor) (*DashboardStats, error) {
	if err := requirePermission(actor, permission.DashboardPersonal); err != nil {
		return nil, err
	}

	key := "dashboard:stats:" + actor.ID
	if uc.Cache != nil {
		var cached DashboardStats
		hit, err := uc.Cache.Get(ctx, key, &cached)
		if err != nil {
			uc.Log.WithField("error", err.Error()).Warn("falha ao ler cache do dashboard")
		}
		if hit {
			return &cached, nil
		}
	}

	stats, err := uc.compute(ctx, permission.ScopeFor(actor.Role, actor.ID))
	if err != nil {
		return nil, technical("dashboard stats", err)
	}

	if uc.Cache != nil {
		if err := uc.Cache.Set(ctx, key, stats); err != nil {
			uc.Log.WithField("error", err.Error()).Warn("falha ao gravar cache do dashboard")
		}
	}
	return stats, nil
}

func (uc *DashboardStatsUseCase) compute(ctx context.Context, scope entity.LeadScope) (*DashboardStats, error) {
	now := uc.Now()
	stats := &DashboardStats{
		StatusCounts: make(map[entity.LeadStatus]int, len(entity.AllStatuses)),
		RecentLeads:  []entity.LeadListItem{},
		PendingQueue: []entity.LeadListItem{},
		GeneratedAt:  now,
	}
	for _, s := range entity.AllStatuses {
		stats.StatusCounts[s] = 0
	}

	if !scope.Denies() {
		repos := uc.UoW.Repositories()

		counts, err := repos.Reports.CountByStatus(ctx, scope)
		if err != nil {
			return nil, err
		}
		for s, n := range counts {
			stats.StatusCounts[s] = n
		}

		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		prevStart := monthStart.AddDate(0, -1, 0)
		nextStart := monthStart.AddDate(0, 1, 0)

		if stats.PeriodComparison.Current, err = repos.Reports.CountCreatedBetween(ctx, scope, monthStart, nextStart); err != nil {
			return nil, err
		}
		if stats.PeriodComparison.Previous, err = repos.Reports.CountCreatedBetween(ctx, scope, prevStart, monthStart); err != nil {
			return nil, err
		}

		recent, _, err := repos.Leads.List(ctx, entity.LeadQuery{Scope: scope, Limit: recentLeadsLimit})
		if err != nil {
			return nil, err
		}
		if recent != nil {
			stats.RecentLeads = recent
		}
	}

	for _, s := range entity.AllStatuses {
		n := stats.StatusCounts[s]
		stats.TotalLeads += n
		stats.Funnel = append(stats.Funnel, FunnelStep{Status: s, Count: n})
	}
	stats.PendingLeads = stats.StatusCounts[entity.StatusPendente]
	stats.InativoCount = stats.StatusCounts[entity.StatusInativo]
	stats.LeadsCreated = stats.PeriodComparison.Current
	stats.ConversionRate = percent(stats.StatusCounts[entity.StatusQualificada], stats.TotalLeads)
	stats.PeriodComparison.Change = trend(stats.PeriodComparison.Current, stats.PeriodComparison.Previous)

	for _, l := range stats.RecentLeads {
		if l.Status == entity.StatusPendente {
			stats.PendingQueue = append(stats.PendingQueue, l)
		}
	}
	return stats, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// percent devolve part/total*100 com uma casa decimal; zero quando total é zero.
func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(part) / float64(total) * 100)
}

func trend(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round1(float64(current-previous) / float64(previous) * 100)
}
