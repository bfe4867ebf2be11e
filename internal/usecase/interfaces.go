package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/ls-leads/internal/entity"
	"github.com/xavierca1/ls-leads/internal/infra/queue"
)

type QueueProducerInterface interface {
	PublishLeadAssigned(ctx context.Context, payload queue.LeadAssignedPayload) error
}

// StatsCache guarda agregados do dashboard por alguns segundos; leituras levemente defasadas são aceitas.
type StatsCache interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
}

type TokenGenerator interface {
	Generate(u *entity.User) (string, time.Time, error)
}

type MetricsRecorder interface {
	LeadCreated(kind string)
	StatusChanged(from, to entity.LeadStatus)
	LeadAssigned()
}

type nopMetrics struct{}

func (nopMetrics) LeadCreated(string) {}
func (nopMetrics) StatusChanged(entity.LeadStatus, entity.LeadStatus) {}
func (nopMetrics) LeadAssigned() {}

// NopMetrics é usado quando nenhum recorder é configurado.
var NopMetrics MetricsRecorder = nopMetrics{}
