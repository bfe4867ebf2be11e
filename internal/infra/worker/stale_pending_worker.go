package worker

import (
	"context"
	"time"

	"github.com/xavierca1/ls-leads/internal/entity"
	"github.com/xavierca1/ls-leads/internal/infra/logger"
)

// StaleGauge recebe a contagem de leads pendentes há tempo demais.
type StaleGauge interface {
	SetStalePending(n int)
}

// StalePendingWorker mede periodicamente quantos leads continuam PENDENTE
// além da janela configurada. Só lê; nenhum lead muda de status aqui.
type StalePendingWorker struct {
	reports      entity.ReportRepository
	gauge        StaleGauge
	log          logger.Logger
	staleAfter   time.Duration
	tickInterval time.Duration
	now          func() time.Time
}

func NewStalePendingWorker(reports entity.ReportRepository, gauge StaleGauge, log logger.Logger, staleAfter, tickInterval time.Duration) *StalePendingWorker {
	return &StalePendingWorker{
		reports:      reports,
		gauge:        gauge,
		log:          log,
		staleAfter:   staleAfter,
		tickInterval: tickInterval,
		now:          time.Now,
	}
}

func (w *StalePendingWorker) Start(ctx context.Context) {
	w.log.WithField("stale_after", w.staleAfter.String()).Info("stale pending worker iniciado")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.check(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("stale pending worker encerrado")
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

func (w *StalePendingWorker) check(ctx context.Context) {
	cutoff := w.now().Add(-w.staleAfter)

	n, err := w.reports.CountStalePending(ctx, cutoff)
	if err != nil {
		w.log.WithField("error", err.Error()).Error("erro ao contar leads pendentes")
		return
	}

	w.gauge.SetStalePending(n)
	if n > 0 {
		w.log.WithFields(map[string]interface{}{
			"count":  n,
			"cutoff": cutoff.Format(time.RFC3339),
		}).Warn("leads pendentes sem atribuição")
	}
}
