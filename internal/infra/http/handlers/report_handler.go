package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/xavierca1/ls-leads/internal/infra/export"
	"github.com/xavierca1/ls-leads/internal/infra/logger"
	"github.com/xavierca1/ls-leads/internal/usecase"
)

type ReportHandler struct {
	Stats       *usecase.DashboardStatsUseCase
	Performance *usecase.ManagerPerformanceUseCase
	Export      *usecase.ExportLeadsUseCase
	Log         logger.Logger
	Now         func() time.Time
}

func NewReportHandler(
	stats *usecase.DashboardStatsUseCase,
	performance *usecase.ManagerPerformanceUseCase,
	exp *usecase.ExportLeadsUseCase,
	log logger.Logger,
) *ReportHandler {
	return &ReportHandler{Stats: stats, Performance: performance, Export: exp, Log: log, Now: time.Now}
}

func (h *ReportHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.Execute(r.Context(), actorFrom(r))
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *ReportHandler) HandlePerformance(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Performance.Execute(r.Context(), actorFrom(r))
	if err != nil {
		respondError(w, h.Log, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// HandleExport monta o arquivo em memória antes de escrever os headers,
// assim uma falha de serialização ainda vira um erro JSON.
func (h *ReportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.Export.Execute(r.Context(), actorFrom(r), usecase.ExportLeadsInput{
		Format: q.Get("format"),
		Status: q.Get("status"),
	})
	if err != nil {
		respondError(w, h.Log, err)
		return
	}

	format := string(out.Format)
	var buf bytes.Buffer
	if err := export.Write(&buf, format, out.Rows); err != nil {
		respondError(w, h.Log, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType(format))
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(format, h.Now())+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
