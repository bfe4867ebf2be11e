package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/xavierca1/ls-leads/internal/entity"
)

// Recorder concentra as métricas HTTP e de domínio num único Registerer.
type Recorder struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	activeConnections   prometheus.Gauge
	leadsCreated        *prometheus.CounterVec
	statusTransitions   *prometheus.CounterVec
	assignments         prometheus.Counter
	stalePending        prometheus.Gauge
}

func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		activeConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_active_connections",
				Help: "Number of active HTTP connections",
			},
		),
		leadsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leads_created_total",
				Help: "Total number of leads created",
			},
			[]string{"kind"},
		),
		statusTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lead_status_transitions_total",
				Help: "Total number of lead status changes",
			},
			[]string{"from", "to"},
		),
		assignments: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "lead_assignments_total",
				Help: "Total number of lead assignments",
			},
		),
		stalePending: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "leads_pending_stale",
				Help: "Leads still PENDENTE past the stale window",
			},
		),
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (m *Recorder) Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.activeConnections.Inc()
		defer m.activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		m.httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern usa o padrão do chi (/api/leads/{id}) para não explodir a cardinalidade.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

func (m *Recorder) LeadCreated(kind string) {
	m.leadsCreated.WithLabelValues(kind).Inc()
}

func (m *Recorder) StatusChanged(from, to entity.LeadStatus) {
	m.statusTransitions.WithLabelValues(string(from), string(to)).Inc()
}

func (m *Recorder) LeadAssigned() {
	m.assignments.Inc()
}

func (m *Recorder) SetStalePending(n int) {
	m.stalePending.Set(float64(n))
}
