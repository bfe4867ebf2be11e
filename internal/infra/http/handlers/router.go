package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/ls-leads/internal/infra/http/middleware"
)

type RouterConfig struct {
	AllowedOrigins []string
	// Authenticate resolve o Bearer token; vem de middleware.Authenticate.
	Authenticate func(http.Handler) http.Handler
	Metrics      *middleware.Recorder
	Gatherer     prometheus.Gatherer
	// LoginLimiter é opcional; sem ele o login não tem limite por IP.
	LoginLimiter *middleware.RateLimiter

	Health  *HealthHandler
	Leads   *LeadHandler
	Flow    *WorkflowHandler
	Reports *ReportHandler
	Users   *UserHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Metrics)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Health != nil {
		r.Get("/health", cfg.Health.Handle)
	}
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	if cfg.LoginLimiter != nil {
		r.With(cfg.LoginLimiter.Limit).Post("/auth/login", cfg.Users.HandleLogin)
	} else {
		r.Post("/auth/login", cfg.Users.HandleLogin)
	}

	r.Route("/api", func(r chi.Router) {
		if cfg.Authenticate != nil {
			r.Use(cfg.Authenticate)
		}
		r.Use(middleware.RequireActor)

		r.Route("/leads", func(r chi.Router) {
			r.Get("/", cfg.Leads.HandleList)
			r.Post("/", cfg.Leads.HandleCreate)
			r.Get("/check-cnpj", cfg.Leads.HandleCheckCNPJ)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", cfg.Leads.HandleGet)
				r.Put("/", cfg.Leads.HandleUpdate)
				r.Patch("/status", cfg.Flow.HandleChangeStatus)
				r.Post("/assign", cfg.Flow.HandleAssign)
				r.Post("/interactions", cfg.Flow.HandleRecordInteraction)
				r.Put("/interactions", cfg.Flow.HandleAmendInteraction)
			})
		})

		r.Get("/dashboard/stats", cfg.Reports.HandleStats)
		r.Get("/dashboard/performance", cfg.Reports.HandlePerformance)
		r.Get("/reports/export", cfg.Reports.HandleExport)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", cfg.Users.HandleList)
			r.Post("/", cfg.Users.HandleCreate)
			r.Put("/{id}", cfg.Users.HandleUpdate)
			r.Delete("/{id}", cfg.Users.HandleDeactivate)
		})
	})

	return r
}
