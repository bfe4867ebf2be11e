package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/xavierca1/ls-leads/internal/auth"
	"github.com/xavierca1/ls-leads/internal/config"
	"github.com/xavierca1/ls-leads/internal/infra/cache"
	"github.com/xavierca1/ls-leads/internal/infra/database"
	"github.com/xavierca1/ls-leads/internal/infra/http/handlers"
	"github.com/xavierca1/ls-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ls-leads/internal/infra/logger"
	"github.com/xavierca1/ls-leads/internal/infra/mail"
	"github.com/xavierca1/ls-leads/internal/infra/queue"
	"github.com/xavierca1/ls-leads/internal/infra/worker"
	"github.com/xavierca1/ls-leads/internal/usecase"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "production").WithField("error", err.Error()).Fatal("configuração inválida")
	}
	log := logger.New(cfg.LogLevel, cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithField("error", err.Error()).Fatal("servidor encerrado com erro")
	}
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	// 1. Banco e migrations
	if err := database.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsPath, log); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	db, err := database.NewDBConnection(ctx, cfg.Database.URL, database.DefaultPool)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	store := database.NewStore(db)

	// 2. Métricas
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := middleware.NewRecorder(reg)

	health := handlers.NewHealthHandler(db, nil, nil, version)

	// 3. RabbitMQ: sem broker a API sobe, mas as atribuições não geram aviso
	var producer usecase.QueueProducerInterface
	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		log.WithField("error", err.Error()).Warn("RabbitMQ indisponível, eventos de atribuição desativados")
	} else {
		defer rabbitMQ.Close()
		producer = queue.NewProducer(rabbitMQ.Ch)
		health.RabbitMQ = rabbitMQ.Conn

		var notifier queue.AssignmentNotifier = mail.LogNotifier{Log: log}
		if cfg.Mail.Enabled() {
			notifier = mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.From, cfg.Mail.AppURL)
		}
		assignmentWorker := queue.NewWorker(rabbitMQ.Ch, notifier, log.WithField("component", "assignment-worker"))
		go func() {
			if err := assignmentWorker.Start(ctx, queue.QueueName); err != nil {
				log.WithField("error", err.Error()).Error("assignment worker parou")
			}
		}()
	}

	// 4. Redis: cache do dashboard é opcional
	var statsCache usecase.StatsCache
	redisClient, err := cache.NewClient(ctx, cfg.Redis.URL)
	if err != nil {
		log.WithField("error", err.Error()).Warn("Redis indisponível, dashboard sem cache")
	} else {
		defer redisClient.Close()
		c := cache.NewStatsCache(redisClient, cfg.Redis.StatsTTL)
		statsCache = c
		health.Redis = c
	}

	// 5. Auth e admin inicial
	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if cfg.Auth.BootstrapEmail != "" {
		if _, err := usecase.NewEnsureAdminUseCase(store, log).Execute(ctx, cfg.Auth.BootstrapEmail, cfg.Auth.BootstrapPassword); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	// 6. UseCases e handlers
	leadHandler := handlers.NewLeadHandler(
		usecase.NewCreateLeadUseCase(store, producer, recorder, log),
		usecase.NewUpdateLeadUseCase(store, log),
		usecase.NewGetLeadUseCase(store),
		usecase.NewListLeadsUseCase(store),
		usecase.NewCheckCNPJUseCase(store),
		log,
	)
	flowHandler := handlers.NewWorkflowHandler(
		usecase.NewChangeStatusUseCase(store, recorder, log),
		usecase.NewAssignLeadUseCase(store, producer, recorder, log),
		usecase.NewRecordInteractionUseCase(store, log),
		usecase.NewAmendInteractionUseCase(store, log),
		log,
	)
	reportHandler := handlers.NewReportHandler(
		usecase.NewDashboardStatsUseCase(store, statsCache, log),
		usecase.NewManagerPerformanceUseCase(store),
		usecase.NewExportLeadsUseCase(store),
		log,
	)
	userHandler := handlers.NewUserHandler(
		usecase.NewListUsersUseCase(store),
		usecase.NewCreateUserUseCase(store, log),
		usecase.NewUpdateUserUseCase(store),
		usecase.NewDeactivateUserUseCase(store, log),
		usecase.NewLoginUseCase(store, issuer),
		log,
	)

	router := handlers.NewRouter(handlers.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Authenticate:   middleware.Authenticate(issuer, store.Repositories().Users, log),
		Metrics:        recorder,
		Gatherer:       reg,
		LoginLimiter:   middleware.NewRateLimiter(ctx, 10, 5),
		Health:         health,
		Leads:          leadHandler,
		Flow:           flowHandler,
		Reports:        reportHandler,
		Users:          userHandler,
	})

	// 7. Worker de pendências paradas
	staleWorker := worker.NewStalePendingWorker(store.Repositories().Reports, recorder, log, cfg.Stale.After, cfg.Stale.TickInterval)
	go staleWorker.Start(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Server.Port).Info("LS Leads API rodando")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("desligando servidor")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
