package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type DBPinger interface {
	PingContext(ctx context.Context) error
}

type BrokerConn interface {
	IsClosed() bool
}

type CachePinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reporta o estado das dependências; campos nil contam como "not configured".
type HealthHandler struct {
	DB        DBPinger
	RabbitMQ  BrokerConn
	Redis     CachePinger
	Version   string
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(db DBPinger, rabbitMQ BrokerConn, redis CachePinger, version string) *HealthHandler {
	return &HealthHandler{
		DB:        db,
		RabbitMQ:  rabbitMQ,
		Redis:     redis,
		Version:   version,
		StartTime: time.Now(),
	}
}

func pingStatus(err error) string {
	if err != nil {
		return fmt.Sprintf("unhealthy: %v", err)
	}
	return "healthy"
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := map[string]string{
		"database": "not configured",
		"rabbitmq": "not configured",
		"redis":    "not configured",
	}

	if h.DB != nil {
		deps["database"] = pingStatus(h.DB.PingContext(ctx))
	}
	if h.RabbitMQ != nil {
		if h.RabbitMQ.IsClosed() {
			deps["rabbitmq"] = "unhealthy: connection closed"
		} else {
			deps["rabbitmq"] = "healthy"
		}
	}
	if h.Redis != nil {
		deps["redis"] = pingStatus(h.Redis.Ping(ctx))
	}

	status := "healthy"
	for _, v := range deps {
		if v != "healthy" && v != "not configured" {
			status = "degraded"
			break
		}
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}
	respondJSON(w, code, HealthResponse{
		Status:       status,
		Version:      h.Version,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	})
}
