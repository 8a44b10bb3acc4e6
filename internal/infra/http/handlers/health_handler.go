package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Pinger é qualquer dependência que sabe responder a um ping (sql.DB, Redis).
type Pinger interface {
	PingContext(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// ConnectionState cobre a conexão do RabbitMQ.
type ConnectionState interface {
	IsClosed() bool
}

type HealthHandler struct {
	DB        Pinger
	Cache     Pinger
	RabbitMQ  ConnectionState
	Version   string
	StartTime time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(db, cache Pinger, rabbitMQ ConnectionState, version string) *HealthHandler {
	return &HealthHandler{
		DB:        db,
		Cache:     cache,
		RabbitMQ:  rabbitMQ,
		Version:   version,
		StartTime: time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := map[string]string{
		"database": pingStatus(ctx, h.DB),
		"redis":    pingStatus(ctx, h.Cache),
	}

	switch {
	case h.RabbitMQ == nil:
		deps["rabbitmq"] = "not configured"
	case h.RabbitMQ.IsClosed():
		deps["rabbitmq"] = "unhealthy: connection closed"
	default:
		deps["rabbitmq"] = "healthy"
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

	writeJSON(w, code, HealthResponse{
		Status:       status,
		Version:      h.Version,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	})
}

func pingStatus(ctx context.Context, p Pinger) string {
	if p == nil {
		return "not configured"
	}
	if err := p.PingContext(ctx); err != nil {
		return fmt.Sprintf("unhealthy: %v", err)
	}
	return "healthy"
}
