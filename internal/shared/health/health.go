package health

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"restaurant-waste/internal/shared/util"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Dependencies lists what a service pings. Nil fields are skipped.
type Dependencies struct {
	DB     *pgxpool.Pool
	RMQ    *amqp091.Connection
	Redis  *redis.Client
	Checks map[string]func(ctx context.Context) error
}

// Handler creates a health check handler for a service
func Handler(serviceName string, deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := HealthResponse{
			Status:    "healthy",
			Service:   serviceName,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    make(map[string]string),
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		record := func(name string, err error) {
			if err != nil {
				health.Status = "unhealthy"
				health.Checks[name] = "down"
				return
			}
			health.Checks[name] = "up"
		}

		if deps.DB != nil {
			record("database", deps.DB.Ping(ctx))
		}
		if deps.RMQ != nil {
			var err error
			if deps.RMQ.IsClosed() {
				err = amqp091.ErrClosed
			}
			record("rabbitmq", err)
		}
		if deps.Redis != nil {
			record("redis", deps.Redis.Ping(ctx).Err())
		}
		for name, check := range deps.Checks {
			record(name, check(ctx))
		}

		statusCode := http.StatusOK
		if health.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}
		util.ResponseInJson(w, statusCode, health)
	}
}
