package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

// HealthHandler reports whether the backing stores answer
type HealthHandler struct {
	postgres *gorm.DB
	mongo    *mongo.Database
	started  time.Time
}

// NewHealthHandler accepts a nil mongo database when chat is disabled
func NewHealthHandler(postgres *gorm.DB, mongo *mongo.Database) *HealthHandler {
	return &HealthHandler{postgres: postgres, mongo: mongo, started: time.Now()}
}

type healthStatus struct {
	Status   string  `json:"status"`
	Service  string  `json:"service"`
	Postgres string  `json:"postgres"`
	Mongo    string  `json:"mongo"`
	Uptime   float64 `json:"uptime_seconds"`
}

// Check answers 503 when Postgres is unreachable. A failing Mongo only
// degrades the status since chat is optional.
func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	status := healthStatus{
		Status:   "healthy",
		Service:  "causeconnect-api",
		Postgres: "up",
		Mongo:    "disabled",
		Uptime:   time.Since(h.started).Seconds(),
	}

	if err := h.pingPostgres(ctx); err != nil {
		status.Postgres = "down"
		status.Status = "unhealthy"
	}
	if h.mongo != nil {
		status.Mongo = "up"
		if err := h.mongo.Client().Ping(ctx, nil); err != nil {
			status.Mongo = "down"
			if status.Status == "healthy" {
				status.Status = "degraded"
			}
		}
	}

	code := http.StatusOK
	if status.Postgres == "down" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, status)
}

func (h *HealthHandler) pingPostgres(ctx context.Context) error {
	sqlDB, err := h.postgres.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
