package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const readinessTimeout = 3 * time.Second

// HealthHandler handles GET /health, the liveness probe.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// ReadinessHandler handles GET /health/ready, the readiness probe. The portal
// core is ready when the shipment store and the notification suppression
// store both answer; a degraded answer keeps the pod out of rotation without
// restarting it.
type ReadinessHandler struct {
	checks []dependencyCheck
}

type dependencyCheck struct {
	name  string
	probe func(ctx context.Context) error
}

func NewReadinessHandler(db *mongo.Database, rdb *redis.Client) *ReadinessHandler {
	return &ReadinessHandler{
		checks: []dependencyCheck{
			{
				name: "mongodb",
				probe: func(ctx context.Context) error {
					return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
				},
			},
			{
				name: "redis",
				probe: func(ctx context.Context) error {
					return rdb.Ping(ctx).Err()
				},
			},
		},
	}
}

type dependencyStatus struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.checks))
	healthy := true

	for _, check := range h.checks {
		start := time.Now()
		err := check.probe(ctx)
		status := dependencyStatus{
			Status:    "ok",
			LatencyMS: time.Since(start).Milliseconds(),
		}
		if err != nil {
			status.Status = "unhealthy"
			status.Error = err.Error()
			healthy = false
		}
		deps[check.name] = status
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
