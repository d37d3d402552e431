package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

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

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreStatus reports whether the key-value store is persisting durably.
type StoreStatus interface {
	Durable(ctx context.Context) bool
}

// HealthDependenciesHandler handles GET /health/ready, the readiness probe.
// A store running on its memory fallback is reported as degraded but still
// ready, since every operation keeps working for the life of the process.
type HealthDependenciesHandler struct {
	deps  map[string]Pinger
	store StoreStatus
}

func NewHealthDependenciesHandler(deps map[string]Pinger, store StoreStatus) *HealthDependenciesHandler {
	return &HealthDependenciesHandler{deps: deps, store: store}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Store        string                      `json:"store"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.deps))
	healthy := true

	for name, p := range h.deps {
		if err := p.Ping(ctx); err != nil {
			deps[name] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
			continue
		}
		deps[name] = dependencyStatus{Status: "ok"}
	}

	store := "memory"
	if h.store != nil && h.store.Durable(ctx) {
		store = "durable"
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Store:        store,
		Dependencies: deps,
	})
}
