// Package api provides the gin HTTP handlers of the pathfinder service.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/pathfinder/internal/ws"
)

// Pinger reports store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessCheck is an extra named probe run by the readiness endpoint.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	store     Pinger
	hub       *ws.Hub
	log       *logrus.Logger
	version   string
	backend   string
	checks    []ReadinessCheck
	startTime time.Time
}

// NewHealthHandler creates a HealthHandler. store and hub may be nil.
func NewHealthHandler(store Pinger, hub *ws.Hub, log *logrus.Logger, version, backend string, checks ...ReadinessCheck) *HealthHandler {
	return &HealthHandler{
		store:     store,
		hub:       hub,
		log:       log,
		version:   version,
		backend:   backend,
		checks:    checks,
		startTime: time.Now(),
	}
}

// readinessResponse is the JSON payload returned by the readiness endpoint.
type readinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// healthResponse is the JSON payload returned by the health/liveness endpoint.
type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Backend       string  `json:"backend"`
	Store         string  `json:"store"`
	Subscribers   int     `json:"subscribers"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Liveness handles GET /api/v1/health. A store outage does not fail liveness.
func (h *HealthHandler) Liveness(c *gin.Context) {
	resp := healthResponse{
		Status:        "ok",
		Version:       h.version,
		Backend:       h.backend,
		Store:         "connected",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.store.Ping(ctx); err != nil {
			resp.Store = "disconnected"
		}
	} else {
		resp.Store = "not_configured"
	}

	if h.hub != nil {
		resp.Subscribers = h.hub.ClientCount()
	}

	c.JSON(http.StatusOK, resp)
}

// Readiness handles GET /api/v1/ready: the store must answer a ping and every
// extra check must pass.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := map[string]string{"store": "ok"}
	status := "ready"
	statusCode := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	fail := func(name string, err error) {
		h.log.WithError(err).Errorf("readiness: %s check failed", name)
		checks[name] = "error"
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	if h.store == nil {
		checks["store"] = "not_configured"
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	} else if err := h.store.Ping(ctx); err != nil {
		fail("store", err)
	}

	for _, chk := range h.checks {
		if checks["store"] != "ok" {
			checks[chk.Name] = "unknown"

			continue
		}

		checks[chk.Name] = "ok"
		if err := chk.Check(ctx); err != nil {
			fail(chk.Name, err)
		}
	}

	c.JSON(statusCode, readinessResponse{
		Status: status,
		Checks: checks,
	})
}
