package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/agencycrm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ReadyCheck probes one backing dependency
type ReadyCheck struct {
	Name  string
	Probe func(ctx context.Context) error
}

// SystemHandler handles health and readiness endpoints
type SystemHandler struct {
	BaseHandler
	startTime time.Time
	checks    []ReadyCheck
}

// NewSystemHandler creates a system handler with the given readiness probes
func NewSystemHandler(checks ...ReadyCheck) *SystemHandler {
	return &SystemHandler{
		startTime: time.Now(),
		checks:    checks,
	}
}

// HealthResponse reports liveness
type HealthResponse struct {
	Status    string `json:"status"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health handles GET /health. Always succeeds while the process is up.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(HealthResponse{
		Status:    "ok",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}))
}

// ReadyResponse reports per-dependency readiness
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Ready handles GET /ready, probing every registered dependency with a
// short deadline. Any failure yields 503.
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := ReadyResponse{Status: "ready", Checks: make(map[string]string, len(h.checks))}
	healthy := true
	for _, check := range h.checks {
		if err := check.Probe(ctx); err != nil {
			resp.Checks[check.Name] = err.Error()
			healthy = false
			continue
		}
		resp.Checks[check.Name] = "ok"
	}

	if !healthy {
		resp.Status = "degraded"
		c.JSON(http.StatusServiceUnavailable, dto.NewSuccessResponse(resp))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
