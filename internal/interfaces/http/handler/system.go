package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wms/inventory/internal/interfaces/http/dto"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping() error
}

// SystemHandler exposes service health
type SystemHandler struct {
	BaseHandler
	db        Pinger
	startedAt time.Time
	version   string
}

// NewSystemHandler creates a new SystemHandler. db may be nil when no
// database is wired (tests).
func NewSystemHandler(db Pinger, version string) *SystemHandler {
	return &SystemHandler{
		db:        db,
		startedAt: time.Now(),
		version:   version,
	}
}

// RegisterRoutes registers system routes on the API group
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

// HealthResponse reports service liveness and dependency status
type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version,omitempty"`
	Uptime   string            `json:"uptime"`
	Checks   map[string]string `json:"checks,omitempty"`
	Degraded bool              `json:"degraded,omitempty"`
}

// Health reports liveness plus a bounded database ping
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:  "ok",
		Version: h.version,
		Uptime:  time.Since(h.startedAt).Round(time.Second).String(),
		Checks:  map[string]string{},
	}

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			resp.Checks["database"] = "unreachable"
			resp.Degraded = true
		} else {
			resp.Checks["database"] = "ok"
		}
	}

	status := http.StatusOK
	if resp.Degraded {
		status = http.StatusServiceUnavailable
		resp.Status = "degraded"
	}
	c.JSON(status, dto.NewSuccessResponse(resp))
}
