package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finrecon/payment_recon_app/internal/core/domain"
	portssvc "github.com/finrecon/payment_recon_app/internal/core/ports/services"
)

// healthHandler serves the reconciliation health probe.
type healthHandler struct {
	health portssvc.HealthSvc
}

func registerHealthRoutes(rg *gin.RouterGroup, health portssvc.HealthSvc) {
	h := &healthHandler{health: health}
	rg.GET("/reconciliation/health", h.getHealth)
}

// getHealth godoc
// @Summary Reconciliation health probe
// @Description Reports healthy/warning/critical from processor reachability, stale pending backlog and recent discrepancy volume
// @Tags reconciliation
// @Produce json
// @Success 200 {object} domain.HealthStatus
// @Success 503 {object} domain.HealthStatus "Probe is critical"
// @Router /reconciliation/health [get]
func (h *healthHandler) getHealth(c *gin.Context) {
	status := h.health.GetHealth(c.Request.Context())
	code := http.StatusOK
	if status.Status == domain.HealthCritical {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
