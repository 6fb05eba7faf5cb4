package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docbench/internal/domain"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	unavailable map[domain.Vendor]error
}

// NewHealthHandler creates a new HealthHandler. unavailable holds the reason
// for every vendor whose client could not be configured.
func NewHealthHandler(unavailable map[domain.Vendor]error) *HealthHandler {
	return &HealthHandler{unavailable: unavailable}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. The service is ready while at least one
// vendor is configured.
func (h *HealthHandler) Readiness(c *gin.Context) {
	vendors := gin.H{}
	configured := 0
	for _, v := range domain.KnownVendors {
		if err, ok := h.unavailable[v]; ok {
			vendors[string(v)] = gin.H{"configured": false, "reason": err.Error()}
			continue
		}
		configured++
		vendors[string(v)] = gin.H{"configured": true}
	}

	if configured == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "vendors": vendors})
		return
	}
	status := "ok"
	if configured < len(domain.KnownVendors) {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "vendors": vendors})
}
