package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lucasaraujosgc-hue/crm/internal/models"
	"github.com/lucasaraujosgc-hue/crm/internal/services"
)

// Version is reported by the health endpoints
const Version = "1.0.0"

// HealthHandler handles health check requests
type HealthHandler struct {
	services *services.Container
	logger   *logrus.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(services *services.Container, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		services: services,
		logger:   logger,
	}
}

// overallStatus folds per-service statuses: any unhealthy wins, then degraded
func overallStatus(servicesHealth map[string]interface{}) string {
	status := "healthy"
	for _, serviceHealth := range servicesHealth {
		healthMap, ok := serviceHealth.(map[string]interface{})
		if !ok {
			continue
		}
		switch healthMap["status"] {
		case "unhealthy":
			return "unhealthy"
		case "degraded":
			status = "degraded"
		}
	}
	return status
}

// GetHealth handles general health check
// @Summary Health check
// @Description Health of the API and its dependencies
// @Tags Health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Failure 503 {object} models.HealthResponse
// @Router /health [get]
func (h *HealthHandler) GetHealth(c *gin.Context) {
	servicesHealth := h.services.Health()
	status := overallStatus(servicesHealth)

	response := models.HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Version:   Version,
		Services:  make(map[string]models.ServiceInfo, len(servicesHealth)),
		Uptime:    h.services.Uptime().Round(time.Second).String(),
	}

	for name, serviceHealth := range servicesHealth {
		healthMap, ok := serviceHealth.(map[string]interface{})
		if !ok {
			continue
		}
		info := models.ServiceInfo{LastCheck: time.Now()}
		if s, ok := healthMap["status"].(string); ok {
			info.Status = s
		}
		if e, ok := healthMap["error"].(string); ok {
			info.Error = e
		}
		response.Services[name] = info
	}

	httpStatus := http.StatusOK
	if status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}
	c.JSON(httpStatus, response)
}

// GetReadiness handles readiness probe
// @Summary Readiness check
// @Description Ready when the database answers and the worker pool accepts batches
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/ready [get]
func (h *HealthHandler) GetReadiness(c *gin.Context) {
	servicesHealth := h.services.Health()

	issues := make([]string, 0)
	for _, name := range []string{"database", "workers"} {
		healthMap, ok := servicesHealth[name].(map[string]interface{})
		if ok && healthMap["status"] == "unhealthy" {
			issues = append(issues, name+" is unhealthy")
		}
	}

	response := map[string]interface{}{
		"ready":     len(issues) == 0,
		"timestamp": time.Now(),
		"services":  servicesHealth,
	}

	httpStatus := http.StatusOK
	if len(issues) > 0 {
		response["issues"] = issues
		httpStatus = http.StatusServiceUnavailable
		h.logger.WithField("issues", issues).Warn("Service not ready")
	}
	c.JSON(httpStatus, response)
}

// GetLiveness handles liveness probe
// @Summary Liveness check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/live [get]
func (h *HealthHandler) GetLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"alive":     true,
		"timestamp": time.Now(),
		"uptime":    h.services.Uptime().Round(time.Second).String(),
		"version":   Version,
	})
}
