package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lucasaraujosgc-hue/crm/internal/services"
)

// MetricsHandler handles metrics requests
type MetricsHandler struct {
	services *services.Container
	logger   *logrus.Logger
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(services *services.Container, logger *logrus.Logger) *MetricsHandler {
	return &MetricsHandler{
		services: services,
		logger:   logger,
	}
}

// GetMetrics handles metrics request
// @Summary Get application metrics
// @Description Worker pool, browser session, record cache and runtime counters
// @Tags Metrics
// @Produce json
// @Success 200 {object} models.MetricsResponse
// @Router /metrics [get]
func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	h.logger.WithField("request_id", c.GetString("request_id")).Debug("Getting application metrics")
	c.JSON(http.StatusOK, h.services.Metrics())
}
