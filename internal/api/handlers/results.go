package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lucasaraujosgc-hue/crm/internal/models"
	"github.com/lucasaraujosgc-hue/crm/internal/services"
	"github.com/lucasaraujosgc-hue/crm/internal/store"
)

// ResultsHandler serves lookup results and campaign follow-up
type ResultsHandler struct {
	batchService services.BatchServiceInterface
	logger       *logrus.Logger
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(batchService services.BatchServiceInterface, logger *logrus.Logger) *ResultsHandler {
	return &ResultsHandler{
		batchService: batchService,
		logger:       logger,
	}
}

// GetAllResults lists every stored result
// @Summary List all results
// @Description All lookup results across batches, newest first
// @Tags Results
// @Produce json
// @Success 200 {array} models.ResultSummary
// @Failure 500 {object} models.ErrorResponse
// @Router /get-all-results [get]
func (h *ResultsHandler) GetAllResults(c *gin.Context) {
	results, err := h.batchService.ListResults(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("Failed to list results")
		respondError(c, http.StatusInternalServerError, "Internal server error", "Results are unavailable", "INTERNAL_ERROR")
		return
	}

	summaries := make([]models.ResultSummary, 0, len(results))
	for _, r := range results {
		summaries = append(summaries, models.NewResultSummary(r))
	}
	c.JSON(http.StatusOK, summaries)
}

// GetBatchResults lists the results of one batch
// @Summary List batch results
// @Description Results of one batch in processing order
// @Tags Results
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} models.BatchResultsResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /get-results/{id} [get]
func (h *ResultsHandler) GetBatchResults(c *gin.Context) {
	id := c.Param("id")

	results, err := h.batchService.ListBatchResults(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, http.StatusNotFound, "Batch not found", "No batch with this id", "BATCH_NOT_FOUND")
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("batch_id", id).Error("Failed to list batch results")
		respondError(c, http.StatusInternalServerError, "Internal server error", "Results are unavailable", "INTERNAL_ERROR")
		return
	}

	items := make([]models.BatchResultItem, 0, len(results))
	for _, r := range results {
		items = append(items, models.NewBatchResultItem(r))
	}
	c.JSON(http.StatusOK, models.BatchResultsResponse{Results: items})
}

// UpdateCampaignStatus records follow-up on one result
// @Summary Update campaign status
// @Description Move a result through the campaign workflow; any status other than pending records the contact time
// @Tags Results
// @Accept json
// @Produce json
// @Param id path int true "Result ID"
// @Param request body models.CampaignStatusRequest true "New status"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /results/{id}/campaign-status [patch]
func (h *ResultsHandler) UpdateCampaignStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "Invalid result id", "The result id must be a positive integer", "INVALID_ID")
		return
	}

	var req models.CampaignStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request", err.Error(), "INVALID_REQUEST")
		return
	}

	err = h.batchService.UpdateCampaignStatus(c.Request.Context(), id, req.CampaignStatus, req.Notes)
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(c, http.StatusNotFound, "Result not found", "No result with this id", "RESULT_NOT_FOUND")
	case errors.Is(err, services.ErrInvalidCampaignStatus):
		respondError(c, http.StatusBadRequest, "Invalid request", err.Error(), "INVALID_REQUEST")
	case err != nil:
		h.logger.WithError(err).WithField("result_id", id).Error("Failed to update campaign status")
		respondError(c, http.StatusInternalServerError, "Internal server error", "The result could not be updated", "INTERNAL_ERROR")
	default:
		c.Status(http.StatusNoContent)
	}
}
