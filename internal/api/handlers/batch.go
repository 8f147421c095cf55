package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lucasaraujosgc-hue/crm/internal/config"
	"github.com/lucasaraujosgc-hue/crm/internal/models"
	"github.com/lucasaraujosgc-hue/crm/internal/services"
	"github.com/lucasaraujosgc-hue/crm/internal/store"
)

// ProgressSource streams and snapshots batch progress
type ProgressSource interface {
	Stream(ctx context.Context, id string, emit func(event any) error) error
	Snapshot(ctx context.Context, id string) (models.ProgressEvent, error)
}

// BatchHandler handles document uploads and progress
type BatchHandler struct {
	batchService services.BatchServiceInterface
	progress     ProgressSource
	upload       config.UploadConfig
	logger       *logrus.Logger
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(batchService services.BatchServiceInterface, progress ProgressSource, upload config.UploadConfig, logger *logrus.Logger) *BatchHandler {
	return &BatchHandler{
		batchService: batchService,
		progress:     progress,
		upload:       upload,
		logger:       logger,
	}
}

// StartProcessing accepts a document and queues its batch
// @Summary Start processing a document
// @Description Upload a document listing state registrations; each one is looked up in the SEFAZ-BA registry in the background
// @Tags Batches
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document (PDF)"
// @Success 200 {object} models.StartProcessingResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /start-processing [post]
func (h *BatchHandler) StartProcessing(c *gin.Context) {
	requestID := c.GetString("request_id")

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, "File too large", "The document exceeds the upload limit", "FILE_TOO_LARGE")
			return
		}
		respondError(c, http.StatusBadRequest, "No file uploaded", "The request must carry a multipart field named file", "MISSING_FILE")
		return
	}

	if strings.TrimSpace(file.Filename) == "" {
		respondError(c, http.StatusBadRequest, "Empty filename", "The uploaded file has no name", "EMPTY_FILENAME")
		return
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Filename), "."))
	if !h.upload.IsAllowedExtension(ext) {
		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"filename":   file.Filename,
		}).Warn("Rejected document type")
		respondError(c, http.StatusBadRequest, "Invalid file type",
			"Accepted extensions: "+strings.Join(h.upload.AllowedExtensions, ", "), "INVALID_FILE_TYPE")
		return
	}

	if limit := int64(h.upload.MaxSizeMB) << 20; limit > 0 && file.Size > limit {
		respondError(c, http.StatusRequestEntityTooLarge, "File too large", "The document exceeds the upload limit", "FILE_TOO_LARGE")
		return
	}

	batchID := uuid.New().String()
	path := filepath.Join(h.upload.Dir, batchID+"."+ext)
	if err := c.SaveUploadedFile(file, path); err != nil {
		h.logger.WithError(err).WithField("request_id", requestID).Error("Failed to store upload")
		respondError(c, http.StatusInternalServerError, "Internal server error", "The document could not be stored", "STORAGE_ERROR")
		return
	}

	batch, err := h.batchService.StartBatch(c.Request.Context(), services.DocumentUpload{
		ID:       batchID,
		Filename: filepath.Base(file.Filename),
		Path:     path,
	})
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"request_id": requestID,
			"batch_id":   batchID,
		}).Error("Failed to start batch")

		if errors.Is(err, services.ErrQueueFull) || errors.Is(err, services.ErrPoolStopped) {
			_ = os.Remove(path)
			c.Header("Retry-After", "30")
			respondError(c, http.StatusServiceUnavailable, "Service busy", "Too many documents are waiting to be processed. Please try again later", "QUEUE_FULL")
			return
		}
		respondError(c, http.StatusInternalServerError, "Internal server error", "The batch could not be started", "INTERNAL_ERROR")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"batch_id":   batch.ID,
		"filename":   batch.Filename,
		"size":       file.Size,
	}).Info("Document accepted")

	c.JSON(http.StatusOK, models.StartProcessingResponse{ProcessID: batch.ID})
}

// GetProgress streams batch progress as server-sent events
// @Summary Stream batch progress
// @Description Server-sent events with {total, processed, status}; the stream ends once the batch is completed or error. Unknown batches get a single {status: not_found} event. Send Accept: application/json for a one-off snapshot instead.
// @Tags Batches
// @Produce text/event-stream
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} models.ProgressEvent
// @Failure 404 {object} models.ErrorResponse
// @Router /progress/{id} [get]
func (h *BatchHandler) GetProgress(c *gin.Context) {
	id := c.Param("id")

	if accept := c.GetHeader("Accept"); strings.Contains(accept, gin.MIMEJSON) && !strings.Contains(accept, "text/event-stream") {
		h.snapshot(c, id)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	started := time.Now()
	err := h.progress.Stream(c.Request.Context(), id, func(event any) error {
		c.SSEvent("", event)
		c.Writer.Flush()
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		h.logger.WithError(err).WithField("batch_id", id).Warn("Progress stream ended early")
	}

	h.logger.WithFields(logrus.Fields{
		"batch_id": id,
		"duration": time.Since(started),
	}).Debug("Progress stream closed")
}

func (h *BatchHandler) snapshot(c *gin.Context, id string) {
	event, err := h.progress.Snapshot(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.NotFoundEvent)
		return
	}
	if err != nil {
		h.logger.WithError(err).WithField("batch_id", id).Error("Failed to read progress")
		respondError(c, http.StatusInternalServerError, "Internal server error", "Progress is unavailable", "INTERNAL_ERROR")
		return
	}
	c.JSON(http.StatusOK, event)
}

func respondError(c *gin.Context, status int, title, message, code string) {
	c.JSON(status, models.ErrorResponse{
		Error:     title,
		Message:   message,
		Code:      code,
		Timestamp: time.Now(),
		Path:      c.Request.URL.Path,
	})
}
