package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lucasaraujosgc-hue/crm/internal/models"
)

// DocumentUpload is an accepted document already stored on disk
type DocumentUpload struct {
	ID       string
	Filename string
	Path     string
}

// BatchService accepts documents and serves batch state
type BatchService struct {
	batches     BatchRepository
	results     ResultRepository
	pool        *WorkerPool
	coordinator *BatchCoordinator
	logger      *logrus.Logger
	now         func() time.Time
}

// NewBatchService creates a batch service
func NewBatchService(
	batches BatchRepository,
	results ResultRepository,
	pool *WorkerPool,
	coordinator *BatchCoordinator,
	logger *logrus.Logger,
) *BatchService {
	return &BatchService{
		batches:     batches,
		results:     results,
		pool:        pool,
		coordinator: coordinator,
		logger:      logger,
		now:         time.Now,
	}
}

// StartBatch creates the batch row and queues its processing. When the pool
// refuses the task the batch is closed as error and the refusal returned.
func (s *BatchService) StartBatch(ctx context.Context, upload DocumentUpload) (*models.Batch, error) {
	batch := &models.Batch{
		ID:       upload.ID,
		Filename: upload.Filename,
		Status:   models.BatchProcessing,
	}
	if err := s.batches.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}

	log := s.logger.WithFields(logrus.Fields{
		"batch_id": batch.ID,
		"filename": batch.Filename,
	})

	err := s.pool.Submit(batch.ID, func(workerCtx context.Context) {
		s.coordinator.Run(workerCtx, batch.ID, upload.Path)
	})
	if err != nil {
		log.WithError(err).Warn("Batch rejected by worker pool")
		if finishErr := s.batches.Finish(context.WithoutCancel(ctx), batch.ID, models.BatchError); finishErr != nil {
			log.WithError(finishErr).Error("Failed to close rejected batch")
		}
		return nil, err
	}

	log.Info("Batch queued")
	return batch, nil
}

// GetBatch returns the current state of a batch
func (s *BatchService) GetBatch(ctx context.Context, id string) (*models.Batch, error) {
	return s.batches.GetBatch(ctx, id)
}

// ListResults returns all results across batches
func (s *BatchService) ListResults(ctx context.Context) ([]models.Result, error) {
	return s.results.ListResults(ctx)
}

// ListBatchResults returns the results of one batch
func (s *BatchService) ListBatchResults(ctx context.Context, batchID string) ([]models.Result, error) {
	return s.results.ListBatchResults(ctx, batchID)
}

// UpdateCampaignStatus records follow-up progress. Any status past pending
// stamps the contact time; returning to pending clears it.
func (s *BatchService) UpdateCampaignStatus(ctx context.Context, resultID int64, status models.CampaignStatus, notes *string) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCampaignStatus, status)
	}

	var contactedAt *time.Time
	if status != models.CampaignPending {
		now := s.now().UTC()
		contactedAt = &now
	}

	if err := s.results.UpdateCampaignStatus(ctx, resultID, status, notes, contactedAt); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"result_id":       resultID,
		"campaign_status": status,
	}).Info("Campaign status updated")
	return nil
}

// Health returns service health status
func (s *BatchService) Health() map[string]interface{} {
	stats := s.pool.Stats()
	status := "healthy"
	if !s.pool.IsRunning() {
		status = "unhealthy"
	}
	return map[string]interface{}{
		"status":  status,
		"workers": stats.Workers,
		"active":  stats.Active,
		"queued":  stats.Queued,
	}
}
