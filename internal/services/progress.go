package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lucasaraujosgc-hue/crm/internal/models"
	"github.com/lucasaraujosgc-hue/crm/internal/store"
)

// BatchReader is the read side used by observers of a batch
type BatchReader interface {
	GetBatch(ctx context.Context, id string) (*models.Batch, error)
}

// ProgressPublisher turns persisted batch state into a stream of snapshots.
// It never writes.
type ProgressPublisher struct {
	repo     BatchReader
	interval time.Duration
	logger   *logrus.Logger
}

// NewProgressPublisher creates a publisher polling every interval
func NewProgressPublisher(repo BatchReader, interval time.Duration, logger *logrus.Logger) *ProgressPublisher {
	if interval <= 0 {
		interval = time.Second
	}
	return &ProgressPublisher{
		repo:     repo,
		interval: interval,
		logger:   logger,
	}
}

// Stream calls emit with a models.ProgressEvent whenever the processed count
// changes and once more when the batch is terminal, then returns. An unknown
// batch yields a single models.NotFoundEvent. Stream returns early when ctx
// ends or emit fails; neither affects the batch.
func (p *ProgressPublisher) Stream(ctx context.Context, id string, emit func(event any) error) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	lastProcessed := -1
	for {
		batch, err := p.repo.GetBatch(ctx, id)
		switch {
		case errors.Is(err, store.ErrNotFound):
			return emit(models.NotFoundEvent)
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.WithError(err).WithField("batch_id", id).Warn("Failed to read batch progress")
		default:
			terminal := batch.Status.IsTerminal()
			if batch.Processed != lastProcessed || terminal {
				if err := emit(batch.Progress()); err != nil {
					return err
				}
				lastProcessed = batch.Processed
			}
			if terminal {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Snapshot returns the current progress of a batch
func (p *ProgressPublisher) Snapshot(ctx context.Context, id string) (models.ProgressEvent, error) {
	batch, err := p.repo.GetBatch(ctx, id)
	if err != nil {
		return models.ProgressEvent{}, err
	}
	return batch.Progress(), nil
}
