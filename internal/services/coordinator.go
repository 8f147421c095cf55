package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/lucasaraujosgc-hue/crm/internal/logger"
	"github.com/lucasaraujosgc-hue/crm/internal/models"
)

// BatchCoordinator runs the per-identifier loop of one batch and is the only
// writer of its state
type BatchCoordinator struct {
	repo      BatchRepository
	scanner   *IdentifierScanner
	sessions  SessionFactory
	lookup    *LookupProtocol
	extractor *RecordExtractor
	cache     RecordCacheInterface
	logger    *logrus.Logger
}

// NewBatchCoordinator wires a coordinator. cache may be nil.
func NewBatchCoordinator(
	repo BatchRepository,
	scanner *IdentifierScanner,
	sessions SessionFactory,
	lookup *LookupProtocol,
	extractor *RecordExtractor,
	cache RecordCacheInterface,
	logger *logrus.Logger,
) *BatchCoordinator {
	return &BatchCoordinator{
		repo:      repo,
		scanner:   scanner,
		sessions:  sessions,
		lookup:    lookup,
		extractor: extractor,
		cache:     cache,
		logger:    logger,
	}
}

// Run processes the document at path for an existing batch and leaves the
// batch in a terminal status on every path. Cancelling ctx stops the loop
// before the next identifier; state writes are not cancelled.
func (c *BatchCoordinator) Run(ctx context.Context, batchID, path string) {
	log := logger.WithBatch(c.logger, batchID)
	writeCtx := context.WithoutCancel(ctx)

	status := models.BatchCompleted
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Batch aborted")
			status = models.BatchError
		}
		c.finish(writeCtx, log, batchID, status)
	}()

	if err := c.process(ctx, writeCtx, log, batchID, path); err != nil {
		log.WithError(err).Error("Batch failed")
		status = models.BatchError
	}
}

func (c *BatchCoordinator) process(ctx, writeCtx context.Context, log *logrus.Entry, batchID, path string) error {
	identifiers := c.scanner.ScanFile(path)
	if err := c.repo.SetTotal(writeCtx, batchID, len(identifiers)); err != nil {
		return fmt.Errorf("set total: %w", err)
	}

	log.WithField("total", len(identifiers)).Info("Batch started")
	if len(identifiers) == 0 {
		return nil
	}

	session, err := c.sessions.NewSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.WithError(err).Warn("Failed to close session")
		}
	}()

	for i, ie := range identifiers {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w after %d of %d: %v", ErrInterrupted, i, len(identifiers), err)
		}

		if c.processItem(ctx, writeCtx, log, session, batchID, ie) {
			return fmt.Errorf("%w after %d of %d: %v", ErrInterrupted, i, len(identifiers), ctx.Err())
		}

		if err := c.repo.UpdateProgress(writeCtx, batchID, i+1); err != nil {
			log.WithError(err).WithField("processed", i+1).Error("Failed to commit progress")
		}
	}

	return nil
}

// processItem never lets a failure for one identifier reach the loop. It
// reports interrupted when shutdown cut the lookup short; that item is
// neither recorded nor counted.
func (c *BatchCoordinator) processItem(ctx, writeCtx context.Context, log *logrus.Entry, session Session, batchID, ie string) (interrupted bool) {
	itemLog := log.WithField("inscricao_estadual", ie)

	defer func() {
		if r := recover(); r != nil {
			itemLog.WithField("panic", r).Error("Item aborted")
		}
	}()

	result := c.resolve(ctx, session, ie)
	if !result.Succeeded() && ctx.Err() != nil {
		itemLog.Warn("Lookup cut short by shutdown, item not recorded")
		return true
	}
	result.BatchID = batchID

	if err := c.repo.AppendResult(writeCtx, result); err != nil {
		itemLog.WithError(err).Error("Failed to persist result")
		return false
	}

	itemLog.WithField("status", result.Status).Debug("Item processed")
	return false
}

func (c *BatchCoordinator) resolve(ctx context.Context, session Session, ie string) *models.Result {
	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, ie); ok {
			return cached
		}
	}

	if !c.lookup.Lookup(ctx, session, ie) {
		return models.NavigationFailure("", ie)
	}

	result := c.extractor.Extract(ctx, session, ie)
	if c.cache != nil {
		c.cache.Set(ctx, ie, &result)
	}
	return &result
}

func (c *BatchCoordinator) finish(ctx context.Context, log *logrus.Entry, batchID string, status models.BatchStatus) {
	if err := c.repo.Finish(ctx, batchID, status); err != nil {
		log.WithError(err).WithField("status", status).Error("Failed to finish batch")
		return
	}
	log.WithField("status", status).Info("Batch finished")
}
