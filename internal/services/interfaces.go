package services

import (
	"context"
	"time"

	"github.com/lucasaraujosgc-hue/crm/internal/models"
)

// BatchRepository is the only state shared between a batch worker and the
// observers of its progress
type BatchRepository interface {
	// CreateBatch inserts a batch in the processing state
	CreateBatch(ctx context.Context, batch *models.Batch) error

	// SetTotal records the identifier count, once per batch
	SetTotal(ctx context.Context, id string, total int) error

	// UpdateProgress commits the processed count
	UpdateProgress(ctx context.Context, id string, processed int) error

	// Finish moves the batch to a terminal status
	Finish(ctx context.Context, id string, status models.BatchStatus) error

	// AppendResult persists one lookup outcome
	AppendResult(ctx context.Context, result *models.Result) error

	// GetBatch loads the current batch state
	GetBatch(ctx context.Context, id string) (*models.Batch, error)
}

// ResultRepository serves result queries and campaign follow-up
type ResultRepository interface {
	ListResults(ctx context.Context) ([]models.Result, error)
	ListBatchResults(ctx context.Context, batchID string) ([]models.Result, error)
	UpdateCampaignStatus(ctx context.Context, id int64, status models.CampaignStatus, notes *string, contactedAt *time.Time) error
}

// BatchServiceInterface defines the batch operations exposed over HTTP
type BatchServiceInterface interface {
	// StartBatch registers an uploaded document and queues its processing
	StartBatch(ctx context.Context, upload DocumentUpload) (*models.Batch, error)

	// GetBatch returns the current state of a batch
	GetBatch(ctx context.Context, id string) (*models.Batch, error)

	// ListResults returns all results across batches
	ListResults(ctx context.Context) ([]models.Result, error)

	// ListBatchResults returns the results of one batch
	ListBatchResults(ctx context.Context, batchID string) ([]models.Result, error)

	// UpdateCampaignStatus records follow-up progress on a result
	UpdateCampaignStatus(ctx context.Context, resultID int64, status models.CampaignStatus, notes *string) error

	// Health returns service health status
	Health() map[string]interface{}
}

// SessionFactory starts browsing sessions
type SessionFactory interface {
	// NewSession starts a session or fails with *SessionInitError
	NewSession(ctx context.Context) (Session, error)
}

// Session is one automated browsing session, owned by a single batch
type Session interface {
	// Navigate loads address
	Navigate(ctx context.Context, address string) error

	// WaitFor blocks until cond holds or timeout elapses
	WaitFor(ctx context.Context, cond Condition, timeout time.Duration) error

	// Fill clears the target input and types value
	Fill(ctx context.Context, target Locator, value string) error

	// Click clicks the target element
	Click(ctx context.Context, target Locator) error

	// CurrentMarkup returns the rendered document
	CurrentMarkup(ctx context.Context) (string, error)

	// Close releases the session; calling it again is a no-op
	Close() error
}

// DocumentReader turns a stored document into page texts
type DocumentReader interface {
	ReadPages(path string) ([]string, error)
}

// RecordCacheInterface keeps successful lookups by identifier
type RecordCacheInterface interface {
	// Get returns a cached record for the identifier
	Get(ctx context.Context, inscricao string) (*models.Result, bool)

	// Set stores a successful record
	Set(ctx context.Context, inscricao string, result *models.Result)

	// Enabled reports whether lookups may be served from the cache
	Enabled() bool

	// Stats returns cache statistics
	Stats() models.CacheMetrics

	// Health returns cache health status
	Health() map[string]interface{}
}
