package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/lucasaraujosgc-hue/crm/internal/models"
)

// BatchStore persists batches and their results in SQLite.
// It is safe for concurrent use; every write is a single statement.
type BatchStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewBatchStore creates a store on an opened and migrated database
func NewBatchStore(db *sql.DB) *BatchStore {
	return &BatchStore{db: db, now: time.Now}
}

var batchColumns = []string{"id", "filename", "total", "processed", "status", "start_time", "end_time"}

// CreateBatch inserts a batch in the processing state
func (s *BatchStore) CreateBatch(ctx context.Context, b *models.Batch) error {
	if b.StartTime.IsZero() {
		b.StartTime = s.now()
	}
	b.Status = models.BatchProcessing
	b.Processed = 0
	b.EndTime = nil

	query, args, err := builder.Insert("batches").
		Columns("id", "filename", "processed", "status", "start_time").
		Values(b.ID, b.Filename, 0, string(models.BatchProcessing), formatTime(b.StartTime)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert batch: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert batch %s: %w", b.ID, err)
	}
	return nil
}

// SetTotal records the identifier count. It succeeds once per batch.
func (s *BatchStore) SetTotal(ctx context.Context, id string, total int) error {
	if total < 0 {
		return fmt.Errorf("%w: negative total %d", ErrInvalidProgress, total)
	}

	query, args, err := builder.Update("batches").
		Set("total", total).
		Where(sq.Eq{"id": id, "total": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set total: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set total for %s: %w", id, err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		if _, err := s.GetBatch(ctx, id); err != nil {
			return err
		}
		return ErrTotalAlreadySet
	}
	return nil
}

// UpdateProgress commits the processed count. The count never decreases and
// never exceeds the batch total.
func (s *BatchStore) UpdateProgress(ctx context.Context, id string, processed int) error {
	query, args, err := builder.Update("batches").
		Set("processed", processed).
		Where(sq.Eq{"id": id, "status": string(models.BatchProcessing)}).
		Where(sq.LtOrEq{"processed": processed}).
		Where(sq.GtOrEq{"total": processed}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update progress: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update progress for %s: %w", id, err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	batch, err := s.GetBatch(ctx, id)
	if err != nil {
		return err
	}
	if batch.Status.IsTerminal() {
		return ErrNotProcessing
	}
	return fmt.Errorf("%w: %d (processed %d, total %d)", ErrInvalidProgress, processed, batch.Processed, batch.Total)
}

// Finish moves a processing batch to a terminal status and stamps its end time
func (s *BatchStore) Finish(ctx context.Context, id string, status models.BatchStatus) error {
	if !status.IsTerminal() {
		return fmt.Errorf("finish batch %s: %q is not a terminal status", id, status)
	}

	query, args, err := builder.Update("batches").
		Set("status", string(status)).
		Set("end_time", formatTime(s.now())).
		Where(sq.Eq{"id": id, "status": string(models.BatchProcessing)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build finish batch: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("finish batch %s: %w", id, err)
	}
	ok, err := affected(res)
	if err != nil {
		return err
	}
	if !ok {
		if _, err := s.GetBatch(ctx, id); err != nil {
			return err
		}
		return ErrNotProcessing
	}
	return nil
}

// GetBatch loads one batch
func (s *BatchStore) GetBatch(ctx context.Context, id string) (*models.Batch, error) {
	query, args, err := builder.Select(batchColumns...).
		From("batches").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get batch: %w", err)
	}

	var (
		b         models.Batch
		total     sql.NullInt64
		status    string
		startTime string
		endTime   sql.NullString
	)
	err = s.db.QueryRowContext(ctx, query, args...).
		Scan(&b.ID, &b.Filename, &total, &b.Processed, &status, &startTime, &endTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get batch %s: %w", id, err)
	}

	b.Total = int(total.Int64)
	b.TotalKnown = total.Valid
	b.Status = models.BatchStatus(status)
	b.StartTime = parseTime(startTime)
	b.EndTime = nullTime(endTime)
	return &b, nil
}

// FailInterrupted marks every batch still processing as failed. It runs at
// startup, before any worker exists, to close batches orphaned by a restart.
func (s *BatchStore) FailInterrupted(ctx context.Context) (int64, error) {
	query, args, err := builder.Update("batches").
		Set("status", string(models.BatchError)).
		Set("end_time", formatTime(s.now())).
		Where(sq.Eq{"status": string(models.BatchProcessing)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build fail interrupted: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("fail interrupted batches: %w", err)
	}
	return res.RowsAffected()
}

// Ping checks the database connection
func (s *BatchStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
