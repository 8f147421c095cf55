package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasaraujosgc-hue/crm/internal/logger"
	"github.com/lucasaraujosgc-hue/crm/internal/models"
	"github.com/lucasaraujosgc-hue/crm/internal/services"
)

func collect(ctx context.Context, t *testing.T, publisher *services.ProgressPublisher, id string) []any {
	t.Helper()
	var events []any
	err := publisher.Stream(ctx, id, func(event any) error {
		events = append(events, event)
		return nil
	})
	require.NoError(t, err)
	return events
}

func TestStreamUnknownBatchEmitsNotFoundOnce(t *testing.T) {
	publisher := services.NewProgressPublisher(newRepo(t), 10*time.Millisecond, logger.Discard())

	events := collect(context.Background(), t, publisher, "missing")
	assert.Equal(t, []any{models.NotFoundEvent}, events)
}

func TestStreamFollowsBatchUntilTerminal(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	startBatch(t, repo, "b1")
	require.NoError(t, repo.SetTotal(ctx, "b1", 3))

	go func() {
		for i := 1; i <= 3; i++ {
			time.Sleep(15 * time.Millisecond)
			_ = repo.UpdateProgress(ctx, "b1", i)
		}
		_ = repo.Finish(ctx, "b1", models.BatchCompleted)
	}()

	publisher := services.NewProgressPublisher(repo, 5*time.Millisecond, logger.Discard())
	events := collect(ctx, t, publisher, "b1")

	require.NotEmpty(t, events)
	last := events[len(events)-1].(models.ProgressEvent)
	assert.Equal(t, models.ProgressEvent{Total: 3, Processed: 3, Status: "completed"}, last)

	previous := -1
	for _, e := range events {
		progress := e.(models.ProgressEvent)
		assert.GreaterOrEqual(t, progress.Processed, previous)
		assert.LessOrEqual(t, progress.Processed, progress.Total)
		previous = progress.Processed
	}
}

func TestStreamOfFinishedBatchEmitsOnce(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	startBatch(t, repo, "b1")
	require.NoError(t, repo.SetTotal(ctx, "b1", 0))
	require.NoError(t, repo.Finish(ctx, "b1", models.BatchCompleted))

	publisher := services.NewProgressPublisher(repo, time.Millisecond, logger.Discard())
	events := collect(ctx, t, publisher, "b1")

	assert.Equal(t, []any{models.ProgressEvent{Total: 0, Processed: 0, Status: "completed"}}, events)
}

func TestStreamStopsWithContext(t *testing.T) {
	repo := newRepo(t)
	startBatch(t, repo, "b1")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	publisher := services.NewProgressPublisher(repo, 5*time.Millisecond, logger.Discard())
	err := publisher.Stream(ctx, "b1", func(any) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	b, err := repo.GetBatch(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, models.BatchProcessing, b.Status, "observers never change the batch")
}
