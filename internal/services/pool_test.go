package services_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucasaraujosgc-hue/crm/internal/logger"
	"github.com/lucasaraujosgc-hue/crm/internal/services"
)

func TestWorkerPoolRunsTasks(t *testing.T) {
	pool := services.NewWorkerPool(2, 10, logger.Discard())
	pool.Start()

	var ran int64
	for i := 0; i < 5; i++ {
		require.NoError(t, pool.Submit("task", func(context.Context) { atomic.AddInt64(&ran, 1) }))
	}

	require.NoError(t, pool.Stop(context.Background()))
	assert.Equal(t, int64(5), atomic.LoadInt64(&ran))
	assert.Equal(t, int64(5), pool.Stats().Completed)
}

func TestWorkerPoolClampsWorkers(t *testing.T) {
	assert.Equal(t, 1, services.NewWorkerPool(0, 1, logger.Discard()).Stats().Workers)
	assert.Equal(t, 10, services.NewWorkerPool(50, 1, logger.Discard()).Stats().Workers)
}

func TestWorkerPoolRejectsWhenFull(t *testing.T) {
	pool := services.NewWorkerPool(1, 1, logger.Discard())
	pool.Start()
	defer func() { _ = pool.Stop(context.Background()) }()

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, pool.Submit("blocking", func(context.Context) {
		close(started)
		<-release
	}))
	<-started

	require.NoError(t, pool.Submit("queued", func(context.Context) {}))
	assert.ErrorIs(t, pool.Submit("overflow", func(context.Context) {}), services.ErrQueueFull)
	close(release)
}

func TestWorkerPoolSurvivesPanics(t *testing.T) {
	pool := services.NewWorkerPool(1, 4, logger.Discard())
	pool.Start()

	var ran int64
	require.NoError(t, pool.Submit("bad", func(context.Context) { panic("boom") }))
	require.NoError(t, pool.Submit("good", func(context.Context) { atomic.AddInt64(&ran, 1) }))
	require.NoError(t, pool.Stop(context.Background()))

	assert.Equal(t, int64(1), atomic.LoadInt64(&ran))
	assert.Equal(t, int64(1), pool.Stats().Failed)
}

func TestWorkerPoolStopCancelsTasks(t *testing.T) {
	pool := services.NewWorkerPool(1, 4, logger.Discard())
	pool.Start()

	cancelled := make(chan struct{})
	require.NoError(t, pool.Submit("long", func(ctx context.Context) {
		<-ctx.Done()
		close(cancelled)
	}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pool.Stop(ctx))
	<-cancelled

	assert.ErrorIs(t, pool.Submit("late", func(context.Context) {}), services.ErrPoolStopped)
}
