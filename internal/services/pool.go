package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/lucasaraujosgc-hue/crm/internal/models"
)

const (
	minWorkerPoolSize     = 1
	maxWorkerPoolSize     = 10
	defaultJobQueueBuffer = 100
)

// Task is one unit of background work. ctx is cancelled when the pool stops.
type Task func(ctx context.Context)

type job struct {
	name string
	run  Task
}

// WorkerPool runs batches on a fixed number of goroutines
type WorkerPool struct {
	numWorkers int
	jobs       chan job
	logger     *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mutex     sync.RWMutex
	isRunning bool

	active    int64
	submitted int64
	completed int64
	failed    int64
}

// NewWorkerPool creates a pool; numWorkers is clamped to 1..10
func NewWorkerPool(numWorkers, queueSize int, logger *logrus.Logger) *WorkerPool {
	numWorkers = validateWorkerCount(numWorkers)
	if queueSize <= 0 {
		queueSize = defaultJobQueueBuffer
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		numWorkers: numWorkers,
		jobs:       make(chan job, queueSize),
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func validateWorkerCount(n int) int {
	if n < minWorkerPoolSize {
		return minWorkerPoolSize
	}
	if n > maxWorkerPoolSize {
		return maxWorkerPoolSize
	}
	return n
}

// Start launches the workers
func (wp *WorkerPool) Start() {
	wp.mutex.Lock()
	defer wp.mutex.Unlock()

	if wp.isRunning {
		return
	}
	wp.isRunning = true

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}

	wp.logger.WithField("workers", wp.numWorkers).Info("Worker pool started")
}

// Submit queues a task without blocking
func (wp *WorkerPool) Submit(name string, task Task) error {
	wp.mutex.RLock()
	defer wp.mutex.RUnlock()

	if !wp.isRunning {
		return ErrPoolStopped
	}

	select {
	case wp.jobs <- job{name: name, run: task}:
		atomic.AddInt64(&wp.submitted, 1)
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop cancels running tasks, lets queued ones observe the cancellation and
// waits for the workers until ctx ends
func (wp *WorkerPool) Stop(ctx context.Context) error {
	wp.mutex.Lock()
	if !wp.isRunning {
		wp.mutex.Unlock()
		return nil
	}
	wp.isRunning = false
	wp.cancel()
	close(wp.jobs)
	wp.mutex.Unlock()

	wp.logger.Info("Stopping worker pool...")

	done := make(chan struct{})
	go func() {
		wp.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		wp.logger.Info("Worker pool stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker pool did not stop: %w", ctx.Err())
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	log := wp.logger.WithField("worker_id", id)
	log.Debug("Worker started")

	for j := range wp.jobs {
		wp.execute(log, j)
	}

	log.Debug("Worker stopped")
}

func (wp *WorkerPool) execute(log *logrus.Entry, j job) {
	atomic.AddInt64(&wp.active, 1)
	defer atomic.AddInt64(&wp.active, -1)

	defer func() {
		if r := recover(); r != nil {
			atomic.AddInt64(&wp.failed, 1)
			log.WithFields(logrus.Fields{
				"job":   j.name,
				"panic": r,
			}).Error("Task panicked")
			return
		}
		atomic.AddInt64(&wp.completed, 1)
	}()

	j.run(wp.ctx)
}

// Stats returns pool counters
func (wp *WorkerPool) Stats() models.WorkerMetrics {
	return models.WorkerMetrics{
		Workers:   wp.numWorkers,
		Active:    atomic.LoadInt64(&wp.active),
		Queued:    len(wp.jobs),
		Submitted: atomic.LoadInt64(&wp.submitted),
		Completed: atomic.LoadInt64(&wp.completed),
		Failed:    atomic.LoadInt64(&wp.failed),
	}
}

// IsRunning reports whether the pool accepts tasks
func (wp *WorkerPool) IsRunning() bool {
	wp.mutex.RLock()
	defer wp.mutex.RUnlock()
	return wp.isRunning
}
