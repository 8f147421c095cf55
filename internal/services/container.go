package services

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lucasaraujosgc-hue/crm/internal/config"
	"github.com/lucasaraujosgc-hue/crm/internal/database"
	"github.com/lucasaraujosgc-hue/crm/internal/models"
	"github.com/lucasaraujosgc-hue/crm/internal/store"
)

var (
	_ BatchRepository         = (*store.BatchStore)(nil)
	_ ResultRepository        = (*store.BatchStore)(nil)
	_ BatchServiceInterface   = (*BatchService)(nil)
	_ RecordCacheInterface    = (*RecordCache)(nil)
	_ MonitoredSessionFactory = (*ChromeSessionFactory)(nil)
)

// MonitoredSessionFactory is a session factory that reports its own state
type MonitoredSessionFactory interface {
	SessionFactory
	Stats() models.BrowserMetrics
	Health() map[string]interface{}
}

// Container holds all service dependencies
type Container struct {
	config      *config.Config
	logger      *logrus.Logger
	db          *sql.DB
	redisClient *redis.Client
	startTime   time.Time

	Store        *store.BatchStore
	Cache        *RecordCache
	Sessions     MonitoredSessionFactory
	Pool         *WorkerPool
	Progress     *ProgressPublisher
	BatchService BatchServiceInterface

	stopCleanup context.CancelFunc
}

// NewContainer opens the database, connects Redis when available and starts
// the worker pool with Chrome sessions
func NewContainer(cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	container, err := NewContainerWithSessions(cfg, logger, db, NewChromeSessionFactory(cfg.Browser, logger))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return container, nil
}

// NewContainerWithSessions builds the services on an opened database using
// the given session factory
func NewContainerWithSessions(cfg *config.Config, logger *logrus.Logger, db *sql.DB, sessions MonitoredSessionFactory) (*Container, error) {
	container := &Container{
		config:    cfg,
		logger:    logger,
		db:        db,
		startTime: time.Now(),
		Sessions:  sessions,
	}

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	container.initRedis()
	container.initServices()

	// Batches left processing by a previous run have no worker anymore.
	interrupted, err := container.Store.FailInterrupted(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to close interrupted batches: %w", err)
	}
	if interrupted > 0 {
		logger.WithField("batches", interrupted).Warn("Marked interrupted batches as error")
	}

	container.Pool.Start()
	container.startCacheCleanup()
	return container, nil
}

// initRedis connects Redis; without it the record cache stays in memory
func (c *Container) initRedis() {
	if c.config.Redis.Host == "" {
		c.logger.Info("Redis not configured, using memory cache")
		return
	}

	c.redisClient = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", c.config.Redis.Host, c.config.Redis.Port),
		Password:     c.config.Redis.Password,
		DB:           c.config.Redis.DB,
		PoolSize:     c.config.Redis.PoolSize,
		DialTimeout:  c.config.Redis.DialTimeout,
		ReadTimeout:  c.config.Redis.ReadTimeout,
		WriteTimeout: c.config.Redis.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.redisClient.Ping(ctx).Err(); err != nil {
		c.logger.WithError(err).Warn("Redis connection failed, using memory cache")
		_ = c.redisClient.Close()
		c.redisClient = nil
		return
	}
	c.logger.Info("Redis connection established")
}

func (c *Container) initServices() {
	c.Store = store.NewBatchStore(c.db)
	c.Cache = NewRecordCache(c.redisClient, c.config.Registry.CacheTTL, c.logger)

	coordinator := NewBatchCoordinator(
		c.Store,
		NewIdentifierScanner(DefaultDocumentReaders(), c.logger),
		c.Sessions,
		NewLookupProtocol(c.config.Registry, c.logger),
		NewRecordExtractor(c.config.Registry, c.logger),
		c.Cache,
		c.logger,
	)

	c.Pool = NewWorkerPool(c.config.Workers.Count, c.config.Workers.QueueSize, c.logger)
	c.Progress = NewProgressPublisher(c.Store, c.config.Progress.PollInterval, c.logger)
	c.BatchService = NewBatchService(c.Store, c.Store, c.Pool, coordinator, c.logger)
}

func (c *Container) startCacheCleanup() {
	ctx, cancel := context.WithCancel(context.Background())
	c.stopCleanup = cancel

	if !c.Cache.Enabled() || c.redisClient != nil {
		return
	}

	go func() {
		ticker := time.NewTicker(c.config.Registry.CacheTTL)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := c.Cache.CleanupExpired(); n > 0 {
					c.logger.WithField("removed", n).Debug("Expired cache entries removed")
				}
			}
		}
	}()
}

// Close stops the workers and closes all connections
func (c *Container) Close(ctx context.Context) error {
	var errors []error

	if c.stopCleanup != nil {
		c.stopCleanup()
	}

	if c.Pool != nil {
		if err := c.Pool.Stop(ctx); err != nil {
			errors = append(errors, err)
		}
	}

	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			errors = append(errors, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			errors = append(errors, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errors)
	}
	return nil
}

// Health checks the health of all services
func (c *Container) Health() map[string]interface{} {
	health := make(map[string]interface{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Store.Ping(ctx); err != nil {
		health["database"] = map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		}
	} else {
		health["database"] = map[string]interface{}{
			"status": "healthy",
		}
	}

	health["cache"] = c.Cache.Health()
	health["browser"] = c.Sessions.Health()
	health["workers"] = c.BatchService.Health()

	return health
}

// Metrics returns a snapshot of runtime counters
func (c *Container) Metrics() models.MetricsResponse {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return models.MetricsResponse{
		Workers: c.Pool.Stats(),
		Browser: c.Sessions.Stats(),
		Cache:   c.Cache.Stats(),
		System: models.SystemMetrics{
			MemoryUsage: float64(mem.Alloc) / 1024 / 1024,
			Goroutines:  runtime.NumGoroutine(),
		},
		Timestamp: time.Now(),
	}
}

// Uptime returns the time since the container was built
func (c *Container) Uptime() time.Duration {
	return time.Since(c.startTime)
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logrus.Logger {
	return c.logger
}
