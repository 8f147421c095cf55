package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lucasaraujosgc-hue/crm/internal/models"
)

const recordKeyPrefix = "ie:"

// RecordCache keeps successful lookups by inscrição estadual. Redis is used
// when reachable, otherwise entries live in process memory.
type RecordCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger

	memCache map[string]cacheItem
	memMutex sync.RWMutex

	hits   int64
	misses int64
}

type cacheItem struct {
	value     []byte
	expiresAt time.Time
}

// NewRecordCache creates a record cache. A non-positive ttl disables it.
func NewRecordCache(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *RecordCache {
	return &RecordCache{
		client:   client,
		ttl:      ttl,
		logger:   logger,
		memCache: make(map[string]cacheItem),
	}
}

// Enabled reports whether lookups may be served from the cache
func (c *RecordCache) Enabled() bool {
	return c.ttl > 0
}

// Get returns a copy of the cached record, detached from any batch
func (c *RecordCache) Get(ctx context.Context, inscricao string) (*models.Result, bool) {
	if !c.Enabled() {
		return nil, false
	}

	key := recordKeyPrefix + inscricao
	raw, ok := c.load(ctx, key)
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	var result models.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Discarding unreadable cache entry")
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	atomic.AddInt64(&c.hits, 1)
	result.ID = 0
	result.BatchID = ""
	result.LastContacted = nil
	result.Notes = nil
	result.CampaignStatus = models.CampaignPending
	return &result, true
}

func (c *RecordCache) load(ctx context.Context, key string) ([]byte, bool) {
	if c.client != nil {
		val, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			c.logger.WithField("key", key).Debug("Cache hit (Redis)")
			return val, true
		}
		if !errors.Is(err, redis.Nil) {
			c.logger.WithFields(logrus.Fields{
				"key":   key,
				"error": err.Error(),
			}).Warn("Redis get error, falling back to memory cache")
		}
	}

	c.memMutex.RLock()
	item, exists := c.memCache[key]
	c.memMutex.RUnlock()
	if !exists {
		return nil, false
	}

	if time.Now().After(item.expiresAt) {
		c.memMutex.Lock()
		delete(c.memCache, key)
		c.memMutex.Unlock()
		return nil, false
	}

	c.logger.WithField("key", key).Debug("Cache hit (memory)")
	return item.value, true
}

// Set stores a successful record. Failed resolutions are never cached.
func (c *RecordCache) Set(ctx context.Context, inscricao string, result *models.Result) {
	if !c.Enabled() || result == nil || !result.Succeeded() {
		return
	}

	key := recordKeyPrefix + inscricao
	raw, err := json.Marshal(result)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Failed to encode cache entry")
		return
	}

	if c.client != nil {
		err := c.client.Set(ctx, key, raw, c.ttl).Err()
		if err == nil {
			return
		}
		c.logger.WithFields(logrus.Fields{
			"key":   key,
			"error": err.Error(),
		}).Warn("Redis set error, falling back to memory cache")
	}

	c.memMutex.Lock()
	c.memCache[key] = cacheItem{value: raw, expiresAt: time.Now().Add(c.ttl)}
	c.memMutex.Unlock()
}

// Stats returns cache statistics
func (c *RecordCache) Stats() models.CacheMetrics {
	return models.CacheMetrics{
		Enabled: c.Enabled(),
		Backend: c.backend(),
		Hits:    atomic.LoadInt64(&c.hits),
		Misses:  atomic.LoadInt64(&c.misses),
	}
}

func (c *RecordCache) backend() string {
	if c.client != nil {
		return "redis"
	}
	return "memory"
}

// Health returns cache health status
func (c *RecordCache) Health() map[string]interface{} {
	health := map[string]interface{}{
		"status":  "healthy",
		"enabled": c.Enabled(),
		"backend": c.backend(),
		"ttl":     c.ttl.String(),
	}

	if c.client == nil {
		health["redis"] = map[string]interface{}{"status": "disabled"}
		return health
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.client.Ping(ctx).Err(); err != nil {
		health["status"] = "degraded"
		health["error"] = err.Error()
		health["redis"] = map[string]interface{}{
			"status": "unhealthy",
			"error":  err.Error(),
		}
	} else {
		health["redis"] = map[string]interface{}{"status": "healthy"}
	}
	return health
}

// CleanupExpired drops expired entries from the memory fallback
func (c *RecordCache) CleanupExpired() int {
	c.memMutex.Lock()
	defer c.memMutex.Unlock()

	now := time.Now()
	removed := 0
	for key, item := range c.memCache {
		if now.After(item.expiresAt) {
			delete(c.memCache, key)
			removed++
		}
	}
	return removed
}
