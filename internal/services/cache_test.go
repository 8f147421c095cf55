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

func TestRecordCacheDisabledWithoutTTL(t *testing.T) {
	cache := services.NewRecordCache(nil, 0, logger.Discard())
	ctx := context.Background()

	r := services.ParseRecord(loadPage(t, "result_page.html"), "123456789")
	cache.Set(ctx, "123456789", &r)

	_, ok := cache.Get(ctx, "123456789")
	assert.False(t, ok)
	assert.False(t, cache.Stats().Enabled)
}

func TestRecordCacheKeepsOnlySuccesses(t *testing.T) {
	cache := services.NewRecordCache(nil, time.Minute, logger.Discard())
	ctx := context.Background()

	cache.Set(ctx, "111111111", models.NavigationFailure("b1", "111111111"))
	_, ok := cache.Get(ctx, "111111111")
	assert.False(t, ok)

	r := services.ParseRecord(loadPage(t, "result_page.html"), "222222222")
	r.BatchID = "b1"
	r.ID = 7
	cache.Set(ctx, "222222222", &r)

	got, ok := cache.Get(ctx, "222222222")
	require.True(t, ok)
	assert.Empty(t, got.BatchID)
	assert.Zero(t, got.ID)
	assert.Equal(t, r.RazaoSocial, got.RazaoSocial)
	assert.Equal(t, models.CampaignPending, got.CampaignStatus)

	stats := cache.Stats()
	assert.Equal(t, "memory", stats.Backend)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestRecordCacheExpiresEntries(t *testing.T) {
	cache := services.NewRecordCache(nil, 10*time.Millisecond, logger.Discard())
	ctx := context.Background()

	r := services.ParseRecord(loadPage(t, "result_page.html"), "123456789")
	cache.Set(ctx, "123456789", &r)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 1, cache.CleanupExpired())
	_, ok := cache.Get(ctx, "123456789")
	assert.False(t, ok)
}
