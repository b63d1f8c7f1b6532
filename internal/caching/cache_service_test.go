package caching

import (
	"context"
	"testing"
	"time"

	"invoicehub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*miniredis.Miniredis, CacheService) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisCacheService(client, 600*time.Second)
}

func TestInvoiceCache_RoundTripAndTTL(t *testing.T) {
	mr, cache := newTestCache(t)
	ctx := context.Background()
	inv := &models.Invoice{ID: uuid.New(), CompanyName: "Acme", Total: 118, Status: models.StatusQuotation}

	_, ok := cache.GetInvoice(ctx, inv.ID)
	assert.False(t, ok)

	cache.SetInvoice(ctx, inv)
	assert.True(t, mr.Exists("invoice:"+inv.ID.String()))
	assert.Equal(t, 600*time.Second, mr.TTL("invoice:"+inv.ID.String()))

	got, ok := cache.GetInvoice(ctx, inv.ID)
	require.True(t, ok)
	assert.Equal(t, "Acme", got.CompanyName)
	assert.Equal(t, 118.0, got.Total)

	cache.DeleteInvoice(ctx, inv.ID)
	_, ok = cache.GetInvoice(ctx, inv.ID)
	assert.False(t, ok)
}

func TestInvoiceCache_ExpiresAfterTTL(t *testing.T) {
	mr, cache := newTestCache(t)
	ctx := context.Background()
	inv := &models.Invoice{ID: uuid.New()}

	cache.SetInvoice(ctx, inv)
	mr.FastForward(601 * time.Second)

	_, ok := cache.GetInvoice(ctx, inv.ID)
	assert.False(t, ok)
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	mr, cache := newTestCache(t)
	id := uuid.New()
	require.NoError(t, mr.Set(InvoiceKey(id), "{not json"))

	_, ok := cache.GetInvoice(context.Background(), id)
	assert.False(t, ok)
}

func TestCache_UnavailableRedisIsMiss(t *testing.T) {
	mr, cache := newTestCache(t)
	mr.Close()

	_, ok := cache.GetInvoice(context.Background(), uuid.New())
	assert.False(t, ok)
	assert.Error(t, cache.Ping(context.Background()))
}

func TestCache_InvalidateAnalytics(t *testing.T) {
	mr, cache := newTestCache(t)
	ctx := context.Background()

	cache.SetJSON(ctx, AnalyticsKey("dashboard", "all"), map[string]int{"totalInvoices": 3}, time.Minute)
	cache.SetJSON(ctx, AnalyticsKey("trend", "month"), []int{1, 2}, time.Minute)
	inv := &models.Invoice{ID: uuid.New()}
	cache.SetInvoice(ctx, inv)

	var stats map[string]int
	require.True(t, cache.GetJSON(ctx, AnalyticsKey("dashboard", "all"), &stats))
	assert.Equal(t, 3, stats["totalInvoices"])

	cache.InvalidateAnalytics(ctx)
	assert.False(t, mr.Exists(AnalyticsKey("dashboard", "all")))
	assert.False(t, mr.Exists(AnalyticsKey("trend", "month")))
	assert.True(t, mr.Exists(InvoiceKey(inv.ID)))
}

func TestNoopCache(t *testing.T) {
	cache := NewNoopCache()
	ctx := context.Background()
	inv := &models.Invoice{ID: uuid.New()}

	cache.SetInvoice(ctx, inv)
	_, ok := cache.GetInvoice(ctx, inv.ID)
	assert.False(t, ok)
	assert.NoError(t, cache.Ping(ctx))
}

func TestNewRedisClient(t *testing.T) {
	client, err := NewRedisClient("redis://localhost:6380/2", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", client.Options().Addr)
	assert.Equal(t, 2, client.Options().DB)

	client, err = NewRedisClient("localhost:6379", "secret", 1)
	require.NoError(t, err)
	assert.Equal(t, "secret", client.Options().Password)

	_, err = NewRedisClient("", "", 0)
	assert.Error(t, err)
}
