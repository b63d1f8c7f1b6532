package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"invoicehub/internal/logger"
	"invoicehub/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	invoiceKeyPrefix   = "invoice:"
	analyticsKeyPrefix = "analytics:"
)

// CacheService is a best-effort read-through cache. Failures are logged and
// reported as misses so callers fall back to the database.
type CacheService interface {
	GetInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, bool)
	SetInvoice(ctx context.Context, invoice *models.Invoice)
	DeleteInvoice(ctx context.Context, id uuid.UUID)

	GetJSON(ctx context.Context, key string, dest any) bool
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration)
	InvalidateAnalytics(ctx context.Context)

	Ping(ctx context.Context) error
}

// InvoiceKey is the cache key of a single invoice.
func InvoiceKey(id uuid.UUID) string {
	return invoiceKeyPrefix + id.String()
}

// AnalyticsKey builds a cache key for an analytics report and its filter.
func AnalyticsKey(report, filter string) string {
	return analyticsKeyPrefix + report + ":" + filter
}

type redisCacheService struct {
	client     redis.UniversalClient
	invoiceTTL time.Duration
	log        zerolog.Logger
}

func NewRedisCacheService(client redis.UniversalClient, invoiceTTL time.Duration) CacheService {
	return &redisCacheService{
		client:     client,
		invoiceTTL: invoiceTTL,
		log:        logger.WithComponent("cache"),
	}
}

// NewRedisClient parses addr as a redis:// URL or a plain host:port.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	if opts, err := redis.ParseURL(addr); err == nil {
		if password != "" {
			opts.Password = password
		}
		return redis.NewClient(opts), nil
	}
	if addr == "" {
		return nil, errors.New("redis address is empty")
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}), nil
}

func (r *redisCacheService) GetInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, bool) {
	var invoice models.Invoice
	if !r.GetJSON(ctx, InvoiceKey(id), &invoice) {
		return nil, false
	}
	return &invoice, true
}

func (r *redisCacheService) SetInvoice(ctx context.Context, invoice *models.Invoice) {
	r.SetJSON(ctx, InvoiceKey(invoice.ID), invoice, r.invoiceTTL)
}

func (r *redisCacheService) DeleteInvoice(ctx context.Context, id uuid.UUID) {
	if err := r.client.Del(ctx, InvoiceKey(id)).Err(); err != nil {
		r.log.Warn().Err(err).Str("invoice_id", id.String()).Msg("cache delete failed")
	}
}

func (r *redisCacheService) GetJSON(ctx context.Context, key string, dest any) bool {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("cache entry is not valid JSON")
		return false
	}
	return true
}

func (r *redisCacheService) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("cache marshal failed")
		return
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

func (r *redisCacheService) InvalidateAnalytics(ctx context.Context) {
	iter := r.client.Scan(ctx, 0, analyticsKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.log.Warn().Err(err).Msg("cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.log.Warn().Err(err).Int("keys", len(keys)).Msg("analytics cache invalidation failed")
	}
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// noopCache is used when caching is disabled.
type noopCache struct{}

func NewNoopCache() CacheService { return noopCache{} }

func (noopCache) GetInvoice(context.Context, uuid.UUID) (*models.Invoice, bool) { return nil, false }
func (noopCache) SetInvoice(context.Context, *models.Invoice) {}
func (noopCache) DeleteInvoice(context.Context, uuid.UUID) {}
func (noopCache) GetJSON(context.Context, string, any) bool { return false }
func (noopCache) SetJSON(context.Context, string, any, time.Duration) {}
func (noopCache) InvalidateAnalytics(context.Context) {}
func (noopCache) Ping(context.Context) error { return nil }
