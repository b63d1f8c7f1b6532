package main

import (
	"context"
	"fmt"
	"time"

	"invoicehub/internal/caching"
	"invoicehub/internal/config"
	"invoicehub/internal/logger"
	"invoicehub/internal/services"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// redisConnOpt accepts either a redis:// URI or a plain host:port.
func redisConnOpt(cfg config.RedisConfig) asynq.RedisConnOpt {
	if opt, err := asynq.ParseRedisURI(cfg.Addr); err == nil {
		return opt
	}
	return asynq.RedisClientOpt{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
}

// newCache returns the redis cache, or the no-op cache when caching is
// disabled or redis is unreachable. The returned client is nil in the latter case.
func newCache(ctx context.Context, cfg config.RedisConfig) (caching.CacheService, *redis.Client) {
	log := logger.WithComponent("cache")
	if !cfg.CacheEnabled {
		log.Info().Msg("Cache disabled")
		return caching.NewNoopCache(), nil
	}

	client, err := caching.NewRedisClient(cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		log.Warn().Err(err).Msg("Invalid redis configuration, continuing without cache")
		return caching.NewNoopCache(), nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("Redis unreachable, continuing without cache")
		_ = client.Close()
		return caching.NewNoopCache(), nil
	}
	log.Info().Str("addr", cfg.Addr).Msg("Redis cache connected")
	return caching.NewRedisCacheService(client, cfg.InvoiceTTL), client
}

func loadCompany(cfg *config.Config) (config.CompanyProfile, error) {
	company, err := config.LoadCompanyProfile(cfg.App.CompanyProfilePath)
	if err != nil {
		return company, fmt.Errorf("load company profile: %w", err)
	}
	return company, nil
}

func newMailer(cfg *config.Config, company config.CompanyProfile) (services.Mailer, error) {
	sender, err := services.NewSMTPSender(cfg.SMTP)
	if err != nil {
		return nil, fmt.Errorf("smtp sender: %w", err)
	}
	return services.NewMailer(sender, company, services.MailerOptions{
		FromName:       cfg.SMTP.FromName,
		FromAddress:    cfg.SMTP.FromAddress,
		MaxAttachBytes: cfg.App.UploadMaxBytes,
	}), nil
}
