package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain/ports/repository"
	"github.com/hemanthreddykoduru/StudentNotes/internal/infra/metrics"
	red "github.com/hemanthreddykoduru/StudentNotes/internal/infra/redis"
)

var _ repository.AppConfigRepository = (*appConfigCacheDecorator)(nil)

// appConfigCacheDecorator keeps a short-lived copy of config values so the
// per-order price read does not always hit Postgres. Redis failures degrade
// to the inner repository.
type appConfigCacheDecorator struct {
	inner repository.AppConfigRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewAppConfigCacheDecorator(inner repository.AppConfigRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.AppConfigRepository {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &appConfigCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: logger}
}

func appConfigKey(key string) string { return "app_config:" + key }

func (d *appConfigCacheDecorator) Get(ctx context.Context, tx repository.Tx, key string) (string, error) {
	ck := appConfigKey(key)
	// Reads inside a transaction must see the transaction's own writes.
	if tx == nil {
		val, err := d.cache.Get(ctx, ck)
		switch {
		case err == nil:
			metrics.IncCacheRequest("app_config", "hit")
			return val, nil
		case !errors.Is(err, red.Nil):
			metrics.IncCacheRequest("app_config", "error")
			d.log.Warn().Err(err).Str("key", key).Msg("app config cache read failed")
		default:
			metrics.IncCacheRequest("app_config", "miss")
		}
	}

	val, err := d.inner.Get(ctx, tx, key)
	if err != nil {
		return "", err
	}
	if tx == nil {
		if err := d.cache.Set(ctx, ck, val, d.ttl); err != nil {
			d.log.Warn().Err(err).Str("key", key).Msg("app config cache write failed")
		}
	}
	return val, nil
}

// Set writes through and then drops the cached copy.
func (d *appConfigCacheDecorator) Set(ctx context.Context, tx repository.Tx, key, value string) error {
	if err := d.inner.Set(ctx, tx, key, value); err != nil {
		return err
	}
	if err := d.cache.Del(ctx, appConfigKey(key)); err != nil {
		d.log.Warn().Err(err).Str("key", key).Msg("app config cache invalidation failed")
	}
	return nil
}
