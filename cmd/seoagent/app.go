package main

import (
	"context"
	"fmt"

	"github.com/mohammad-safakhou/seoagent/cache"
	"github.com/mohammad-safakhou/seoagent/cache/inmemory"
	redis_cache "github.com/mohammad-safakhou/seoagent/cache/redis"
	"github.com/mohammad-safakhou/seoagent/config"
	"github.com/mohammad-safakhou/seoagent/provider"
	"github.com/mohammad-safakhou/seoagent/provider/gateways"
	"github.com/mohammad-safakhou/seoagent/seo"
	"github.com/mohammad-safakhou/seoagent/tools"
	"go.uber.org/zap"
)

// app is the wired service shared by every subcommand.
type app struct {
	gateways []provider.Gateway
	tools    *tools.Dispatcher
	enhancer *seo.Enhancer
	closers  []func()
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	store, closeStore, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	gws := gateways.FromConfig(cfg.Providers)
	names := make([]string, 0, len(gws))
	for _, gw := range gws {
		names = append(names, gw.Name())
	}
	logger.Info("providers configured",
		zap.Strings("providers", names),
		zap.String("cache", cfg.Cache.Backend),
		zap.Duration("expiry", cfg.Cache.Expiry))

	d := tools.NewDispatcher(store, gws,
		tools.WithLogger(logger.Named("tools")),
		tools.WithRoutes(cfg.Tools.Routes),
	)
	a := &app{
		gateways: gws,
		tools:    d,
		enhancer: seo.NewEnhancer(d, seo.WithLogger(logger.Named("seo"))),
	}
	a.closers = append(a.closers, func() { gateways.Close(gws) })
	if closeStore != nil {
		a.closers = append(a.closers, closeStore)
	}
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newStore(ctx context.Context, cfg *config.Config) (cache.Store, func(), error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		r := cfg.Storage.Redis
		client, err := redis_cache.Conn(ctx, r.Host, r.Port, r.Password, r.DB, r.Timeout)
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache: %w", err)
		}
		return redis_cache.NewRedisStore(client, cfg.Cache.KeyPrefix, cfg.Cache.Expiry), func() { _ = client.Close() }, nil
	default:
		return inmemory.New(
			inmemory.WithExpiry(cfg.Cache.Expiry),
			inmemory.WithMaxEntries(cfg.Cache.MaxEntries),
		), nil, nil
	}
}
