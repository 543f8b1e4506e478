package main

import (
	"context"
	"fmt"
	"linkexpander/internal/config"
	"linkexpander/internal/history"
	"linkexpander/internal/metadata"
	"linkexpander/internal/pipeline"
	"linkexpander/internal/resolver"
	"linkexpander/internal/trust"
	"linkexpander/pkg/logger"
	"linkexpander/pkg/storage"
	"linkexpander/pkg/storage/file"
	"linkexpander/pkg/storage/memory"
	"linkexpander/pkg/storage/postgres"
	"linkexpander/pkg/storage/redis"
	"linkexpander/pkg/storage/sqlite"
	"linkexpander/pkg/threatintel/safebrowsing"
	"net/http"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// getPostgres creates a PostgreSQL client using configuration values and returns it
// along with a cleanup function to close the connection pool.
func getPostgres(ctx context.Context, cfg *config.Config) (*postgres.PgSQL, func()) {
	pgsql, err := postgres.New(ctx, postgres.Options{
		Username:           cfg.Database.Username,
		Password:           cfg.Database.Password,
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		Database:           cfg.Database.DatabaseName,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime:    cfg.Database.ConnMaxIdleTime,
		MaxOpenConnections: cfg.Database.MaxOpenConnections,
		MaxIdleConnections: cfg.Database.MaxIdleConnections,
		SslMode:            cfg.Database.SslMode,
	})
	if err != nil {
		logger.Fatal(ctx, "could not create postgres storage", zap.Error(err))
	}

	return pgsql, func() {
		logger.Info(ctx, "closing postgres client...")
		if err = pgsql.Close(); err != nil {
			logger.Warn(ctx, "could not close postgres connection", zap.Error(err))
		}
	}
}

// newStorage opens the history backend selected by cfg.History.Backend.
func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.History.Backend {
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendFile:
		return file.New(cfg.History.FileDir) //nolint: wrapcheck
	case config.BackendRedis:
		return redis.New(ctx, redis.Options{ //nolint: wrapcheck
			Addr:         cfg.Redis.Addr,
			Username:     cfg.Redis.Username,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
			PoolSize:     cfg.Redis.PoolSize,
			KeyPrefix:    cfg.Redis.KeyPrefix,
		})
	case config.BackendPostgres:
		pgsql, _ := getPostgres(ctx, cfg)

		return pgsql, nil
	case config.BackendSQLite:
		return sqlite.New(ctx, cfg.History.SQLitePath) //nolint: wrapcheck
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}
}

// getHistory opens the configured storage and loads the history kept in it.
// The returned function closes the storage.
func getHistory(ctx context.Context, cfg *config.Config) (*history.Cache, func()) {
	strg, err := newStorage(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "could not open history storage",
			zap.String("backend", cfg.History.Backend), zap.Error(err))
	}
	closeStrg := func() {
		logger.Debug(ctx, "closing history storage...")
		if err := strg.Close(); err != nil {
			logger.Warn(ctx, "could not close history storage", zap.Error(err))
		}
	}

	cache, err := history.New(ctx, strg, history.NewOptions(cfg))
	if err != nil {
		closeStrg()
		logger.Fatal(ctx, "could not load history", zap.Error(err))
	}

	return cache, closeStrg
}

// getPipeline assembles the expansion pipeline. mp may be nil.
func getPipeline(ctx context.Context, cfg *config.Config, mp metric.MeterProvider) pipeline.Pipeline {
	httpClient := &http.Client{}

	threats := safebrowsing.New(&http.Client{Timeout: cfg.Pipeline.OutboundTimeout}, safebrowsing.Options{
		Endpoint:      cfg.ThreatIntel.Endpoint,
		APIKey:        cfg.ThreatIntel.APIKey,
		ClientID:      cfg.ThreatIntel.ClientID,
		ClientVersion: cfg.ThreatIntel.ClientVersion,
	})
	if cfg.ThreatIntel.APIKey == "" {
		logger.Warn(ctx, "no Safe Browsing API key configured, every assessment will fail")
	}

	p, err := pipeline.New(pipeline.Deps{
		Resolver:      resolver.New(httpClient, resolver.NewOptions(cfg)),
		Extractor:     metadata.New(httpClient, metadata.NewOptions(cfg)),
		Assessor:      trust.New(threats),
		MeterProvider: mp,
	}, pipeline.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create pipeline", zap.Error(err))
	}

	return p
}
