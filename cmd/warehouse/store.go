package main

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-warehouse/config"
	"github.com/fekuna/omnipos-warehouse/internal/cache"
	"github.com/fekuna/omnipos-warehouse/internal/logger"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore/memory"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore/sheets"
	"github.com/fekuna/omnipos-warehouse/internal/rowstore/sqlstore"
	"go.uber.org/zap"
)

// openStore connects the configured row store. The returned func releases it.
func openStore(ctx context.Context, cfg *config.StoreConfig, log logger.ZapLogger) (rowstore.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.DriverMemory:
		log.Warn("using in-memory row store; data is lost on restart")
		return memory.NewStore(), noop, nil

	case config.DriverSQLite, config.DriverPostgres:
		dialect := sqlstore.DialectSQLite
		if cfg.Driver == config.DriverPostgres {
			dialect = sqlstore.DialectPostgres
		}
		s, err := sqlstore.Open(ctx, dialect, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
		}
		log.Info("connected to sql row store", zap.String("dialect", dialect))
		return s, s.Close, nil

	case config.DriverSheets:
		s, err := sheets.NewStore(ctx, &sheets.Config{
			SpreadsheetID:   cfg.SpreadsheetID,
			CredentialsJSON: cfg.CredentialsJSON,
			CredentialsFile: cfg.CredentialsFile,
			SheetNames: map[rowstore.Collection]string{
				rowstore.Products:   cfg.ProductsSheet,
				rowstore.Categories: cfg.CategoriesSheet,
				rowstore.Types:      cfg.TypesSheet,
				rowstore.Phones:     cfg.PhonesSheet,
			},
		}, log)
		if err != nil {
			return nil, nil, err
		}
		log.Info("connected to google sheets", zap.String("spreadsheet_id", cfg.SpreadsheetID))
		return s, noop, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// openCache returns redis when enabled and a process-local store otherwise.
func openCache(ctx context.Context, cfg *config.RedisConfig, log logger.ZapLogger) (cache.Store, error) {
	if !cfg.Enabled {
		log.Info("redis disabled; sessions and workspaces live in process memory")
		return cache.NewMemoryStore(), nil
	}
	c, err := cache.NewRedisClient(ctx, &cache.RedisConfig{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err != nil {
		return nil, err
	}
	log.Info("connected to redis", zap.String("addr", cfg.Addr))
	return c, nil
}
