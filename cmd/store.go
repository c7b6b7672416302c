package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"worktime/config"
	"worktime/internal/logger"
	"worktime/service"
	"worktime/storage"
	"worktime/storage/postgres"
)

// openStore opens the backend selected by storage.driver.
func openStore(ctx context.Context, cfg *config.Config) (service.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		store, err := postgres.Open(ctx, cfg.Storage.PostgresURL)
		if err != nil {
			return nil, err
		}
		logger.Info("storage opened", zap.String("driver", config.DriverPostgres))
		return store, nil
	case config.DriverSQLite, "":
		store, err := storage.OpenSQLite(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		logger.Info("storage opened", zap.String("driver", config.DriverSQLite), zap.String("path", cfg.Storage.Path))
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

// loadConfigAndStore is the common prelude of commands that touch data.
func loadConfigAndStore(ctx context.Context) (*config.Config, service.Store, error) {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		return nil, nil, err
	}
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}
