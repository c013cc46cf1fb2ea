package app

import (
	"context"
	"fmt"
	"log/slog"

	"cbmflow/internal/config"
	"cbmflow/internal/store"
	"cbmflow/internal/store/postgres"
	"cbmflow/internal/store/sqlite"
	"cbmflow/internal/validation"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// OpenLedger opens the upload ledger backend named by cfg.Driver.
func OpenLedger(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (store.Ledger, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case DriverSQLite:
		if cfg.SQLitePath != ":memory:" {
			if err := validation.NewFileValidator(logger, 0, nil).ValidateOutputPath(cfg.SQLitePath); err != nil {
				return nil, err
			}
		}
		ledger, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite ledger: %w", err)
		}
		logger.Info("Upload ledger opened", slog.String("driver", cfg.Driver), slog.String("path", cfg.SQLitePath))
		return ledger, nil

	case DriverPostgres:
		ledger, err := postgres.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres ledger: %w", err)
		}
		logger.Info("Upload ledger opened", slog.String("driver", cfg.Driver))
		return ledger, nil

	case DriverNone, "":
		logger.Info("Upload ledger disabled")
		return store.NopLedger{}, nil
	}
	return nil, fmt.Errorf("unknown storage driver: %q", cfg.Driver)
}
