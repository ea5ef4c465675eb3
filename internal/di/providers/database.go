package providers

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/ArturoRiosMock/CRMAIRE/internal/config"
	"github.com/ArturoRiosMock/CRMAIRE/internal/logger"
	"github.com/ArturoRiosMock/CRMAIRE/internal/store"
	"github.com/ArturoRiosMock/CRMAIRE/internal/store/postgres"
	"github.com/ArturoRiosMock/CRMAIRE/internal/store/sqlite"
)

// StoreHandle wraps the board store with shutdown capability.
type StoreHandle struct {
	store.BoardStore
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the board store selected by the storage driver.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
		defer cancel()
		db, err := postgres.Open(ctx, cfg.Storage.DatabaseURL, log.Component("store").Logger)
		if err != nil {
			return nil, err
		}
		log.Info("Database initialized", "driver", cfg.Storage.Driver)
		return &StoreHandle{BoardStore: db}, nil

	case config.StorageSQLite:
		if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		path := cfg.Storage.SQLitePath()
		db, err := sqlite.Open(path, log.Component("store").Logger)
		if err != nil {
			return nil, err
		}
		log.Info("Database initialized", "driver", cfg.Storage.Driver, "path", path)
		return &StoreHandle{BoardStore: db}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
