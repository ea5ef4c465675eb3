package providers

import (
	"context"
	"errors"
	"time"

	"github.com/samber/do/v2"

	"github.com/ArturoRiosMock/CRMAIRE/internal/backup"
	"github.com/ArturoRiosMock/CRMAIRE/internal/config"
	"github.com/ArturoRiosMock/CRMAIRE/internal/importer"
	"github.com/ArturoRiosMock/CRMAIRE/internal/logger"
	"github.com/ArturoRiosMock/CRMAIRE/internal/watcher"
)

// AutoImportHandle wraps the export folder watcher with shutdown capability.
type AutoImportHandle struct {
	*watcher.AutoImporter
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *AutoImportHandle) Shutdown() error {
	if h.AutoImporter == nil {
		return nil
	}
	h.cancel()
	return h.Stop()
}

// ProvideAutoImporter watches the export folders and merges new files into
// the stored board. It is a no-op unless import watching is enabled.
func ProvideAutoImporter(i do.Injector) (*AutoImportHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	imports := do.MustInvoke[*importer.Importer](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Import.Watch {
		return &AutoImportHandle{}, nil
	}

	ai, err := watcher.NewAutoImporter(imports, storeHandle.BoardStore, log.Component("autoimport").Logger,
		watcher.AutoImportOptions{SettleDelay: cfg.Import.SettleDelay})
	if errors.Is(err, watcher.ErrNoFolders) {
		log.Warn("Import watching enabled but no export folder exists", "root", imports.Root())
		return &AutoImportHandle{}, nil
	}
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := ai.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Auto import stopped", "error", err)
		}
	}()

	log.Info("Auto import started", "folders", imports.Folders())

	return &AutoImportHandle{AutoImporter: ai, cancel: cancel}, nil
}

// BackupJob takes periodic board snapshots.
type BackupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *BackupJob) Shutdown() error {
	if j.cancel != nil {
		j.cancel()
	}
	return nil
}

// ProvideBackupJob provides the periodic snapshot job. A zero interval
// disables it.
func ProvideBackupJob(i do.Injector) (*BackupJob, error) {
	cfg := do.MustInvoke[*config.Config](i)
	backups := do.MustInvoke[*backup.BackupService](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Backup.Interval == 0 {
		log.Info("Periodic backups disabled")
		return &BackupJob{}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		ticker := time.NewTicker(cfg.Backup.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				result, err := backups.Create(ctx)
				if err != nil {
					log.Warn("Periodic backup failed", "error", err)
					continue
				}
				log.Info("Periodic backup completed",
					"id", result.ID,
					"leads", result.LeadCount,
					"pruned", result.Pruned,
				)
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Backup job started", "interval", cfg.Backup.Interval, "dir", backups.Dir(), "keep", cfg.Backup.Keep)

	return &BackupJob{cancel: cancel}, nil
}
