// Package di provides dependency injection configuration for the board
// server and the command line client.
package di

import (
	"github.com/samber/do/v2"

	"github.com/ArturoRiosMock/CRMAIRE/internal/backup"
	"github.com/ArturoRiosMock/CRMAIRE/internal/config"
	"github.com/ArturoRiosMock/CRMAIRE/internal/di/providers"
	"github.com/ArturoRiosMock/CRMAIRE/internal/importer"
	"github.com/ArturoRiosMock/CRMAIRE/internal/logger"
)

// NewContainer creates and configures the server container.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Storage
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideImporter)
	do.Provide(injector, providers.ProvideBackupService)

	// Workers
	do.Provide(injector, providers.ProvideAutoImporter)
	do.Provide(injector, providers.ProvideBackupJob)

	// Server
	do.Provide(injector, providers.ProvideWriteLimiter)
	do.Provide(injector, providers.ProvideHTTPServer)
	do.Provide(injector, providers.ProvideMDNSService)

	return injector
}

// Bootstrap initializes the server services in dependency order.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*importer.Importer](injector)
	_ = do.MustInvoke[*backup.BackupService](injector)

	// Workers
	if _, err := do.Invoke[*providers.AutoImportHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.BackupJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)
	_ = do.MustInvoke[*providers.MDNSServiceHandle](injector)

	return nil
}

// NewClientContainer creates the container of the command line client.
// The configuration and logger are built by the caller, which owns the
// command line.
func NewClientContainer(cfg *config.Config, log *logger.Logger) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, log)
	do.ProvideValue(injector, log.Logger)

	do.Provide(injector, providers.ProvideCache)
	do.Provide(injector, providers.ProvideRemote)
	do.Provide(injector, providers.ProvideSession)

	return injector
}
