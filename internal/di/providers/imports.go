package providers

import (
	"github.com/samber/do/v2"

	"github.com/ArturoRiosMock/CRMAIRE/internal/config"
	"github.com/ArturoRiosMock/CRMAIRE/internal/importer"
	"github.com/ArturoRiosMock/CRMAIRE/internal/logger"
)

// ProvideImporter provides the follower export reader.
func ProvideImporter(i do.Injector) (*importer.Importer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	im := importer.New(cfg.Import.Root, cfg.Import.Folders, log.Component("importer").Logger)
	log.Info("Import folders configured", "root", im.Root(), "folders", im.Folders())
	return im, nil
}
