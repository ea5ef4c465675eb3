package watcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/ArturoRiosMock/CRMAIRE/internal/board"
	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
	"github.com/ArturoRiosMock/CRMAIRE/internal/importer"
	"github.com/ArturoRiosMock/CRMAIRE/internal/store"
)

// AutoImporter merges export files that settle in the import folders into
// the stored board. Files already present when it starts are left to the
// explicit lookup endpoint; rewriting one counts as a new drop.
type AutoImporter struct {
	watcher *Watcher
	imports *importer.Importer
	boards  store.BoardStore
	seed    func() *domain.Board
	clock   func() time.Time
	logger  *slog.Logger
}

// AutoImportOptions configures an AutoImporter.
type AutoImportOptions struct {
	SettleDelay time.Duration
	// Seed builds the board stored when no row exists yet.
	Seed  func() *domain.Board
	Clock func() time.Time
}

// NewAutoImporter watches every existing import folder of imports.
// Missing folders are skipped with a warning; ErrNoFolders is returned
// when none exists.
func NewAutoImporter(imports *importer.Importer, boards store.BoardStore, logger *slog.Logger, opts AutoImportOptions) (*AutoImporter, error) {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Seed == nil {
		opts.Seed = func() *domain.Board { return board.SeedAt(opts.Clock()) }
	}

	w, err := New(logger, Options{
		SettleDelay: opts.SettleDelay,
		Match:       importer.IsExportFile,
	})
	if err != nil {
		return nil, err
	}

	watched := 0
	for _, dir := range imports.Folders() {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			logger.Warn("import folder missing, not watching", "path", dir)
			continue
		}
		if err := w.Watch(dir); err != nil {
			_ = w.Stop()
			return nil, err
		}
		watched++
	}
	if watched == 0 {
		_ = w.Stop()
		return nil, ErrNoFolders
	}

	return &AutoImporter{
		watcher: w,
		imports: imports,
		boards:  boards,
		seed:    opts.Seed,
		clock:   opts.Clock,
		logger:  logger,
	}, nil
}

// ErrNoFolders is returned when none of the import folders exists.
var ErrNoFolders = errors.New("no import folder to watch")

// Run merges settled export files until ctx is canceled, then stops the
// watcher.
func (a *AutoImporter) Run(ctx context.Context) error {
	defer a.watcher.Stop() //nolint:errcheck // shutdown

	go a.watcher.Start(ctx) //nolint:errcheck // returns nil

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-a.watcher.Events():
			if !ok {
				return nil
			}
			if ev.Type == EventRemoved {
				continue
			}
			if _, err := a.ImportFile(ctx, ev.Path); err != nil && ctx.Err() == nil {
				a.logger.Error("auto import failed", "path", ev.Path, "error", err)
			}
		case err, ok := <-a.watcher.Errors():
			if !ok {
				return nil
			}
			a.logger.Warn("watcher error", "error", err)
		}
	}
}

// Stop releases the underlying watcher. Run calls it on return.
func (a *AutoImporter) Stop() error {
	return a.watcher.Stop()
}

// ImportFile merges the usernames of one export file into the stored board
// and returns how many followers were added. The board is written only
// when something was added.
func (a *AutoImporter) ImportFile(ctx context.Context, path string) (int, error) {
	usernames, err := a.imports.ReadFiles(ctx, []string{path})
	if err != nil {
		return 0, err
	}
	if len(usernames) == 0 {
		a.logger.Debug("export file has no usernames", "path", path)
		return 0, nil
	}

	current, err := a.boards.GetOrInit(ctx, a.seed)
	if err != nil {
		return 0, err
	}
	next, added := importer.Merge(current, usernames, a.clock())
	if added == 0 {
		a.logger.Info("export file already on the board", "path", path, "usernames", len(usernames))
		return 0, nil
	}
	if err := a.boards.Upsert(ctx, next); err != nil {
		return 0, err
	}

	a.logger.Info("export file imported", "path", path, "usernames", len(usernames), "added", added)
	return added, nil
}
