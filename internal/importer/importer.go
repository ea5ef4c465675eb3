package importer

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DefaultFolders are the export folder names searched under the import root.
var DefaultFolders = []string{
	"instagram-airepilatesfit-2026-02-11-ZJafTQUp",
	"instagram",
}

const connectionsDir = "connections"

// ErrNothingFound is returned by Lookup when no export file yields usernames.
var ErrNothingFound = errors.New("no follower export data found")

// NothingFoundError carries the path where an export was expected.
type NothingFoundError struct {
	Path string
}

func (e *NothingFoundError) Error() string {
	return ErrNothingFound.Error() + " in " + e.Path
}

// Is matches ErrNothingFound.
func (e *NothingFoundError) Is(target error) bool {
	return target == ErrNothingFound
}

// LookupResult is the outcome of a successful folder lookup.
type LookupResult struct {
	Folder    string
	Usernames []string
}

// Importer reads export files from disk.
type Importer struct {
	root    string
	folders []string
	logger  *slog.Logger
}

// New creates an importer searching folders under root.
func New(root string, folders []string, logger *slog.Logger) *Importer {
	if len(folders) == 0 {
		folders = DefaultFolders
	}
	return &Importer{
		root:    root,
		folders: folders,
		logger:  logger,
	}
}

// Root returns the directory the folders are resolved against.
func (im *Importer) Root() string {
	return im.root
}

// Folders returns the absolute export folder paths in search order.
func (im *Importer) Folders() []string {
	out := make([]string, len(im.folders))
	for i, f := range im.folders {
		out[i] = filepath.Join(im.root, f)
	}
	return out
}

// IsExportFile reports whether a file name looks like a follower or
// following export.
func IsExportFile(name string) bool {
	if !strings.HasSuffix(name, ".json") {
		return false
	}
	lower := strings.ToLower(name)
	return strings.Contains(lower, "follower") || strings.Contains(lower, "following")
}

// ReadFiles reads and parses every path concurrently and waits for all of
// them before returning the combined usernames, de-duplicated in path order.
// Unreadable files are logged and skipped.
func (im *Importer) ReadFiles(ctx context.Context, paths []string) ([]string, error) {
	results := make([][]string, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				im.logger.Warn("skipping unreadable import file", "path", path, "error", err)
				return nil
			}
			results[i] = ParseExport(data)
			im.logger.Debug("parsed import file", "path", path, "usernames", len(results[i]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []string
	for _, r := range results {
		all = append(all, r...)
	}
	return Dedupe(all), nil
}

// Lookup searches each configured folder, its connections directory first
// and then the folder itself, for export files. The first folder yielding
// any usernames wins.
func (im *Importer) Lookup(ctx context.Context) (*LookupResult, error) {
	for _, folder := range im.folders {
		folderPath := filepath.Join(im.root, folder)
		if !isDir(folderPath) {
			continue
		}

		for _, searchPath := range []string{filepath.Join(folderPath, connectionsDir), folderPath} {
			if !isDir(searchPath) {
				continue
			}
			files, err := im.findExportFiles(ctx, searchPath)
			if err != nil {
				return nil, err
			}
			usernames, err := im.ReadFiles(ctx, files)
			if err != nil {
				return nil, err
			}
			if len(usernames) > 0 {
				im.logger.Info("import folder found",
					"folder", folder,
					"files", len(files),
					"usernames", len(usernames),
				)
				return &LookupResult{Folder: folder, Usernames: usernames}, nil
			}
		}
	}

	expected := im.root
	if len(im.folders) > 0 {
		expected = filepath.Join(im.root, im.folders[0], connectionsDir)
	}
	return nil, &NothingFoundError{Path: expected}
}

// findExportFiles walks dir recursively and returns export files in
// lexical order.
func (im *Importer) findExportFiles(ctx context.Context, dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			im.logger.Warn("walk error", "path", path, "error", err)
			return nil
		}
		if d.Type().IsRegular() && IsExportFile(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
