package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ArturoRiosMock/CRMAIRE/internal/board"
	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
	"github.com/ArturoRiosMock/CRMAIRE/internal/store"
	"github.com/ArturoRiosMock/CRMAIRE/internal/validation"
)

const (
	filePrefix = "crm-seguidores-backup-"
	fileSuffix = ".json"
	idLayout   = "2006-01-02-150405"
)

// BackupService manages board snapshots in one directory.
type BackupService struct {
	boards    store.BoardStore
	backupDir string
	keep      int
	clock     func() time.Time
	seed      func() *domain.Board
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBackupService creates a BackupService writing to backupDir.
func NewBackupService(boards store.BoardStore, backupDir string, logger *slog.Logger, opts Options) *BackupService {
	if opts.Keep <= 0 {
		opts.Keep = DefaultKeep
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &BackupService{
		boards:    boards,
		backupDir: backupDir,
		keep:      opts.Keep,
		clock:     opts.Clock,
		seed:      opts.Seed,
		validator: validation.New(),
		logger:    logger,
	}
}

// Dir returns the snapshot directory.
func (s *BackupService) Dir() string {
	return s.backupDir
}

// Create writes the stored board as an annotated backup and prunes old
// snapshots.
func (s *BackupService) Create(ctx context.Context) (*BackupResult, error) {
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	// One clock reading names the snapshot and dates a first-time seed.
	now := s.clock().UTC()
	seed := s.seed
	if seed == nil {
		seed = func() *domain.Board { return board.SeedAt(now) }
	}
	b, err := s.boards.GetOrInit(ctx, seed)
	if err != nil {
		return nil, err
	}

	data, err := domain.EncodeBackup(b, now)
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}

	id := now.Format(idLayout)
	path := s.GetPath(id)
	if err := writeFileAtomic(path, data); err != nil {
		return nil, err
	}

	pruned, err := s.Prune(ctx)
	if err != nil {
		s.logger.Warn("backup prune failed", "error", err)
	}

	s.logger.Info("backup complete",
		"path", path,
		"size", len(data),
		"leads", len(b.Followers),
		"pruned", pruned)

	return &BackupResult{
		ID:        id,
		Path:      path,
		Size:      int64(len(data)),
		LeadCount: len(b.Followers),
		CreatedAt: now,
		Pruned:    pruned,
	}, nil
}

// List returns all snapshots, newest first.
func (s *BackupService) List(ctx context.Context) ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		created, _ := time.Parse(idLayout, id)
		backups = append(backups, BackupInfo{
			ID:        id,
			Path:      filepath.Join(s.backupDir, entry.Name()),
			Size:      info.Size(),
			CreatedAt: created,
		})
	}

	// Ids are timestamps, so lexical order is chronological.
	slices.SortFunc(backups, func(a, b BackupInfo) int {
		return strings.Compare(b.ID, a.ID)
	})
	return backups, nil
}

// Get returns a snapshot by ID.
func (s *BackupService) Get(ctx context.Context, id string) (*BackupInfo, error) {
	if !validID(id) {
		return nil, ErrBackupNotFound
	}
	path := s.GetPath(id)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBackupNotFound
		}
		return nil, err
	}

	created, _ := time.Parse(idLayout, id)
	return &BackupInfo{
		ID:        id,
		Path:      path,
		Size:      info.Size(),
		CreatedAt: created,
	}, nil
}

// Delete removes a snapshot.
func (s *BackupService) Delete(ctx context.Context, id string) error {
	info, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return os.Remove(info.Path)
}

// Prune deletes the oldest snapshots beyond the keep count and returns how
// many were removed.
func (s *BackupService) Prune(ctx context.Context) (int, error) {
	backups, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(backups) <= s.keep {
		return 0, nil
	}

	removed := 0
	for _, b := range backups[s.keep:] {
		if err := os.Remove(b.Path); err != nil && !os.IsNotExist(err) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// GetPath returns the file path for a snapshot ID.
func (s *BackupService) GetPath(id string) string {
	return filepath.Join(s.backupDir, filePrefix+id+fileSuffix)
}

func parseName(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, filePrefix)
	if !ok {
		return "", false
	}
	id, ok := strings.CutSuffix(rest, fileSuffix)
	if !ok || !validID(id) {
		return "", false
	}
	return id, true
}

func validID(id string) bool {
	_, err := time.Parse(idLayout, id)
	return err == nil
}

// writeFileAtomic writes through a temp file in the same directory so a
// crash never leaves a truncated snapshot.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".backup-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write backup: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close backup: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename backup: %w", err)
	}
	return nil
}
