package backup

import (
	"context"
	"fmt"
	"os"
)

// Restore replaces the stored board with a snapshot. The snapshot is
// validated like any board document before anything is written.
func (s *BackupService) Restore(ctx context.Context, id string, opts RestoreOptions) (*RestoreResult, error) {
	info, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("starting restore", "id", id, "dry_run", opts.DryRun)

	data, err := os.ReadFile(info.Path)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	b, err := s.validator.Board(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBackup, err)
	}

	result := &RestoreResult{
		ID:        id,
		LeadCount: len(b.Followers),
		Columns:   len(b.Columns),
		DryRun:    opts.DryRun,
	}
	if opts.DryRun {
		return result, nil
	}

	if err := s.boards.Upsert(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("restore complete", "id", id, "leads", result.LeadCount)
	return result, nil
}
