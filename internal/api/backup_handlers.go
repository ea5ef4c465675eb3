package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ArturoRiosMock/CRMAIRE/internal/backup"
	domainerrors "github.com/ArturoRiosMock/CRMAIRE/internal/errors"
)

func (s *Server) registerBackupRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBackups",
		Method:      http.MethodGet,
		Path:        "/api/backups",
		Summary:     "List backups",
		Description: "Lists board snapshots stored on the server, newest first",
		Tags:        []string{"Backup"},
	}, s.handleListBackups)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBackup",
		Method:        http.MethodPost,
		Path:          "/api/backups",
		Summary:       "Create backup",
		Description:   "Writes a snapshot of the stored board and prunes old snapshots",
		Tags:          []string{"Backup"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBackup)

	huma.Register(s.api, huma.Operation{
		OperationID: "restoreBackup",
		Method:      http.MethodPost,
		Path:        "/api/backups/{id}/restore",
		Summary:     "Restore backup",
		Description: "Replaces the stored board with a snapshot",
		Tags:        []string{"Backup"},
	}, s.handleRestoreBackup)
}

// ListBackupsOutput contains the snapshots.
type ListBackupsOutput struct {
	Body struct {
		Backups []backup.BackupInfo `json:"backups"`
	}
}

// CreateBackupOutput contains the new snapshot.
type CreateBackupOutput struct {
	Body *backup.BackupResult
}

// RestoreBackupInput selects the snapshot.
type RestoreBackupInput struct {
	ID     string `path:"id" doc:"Snapshot id, as listed"`
	DryRun bool   `query:"dryRun" doc:"Validate the snapshot without writing"`
}

// RestoreBackupOutput reports the restored board.
type RestoreBackupOutput struct {
	Body *backup.RestoreResult
}

func (s *Server) handleListBackups(ctx context.Context, _ *struct{}) (*ListBackupsOutput, error) {
	list, err := s.opts.Backups.List(ctx)
	if err != nil {
		s.logger.Error("failed to list backups", "error", err)
		return nil, toAPIError(err, "failed to list backups")
	}
	out := &ListBackupsOutput{}
	out.Body.Backups = list
	if out.Body.Backups == nil {
		out.Body.Backups = []backup.BackupInfo{}
	}
	return out, nil
}

func (s *Server) handleCreateBackup(ctx context.Context, _ *struct{}) (*CreateBackupOutput, error) {
	result, err := s.opts.Backups.Create(ctx)
	if err != nil {
		s.logger.Error("failed to create backup", "error", err)
		return nil, toAPIError(err, "failed to create backup")
	}
	return &CreateBackupOutput{Body: result}, nil
}

func (s *Server) handleRestoreBackup(ctx context.Context, input *RestoreBackupInput) (*RestoreBackupOutput, error) {
	result, err := s.opts.Backups.Restore(ctx, input.ID, backup.RestoreOptions{DryRun: input.DryRun})
	switch {
	case errors.Is(err, backup.ErrBackupNotFound):
		return nil, toAPIError(domainerrors.NotFoundf("backup %s not found", input.ID), "")
	case errors.Is(err, backup.ErrInvalidBackup):
		return nil, toAPIError(domainerrors.Validation(err.Error()), "")
	case err != nil:
		s.logger.Error("failed to restore backup", "id", input.ID, "error", err)
		return nil, toAPIError(err, "failed to restore backup")
	}
	return &RestoreBackupOutput{Body: result}, nil
}
