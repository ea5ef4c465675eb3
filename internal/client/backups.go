package client

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ArturoRiosMock/CRMAIRE/internal/backup"
)

const backupsPath = "/api/backups"

// Backups lists the server's snapshots, newest first.
func (c *Client) Backups(ctx context.Context) ([]backup.BackupInfo, error) {
	var out struct {
		Backups []backup.BackupInfo `json:"backups"`
	}
	if err := c.getJSON(ctx, http.MethodGet, backupsPath, &out); err != nil {
		return nil, err
	}
	return out.Backups, nil
}

// CreateBackup asks the server to snapshot the stored board.
func (c *Client) CreateBackup(ctx context.Context) (*backup.BackupResult, error) {
	var out backup.BackupResult
	if err := c.getJSON(ctx, http.MethodPost, backupsPath, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RestoreBackup replaces the stored board with snapshot id. With dryRun the
// snapshot is only validated.
func (c *Client) RestoreBackup(ctx context.Context, id string, dryRun bool) (*backup.RestoreResult, error) {
	path := backupsPath + "/" + url.PathEscape(id) + "/restore"
	if dryRun {
		path += "?" + url.Values{"dryRun": {"true"}}.Encode()
	}
	var out backup.RestoreResult
	if err := c.getJSON(ctx, http.MethodPost, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, method, path string, out any) error {
	resp, err := c.do(ctx, method, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.UnmarshalRead(resp.Body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
