package backup

import (
	"time"

	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
)

// DefaultKeep is how many snapshots survive pruning when Options.Keep is
// unset.
const DefaultKeep = 14

// Options configures a BackupService.
type Options struct {
	Keep  int
	Clock func() time.Time
	// Seed builds the board stored when no row exists yet.
	Seed func() *domain.Board
}

// RestoreOptions configures restoration.
type RestoreOptions struct {
	DryRun bool // Validate without writing
}

// BackupResult contains the outcome of a snapshot.
type BackupResult struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	LeadCount int       `json:"leadCount"`
	CreatedAt time.Time `json:"createdAt"`
	Pruned    int       `json:"pruned"`
}

// BackupInfo describes an existing snapshot.
type BackupInfo struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// RestoreResult contains the outcome of a restore.
type RestoreResult struct {
	ID        string `json:"id"`
	LeadCount int    `json:"leadCount"`
	Columns   int    `json:"columns"`
	DryRun    bool   `json:"dryRun"`
}
