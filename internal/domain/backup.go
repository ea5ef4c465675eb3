package domain

import (
	"encoding/json/jsontext"
	"encoding/json/v2"
	"time"
)

// Backup is a board annotated for download. Restoring it ignores the extra
// members, so a backup file is also a valid board document.
type Backup struct {
	Marker     bool                `json:"_backup"`
	ExportedAt string              `json:"exportedAt"`
	LeadCount  int                 `json:"leadCount"`
	Columns    []Column            `json:"columns"`
	Followers  map[string]Follower `json:"followers"`
	Tags       []Tag               `json:"tags"`
}

// NewBackup annotates b with the export time and follower count.
func NewBackup(b *Board, now time.Time) *Backup {
	return &Backup{
		Marker:     true,
		ExportedAt: Timestamp(now),
		LeadCount:  len(b.Followers),
		Columns:    b.Columns,
		Followers:  b.Followers,
		Tags:       b.Tags,
	}
}

// EncodeBackup serializes an annotated backup with two-space indentation.
func EncodeBackup(b *Board, now time.Time) ([]byte, error) {
	return json.Marshal(NewBackup(b, now), json.Deterministic(true), jsontext.WithIndent("  "))
}

// BackupFileName is the download name for a backup taken at now.
func BackupFileName(now time.Time) string {
	return "crm-seguidores-backup-" + now.UTC().Format(time.DateOnly) + ".json"
}
