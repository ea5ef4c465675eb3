// Package backup writes snapshots of the stored board to disk and restores
// them.
package backup

import "errors"

var (
	// ErrBackupNotFound indicates the requested snapshot does not exist.
	ErrBackupNotFound = errors.New("backup not found")

	// ErrInvalidBackup indicates a snapshot file is not a board document.
	ErrInvalidBackup = errors.New("backup is not a valid board document")
)
