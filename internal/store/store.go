// Package store defines board persistence: the authoritative remote row and
// the local cache slot. Implementations live in the subpackages.
package store

import (
	"context"

	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
)

// BoardID is the key of the single board row.
const BoardID = "default"

// BoardStore persists the one board document.
type BoardStore interface {
	// GetOrInit returns the stored board. When no row exists yet, the board
	// built by seed is inserted unless a concurrent caller got there first,
	// and the row that ended up stored is returned.
	GetOrInit(ctx context.Context, seed func() *domain.Board) (*domain.Board, error)

	// Upsert replaces the stored board. Last write wins.
	Upsert(ctx context.Context, b *domain.Board) error

	// Ping reports whether the backing database is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Cache is a single named slot holding a serialized board.
type Cache interface {
	// Load returns the cached bytes or ErrNotFound when the slot is empty.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Close() error
}

// DecodeBoard parses a stored document and checks its three top-level
// members are present.
func DecodeBoard(data []byte) (*domain.Board, error) {
	doc, err := domain.DecodeDocument(data)
	if err != nil {
		return nil, ErrCorrupt.WithCause(err)
	}
	if doc.Columns == nil || doc.Followers == nil || doc.Tags == nil {
		return nil, ErrCorrupt
	}
	return doc.Board(), nil
}
