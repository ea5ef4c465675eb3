package gateway

import (
	"context"

	"github.com/ArturoRiosMock/CRMAIRE/internal/board"
	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
	"github.com/ArturoRiosMock/CRMAIRE/internal/store"
)

// StoreRemote talks to a BoardStore directly, for processes that own the
// database themselves.
type StoreRemote struct {
	Store store.BoardStore
	Seed  func() *domain.Board
}

var _ Remote = StoreRemote{}

// Fetch returns the stored board, initializing the row on first use.
func (r StoreRemote) Fetch(ctx context.Context) (*domain.Board, error) {
	seed := r.Seed
	if seed == nil {
		seed = board.Seed
	}
	return r.Store.GetOrInit(ctx, seed)
}

// Push replaces the stored board.
func (r StoreRemote) Push(ctx context.Context, b *domain.Board) error {
	return r.Store.Upsert(ctx, b)
}
