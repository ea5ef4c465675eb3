// Package board implements the board mutators, the seed document and the
// drag reconciliation rules.
//
// Every mutator takes a board and returns a new one. The input is never
// modified, so callers can keep the previous document around for undo or
// comparison. Requests that cannot be applied return the input board
// unchanged together with a coded error from internal/errors.
package board

import (
	"time"

	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
)

// DefaultColumnTitles are the pipeline stages of a fresh board, in order.
var DefaultColumnTitles = []string{
	"Nuevo",
	"Contactado",
	"Interesado",
	"Negociación",
	"Cliente",
	"Perdido",
}

// DefaultTags are the labels of a fresh board.
var DefaultTags = []domain.Tag{
	{ID: "tag-1", Name: "VIP", Color: "#f59e0b"},
	{ID: "tag-2", Name: "Prioritario", Color: "#ef4444"},
	{ID: "tag-3", Name: "Seguimiento", Color: "#3b82f6"},
}

const (
	sampleName     = "Ejemplo Seguidor"
	sampleUsername = "ejemplo_usuario"
	sampleNote     = "Primer contacto por DM"
	sampleTagID    = "tag-3"
)

// Seed builds the default board using the package clock and id source.
func Seed() *domain.Board {
	return Default.Seed()
}

// Seed builds the default board: six stages, three tags and one example
// follower placed in the first stage.
func (m Mutator) Seed() *domain.Board {
	now := domain.Timestamp(m.now())

	b := &domain.Board{
		Columns:   make([]domain.Column, len(DefaultColumnTitles)),
		Followers: make(map[string]domain.Follower, 1),
		Tags:      make([]domain.Tag, len(DefaultTags)),
	}
	copy(b.Tags, DefaultTags)
	for i, title := range DefaultColumnTitles {
		b.Columns[i] = domain.Column{
			ID:          m.newID(),
			Title:       title,
			Order:       i,
			FollowerIDs: []string{},
		}
	}

	f := domain.Follower{
		ID:         m.newID(),
		Name:       sampleName,
		Username:   sampleUsername,
		ProfileURL: domain.ProfileURL(sampleUsername),
		Tags:       []string{sampleTagID},
		Notes: []domain.Note{{
			ID:        m.newID(),
			Content:   sampleNote,
			CreatedAt: now,
		}},
		ColumnID:    b.Columns[0].ID,
		ContactDate: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	b.Followers[f.ID] = f
	b.Columns[0].FollowerIDs = append(b.Columns[0].FollowerIDs, f.ID)

	return b
}

// SeedAt builds the default board with a fixed timestamp.
func SeedAt(now time.Time) *domain.Board {
	return New(func() time.Time { return now }).Seed()
}
