package importer

import (
	"strings"
	"time"

	"github.com/ArturoRiosMock/CRMAIRE/internal/board"
	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
	"github.com/ArturoRiosMock/CRMAIRE/internal/id"
)

// Merge adds a follower for every username not already on the board,
// matching case-insensitively, and returns the new board with the number of
// followers added. New followers go to the end of the column with order 0,
// or of the first column by display order when none has order 0. A nil
// board merges into a fresh seed. The input board is not modified.
func Merge(b *domain.Board, usernames []string, now time.Time) (*domain.Board, int) {
	if b == nil {
		b = board.SeedAt(now)
	}
	target := targetColumn(b)
	if target < 0 {
		return b, 0
	}

	existing := make(map[string]struct{}, len(b.Followers))
	for _, f := range b.Followers {
		existing[strings.ToLower(f.Username)] = struct{}{}
	}

	var out *domain.Board
	ts := domain.Timestamp(now)
	added := 0
	for _, raw := range usernames {
		u := domain.NormalizeUsername(raw)
		if u == "" {
			continue
		}
		if _, dup := existing[u]; dup {
			continue
		}
		existing[u] = struct{}{}

		if out == nil {
			out = b.Clone()
		}
		f := domain.Follower{
			ID:          id.MustGenerate(),
			Name:        u,
			Username:    u,
			ProfileURL:  domain.ProfileURL(u),
			Tags:        []string{},
			Notes:       []domain.Note{},
			ColumnID:    out.Columns[target].ID,
			ContactDate: ts,
			CreatedAt:   ts,
			UpdatedAt:   ts,
		}
		out.Followers[f.ID] = f
		out.Columns[target].FollowerIDs = append(out.Columns[target].FollowerIDs, f.ID)
		added++
	}

	if out == nil {
		return b, 0
	}
	return out, added
}

func targetColumn(b *domain.Board) int {
	for i, c := range b.Columns {
		if c.Order == 0 {
			return i
		}
	}
	first, ok := board.FirstColumn(b)
	if !ok {
		return -1
	}
	return b.ColumnIndex(first.ID)
}
