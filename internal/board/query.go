package board

import (
	"cmp"
	"slices"

	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
)

// SortedColumns returns copies of the columns in display order. Ties on
// order keep document order.
func SortedColumns(b *domain.Board) []domain.Column {
	cols := slices.Clone(b.Columns)
	slices.SortStableFunc(cols, func(a, c domain.Column) int { return cmp.Compare(a.Order, c.Order) })
	return cols
}

// FirstColumn returns the column displayed first.
func FirstColumn(b *domain.Board) (domain.Column, bool) {
	cols := SortedColumns(b)
	if len(cols) == 0 {
		return domain.Column{}, false
	}
	return cols[0], true
}

// FindColumn looks up a column by id.
func FindColumn(b *domain.Board, columnID string) (domain.Column, bool) {
	i := b.ColumnIndex(columnID)
	if i < 0 {
		return domain.Column{}, false
	}
	return b.Columns[i], true
}

// ColumnOf returns the column whose list holds followerID.
func ColumnOf(b *domain.Board, followerID string) (domain.Column, bool) {
	for _, c := range b.Columns {
		if slices.Contains(c.FollowerIDs, followerID) {
			return c, true
		}
	}
	return domain.Column{}, false
}

// FindTag looks up a tag by id. Followers may reference deleted tags.
func FindTag(b *domain.Board, tagID string) (domain.Tag, bool) {
	i := b.TagIndex(tagID)
	if i < 0 {
		return domain.Tag{}, false
	}
	return b.Tags[i], true
}

// NotesNewestFirst returns the follower's notes in display order.
func NotesNewestFirst(f domain.Follower) []domain.Note {
	notes := slices.Clone(f.Notes)
	slices.Reverse(notes)
	slices.SortStableFunc(notes, func(a, c domain.Note) int { return cmp.Compare(c.CreatedAt, a.CreatedAt) })
	return notes
}
