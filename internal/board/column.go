package board

import (
	"slices"
	"strings"

	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
	domainerrors "github.com/ArturoRiosMock/CRMAIRE/internal/errors"
)

// AddColumn appends an empty column after the current highest order.
func (m Mutator) AddColumn(b *domain.Board, title string) (*domain.Board, string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return b, "", domainerrors.Validation("column title is required")
	}

	order := 0
	if len(b.Columns) > 0 {
		order = slices.MaxFunc(b.Columns, func(a, c domain.Column) int { return a.Order - c.Order }).Order + 1
	}
	col := domain.Column{
		ID:          m.newID(),
		Title:       title,
		Order:       order,
		FollowerIDs: []string{},
	}

	out := b.Clone()
	out.Columns = append(out.Columns, col)
	return out, col.ID, nil
}

// RenameColumn replaces the column title. A blank title keeps the old one.
func (m Mutator) RenameColumn(b *domain.Board, columnID, title string) (*domain.Board, error) {
	ci := b.ColumnIndex(columnID)
	if ci < 0 {
		return b, domainerrors.NotFoundf("column %s not found", columnID)
	}
	title = strings.TrimSpace(title)
	if title == "" || title == b.Columns[ci].Title {
		return b, nil
	}

	out := b.Clone()
	out.Columns[ci].Title = title
	return out, nil
}

// ReorderColumns assigns dense orders 0..n-1 following orderedIDs. Columns
// missing from orderedIDs keep their relative display order after the listed
// ones. Unknown ids are ignored.
func (m Mutator) ReorderColumns(b *domain.Board, orderedIDs []string) (*domain.Board, error) {
	seen := make(map[string]bool, len(orderedIDs))
	sequence := make([]string, 0, len(b.Columns))
	for _, cid := range orderedIDs {
		if seen[cid] || b.ColumnIndex(cid) < 0 {
			continue
		}
		seen[cid] = true
		sequence = append(sequence, cid)
	}
	for _, c := range SortedColumns(b) {
		if !seen[c.ID] {
			sequence = append(sequence, c.ID)
		}
	}

	out := b.Clone()
	for order, cid := range sequence {
		out.Columns[out.ColumnIndex(cid)].Order = order
	}
	return out, nil
}

// NormalizeColumnOrder rewrites orders as 0..n-1 keeping display order.
func (m Mutator) NormalizeColumnOrder(b *domain.Board) *domain.Board {
	sorted := SortedColumns(b)
	dense := true
	for i, c := range sorted {
		if c.Order != i {
			dense = false
			break
		}
	}
	if dense {
		return b
	}

	out := b.Clone()
	for order, c := range sorted {
		out.Columns[out.ColumnIndex(c.ID)].Order = order
	}
	return out
}

// DeleteColumn removes a column. Its followers are appended, in their
// current order, to the first remaining column by display order, and the
// remaining orders are renumbered 0..n-1. Deleting the only column is
// refused with ErrLastColumn.
func (m Mutator) DeleteColumn(b *domain.Board, columnID string) (*domain.Board, error) {
	ci := b.ColumnIndex(columnID)
	if ci < 0 {
		return b, domainerrors.NotFoundf("column %s not found", columnID)
	}
	if len(b.Columns) == 1 {
		return b, ErrLastColumn
	}

	var target string
	for _, c := range SortedColumns(b) {
		if c.ID != columnID {
			target = c.ID
			break
		}
	}

	out := b.Clone()
	moved := out.Columns[ci].FollowerIDs
	out.Columns = slices.Delete(out.Columns, ci, ci+1)
	ti := out.ColumnIndex(target)
	out.Columns[ti].FollowerIDs = append(out.Columns[ti].FollowerIDs, moved...)

	if len(moved) > 0 {
		now := m.now()
		for _, fid := range moved {
			f, ok := out.Followers[fid]
			if !ok {
				continue
			}
			f.ColumnID = target
			f.Touch(now)
			out.Followers[fid] = f
		}
	}
	for order, c := range SortedColumns(out) {
		out.Columns[out.ColumnIndex(c.ID)].Order = order
	}
	return out, nil
}
