package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ArturoRiosMock/CRMAIRE/internal/board"
	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
)

// resolveFollower accepts a follower id or a username, with or without @.
func resolveFollower(b *domain.Board, ref string) (string, error) {
	if _, ok := b.Followers[ref]; ok {
		return ref, nil
	}
	username := domain.NormalizeUsername(ref)
	var found []string
	for fid, f := range b.Followers {
		if f.Username == username {
			found = append(found, fid)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no follower %q", ref)
	case 1:
		return found[0], nil
	default:
		slices.Sort(found)
		return "", fmt.Errorf("username %q is ambiguous, use one of the ids %s", ref, strings.Join(found, ", "))
	}
}

// resolveColumn accepts a column id or a case-insensitive title.
func resolveColumn(b *domain.Board, ref string) (string, error) {
	if b.ColumnIndex(ref) >= 0 {
		return ref, nil
	}
	for _, c := range board.SortedColumns(b) {
		if strings.EqualFold(c.Title, strings.TrimSpace(ref)) {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("no column %q", ref)
}

// resolveTag accepts a tag id or a case-insensitive name.
func resolveTag(b *domain.Board, ref string) (string, error) {
	if b.TagIndex(ref) >= 0 {
		return ref, nil
	}
	for _, t := range b.Tags {
		if strings.EqualFold(t.Name, strings.TrimSpace(ref)) {
			return t.ID, nil
		}
	}
	return "", fmt.Errorf("no tag %q", ref)
}

// visibleLocation finds a follower in filtered columns, as a drag source.
func visibleLocation(cols []domain.Column, followerID string) (board.Location, bool) {
	for _, c := range cols {
		if i := slices.Index(c.FollowerIDs, followerID); i >= 0 {
			return board.Location{ListID: c.ID, Index: i}, true
		}
	}
	return board.Location{}, false
}
