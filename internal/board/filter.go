package board

import (
	"slices"
	"strings"

	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
)

// Filter narrows the visible cards by text and tags.
type Filter struct {
	Query  string
	TagIDs []string
}

// Active reports whether the filter hides anything.
func (f Filter) Active() bool {
	return strings.TrimSpace(f.Query) != "" || len(f.TagIDs) > 0
}

// Matches reports whether a follower is visible under the filter. The text
// part matches a case-insensitive substring of the name or username, the tag
// part matches followers holding every selected tag, and either is enough.
func (f Filter) Matches(fl domain.Follower) bool {
	if !f.Active() {
		return true
	}
	match := false
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		match = strings.Contains(strings.ToLower(fl.Name), q) ||
			strings.Contains(strings.ToLower(fl.Username), q)
	}
	if len(f.TagIDs) > 0 && !match {
		match = true
		for _, t := range f.TagIDs {
			if !fl.HasTag(t) {
				match = false
				break
			}
		}
	}
	return match
}

// Visible returns the columns in display order with their follower lists
// narrowed to matching followers. Ids without a backing record are dropped.
func (f Filter) Visible(b *domain.Board) []domain.Column {
	cols := SortedColumns(b)
	for i := range cols {
		cols[i].FollowerIDs = slices.DeleteFunc(slices.Clone(cols[i].FollowerIDs), func(id string) bool {
			fl, ok := b.Followers[id]
			return !ok || !f.Matches(fl)
		})
	}
	return cols
}
