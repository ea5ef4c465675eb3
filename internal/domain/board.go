// Package domain holds the board document: columns, followers and tags.
//
// The whole board is one JSON document. It is loaded and saved atomically and
// every change produces a new document, see package board for the mutators.
package domain

import (
	"maps"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// TimestampLayout is the wire format for every timestamp in the document.
// It matches JavaScript's Date.toISOString so documents written by browser
// clients compare and round-trip unchanged.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// ProfileURLPrefix is prepended to a username to derive its profile link.
const ProfileURLPrefix = "https://instagram.com/"

// Tag is a named, colored label referenced by id from followers.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Note is a free-text entry owned by one follower.
type Note struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

// Follower is a lead tracked on the board.
type Follower struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Username          string   `json:"username"`
	ProfileURL        string   `json:"profileUrl"`
	Phone             string   `json:"phone,omitempty"`
	Email             string   `json:"email,omitempty"`
	Tags              []string `json:"tags"`
	Notes             []Note   `json:"notes"`
	ColumnID          string   `json:"columnId"`
	ProposalAmountUSD *float64 `json:"proposalAmountUsd,omitempty"`
	FollowUpAt        *string  `json:"followUpAt,omitempty"`
	ContactDate       string   `json:"contactDate,omitempty"`
	CreatedAt         string   `json:"createdAt"`
	UpdatedAt         string   `json:"updatedAt"`
}

// HasTag reports whether the follower holds tagID.
func (f *Follower) HasTag(tagID string) bool {
	return slices.Contains(f.Tags, tagID)
}

// Touch refreshes UpdatedAt.
func (f *Follower) Touch(now time.Time) {
	f.UpdatedAt = Timestamp(now)
}

// Clone returns a deep copy of the follower.
func (f Follower) Clone() Follower {
	c := f
	c.Tags = slices.Clone(f.Tags)
	c.Notes = slices.Clone(f.Notes)
	if f.ProposalAmountUSD != nil {
		v := *f.ProposalAmountUSD
		c.ProposalAmountUSD = &v
	}
	if f.FollowUpAt != nil {
		v := *f.FollowUpAt
		c.FollowUpAt = &v
	}
	return c
}

// Column is an ordered pipeline stage holding follower ids.
type Column struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Order       int      `json:"order"`
	FollowerIDs []string `json:"followerIds"`
}

// Clone returns a copy of the column with its own id list.
func (c Column) Clone() Column {
	out := c
	out.FollowerIDs = slices.Clone(c.FollowerIDs)
	return out
}

// Board is the root aggregate persisted as a single document.
type Board struct {
	Columns   []Column            `json:"columns"`
	Followers map[string]Follower `json:"followers"`
	Tags      []Tag               `json:"tags"`
}

// Clone returns a deep copy of the board. A nil board clones to nil.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}
	out := &Board{
		Columns:   make([]Column, len(b.Columns)),
		Followers: make(map[string]Follower, len(b.Followers)),
		Tags:      slices.Clone(b.Tags),
	}
	for i, c := range b.Columns {
		out.Columns[i] = c.Clone()
	}
	for k, f := range b.Followers {
		out.Followers[k] = f.Clone()
	}
	return out
}

// ColumnIndex returns the slice index of the column with id, or -1.
func (b *Board) ColumnIndex(id string) int {
	return slices.IndexFunc(b.Columns, func(c Column) bool { return c.ID == id })
}

// TagIndex returns the slice index of the tag with id, or -1.
func (b *Board) TagIndex(id string) int {
	return slices.IndexFunc(b.Tags, func(t Tag) bool { return t.ID == id })
}

// FollowerIDs returns every follower key in sorted order.
func (b *Board) FollowerIDs() []string {
	return slices.Sorted(maps.Keys(b.Followers))
}

// Timestamp formats t in the document's timestamp layout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a document timestamp. RFC 3339 without
// milliseconds is accepted as well.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Parse(time.RFC3339Nano, s)
	}
	return t, nil
}

// NormalizeUsername folds a raw handle into its canonical form: NFC, trimmed,
// without leading '@', lower case. The result may be empty.
func NormalizeUsername(raw string) string {
	s := strings.TrimSpace(norm.NFC.String(raw))
	s = strings.TrimLeft(s, "@")
	return strings.ToLower(strings.TrimSpace(s))
}

// ProfileURL derives the profile link for a normalized username.
func ProfileURL(username string) string {
	return ProfileURLPrefix + username
}
