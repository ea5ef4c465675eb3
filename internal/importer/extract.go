// Package importer extracts usernames from social network export files and
// merges them into a board as new followers.
//
// Export files come in several shapes. The known one wraps records in
// well-known top-level keys, each record holding a "string_list_data" list
// of {value, href} entries. Anything else is searched structurally: every
// string leaf is a candidate username.
package importer

import (
	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
)

// WellKnownKeys are the top-level members searched first, in order.
var WellKnownKeys = []string{
	"relationships_followers",
	"relationships_following",
	"string_list_data",
	"follower",
	"following",
	"accounts_you_follow",
}

const (
	entryListKey = "string_list_data"
	entryValue   = "value"
)

// collector accumulates normalized usernames once each, in first-seen order.
type collector struct {
	seen  map[string]struct{}
	names []string
}

func newCollector() *collector {
	return &collector{seen: make(map[string]struct{}), names: []string{}}
}

func (c *collector) add(raw string) {
	u := domain.NormalizeUsername(raw)
	if u == "" {
		return
	}
	if _, dup := c.seen[u]; dup {
		return
	}
	c.seen[u] = struct{}{}
	c.names = append(c.names, u)
}

func (c *collector) visit(v Value) {
	switch v.Kind {
	case String:
		c.add(v.Text)
	case Array:
		for _, item := range v.Items {
			c.visit(item)
		}
	case Object:
		if entries, ok := v.Get(entryListKey); ok && entries.Kind == Array {
			for _, e := range entries.Items {
				if val, ok := e.Get(entryValue); ok && val.Truthy() {
					c.visit(val)
				}
			}
			return
		}
		if val, ok := v.Get(entryValue); ok && val.Kind == String && val.Text != "" {
			c.add(val.Text)
			return
		}
		for _, m := range v.Members {
			c.visit(m.Value)
		}
	}
}

// ExtractUsernames walks v and returns the normalized, de-duplicated
// usernames it contains. For a top-level object the well-known keys are
// tried first and the whole object is searched only when they yield nothing.
func ExtractUsernames(v Value) []string {
	c := newCollector()
	switch v.Kind {
	case Array:
		c.visit(v)
	case Object:
		for _, key := range WellKnownKeys {
			if m, ok := v.Get(key); ok && m.Truthy() {
				c.visit(m)
			}
		}
		if len(c.names) == 0 {
			for _, m := range v.Members {
				c.visit(m.Value)
			}
		}
	}
	return c.names
}

// ParseExport extracts usernames from raw export bytes. Malformed JSON
// yields an empty result.
func ParseExport(data []byte) []string {
	v, err := ParseValue(data)
	if err != nil {
		return []string{}
	}
	return ExtractUsernames(v)
}

// Dedupe normalizes usernames and drops repeats, keeping first occurrence
// order.
func Dedupe(usernames []string) []string {
	c := newCollector()
	for _, u := range usernames {
		c.add(u)
	}
	return c.names
}
