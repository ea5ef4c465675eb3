package watcher

import (
	"path/filepath"
	"strings"
	"time"
)

// DefaultSettleDelay is how long a file must stay unchanged before its
// event is emitted.
const DefaultSettleDelay = 2 * time.Second

// Options configures the file watcher behavior.
type Options struct {
	IgnorePatterns []string
	SettleDelay    time.Duration
	IgnoreHidden   bool
	// Match, when set, limits events to files whose base name it accepts.
	Match func(name string) bool
}

// setDefaults applies default values to unset options.
func (o *Options) setDefaults() {
	if o.SettleDelay <= 0 {
		o.SettleDelay = DefaultSettleDelay
	}

	// Patterns left nil get the defaults and hidden files are skipped. An
	// explicit empty slice keeps the caller's IgnoreHidden.
	if o.IgnorePatterns == nil {
		o.IgnorePatterns = []string{
			".DS_Store",
			"*.tmp",
			"*.temp",
			"*.part",
			"*.crdownload",
			"Thumbs.db",
		}
		o.IgnoreHidden = true
	}
}

// shouldIgnore checks the base name of path against the ignore rules.
// Only the last element is looked at: hidden directories are never walked
// into, so nothing below them reaches this check.
func (o *Options) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	if o.IgnoreHidden && strings.HasPrefix(base, ".") && base != "." && base != ".." {
		return true
	}

	for _, pattern := range o.IgnorePatterns {
		matched, err := filepath.Match(pattern, base)
		if err == nil && matched {
			return true
		}
	}
	return false
}

// accepts reports whether a regular file should produce events.
func (o *Options) accepts(path string) bool {
	if o.shouldIgnore(path) {
		return false
	}
	return o.Match == nil || o.Match(filepath.Base(path))
}
