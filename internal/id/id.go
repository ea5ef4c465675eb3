// Package id generates identifiers for board entities.
package id

import (
	"fmt"
	"strconv"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// suffixAlphabet matches the base36 suffix of ids minted by earlier board clients.
	suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffixLength   = 9
)

// now is swapped in tests.
var now = time.Now

// Generate creates a board entity ID of the form "<unix-millis>-<random>"
// (e.g., "1739280000000-k3j9x0a1q").
//
// The millisecond prefix keeps ids roughly sortable by creation time; the
// nanoid suffix makes collisions within the same millisecond impractical.
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate() (string, error) {
	suffix, err := gonanoid.Generate(suffixAlphabet, suffixLength)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return strconv.FormatInt(now().UnixMilli(), 10) + "-" + suffix, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate() string {
	id, err := Generate()
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// Prefixed creates a prefixed NanoID (e.g., "sess-V1StGXR8_Z5jdHi6B-myT") for
// identifiers that never appear inside a board document.
func Prefixed(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustPrefixed is like Prefixed but panics if ID generation fails.
func MustPrefixed(prefix string) string {
	id, err := Prefixed(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
