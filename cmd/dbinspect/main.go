// Package main prints what the board store and the local cache hold.
//
// Usage:
//
//	DB_PATH=~/.crm-seguidores/board.db CACHE_PATH=~/.crm-seguidores/cache go run ./cmd/dbinspect
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/ArturoRiosMock/CRMAIRE/internal/board"
	"github.com/ArturoRiosMock/CRMAIRE/internal/cache"
	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
	"github.com/ArturoRiosMock/CRMAIRE/internal/store"
	"github.com/ArturoRiosMock/CRMAIRE/internal/store/sqlite"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/.crm-seguidores/board.db")
	}
	cachePath := os.Getenv("CACHE_PATH")
	if cachePath == "" {
		cachePath = os.ExpandEnv("$HOME/.crm-seguidores/cache")
	}

	fmt.Println("=== Board store ===")
	fmt.Printf("Path: %s\n\n", dbPath)
	stored := inspectStore(dbPath)

	fmt.Println()
	fmt.Println("=== Local cache ===")
	fmt.Printf("Path: %s\n\n", cachePath)
	cached := inspectCache(cachePath)

	if stored != nil && cached != nil {
		fmt.Println()
		fmt.Println("=== Comparison ===")
		compare(stored, cached)
	}
}

func inspectStore(path string) *domain.Board {
	if _, err := os.Stat(path); err != nil {
		fmt.Printf("No database: %v\n", err)
		return nil
	}
	s, err := sqlite.Open(path, slog.New(slog.DiscardHandler))
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	empty := false
	b, err := s.GetOrInit(context.Background(), func() *domain.Board {
		empty = true
		return board.Seed()
	})
	if err != nil {
		log.Fatalf("Failed to read board: %v", err)
	}
	if empty {
		fmt.Println("Board row was missing and has been initialized with the seed")
	}
	summarize(b)
	return b
}

func inspectCache(path string) *domain.Board {
	if _, err := os.Stat(path); err != nil {
		fmt.Printf("No cache: %v\n", err)
		return nil
	}
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open cache: %v", err)
	}
	defer db.Close()

	var data []byte
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cache.BadgerKey))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		fmt.Println("Cache slot is empty")
		return nil
	}
	if err != nil {
		log.Fatalf("Failed to read cache: %v", err)
	}

	fmt.Printf("Cached document: %d bytes\n", len(data))
	b, err := store.DecodeBoard(data)
	if err != nil {
		fmt.Printf("Cached document is not a valid board: %v\n", err)
		return nil
	}
	summarize(b)
	return b
}

func summarize(b *domain.Board) {
	fmt.Printf("Columns: %d\n", len(b.Columns))
	for _, c := range board.SortedColumns(b) {
		fmt.Printf("  [%d] %-14s %d followers (%s)\n", c.Order, c.Title, len(c.FollowerIDs), c.ID)
	}
	fmt.Printf("Tags: %d\n", len(b.Tags))
	for _, t := range b.Tags {
		fmt.Printf("  %-14s %s (%s)\n", t.Name, t.Color, t.ID)
	}

	notes := 0
	for _, f := range b.Followers {
		notes += len(f.Notes)
	}
	fmt.Printf("Followers: %d (%d notes)\n", len(b.Followers), notes)

	if err := b.Check(); err != nil {
		fmt.Printf("Consistency: %v\n", err)
	} else {
		fmt.Println("Consistency: ok")
	}
}

func compare(stored, cached *domain.Board) {
	onlyStored, onlyCached := 0, 0
	for id := range stored.Followers {
		if _, ok := cached.Followers[id]; !ok {
			onlyStored++
		}
	}
	for id := range cached.Followers {
		if _, ok := stored.Followers[id]; !ok {
			onlyCached++
		}
	}
	fmt.Printf("Followers only in store: %d\n", onlyStored)
	fmt.Printf("Followers only in cache: %d\n", onlyCached)

	moved := 0
	for id, f := range stored.Followers {
		if c, ok := cached.Followers[id]; ok && c.ColumnID != f.ColumnID {
			moved++
		}
	}
	fmt.Printf("Followers in a different column: %d\n", moved)

	sameOrder := slices.EqualFunc(board.SortedColumns(stored), board.SortedColumns(cached),
		func(a, c domain.Column) bool { return a.ID == c.ID })
	fmt.Printf("Same column order: %t\n", sameOrder)
}
