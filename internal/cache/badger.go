// Package cache implements the local board cache slot on Badger or Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/ArturoRiosMock/CRMAIRE/internal/store"
)

// BadgerKey is the slot key in the Badger database.
const BadgerKey = "board:cache"

// BadgerCache keeps the serialized board under one Badger key.
type BadgerCache struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ store.Cache = (*BadgerCache)(nil)

// OpenBadger opens (or creates) the Badger database at path. An empty path
// opens an in-memory database.
func OpenBadger(path string, logger *slog.Logger) (*BadgerCache, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Cache must survive a crash right after a save
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Badger cache opened", "path", path)
	}
	return &BadgerCache{db: db, logger: logger}, nil
}

// Load returns the cached board bytes.
func (c *BadgerCache) Load(_ context.Context) ([]byte, error) {
	var data []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(BadgerKey))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Save overwrites the slot.
func (c *BadgerCache) Save(_ context.Context, data []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(BadgerKey), data)
	})
}

// Clear empties the slot.
func (c *BadgerCache) Clear(_ context.Context) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(BadgerKey))
	})
}

// Close gracefully closes the database.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}
