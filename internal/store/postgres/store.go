// Package postgres stores the board row in PostgreSQL through the pgx driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
	"github.com/ArturoRiosMock/CRMAIRE/internal/store"
)

const schemaSQL = `CREATE TABLE IF NOT EXISTS board_state (
    id         TEXT PRIMARY KEY,
    data       JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store provides PostgreSQL-backed persistence for the board.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.BoardStore = (*Store)(nil)

// Open connects to databaseURL and applies the schema.
func Open(ctx context.Context, databaseURL string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxIdleConns(2)
	db.SetMaxOpenConns(5)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	if logger != nil {
		logger.Info("PostgreSQL board store opened")
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetOrInit returns the stored board, inserting seed() first when the row
// does not exist.
func (s *Store) GetOrInit(ctx context.Context, seed func() *domain.Board) (*domain.Board, error) {
	b, err := s.get(ctx)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	data, err := domain.Encode(seed())
	if err != nil {
		return nil, fmt.Errorf("encode seed: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO board_state (id, data, updated_at) VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (id) DO NOTHING`,
		store.BoardID, string(data),
	); err != nil {
		return nil, fmt.Errorf("init board: %w", err)
	}

	return s.get(ctx)
}

// Upsert writes the board row, replacing any existing document.
func (s *Store) Upsert(ctx context.Context, b *domain.Board) error {
	data, err := domain.Encode(b)
	if err != nil {
		return fmt.Errorf("encode board: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO board_state (id, data, updated_at) VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		store.BoardID, string(data),
	); err != nil {
		return fmt.Errorf("upsert board: %w", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context) (*domain.Board, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data::text FROM board_state WHERE id = $1`, store.BoardID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select board: %w", err)
	}
	return store.DecodeBoard(data)
}
