// Package sqlite stores the board row in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
	"github.com/ArturoRiosMock/CRMAIRE/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store provides SQLite-backed persistence for the board.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.BoardStore = (*Store)(nil)

// Open creates a new SQLite store at the given path.
// It configures WAL mode, sets pragmas, and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Single connection: pragmas apply to it and writers never contend.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	if logger != nil {
		logger.Info("SQLite board store opened", "path", path)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetOrInit returns the stored board, inserting seed() first when the row
// does not exist. The insert is a no-op on conflict, so concurrent first
// reads all return the same row.
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
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO board_state (id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		store.BoardID, string(data), formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("init board: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 && s.logger != nil {
		s.logger.Info("board row initialized with seed")
	}

	return s.get(ctx)
}

// Upsert writes the board row, replacing any existing document.
func (s *Store) Upsert(ctx context.Context, b *domain.Board) error {
	data, err := domain.Encode(b)
	if err != nil {
		return fmt.Errorf("encode board: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO board_state (id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		store.BoardID, string(data), formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("upsert board: %w", err)
	}
	return nil
}

// UpdatedAt returns when the board row was last written.
func (s *Store) UpdatedAt(ctx context.Context) (time.Time, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT updated_at FROM board_state WHERE id = ?`, store.BoardID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, store.ErrNotFound
	}
	if err != nil {
		return time.Time{}, err
	}
	return parseTime(raw)
}

func (s *Store) get(ctx context.Context) (*domain.Board, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM board_state WHERE id = ?`, store.BoardID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select board: %w", err)
	}
	return store.DecodeBoard([]byte(data))
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
