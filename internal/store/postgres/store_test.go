package postgres

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArturoRiosMock/CRMAIRE/internal/board"
	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
)

// newTestStore connects to TEST_DATABASE_URL and clears the board row.
// The test is skipped when the variable is unset.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s, err := Open(ctx, url, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = s.db.ExecContext(ctx, `DELETE FROM board_state`)
	require.NoError(t, err)
	return s
}

func TestGetOrInit_ThenUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.GetOrInit(ctx, board.Seed)
	require.NoError(t, err)
	require.NoError(t, first.Check())

	next, _, err := board.Mutator{}.AddColumn(first, "Archivado")
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, next))

	got, err := s.GetOrInit(ctx, func() *domain.Board {
		t.Fatal("seed must not be used once a row exists")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, next, got)
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
