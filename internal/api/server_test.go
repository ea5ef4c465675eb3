package api

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/ArturoRiosMock/CRMAIRE/internal/backup"
	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
	"github.com/ArturoRiosMock/CRMAIRE/internal/importer"
	"github.com/ArturoRiosMock/CRMAIRE/internal/ratelimit"
	"github.com/ArturoRiosMock/CRMAIRE/internal/store/sqlite"
)

var testNow = time.Date(2026, 2, 11, 18, 45, 0, 0, time.UTC)

// testServer wraps the API server with a humatest client.
type testServer struct {
	*Server
	api        humatest.TestAPI
	store      *sqlite.Store
	importRoot string
}

// setupTestServer creates a server over a temporary sqlite store and an
// empty import root.
func setupTestServer(t *testing.T, opts ...func(*Options, *sqlite.Store)) *testServer {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(dir, "board.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	importRoot := filepath.Join(dir, "imports")
	require.NoError(t, os.MkdirAll(importRoot, 0o755))
	imports := importer.New(importRoot, []string{"instagram"}, logger)

	o := Options{Clock: func() time.Time { return testNow }}
	for _, fn := range opts {
		fn(&o, st)
	}
	if o.WriteLimiter != nil {
		t.Cleanup(o.WriteLimiter.Stop)
	}

	s := NewServer(st, imports, o, logger)
	return &testServer{
		Server:     s,
		api:        humatest.Wrap(t, s.API()),
		store:      st,
		importRoot: importRoot,
	}
}

func withLimiter(perMinute, burst int) func(*Options, *sqlite.Store) {
	return func(o *Options, _ *sqlite.Store) {
		o.WriteLimiter = ratelimit.New(ratelimit.PerMinute(perMinute), burst)
	}
}

// withBackups enables the snapshot routes over dir. Each snapshot is taken
// one minute after the previous one.
func withBackups(dir string) func(*Options, *sqlite.Store) {
	return func(o *Options, st *sqlite.Store) {
		now := testNow
		clock := func() time.Time {
			now = now.Add(time.Minute)
			return now
		}
		o.Backups = backup.NewBackupService(st, dir, slog.New(slog.DiscardHandler), backup.Options{Keep: 3, Clock: clock})
	}
}

func (ts *testServer) writeExport(t *testing.T, rel, content string) {
	t.Helper()
	path := filepath.Join(ts.importRoot, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func (ts *testServer) storedBoard(t *testing.T) *domain.Board {
	t.Helper()
	b, err := ts.store.GetOrInit(context.Background(), func() *domain.Board {
		t.Fatal("board row should already exist")
		return nil
	})
	require.NoError(t, err)
	return b
}

func decodeBoard(t *testing.T, data []byte) *domain.Board {
	t.Helper()
	doc, err := domain.DecodeDocument(data)
	require.NoError(t, err)
	require.NotNil(t, doc.Columns)
	require.NotNil(t, doc.Followers)
	require.NotNil(t, doc.Tags)
	return doc.Board()
}
