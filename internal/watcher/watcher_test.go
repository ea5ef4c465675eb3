package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// startWatcher watches dir and runs the event loop for the test's lifetime.
func startWatcher(t *testing.T, dir string, opts Options) *Watcher {
	t.Helper()

	if opts.SettleDelay == 0 {
		opts.SettleDelay = 50 * time.Millisecond
	}
	w, err := New(discardLogger(), opts)
	require.NoError(t, err)
	require.NoError(t, w.Watch(dir))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	go w.Start(ctx) //nolint:errcheck // Test goroutine
	return w
}

func nextEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case event := <-w.Events():
		return event
	case err := <-w.Errors():
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}
	return Event{}
}

func noEvent(t *testing.T, w *Watcher, wait time.Duration) {
	t.Helper()
	select {
	case event := <-w.Events():
		t.Fatalf("unexpected event: %+v", event)
	case <-time.After(wait):
	}
}

func TestNew(t *testing.T) {
	w, err := New(discardLogger(), Options{})
	require.NoError(t, err)
	require.NotNil(t, w)

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop(), "Stop is idempotent")
}

func TestWatcher_WatchMissingPath(t *testing.T) {
	w, err := New(discardLogger(), Options{})
	require.NoError(t, err)
	defer w.Stop() //nolint:errcheck // Test cleanup

	assert.Error(t, w.Watch(filepath.Join(t.TempDir(), "missing")))
}

func TestWatcher_FileCreation(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{})

	path := filepath.Join(dir, "followers_1.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"value":"ana"}]`), 0o644))

	event := nextEvent(t, w)
	assert.Equal(t, EventAdded, event.Type)
	assert.Equal(t, path, event.Path)
	assert.Equal(t, int64(17), event.Size)
	assert.False(t, event.ModTime.IsZero())
}

func TestWatcher_RewriteOfExistingFileIsModified(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "following.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	w := startWatcher(t, dir, Options{})
	require.NoError(t, os.WriteFile(path, []byte(`["bob"]`), 0o644))

	event := nextEvent(t, w)
	assert.Equal(t, EventModified, event.Type)
	assert.Equal(t, path, event.Path)
}

func TestWatcher_CoalescesWrites(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{SettleDelay: 150 * time.Millisecond})

	path := filepath.Join(dir, "followers_1.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	for range 5 {
		_, err := f.WriteString(`{"value":"ana"}`)
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, f.Close())

	event := nextEvent(t, w)
	assert.Equal(t, EventAdded, event.Type)
	assert.Equal(t, int64(5*15), event.Size)
	noEvent(t, w, 300*time.Millisecond)
}

func TestWatcher_FileDeletion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "followers_1.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	w := startWatcher(t, dir, Options{})
	require.NoError(t, os.Remove(path))

	event := nextEvent(t, w)
	assert.Equal(t, EventRemoved, event.Type)
	assert.Equal(t, path, event.Path)
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{})

	sub := filepath.Join(dir, "connections", "followers_and_following")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	// Give the watcher time to add the new directories.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(sub, "followers_1.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))

	event := nextEvent(t, w)
	assert.Equal(t, path, event.Path)
}

func TestWatcher_IgnoreHidden(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{IgnoreHidden: true})

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("secret"), 0o644))
	normal := filepath.Join(dir, "normal.json")
	require.NoError(t, os.WriteFile(normal, []byte("{}"), 0o644))

	event := nextEvent(t, w)
	assert.Equal(t, normal, event.Path)
	noEvent(t, w, 200*time.Millisecond)
}

func TestWatcher_MatchFilter(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{
		Match: func(name string) bool { return filepath.Ext(name) == ".json" },
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	want := filepath.Join(dir, "followers.json")
	require.NoError(t, os.WriteFile(want, []byte("[]"), 0o644))

	event := nextEvent(t, w)
	assert.Equal(t, want, event.Path)
	noEvent(t, w, 200*time.Millisecond)
}

func TestWatcher_StopClosesEvents(t *testing.T) {
	w, err := New(discardLogger(), Options{})
	require.NoError(t, err)
	require.NoError(t, w.Watch(t.TempDir()))

	done := make(chan struct{})
	go func() {
		_ = w.Start(context.Background())
		close(done)
	}()

	require.NoError(t, w.Stop())
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Stop")
	}
	_, ok := <-w.Events()
	assert.False(t, ok)
}
