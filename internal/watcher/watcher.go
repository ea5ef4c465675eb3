// Package watcher reports files that appear under a directory tree once
// they have stopped changing, and merges follower exports dropped into the
// import folders into the stored board.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher wraps fsnotify with recursive directory watches and a settle
// delay: an event is emitted only after a file's size and mtime stayed
// the same for Options.SettleDelay.
type Watcher struct {
	logger *slog.Logger
	opts   Options
	fsw    *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*pendingEvent
	seen    map[string]struct{}
	stopped bool

	events   chan Event
	errors   chan error
	done     chan struct{}
	stopOnce sync.Once
}

// pendingEvent tracks a file that may still be changing.
type pendingEvent struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// New creates a watcher. Call Watch for each root, then Start.
func New(logger *slog.Logger, opts Options) (*Watcher, error) {
	opts.setDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		logger:  logger,
		opts:    opts,
		fsw:     fsw,
		pending: make(map[string]*pendingEvent),
		seen:    make(map[string]struct{}),
		events:  make(chan Event, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}, nil
}

// Watch adds a path to be monitored. Directories are watched recursively
// and files already inside them count as seen, so rewriting one later is
// reported as modified.
func (w *Watcher) Watch(path string) error {
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	if !info.IsDir() {
		w.markSeen(path)
		return w.fsw.Add(filepath.Dir(path))
	}
	return w.watchDir(path)
}

func (w *Watcher) watchDir(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("failed to access path", "path", p, "error", err)
			return nil
		}
		if p != root && w.opts.shouldIgnore(p) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			if d.Type().IsRegular() {
				w.markSeen(p)
			}
			return nil
		}
		if err := w.fsw.Add(p); err != nil {
			w.logger.Error("failed to add watch", "path", p, "error", err)
			return nil
		}
		w.logger.Debug("added watch", "path", p)
		return nil
	})
}

// Start processes file system events until ctx is canceled or Stop is
// called.
func (w *Watcher) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.done:
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.sendErr(err)
		}
	}
}

// Stop releases the fsnotify handle and closes the event channels. A Start
// loop still running returns on its next iteration.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)

		w.mu.Lock()
		w.stopped = true
		for _, p := range w.pending {
			p.timer.Stop()
		}
		clear(w.pending)
		w.mu.Unlock()

		err = w.fsw.Close()

		w.mu.Lock()
		close(w.events)
		close(w.errors)
		w.mu.Unlock()
	})
	return err
}

// Events returns the channel of settled events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of fsnotify errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

func (w *Watcher) handle(ev fsnotify.Event) {
	path := ev.Name
	if w.opts.shouldIgnore(path) {
		return
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			// Files copied in with the directory produce no events of
			// their own, so settle whatever is already there.
			_ = w.watchNewDir(path)
			return
		}
	}

	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		if w.forget(path) {
			w.emit(Event{Type: EventRemoved, Path: path})
		}
		return
	}

	if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
		w.settle(path)
	}
}

func (w *Watcher) watchNewDir(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || w.opts.shouldIgnore(p) {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if err := w.fsw.Add(p); err != nil {
				w.logger.Error("failed to add watch", "path", p, "error", err)
			}
			return nil
		}
		w.settle(p)
		return nil
	})
}

// settle (re)starts the settle timer for path.
func (w *Watcher) settle(path string) {
	if !w.opts.accepts(path) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}

	if p, ok := w.pending[path]; ok {
		p.timer.Stop()
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		delete(w.pending, path)
		return
	}

	p := &pendingEvent{size: info.Size(), modTime: info.ModTime()}
	p.timer = time.AfterFunc(w.opts.SettleDelay, func() { w.checkSettled(path) })
	w.pending[path] = p
}

// checkSettled emits the event when the file did not change during the
// last delay, and waits another round otherwise.
func (w *Watcher) checkSettled(path string) {
	w.mu.Lock()
	p, ok := w.pending[path]
	if !ok || w.stopped {
		w.mu.Unlock()
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(w.pending, path)
		if _, wasSeen := w.seen[path]; wasSeen {
			delete(w.seen, path)
			w.send(Event{Type: EventRemoved, Path: path})
		}
		w.mu.Unlock()
		return
	}

	if info.Size() != p.size || !info.ModTime().Equal(p.modTime) {
		p.size = info.Size()
		p.modTime = info.ModTime()
		p.timer = time.AfterFunc(w.opts.SettleDelay, func() { w.checkSettled(path) })
		w.mu.Unlock()
		return
	}

	delete(w.pending, path)
	typ := EventAdded
	if _, ok := w.seen[path]; ok {
		typ = EventModified
	}
	w.seen[path] = struct{}{}
	w.send(Event{Type: typ, Path: path, Size: info.Size(), ModTime: info.ModTime()})
	w.mu.Unlock()
}

func (w *Watcher) markSeen(path string) {
	w.mu.Lock()
	w.seen[path] = struct{}{}
	w.mu.Unlock()
}

// forget drops pending and seen state for path and reports whether the
// path had been seen.
func (w *Watcher) forget(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.pending[path]; ok {
		p.timer.Stop()
		delete(w.pending, path)
	}
	_, ok := w.seen[path]
	delete(w.seen, path)
	return ok
}

func (w *Watcher) emit(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.send(ev)
}

// send delivers ev unless the watcher stopped. Callers hold w.mu; Stop
// closes done before taking the lock, so a blocked send always returns.
func (w *Watcher) send(ev Event) {
	if w.stopped {
		return
	}
	select {
	case <-w.done:
	case w.events <- ev:
	}
}

func (w *Watcher) sendErr(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	select {
	case w.errors <- err:
	default:
		w.logger.Warn("dropping watcher error", "error", err)
	}
}
