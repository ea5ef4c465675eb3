// Package gateway keeps one live board in memory and synchronizes it with a
// local cache and an authoritative remote store.
//
// A Session hydrates from the remote, falling back to the cache and then to
// the seed. After hydration every change arms a debounce timer; when it
// fires the board is written to the cache and pushed to the remote in the
// background. Push failures are logged and never reach the caller: the cache
// keeps the latest known-good copy.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ArturoRiosMock/CRMAIRE/internal/board"
	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
	"github.com/ArturoRiosMock/CRMAIRE/internal/id"
	"github.com/ArturoRiosMock/CRMAIRE/internal/store"
	"github.com/ArturoRiosMock/CRMAIRE/internal/validation"
)

// DefaultDebounce is the idle time before a change is persisted.
const DefaultDebounce = 800 * time.Millisecond

const pushTimeout = 15 * time.Second

// Remote is the authoritative board store.
type Remote interface {
	Fetch(ctx context.Context) (*domain.Board, error)
	Push(ctx context.Context, b *domain.Board) error
}

// Cache is the local fallback slot.
type Cache interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// Source tells where Start found the board.
type Source string

const (
	SourceRemote Source = "remote"
	SourceCache  Source = "cache"
	SourceSeed   Source = "seed"
)

// Options configures a Session.
type Options struct {
	Debounce  time.Duration
	Clock     board.Clock
	Validator *validation.Validator
}

// Session owns the live board of one client.
type Session struct {
	id        string
	remote    Remote
	cache     Cache
	mut       board.Mutator
	validator *validation.Validator
	logger    *slog.Logger
	debounce  time.Duration

	mu       sync.Mutex
	state    *domain.Board
	hydrated bool
	timer    *time.Timer
	gen      uint64
	// seq numbers snapshots handed to persist, in the order they were taken.
	seq uint64

	// cacheMu and pushMu keep writes ordered; a snapshot older than the
	// last one written is dropped.
	cacheMu  sync.Mutex
	cachedAt uint64
	pushMu   sync.Mutex
	pushedAt uint64

	pushes sync.WaitGroup
}

// NewSession creates a session holding a seed board until Start runs.
func NewSession(remote Remote, cache Cache, logger *slog.Logger, opts Options) *Session {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Validator == nil {
		opts.Validator = validation.New()
	}
	mut := board.New(opts.Clock)
	sid := id.MustPrefixed("sess")
	return &Session{
		id:        sid,
		remote:    remote,
		cache:     cache,
		mut:       mut,
		validator: opts.Validator,
		logger:    logger.With("session", sid),
		debounce:  opts.Debounce,
		state:     mut.Seed(),
	}
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string {
	return s.id
}

// Start hydrates the session: remote first, then the cache, then a fresh
// seed which is persisted right away. Start never fails on storage errors;
// it only returns ctx errors.
func (s *Session) Start(ctx context.Context) (Source, error) {
	if b, err := s.remote.Fetch(ctx); err == nil && b != nil {
		s.adopt(b)
		if data, err := domain.Encode(b); err == nil {
			if err := s.cache.Save(ctx, data); err != nil {
				s.logger.Warn("failed to mirror remote board into cache", "error", err)
			}
		}
		s.logger.Info("board loaded", "source", SourceRemote, "followers", len(b.Followers))
		return SourceRemote, nil
	} else if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		s.logger.Warn("remote board unavailable, trying cache", "error", err)
	}

	if data, err := s.cache.Load(ctx); err == nil {
		b, perr := s.parse(data)
		if perr == nil {
			s.adopt(b)
			s.logger.Info("board loaded", "source", SourceCache, "followers", len(b.Followers))
			return SourceCache, nil
		}
		s.logger.Warn("cached board invalid, seeding", "error", perr)
	} else if !errors.Is(err, store.ErrNotFound) {
		s.logger.Warn("cache unavailable, seeding", "error", err)
	}

	seed := s.mut.Seed()
	s.adopt(seed)
	s.persist(ctx, seed, s.nextSeq(), false)
	s.logger.Info("board loaded", "source", SourceSeed)
	return SourceSeed, nil
}

func (s *Session) adopt(b *domain.Board) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = b
	s.hydrated = true
}

func (s *Session) nextSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextSeqLocked()
}

// nextSeqLocked numbers a snapshot for persist. Caller holds mu.
func (s *Session) nextSeqLocked() uint64 {
	s.seq++
	return s.seq
}

// Hydrated reports whether Start has completed.
func (s *Session) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Board returns a copy of the live board.
func (s *Session) Board() *domain.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// update applies fn to the live board. A changed board replaces the state
// and arms the save timer once the session is hydrated.
func (s *Session) update(fn func(b *domain.Board) (*domain.Board, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(s.state)
	if err != nil {
		return err
	}
	if next == s.state {
		return nil
	}
	s.state = next
	s.scheduleLocked()
	return nil
}

// scheduleLocked replaces any pending save timer. Caller holds mu.
func (s *Session) scheduleLocked() {
	if !s.hydrated {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.debounce, func() { s.fire(gen) })
}

// fire persists the live board unless a newer timer or a Flush superseded
// generation gen.
func (s *Session) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.timer == nil {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	snapshot := s.state
	seq := s.nextSeqLocked()
	s.pushes.Add(1)
	s.mu.Unlock()
	defer s.pushes.Done()

	s.persist(context.Background(), snapshot, seq, true)
}

// persist writes the cache synchronously and pushes to the remote. When
// wait is false the push runs in the background. seq orders the snapshot
// against other calls.
func (s *Session) persist(ctx context.Context, b *domain.Board, seq uint64, wait bool) {
	data, err := domain.Encode(b)
	if err != nil {
		s.logger.Error("failed to encode board", "error", err)
		return
	}
	s.saveCache(ctx, data, seq)

	push := func() { s.push(ctx, b, seq) }
	if wait {
		push()
		return
	}
	s.pushes.Go(push)
}

func (s *Session) saveCache(ctx context.Context, data []byte, seq uint64) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if seq <= s.cachedAt {
		return
	}
	s.cachedAt = seq
	if err := s.cache.Save(ctx, data); err != nil {
		s.logger.Warn("failed to save board to cache", "error", err)
	}
}

// push sends one snapshot. Pushes run one at a time, so a slow push of an
// older board cannot land after a newer one.
func (s *Session) push(ctx context.Context, b *domain.Board, seq uint64) {
	s.pushMu.Lock()
	defer s.pushMu.Unlock()
	if seq <= s.pushedAt {
		s.logger.Debug("skipping superseded push", "seq", seq)
		return
	}
	s.pushedAt = seq

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()
	if err := s.remote.Push(pctx, b); err != nil {
		s.logger.Warn("failed to push board, cache keeps latest copy", "error", err)
		return
	}
	s.logger.Debug("board pushed", "followers", len(b.Followers))
}

// Pending reports whether a debounced save is armed.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Flush writes a pending change now and waits for background pushes to
// finish or ctx to end.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	pending := s.timer != nil
	if pending {
		s.timer.Stop()
		s.timer = nil
		s.gen++
	}
	snapshot := s.state
	var seq uint64
	if pending {
		seq = s.nextSeqLocked()
	}
	s.mu.Unlock()

	if pending {
		s.persist(ctx, snapshot, seq, true)
	}

	done := make(chan struct{})
	go func() {
		s.pushes.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes pending work.
func (s *Session) Close(ctx context.Context) error {
	return s.Flush(ctx)
}
