package gateway

import (
	"context"
	"time"

	"github.com/ArturoRiosMock/CRMAIRE/internal/board"
	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
	"github.com/ArturoRiosMock/CRMAIRE/internal/importer"
)

// AddFollower adds a follower to the end of columnID.
func (s *Session) AddFollower(columnID string, fields board.FollowerFields) (string, error) {
	var fid string
	err := s.update(func(b *domain.Board) (*domain.Board, error) {
		next, id, err := s.mut.AddFollower(b, columnID, fields)
		fid = id
		return next, err
	})
	return fid, err
}

// UpdateFollower patches a follower.
func (s *Session) UpdateFollower(followerID string, patch board.FollowerPatch) error {
	return s.update(func(b *domain.Board) (*domain.Board, error) {
		return s.mut.UpdateFollower(b, followerID, patch)
	})
}

// DeleteFollower removes a follower.
func (s *Session) DeleteFollower(followerID string) error {
	return s.update(func(b *domain.Board) (*domain.Board, error) {
		return s.mut.DeleteFollower(b, followerID)
	})
}

// MoveFollower moves a follower to destIndex of another column; a negative
// index appends.
func (s *Session) MoveFollower(followerID, destColumnID string, destIndex int) error {
	return s.update(func(b *domain.Board) (*domain.Board, error) {
		return s.mut.MoveFollowerToColumn(b, followerID, destColumnID, destIndex)
	})
}

// ReorderWithinColumn moves a card inside one column.
func (s *Session) ReorderWithinColumn(columnID string, from, to int) error {
	return s.update(func(b *domain.Board) (*domain.Board, error) {
		return s.mut.ReorderWithinColumn(b, columnID, from, to)
	})
}

// Drag applies a drag gesture under the given filter.
func (s *Session) Drag(ev board.DragEvent, filter board.Filter) board.DragOutcome {
	outcome := board.DragIgnored
	_ = s.update(func(b *domain.Board) (*domain.Board, error) {
		next, o := s.mut.ApplyDrag(b, ev, filter)
		outcome = o
		return next, nil
	})
	return outcome
}

// AddColumn appends a column.
func (s *Session) AddColumn(title string) (string, error) {
	var cid string
	err := s.update(func(b *domain.Board) (*domain.Board, error) {
		next, id, err := s.mut.AddColumn(b, title)
		cid = id
		return next, err
	})
	return cid, err
}

// RenameColumn renames a column; a blank title is ignored.
func (s *Session) RenameColumn(columnID, title string) error {
	return s.update(func(b *domain.Board) (*domain.Board, error) {
		return s.mut.RenameColumn(b, columnID, title)
	})
}

// ReorderColumns sets the display order.
func (s *Session) ReorderColumns(orderedIDs []string) error {
	return s.update(func(b *domain.Board) (*domain.Board, error) {
		return s.mut.ReorderColumns(b, orderedIDs)
	})
}

// DeleteColumn removes a column and reassigns its followers.
func (s *Session) DeleteColumn(columnID string) error {
	return s.update(func(b *domain.Board) (*domain.Board, error) {
		return s.mut.DeleteColumn(b, columnID)
	})
}

// CreateTag adds a tag.
func (s *Session) CreateTag(name, color string) (string, error) {
	var tid string
	err := s.update(func(b *domain.Board) (*domain.Board, error) {
		next, id, err := s.mut.CreateTag(b, name, color)
		tid = id
		return next, err
	})
	return tid, err
}

// RenameTag edits a tag.
func (s *Session) RenameTag(tagID, name, color string) error {
	return s.update(func(b *domain.Board) (*domain.Board, error) {
		return s.mut.RenameTag(b, tagID, name, color)
	})
}

// DeleteTag removes a tag definition.
func (s *Session) DeleteTag(tagID string) error {
	return s.update(func(b *domain.Board) (*domain.Board, error) {
		return s.mut.DeleteTag(b, tagID)
	})
}

// ToggleFollowerTag adds or removes a tag on a follower.
func (s *Session) ToggleFollowerTag(followerID, tagID string) error {
	return s.update(func(b *domain.Board) (*domain.Board, error) {
		return s.mut.ToggleFollowerTag(b, followerID, tagID)
	})
}

// AddNote appends a note to a follower.
func (s *Session) AddNote(followerID, content string) error {
	return s.update(func(b *domain.Board) (*domain.Board, error) {
		return s.mut.AddNote(b, followerID, content)
	})
}

// ApplyImport merges usernames into the live board and returns how many
// followers were added.
func (s *Session) ApplyImport(usernames []string) int {
	added := 0
	_ = s.update(func(b *domain.Board) (*domain.Board, error) {
		next, n := importer.Merge(b, usernames, s.mut.Now())
		added = n
		return next, nil
	})
	return added
}

// Replace swaps in a whole board, as adopted from an import lookup.
func (s *Session) Replace(b *domain.Board) error {
	if err := b.Check(); err != nil {
		return err
	}
	next := b.Clone()
	return s.update(func(*domain.Board) (*domain.Board, error) {
		return next, nil
	})
}

// Export returns the live board as indented JSON.
func (s *Session) Export() ([]byte, error) {
	s.mu.Lock()
	b := s.state
	s.mu.Unlock()
	return domain.EncodeIndent(b)
}

// ExportBackup returns the live board annotated as a backup taken at now.
func (s *Session) ExportBackup(now time.Time) ([]byte, error) {
	s.mu.Lock()
	b := s.state
	s.mu.Unlock()
	return domain.EncodeBackup(b, now)
}

// Import restores a full board document. It reports false and keeps the
// current board when the document is not a valid board.
func (s *Session) Import(data []byte) bool {
	b, err := s.parse(data)
	if err != nil {
		s.logger.Info("board import rejected", "error", err)
		return false
	}
	_ = s.update(func(*domain.Board) (*domain.Board, error) {
		return b, nil
	})
	return true
}

// Reset replaces the board with a fresh seed and persists it immediately.
func (s *Session) Reset(ctx context.Context) {
	seed := s.mut.Seed()

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.state = seed
	seq := s.nextSeqLocked()
	s.mu.Unlock()

	s.persist(ctx, seed, seq, false)
}

// parse validates a board document received from outside the session.
func (s *Session) parse(data []byte) (*domain.Board, error) {
	return s.validator.Board(data)
}
