package domain

import (
	"errors"
	"fmt"
)

// Check verifies the board invariants and returns every violation joined
// into one error, or nil when the document is consistent.
func (b *Board) Check() error {
	if b == nil {
		return errors.New("board is nil")
	}

	var errs []error
	columnIDs := make(map[string]struct{}, len(b.Columns))
	placed := make(map[string]string, len(b.Followers))

	for _, c := range b.Columns {
		if c.ID == "" {
			errs = append(errs, errors.New("column with empty id"))
		}
		if _, dup := columnIDs[c.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate column id %q", c.ID))
		}
		columnIDs[c.ID] = struct{}{}

		for _, fid := range c.FollowerIDs {
			if prev, ok := placed[fid]; ok {
				if prev == c.ID {
					errs = append(errs, fmt.Errorf("follower %q listed twice in column %q", fid, c.ID))
				} else {
					errs = append(errs, fmt.Errorf("follower %q listed in columns %q and %q", fid, prev, c.ID))
				}
				continue
			}
			placed[fid] = c.ID
			if _, ok := b.Followers[fid]; !ok {
				errs = append(errs, fmt.Errorf("column %q lists unknown follower %q", c.ID, fid))
			}
		}
	}

	for _, key := range b.FollowerIDs() {
		f := b.Followers[key]
		if f.ID != key {
			errs = append(errs, fmt.Errorf("follower key %q holds id %q", key, f.ID))
		}
		col, ok := placed[key]
		if !ok {
			errs = append(errs, fmt.Errorf("follower %q is not placed in any column", key))
		} else if f.ColumnID != col {
			errs = append(errs, fmt.Errorf("follower %q has columnId %q but is listed in %q", key, f.ColumnID, col))
		}
		if f.Username == "" {
			errs = append(errs, fmt.Errorf("follower %q has empty username", key))
		} else if NormalizeUsername(f.Username) != f.Username {
			errs = append(errs, fmt.Errorf("follower %q username %q is not normalized", key, f.Username))
		}
	}

	tagIDs := make(map[string]struct{}, len(b.Tags))
	for _, t := range b.Tags {
		if _, dup := tagIDs[t.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate tag id %q", t.ID))
		}
		tagIDs[t.ID] = struct{}{}
	}

	return errors.Join(errs...)
}
