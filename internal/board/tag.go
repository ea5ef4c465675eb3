package board

import (
	"strings"

	tagcolor "github.com/ArturoRiosMock/CRMAIRE/internal/color"
	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
	domainerrors "github.com/ArturoRiosMock/CRMAIRE/internal/errors"
)

// CreateTag appends a new tag and returns its id. A blank color is derived
// from the name.
func (m Mutator) CreateTag(b *domain.Board, name, color string) (*domain.Board, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return b, "", domainerrors.Validation("tag name is required")
	}
	color = strings.TrimSpace(color)
	if color == "" {
		color = tagcolor.ForName(name)
	}

	tag := domain.Tag{ID: m.newID(), Name: name, Color: color}
	out := b.Clone()
	out.Tags = append(out.Tags, tag)
	return out, tag.ID, nil
}

// RenameTag edits a tag's name and color in place. Blank values keep the
// current ones.
func (m Mutator) RenameTag(b *domain.Board, tagID, name, color string) (*domain.Board, error) {
	ti := b.TagIndex(tagID)
	if ti < 0 {
		return b, domainerrors.NotFoundf("tag %s not found", tagID)
	}

	out := b.Clone()
	if name = strings.TrimSpace(name); name != "" {
		out.Tags[ti].Name = name
	}
	if color = strings.TrimSpace(color); color != "" {
		out.Tags[ti].Color = color
	}
	return out, nil
}

// DeleteTag removes the tag definition. Followers keep the id in their tag
// lists; lookups must tolerate missing tags.
func (m Mutator) DeleteTag(b *domain.Board, tagID string) (*domain.Board, error) {
	ti := b.TagIndex(tagID)
	if ti < 0 {
		return b, domainerrors.NotFoundf("tag %s not found", tagID)
	}

	out := b.Clone()
	out.Tags = append(out.Tags[:ti], out.Tags[ti+1:]...)
	return out, nil
}

// ToggleFollowerTag adds tagID to the follower when absent and removes it
// otherwise. UpdatedAt is refreshed either way.
func (m Mutator) ToggleFollowerTag(b *domain.Board, followerID, tagID string) (*domain.Board, error) {
	cur, ok := b.Followers[followerID]
	if !ok {
		return b, domainerrors.NotFoundf("follower %s not found", followerID)
	}
	if tagID == "" {
		return b, domainerrors.Validation("tag id is required")
	}

	f := cur.Clone()
	if f.HasTag(tagID) {
		kept := f.Tags[:0]
		for _, t := range f.Tags {
			if t != tagID {
				kept = append(kept, t)
			}
		}
		f.Tags = kept
	} else {
		f.Tags = append(f.Tags, tagID)
	}
	f.Touch(m.now())

	out := b.Clone()
	out.Followers[followerID] = f
	return out, nil
}
