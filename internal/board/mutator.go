package board

import (
	"slices"
	"strings"
	"time"

	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
	domainerrors "github.com/ArturoRiosMock/CRMAIRE/internal/errors"
	"github.com/ArturoRiosMock/CRMAIRE/internal/id"
)

// Clock returns the current time.
type Clock func() time.Time

// Mutator applies board changes with an injectable clock and id source.
// The zero value uses time.Now and id.MustGenerate.
type Mutator struct {
	Clock Clock
	NewID func() string
}

// Default is the Mutator used by the package-level helpers.
var Default = Mutator{}

// New returns a Mutator reading time from clock.
func New(clock Clock) Mutator {
	return Mutator{Clock: clock}
}

// Now reads the mutator's clock.
func (m Mutator) Now() time.Time {
	return m.now()
}

func (m Mutator) now() time.Time {
	if m.Clock == nil {
		return time.Now()
	}
	return m.Clock()
}

func (m Mutator) newID() string {
	if m.NewID == nil {
		return id.MustGenerate()
	}
	return m.NewID()
}

// ErrLastColumn is returned when deleting the only remaining column.
var ErrLastColumn = domainerrors.Conflict("cannot delete the last column")

// FollowerFields are the user-supplied fields of a new follower.
type FollowerFields struct {
	Name              string   `json:"name" validate:"max=200"`
	Username          string   `json:"username" validate:"required,max=100"`
	ProfileURL        string   `json:"profileUrl,omitempty" validate:"omitempty,url"`
	Phone             string   `json:"phone,omitempty" validate:"max=50"`
	Email             string   `json:"email,omitempty" validate:"omitempty,email"`
	Tags              []string `json:"tags,omitempty"`
	ProposalAmountUSD *float64 `json:"proposalAmountUsd,omitempty" validate:"omitempty,gte=0"`
	FollowUpAt        *string  `json:"followUpAt,omitempty"`
}

// FollowerPatch holds optional edits; nil fields are left untouched.
// The column is not patchable, use MoveFollowerToColumn.
type FollowerPatch struct {
	Name              *string
	Username          *string
	ProfileURL        *string
	Phone             *string
	Email             *string
	Tags              *[]string
	ProposalAmountUSD **float64
	FollowUpAt        **string
	ContactDate       *string
}

// AddFollower appends a new follower to the end of columnID and returns the
// new board with the follower's id.
func (m Mutator) AddFollower(b *domain.Board, columnID string, fields FollowerFields) (*domain.Board, string, error) {
	username := domain.NormalizeUsername(fields.Username)
	if username == "" {
		return b, "", domainerrors.Validation("username is required")
	}
	ci := b.ColumnIndex(columnID)
	if ci < 0 {
		return b, "", domainerrors.NotFoundf("column %s not found", columnID)
	}

	now := domain.Timestamp(m.now())
	f := domain.Follower{
		ID:                m.newID(),
		Name:              strings.TrimSpace(fields.Name),
		Username:          username,
		ProfileURL:        strings.TrimSpace(fields.ProfileURL),
		Phone:             strings.TrimSpace(fields.Phone),
		Email:             strings.TrimSpace(fields.Email),
		Tags:              uniqueIDs(fields.Tags),
		Notes:             []domain.Note{},
		ColumnID:          columnID,
		ProposalAmountUSD: fields.ProposalAmountUSD,
		FollowUpAt:        fields.FollowUpAt,
		ContactDate:       now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if f.Name == "" {
		f.Name = username
	}
	if f.ProfileURL == "" {
		f.ProfileURL = domain.ProfileURL(username)
	}

	out := b.Clone()
	out.Followers[f.ID] = f.Clone()
	out.Columns[ci].FollowerIDs = append(out.Columns[ci].FollowerIDs, f.ID)
	return out, f.ID, nil
}

// UpdateFollower merges patch into the follower and refreshes UpdatedAt.
// An unknown follower leaves the board as is.
func (m Mutator) UpdateFollower(b *domain.Board, followerID string, patch FollowerPatch) (*domain.Board, error) {
	cur, ok := b.Followers[followerID]
	if !ok {
		return b, nil
	}
	f := cur.Clone()

	if patch.Username != nil {
		u := domain.NormalizeUsername(*patch.Username)
		if u == "" {
			return b, domainerrors.Validation("username is required")
		}
		f.Username = u
	}
	if patch.Name != nil {
		f.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.ProfileURL != nil {
		f.ProfileURL = strings.TrimSpace(*patch.ProfileURL)
	}
	if patch.Phone != nil {
		f.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.Email != nil {
		f.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.Tags != nil {
		f.Tags = uniqueIDs(*patch.Tags)
	}
	if patch.ProposalAmountUSD != nil {
		f.ProposalAmountUSD = *patch.ProposalAmountUSD
	}
	if patch.FollowUpAt != nil {
		f.FollowUpAt = *patch.FollowUpAt
	}
	if patch.ContactDate != nil {
		f.ContactDate = *patch.ContactDate
	}
	f.Touch(m.now())

	out := b.Clone()
	out.Followers[followerID] = f
	return out, nil
}

// DeleteFollower removes the follower record and its column placement.
func (m Mutator) DeleteFollower(b *domain.Board, followerID string) (*domain.Board, error) {
	if _, ok := b.Followers[followerID]; !ok {
		return b, domainerrors.NotFoundf("follower %s not found", followerID)
	}
	out := b.Clone()
	delete(out.Followers, followerID)
	for i := range out.Columns {
		out.Columns[i].FollowerIDs = slices.DeleteFunc(out.Columns[i].FollowerIDs, func(id string) bool {
			return id == followerID
		})
	}
	return out, nil
}

// MoveFollowerToColumn removes the follower from its current column and
// inserts it into destColumnID at destIndex. A negative index appends and an
// index past the end is clamped.
func (m Mutator) MoveFollowerToColumn(b *domain.Board, followerID, destColumnID string, destIndex int) (*domain.Board, error) {
	cur, ok := b.Followers[followerID]
	if !ok {
		return b, domainerrors.NotFoundf("follower %s not found", followerID)
	}
	if b.ColumnIndex(destColumnID) < 0 {
		return b, domainerrors.NotFoundf("column %s not found", destColumnID)
	}

	out := b.Clone()
	di := out.ColumnIndex(destColumnID)
	for i := range out.Columns {
		out.Columns[i].FollowerIDs = slices.DeleteFunc(out.Columns[i].FollowerIDs, func(id string) bool {
			return id == followerID
		})
	}
	ids := out.Columns[di].FollowerIDs
	if destIndex < 0 || destIndex > len(ids) {
		destIndex = len(ids)
	}
	out.Columns[di].FollowerIDs = slices.Insert(ids, destIndex, followerID)

	f := cur.Clone()
	f.ColumnID = destColumnID
	f.Touch(m.now())
	out.Followers[followerID] = f
	return out, nil
}

// ReorderWithinColumn moves the entry at from to position to within one
// column. Followers are not touched.
func (m Mutator) ReorderWithinColumn(b *domain.Board, columnID string, from, to int) (*domain.Board, error) {
	ci := b.ColumnIndex(columnID)
	if ci < 0 {
		return b, domainerrors.NotFoundf("column %s not found", columnID)
	}
	ids := b.Columns[ci].FollowerIDs
	if from < 0 || from >= len(ids) || to < 0 || to >= len(ids) {
		return b, domainerrors.Validationf("index out of range for column %s", columnID)
	}
	if from == to {
		return b, nil
	}

	out := b.Clone()
	out.Columns[ci].FollowerIDs = splice(out.Columns[ci].FollowerIDs, from, to)
	return out, nil
}

// AddNote appends a note to the follower and refreshes UpdatedAt.
func (m Mutator) AddNote(b *domain.Board, followerID, content string) (*domain.Board, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return b, domainerrors.Validation("note content is required")
	}
	cur, ok := b.Followers[followerID]
	if !ok {
		return b, domainerrors.NotFoundf("follower %s not found", followerID)
	}

	now := m.now()
	f := cur.Clone()
	f.Notes = append(f.Notes, domain.Note{
		ID:        m.newID(),
		Content:   content,
		CreatedAt: domain.Timestamp(now),
	})
	f.Touch(now)

	out := b.Clone()
	out.Followers[followerID] = f
	return out, nil
}

// splice moves ids[from] to position to.
func splice(ids []string, from, to int) []string {
	item := ids[from]
	ids = slices.Delete(ids, from, from+1)
	return slices.Insert(ids, to, item)
}

// uniqueIDs drops empty and repeated ids, keeping first occurrence order.
func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
