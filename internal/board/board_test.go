package board

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tagcolor "github.com/ArturoRiosMock/CRMAIRE/internal/color"
	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
	domainerrors "github.com/ArturoRiosMock/CRMAIRE/internal/errors"
)

// testMutator returns a Mutator whose clock advances one second per call
// and whose ids are sequential.
func testMutator() Mutator {
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	n := 0
	return Mutator{
		Clock: func() time.Time {
			now = now.Add(time.Second)
			return now
		},
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
}

// twoColumnBoard builds New(order 0) holding f1 and Contacted(order 1).
func twoColumnBoard() *domain.Board {
	ts := "2026-02-11T12:00:00.000Z"
	return &domain.Board{
		Columns: []domain.Column{
			{ID: "new", Title: "New", Order: 0, FollowerIDs: []string{"f1"}},
			{ID: "contacted", Title: "Contacted", Order: 1, FollowerIDs: []string{}},
		},
		Followers: map[string]domain.Follower{
			"f1": {ID: "f1", Name: "Ana", Username: "ana", ProfileURL: domain.ProfileURL("ana"), Tags: []string{}, Notes: []domain.Note{}, ColumnID: "new", CreatedAt: ts, UpdatedAt: ts},
		},
		Tags: []domain.Tag{},
	}
}

func TestSeed_Shape(t *testing.T) {
	b := testMutator().Seed()

	require.NoError(t, b.Check())
	require.Len(t, b.Columns, len(DefaultColumnTitles))
	for i, c := range b.Columns {
		assert.Equal(t, DefaultColumnTitles[i], c.Title)
		assert.Equal(t, i, c.Order)
	}
	assert.Equal(t, DefaultTags, b.Tags)
	require.Len(t, b.Followers, 1)
	require.Len(t, b.Columns[0].FollowerIDs, 1)

	f := b.Followers[b.Columns[0].FollowerIDs[0]]
	assert.Equal(t, "ejemplo_usuario", f.Username)
	assert.Equal(t, "https://instagram.com/ejemplo_usuario", f.ProfileURL)
	assert.Equal(t, []string{"tag-3"}, f.Tags)
	require.Len(t, f.Notes, 1)
	assert.Equal(t, "Primer contacto por DM", f.Notes[0].Content)
}

func TestAddFollower(t *testing.T) {
	m := testMutator()
	in := twoColumnBoard()

	out, fid, err := m.AddFollower(in, "contacted", FollowerFields{Username: "  @Carla "})
	require.NoError(t, err)
	require.NoError(t, out.Check())

	f := out.Followers[fid]
	assert.Equal(t, "carla", f.Username)
	assert.Equal(t, "carla", f.Name)
	assert.Equal(t, "https://instagram.com/carla", f.ProfileURL)
	assert.Equal(t, f.CreatedAt, f.UpdatedAt)
	assert.Equal(t, f.CreatedAt, f.ContactDate)
	assert.Equal(t, []string{fid}, out.Columns[1].FollowerIDs)

	// input untouched
	assert.Len(t, in.Followers, 1)
	assert.Empty(t, in.Columns[1].FollowerIDs)
}

func TestAddFollower_Rejections(t *testing.T) {
	m := testMutator()
	in := twoColumnBoard()

	out, _, err := m.AddFollower(in, "new", FollowerFields{Username: " @ "})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Same(t, in, out)

	out, _, err = m.AddFollower(in, "missing", FollowerFields{Username: "dan"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
	assert.Same(t, in, out)
}

func TestUpdateFollower(t *testing.T) {
	m := testMutator()
	in := twoColumnBoard()
	name := "Ana María"
	amount := 350.0
	amountPtr := &amount

	out, err := m.UpdateFollower(in, "f1", FollowerPatch{Name: &name, ProposalAmountUSD: &amountPtr})
	require.NoError(t, err)

	f := out.Followers["f1"]
	assert.Equal(t, "Ana María", f.Name)
	require.NotNil(t, f.ProposalAmountUSD)
	assert.Equal(t, 350.0, *f.ProposalAmountUSD)
	assert.Greater(t, f.UpdatedAt, in.Followers["f1"].UpdatedAt)
	assert.Equal(t, "Ana", in.Followers["f1"].Name)

	var cleared *float64
	out, err = m.UpdateFollower(out, "f1", FollowerPatch{ProposalAmountUSD: &cleared})
	require.NoError(t, err)
	assert.Nil(t, out.Followers["f1"].ProposalAmountUSD)
}

func TestUpdateFollower_MissingIsNoOp(t *testing.T) {
	in := twoColumnBoard()
	name := "x"

	out, err := testMutator().UpdateFollower(in, "nope", FollowerPatch{Name: &name})
	assert.NoError(t, err)
	assert.Same(t, in, out)
}

func TestDeleteFollower(t *testing.T) {
	in := twoColumnBoard()

	out, err := testMutator().DeleteFollower(in, "f1")
	require.NoError(t, err)
	require.NoError(t, out.Check())
	assert.Empty(t, out.Followers)
	assert.Empty(t, out.Columns[0].FollowerIDs)
	assert.Contains(t, in.Followers, "f1")
}

func TestMoveFollowerToColumn_Atomic(t *testing.T) {
	m := testMutator()
	b := m.Seed()
	var err error
	for i := range 4 {
		b, _, err = m.AddFollower(b, b.Columns[i%3].ID, FollowerFields{Username: fmt.Sprintf("user%d", i)})
		require.NoError(t, err)
	}

	for _, fid := range b.FollowerIDs() {
		for _, dest := range b.Columns {
			for _, idx := range []int{-1, 0, 1, 99} {
				out, err := m.MoveFollowerToColumn(b, fid, dest.ID, idx)
				require.NoError(t, err)
				require.NoError(t, out.Check())

				count := 0
				for _, c := range out.Columns {
					n := 0
					for _, id := range c.FollowerIDs {
						if id == fid {
							n++
						}
					}
					if c.ID == dest.ID {
						assert.Equal(t, 1, n)
					} else {
						assert.Zero(t, n)
					}
					count += n
				}
				assert.Equal(t, 1, count)
				assert.Equal(t, dest.ID, out.Followers[fid].ColumnID)
			}
		}
	}
}

func TestMoveFollowerToColumn_ClampsIndex(t *testing.T) {
	m := testMutator()
	b := twoColumnBoard()
	b, second, err := m.AddFollower(b, "contacted", FollowerFields{Username: "bob"})
	require.NoError(t, err)

	out, err := m.MoveFollowerToColumn(b, "f1", "contacted", 42)
	require.NoError(t, err)
	assert.Equal(t, []string{second, "f1"}, out.Columns[1].FollowerIDs)

	out, err = m.MoveFollowerToColumn(b, "f1", "contacted", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"f1", second}, out.Columns[1].FollowerIDs)
}

func TestReorderWithinColumn_KeepsTimestamps(t *testing.T) {
	m := testMutator()
	b := twoColumnBoard()
	b, id2, _ := m.AddFollower(b, "new", FollowerFields{Username: "bob"})
	b, id3, _ := m.AddFollower(b, "new", FollowerFields{Username: "carla"})

	out, err := m.ReorderWithinColumn(b, "new", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{id2, id3, "f1"}, out.Columns[0].FollowerIDs)
	assert.Equal(t, b.Followers, out.Followers)

	same, err := m.ReorderWithinColumn(b, "new", 0, 5)
	assert.Error(t, err)
	assert.Same(t, b, same)
}

func TestAddNote(t *testing.T) {
	m := testMutator()
	in := twoColumnBoard()

	out, err := m.AddNote(in, "f1", "  llamar el lunes ")
	require.NoError(t, err)
	out, err = m.AddNote(out, "f1", "envió propuesta")
	require.NoError(t, err)

	f := out.Followers["f1"]
	require.Len(t, f.Notes, 2)
	assert.Equal(t, "llamar el lunes", f.Notes[0].Content)
	assert.Greater(t, f.UpdatedAt, in.Followers["f1"].UpdatedAt)

	newest := NotesNewestFirst(f)
	assert.Equal(t, "envió propuesta", newest[0].Content)
	assert.Equal(t, "llamar el lunes", f.Notes[0].Content)

	same, err := m.AddNote(out, "f1", "   ")
	assert.Error(t, err)
	assert.Same(t, out, same)
}

func TestColumns_AddRenameReorder(t *testing.T) {
	m := testMutator()
	b := twoColumnBoard()
	b.Columns[1].Order = 7

	b, cid, err := m.AddColumn(b, " Cerrado ")
	require.NoError(t, err)
	col, ok := FindColumn(b, cid)
	require.True(t, ok)
	assert.Equal(t, 8, col.Order)
	assert.Equal(t, "Cerrado", col.Title)

	_, _, err = m.AddColumn(b, "  ")
	assert.Error(t, err)

	renamed, err := m.RenameColumn(b, cid, "   ")
	require.NoError(t, err)
	assert.Same(t, b, renamed)

	renamed, err = m.RenameColumn(b, cid, "Ganado")
	require.NoError(t, err)
	col, _ = FindColumn(renamed, cid)
	assert.Equal(t, "Ganado", col.Title)

	reordered, err := m.ReorderColumns(b, []string{cid, "new"})
	require.NoError(t, err)
	ids := []string{}
	for _, c := range SortedColumns(reordered) {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{cid, "new", "contacted"}, ids)
	for i, c := range SortedColumns(reordered) {
		assert.Equal(t, i, c.Order)
	}
}

func TestNormalizeColumnOrder(t *testing.T) {
	m := testMutator()
	b := twoColumnBoard()
	b.Columns[0].Order = 10
	b.Columns[1].Order = 3

	out := m.NormalizeColumnOrder(b)
	assert.Equal(t, 1, out.Columns[0].Order)
	assert.Equal(t, 0, out.Columns[1].Order)
	assert.Same(t, out, m.NormalizeColumnOrder(out))
}

func TestDeleteColumn_ReassignsToFirstRemaining(t *testing.T) {
	m := testMutator()
	b := &domain.Board{
		Columns: []domain.Column{
			{ID: "B", Title: "B", Order: 2, FollowerIDs: []string{"f3"}},
			{ID: "X", Title: "X", Order: 0, FollowerIDs: []string{"f1", "f2"}},
			{ID: "A", Title: "A", Order: 1, FollowerIDs: []string{"f0"}},
		},
		Followers: map[string]domain.Follower{},
		Tags:      []domain.Tag{},
	}
	for _, c := range b.Columns {
		for _, fid := range c.FollowerIDs {
			b.Followers[fid] = domain.Follower{ID: fid, Username: fid, ColumnID: c.ID}
		}
	}
	require.NoError(t, b.Check())

	out, err := m.DeleteColumn(b, "X")
	require.NoError(t, err)
	require.NoError(t, out.Check())

	a, _ := FindColumn(out, "A")
	assert.Equal(t, []string{"f0", "f1", "f2"}, a.FollowerIDs)
	assert.Equal(t, "A", out.Followers["f1"].ColumnID)
	assert.Equal(t, "A", out.Followers["f2"].ColumnID)
	bcol, _ := FindColumn(out, "B")
	assert.Equal(t, []string{"f3"}, bcol.FollowerIDs)
	assert.Len(t, out.Followers, 4)
	assert.Equal(t, 0, a.Order)
	assert.Equal(t, 1, bcol.Order)
}

func TestDeleteColumn_RenumbersOrders(t *testing.T) {
	m := testMutator()
	b := m.Seed()
	first, ok := FirstColumn(b)
	require.True(t, ok)

	b, err := m.DeleteColumn(b, first.ID)
	require.NoError(t, err)
	b, _, err = m.AddColumn(b, "Reactivar")
	require.NoError(t, err)

	orders := []int{}
	for _, c := range SortedColumns(b) {
		orders = append(orders, c.Order)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, orders)
	second, _ := FirstColumn(b)
	assert.Equal(t, 0, second.Order)
	assert.Equal(t, "Contactado", second.Title)
}

func TestDeleteColumn_LastColumnRefused(t *testing.T) {
	m := testMutator()
	b := twoColumnBoard()
	b, err := m.DeleteColumn(b, "contacted")
	require.NoError(t, err)

	out, err := m.DeleteColumn(b, "new")
	assert.ErrorIs(t, err, ErrLastColumn)
	assert.Same(t, b, out)
	assert.Contains(t, out.Followers, "f1")
}

func TestTags_CreateToggleRenameDelete(t *testing.T) {
	m := testMutator()
	b := twoColumnBoard()

	b, tid, err := m.CreateTag(b, "Caliente", "")
	require.NoError(t, err)
	assert.Equal(t, tagcolor.ForName("Caliente"), b.Tags[0].Color)

	b, err = m.ToggleFollowerTag(b, "f1", tid)
	require.NoError(t, err)
	assert.Equal(t, []string{tid}, b.Followers["f1"].Tags)

	b, err = m.RenameTag(b, tid, "Frío", "#000000")
	require.NoError(t, err)
	tag, ok := FindTag(b, tid)
	require.True(t, ok)
	assert.Equal(t, "Frío", tag.Name)
	assert.Equal(t, "#000000", tag.Color)

	b, err = m.DeleteTag(b, tid)
	require.NoError(t, err)
	assert.Empty(t, b.Tags)
	assert.Equal(t, []string{tid}, b.Followers["f1"].Tags)
	_, ok = FindTag(b, tid)
	assert.False(t, ok)

	b, err = m.ToggleFollowerTag(b, "f1", tid)
	require.NoError(t, err)
	assert.Empty(t, b.Followers["f1"].Tags)
}

// TestMutators_PreserveInvariants runs random mutation sequences and checks
// the placement invariant after every step.
func TestMutators_PreserveInvariants(t *testing.T) {
	m := testMutator()
	r := rand.New(rand.NewPCG(1, 2))
	b := m.Seed()

	pickFollower := func() string {
		ids := b.FollowerIDs()
		if len(ids) == 0 {
			return "missing"
		}
		return ids[r.IntN(len(ids))]
	}
	pickColumn := func() string {
		if len(b.Columns) == 0 {
			return "missing"
		}
		return b.Columns[r.IntN(len(b.Columns))].ID
	}

	for step := range 500 {
		var err error
		switch r.IntN(9) {
		case 0, 1:
			b, _, err = m.AddFollower(b, pickColumn(), FollowerFields{Username: fmt.Sprintf("u%d", step)})
		case 2:
			b, err = m.DeleteFollower(b, pickFollower())
		case 3, 4:
			b, err = m.MoveFollowerToColumn(b, pickFollower(), pickColumn(), r.IntN(5)-1)
		case 5:
			b, _, err = m.AddColumn(b, fmt.Sprintf("col %d", step))
		case 6:
			b, err = m.DeleteColumn(b, pickColumn())
		case 7:
			cid := pickColumn()
			if c, ok := FindColumn(b, cid); ok && len(c.FollowerIDs) > 1 {
				b, err = m.ReorderWithinColumn(b, cid, r.IntN(len(c.FollowerIDs)), r.IntN(len(c.FollowerIDs)))
			}
		case 8:
			ids := make([]string, 0, len(b.Columns))
			for _, c := range b.Columns {
				ids = append(ids, c.ID)
			}
			r.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
			b, err = m.ReorderColumns(b, ids)
		}
		_ = err
		require.NoError(t, b.Check(), "step %d", step)

		placed := []string{}
		for _, c := range b.Columns {
			placed = append(placed, c.FollowerIDs...)
		}
		require.ElementsMatch(t, b.FollowerIDs(), placed, "step %d", step)
	}
}
