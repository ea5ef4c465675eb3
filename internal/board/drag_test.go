package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
)

// threeInNew returns the two-column board with f1, bob and carla in "new"
// and dan in "contacted".
func threeInNew(t *testing.T, m Mutator) (*domain.Board, []string) {
	t.Helper()
	b := twoColumnBoard()
	b, bob, err := m.AddFollower(b, "new", FollowerFields{Username: "bob", Name: "Bob"})
	require.NoError(t, err)
	b, carla, err := m.AddFollower(b, "new", FollowerFields{Username: "carla", Name: "Carla", Tags: []string{"vip"}})
	require.NoError(t, err)
	b, dan, err := m.AddFollower(b, "contacted", FollowerFields{Username: "dan", Name: "Dan"})
	require.NoError(t, err)
	return b, []string{"f1", bob, carla, dan}
}

func TestApplyDrag_NewToContactedScenario(t *testing.T) {
	m := testMutator()
	in := twoColumnBoard()
	before := in.Followers["f1"].UpdatedAt

	out, outcome := m.ApplyDrag(in, DragEvent{
		ItemID:      "f1",
		Source:      Location{ListID: "new", Index: 0},
		Destination: &Location{ListID: "contacted", Index: 0},
	}, Filter{})

	assert.Equal(t, DragMoved, outcome)
	require.NoError(t, out.Check())
	assert.Empty(t, out.Columns[0].FollowerIDs)
	assert.Equal(t, []string{"f1"}, out.Columns[1].FollowerIDs)
	assert.Equal(t, "contacted", out.Followers["f1"].ColumnID)
	assert.Greater(t, out.Followers["f1"].UpdatedAt, before)
}

func TestApplyDrag_NoOps(t *testing.T) {
	m := testMutator()
	in, ids := threeInNew(t, m)
	snapshot := in.Clone()

	tests := []struct {
		name   string
		ev     DragEvent
		filter Filter
	}{
		{
			name: "cancelled",
			ev:   DragEvent{ItemID: "f1", Source: Location{ListID: "new", Index: 0}},
		},
		{
			name: "dropped on own position",
			ev:   DragEvent{ItemID: ids[1], Source: Location{ListID: "new", Index: 1}, Destination: &Location{ListID: "new", Index: 1}},
		},
		{
			name: "item not in declared source",
			ev:   DragEvent{ItemID: ids[3], Source: Location{ListID: "new", Index: 0}, Destination: &Location{ListID: "contacted", Index: 0}},
		},
		{
			name: "unknown source list",
			ev:   DragEvent{ItemID: "f1", Source: Location{ListID: "gone", Index: 0}, Destination: &Location{ListID: "contacted", Index: 0}},
		},
		{
			name: "unknown destination list",
			ev:   DragEvent{ItemID: "f1", Source: Location{ListID: "new", Index: 0}, Destination: &Location{ListID: "gone", Index: 0}},
		},
		{
			name:   "same column while filtered",
			ev:     DragEvent{ItemID: ids[2], Source: Location{ListID: "new", Index: 0}, Destination: &Location{ListID: "new", Index: 1}},
			filter: Filter{TagIDs: []string{"vip"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, outcome := m.ApplyDrag(in, tt.ev, tt.filter)
			assert.Equal(t, DragIgnored, outcome)
			assert.Equal(t, snapshot, out)
		})
	}
}

func TestApplyDrag_ReorderUnfiltered(t *testing.T) {
	m := testMutator()
	in, ids := threeInNew(t, m)

	out, outcome := m.ApplyDrag(in, DragEvent{
		ItemID:      ids[0],
		Source:      Location{ListID: "new", Index: 0},
		Destination: &Location{ListID: "new", Index: 2},
	}, Filter{Query: "   "})

	assert.Equal(t, DragReordered, outcome)
	assert.Equal(t, []string{ids[1], ids[2], ids[0]}, out.Columns[0].FollowerIDs)
	assert.Equal(t, in.Followers, out.Followers)
}

func TestApplyDrag_CrossColumnInsertsAtIndex(t *testing.T) {
	m := testMutator()
	in, ids := threeInNew(t, m)

	out, outcome := m.ApplyDrag(in, DragEvent{
		ItemID:      ids[1],
		Source:      Location{ListID: "new", Index: 1},
		Destination: &Location{ListID: "contacted", Index: 0},
	}, Filter{})

	assert.Equal(t, DragMoved, outcome)
	require.NoError(t, out.Check())
	assert.Equal(t, []string{ids[1], ids[3]}, out.Columns[1].FollowerIDs)
}

func TestApplyDrag_FilteredCrossColumnAppends(t *testing.T) {
	m := testMutator()
	in, ids := threeInNew(t, m)

	for _, k := range []int{0, 1, 7} {
		out, outcome := m.ApplyDrag(in, DragEvent{
			ItemID:      ids[2],
			Source:      Location{ListID: "new", Index: 0},
			Destination: &Location{ListID: "contacted", Index: k},
		}, Filter{Query: "car"})

		assert.Equal(t, DragMoved, outcome)
		require.NoError(t, out.Check())
		assert.Equal(t, []string{ids[3], ids[2]}, out.Columns[1].FollowerIDs, "visual index %d", k)
		assert.Equal(t, "contacted", out.Followers[ids[2]].ColumnID)
	}
}

func TestFilter_Matches(t *testing.T) {
	f := domain.Follower{Name: "Carla Ruiz", Username: "carla_r", Tags: []string{"vip", "hot"}}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"inactive", Filter{}, true},
		{"name substring", Filter{Query: "RUIZ"}, true},
		{"username substring", Filter{Query: " la_r "}, true},
		{"text miss", Filter{Query: "bob"}, false},
		{"all tags held", Filter{TagIDs: []string{"vip", "hot"}}, true},
		{"missing one tag", Filter{TagIDs: []string{"vip", "cold"}}, false},
		{"text miss but tags match", Filter{Query: "bob", TagIDs: []string{"vip"}}, true},
		{"text match but tags miss", Filter{Query: "carla", TagIDs: []string{"cold"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(f))
		})
	}
}

func TestFilter_Visible(t *testing.T) {
	m := testMutator()
	b, ids := threeInNew(t, m)
	b.Columns[0].Order, b.Columns[1].Order = 5, 1

	cols := Filter{Query: "a"}.Visible(b)
	require.Len(t, cols, 2)
	assert.Equal(t, "contacted", cols[0].ID)
	assert.Equal(t, []string{ids[3]}, cols[0].FollowerIDs)
	assert.Equal(t, []string{"f1", ids[2]}, cols[1].FollowerIDs)

	// the board itself is not narrowed
	assert.Len(t, b.Columns[0].FollowerIDs, 3)
}
