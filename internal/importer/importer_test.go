package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArturoRiosMock/CRMAIRE/internal/board"
	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
)

const followersExport = `[
  {"title": "", "media_list_data": [], "string_list_data": [
    {"href": "https://www.instagram.com/Ana", "value": "Ana", "timestamp": 1707000000}
  ]},
  {"title": "", "media_list_data": [], "string_list_data": [
    {"href": "https://www.instagram.com/bob", "value": "bob", "timestamp": 1707000001}
  ]}
]`

const followingExport = `{
  "relationships_following": [
    {"title": "", "string_list_data": [{"href": "https://www.instagram.com/carla", "value": "carla"}]},
    {"title": "", "string_list_data": [{"href": "https://www.instagram.com/ana", "value": "ANA"}]}
  ]
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParseValue_PreservesMemberOrder(t *testing.T) {
	v, err := ParseValue([]byte(`{"z": 1, "a": [true, null, "x"], "m": {"k": -0.5}}`))
	require.NoError(t, err)

	require.Equal(t, Object, v.Kind)
	names := []string{}
	for _, m := range v.Members {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"z", "a", "m"}, names)

	a, ok := v.Get("a")
	require.True(t, ok)
	require.Len(t, a.Items, 3)
	assert.Equal(t, Bool, a.Items[0].Kind)
	assert.True(t, a.Items[0].Bool)
	assert.Equal(t, Null, a.Items[1].Kind)
	assert.Equal(t, "x", a.Items[2].Text)

	m, _ := v.Get("m")
	k, _ := m.Get("k")
	assert.Equal(t, Number, k.Kind)
	assert.Equal(t, "-0.5", k.Text)
}

func TestParseValue_NestedMemberNames(t *testing.T) {
	v, err := ParseValue([]byte(`{"outer": {"inner": {"leaf": "x"}, "after": [{"k": 1}]}, "last": true}`))
	require.NoError(t, err)

	outer, ok := v.Get("outer")
	require.True(t, ok)
	inner, ok := outer.Get("inner")
	require.True(t, ok)
	leaf, ok := inner.Get("leaf")
	require.True(t, ok)
	assert.Equal(t, "x", leaf.Text)

	after, ok := outer.Get("after")
	require.True(t, ok)
	require.Len(t, after.Items, 1)
	_, ok = after.Items[0].Get("k")
	assert.True(t, ok)

	last, ok := v.Get("last")
	require.True(t, ok)
	assert.True(t, last.Bool)
}

func TestParseValue_Malformed(t *testing.T) {
	for _, in := range []string{``, `{`, `[1, 2`, `{"a": }`, `{} {}`, `not json`} {
		_, err := ParseValue([]byte(in))
		assert.Error(t, err, "input %q", in)
	}
}

func TestValue_Truthy(t *testing.T) {
	tests := []struct {
		json string
		want bool
	}{
		{`null`, false},
		{`false`, false},
		{`true`, true},
		{`""`, false},
		{`"x"`, true},
		{`0`, false},
		{`-0.0`, false},
		{`3`, true},
		{`[]`, true},
		{`{}`, true},
	}
	for _, tt := range tests {
		v, err := ParseValue([]byte(tt.json))
		require.NoError(t, err)
		assert.Equal(t, tt.want, v.Truthy(), tt.json)
	}
}

func TestParseExport(t *testing.T) {
	tests := []struct {
		name string
		json string
		want []string
	}{
		{
			name: "followers list",
			json: followersExport,
			want: []string{"ana", "bob"},
		},
		{
			name: "following object",
			json: followingExport,
			want: []string{"carla", "ana"},
		},
		{
			name: "plain username array",
			json: `["Ana", "ana ", "  ", "@BOB", 42, null]`,
			want: []string{"ana", "bob"},
		},
		{
			name: "direct value records",
			json: `[{"value": "dora"}, {"value": ""}, {"other": "eli"}]`,
			want: []string{"dora", "eli"},
		},
		{
			name: "well-known key wins over other members",
			json: `{"following": ["fer"], "noise": ["gus"]}`,
			want: []string{"fer"},
		},
		{
			name: "falls back to whole object",
			json: `{"following": [], "nested": {"deep": [{"string_list_data": [{"value": "hugo"}]}]}}`,
			want: []string{"hugo"},
		},
		{
			name: "falsy well-known member skipped",
			json: `{"follower": "", "x": "ivan"}`,
			want: []string{"ivan"},
		},
		{
			name: "malformed",
			json: `{"relationships_followers": [`,
			want: []string{},
		},
		{
			name: "top-level scalar",
			json: `"solo"`,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseExport([]byte(tt.json)))
		})
	}
}

func TestMerge_SkipsCaseInsensitiveDuplicates(t *testing.T) {
	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	b := &domain.Board{
		Columns: []domain.Column{
			{ID: "c2", Title: "Contactado", Order: 1, FollowerIDs: []string{"fb"}},
			{ID: "c1", Title: "Nuevo", Order: 0, FollowerIDs: []string{}},
		},
		Followers: map[string]domain.Follower{
			"fb": {ID: "fb", Name: "Bob", Username: "bob", ColumnID: "c2"},
		},
		Tags: []domain.Tag{},
	}

	out, added := Merge(b, []string{"Ana", "ana ", "BOB"}, now)

	assert.Equal(t, 1, added)
	require.NoError(t, out.Check())
	require.Len(t, out.Followers, 2)
	require.Len(t, out.Columns[1].FollowerIDs, 1)

	f := out.Followers[out.Columns[1].FollowerIDs[0]]
	assert.Equal(t, "ana", f.Username)
	assert.Equal(t, "ana", f.Name)
	assert.Equal(t, "https://instagram.com/ana", f.ProfileURL)
	assert.Equal(t, "c1", f.ColumnID)
	assert.Equal(t, domain.Timestamp(now), f.CreatedAt)
	assert.Empty(t, f.Tags)
	assert.Empty(t, f.Notes)

	// input untouched
	assert.Len(t, b.Followers, 1)
	assert.Empty(t, b.Columns[1].FollowerIDs)
}

func TestMerge_NilBoardUsesSeed(t *testing.T) {
	out, added := Merge(nil, []string{"ejemplo_usuario", "nuevo"}, time.Now())

	assert.Equal(t, 1, added)
	require.NoError(t, out.Check())
	first, ok := board.FirstColumn(out)
	require.True(t, ok)
	assert.Len(t, first.FollowerIDs, 2)
}

func TestMerge_NothingNewReturnsInput(t *testing.T) {
	b := board.SeedAt(time.Now())
	out, added := Merge(b, []string{"EJEMPLO_USUARIO", ""}, time.Now())

	assert.Zero(t, added)
	assert.Same(t, b, out)
}

func TestImporter_ReadFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "followers_1.json")
	b := filepath.Join(dir, "following.json")
	writeFile(t, a, followersExport)
	writeFile(t, b, followingExport)

	im := New(dir, nil, testLogger())
	usernames, err := im.ReadFiles(context.Background(), []string{a, filepath.Join(dir, "missing.json"), b})

	require.NoError(t, err)
	assert.Equal(t, []string{"ana", "bob", "carla"}, usernames)
}

func TestImporter_ReadFiles_NestedObjectExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "following.json")
	writeFile(t, path, `{"relationships_following": [{"title": "", "string_list_data": [{"href": "https://www.instagram.com/Ana", "value": "Ana", "timestamp": 1707000000}]}]}`)

	usernames, err := New(dir, nil, testLogger()).ReadFiles(context.Background(), []string{path})

	require.NoError(t, err)
	assert.Equal(t, []string{"ana"}, usernames)
}

func TestImporter_ReadFiles_Cancelled(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "followers_1.json")
	writeFile(t, a, followersExport)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(dir, nil, testLogger()).ReadFiles(ctx, []string{a})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImporter_Lookup(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "export", "connections", "followers_and_following", "followers_1.json"), followersExport)
	writeFile(t, filepath.Join(root, "export", "connections", "followers_and_following", "close_friends.json"), `["zed"]`)
	writeFile(t, filepath.Join(root, "export", "following.json"), followingExport)

	im := New(root, []string{"absent", "export"}, testLogger())
	res, err := im.Lookup(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "export", res.Folder)
	assert.Equal(t, []string{"ana", "bob"}, res.Usernames)
}

func TestImporter_Lookup_FallsBackToFolderRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "instagram", "connections"), 0o755))
	writeFile(t, filepath.Join(root, "instagram", "following.json"), followingExport)

	res, err := New(root, []string{"instagram"}, testLogger()).Lookup(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"carla", "ana"}, res.Usernames)
}

func TestImporter_Lookup_NothingFound(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "instagram", "followers.json"), `{}`)

	_, err := New(root, []string{"instagram"}, testLogger()).Lookup(context.Background())

	require.ErrorIs(t, err, ErrNothingFound)
	var nf *NothingFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, filepath.Join(root, "instagram", "connections"), nf.Path)
}

func TestIsExportFile(t *testing.T) {
	assert.True(t, IsExportFile("followers_1.json"))
	assert.True(t, IsExportFile("Following.json"))
	assert.False(t, IsExportFile("followers_1.JSON"))
	assert.False(t, IsExportFile("close_friends.json"))
	assert.False(t, IsExportFile("followers.html"))
}
