package api

import (
	"encoding/json/v2"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArturoRiosMock/CRMAIRE/internal/domain"
)

const followersExport = `[
  {"title": "", "string_list_data": [{"href": "https://www.instagram.com/Ana", "value": "Ana"}]},
  {"title": "", "string_list_data": [{"href": "https://www.instagram.com/ejemplo_usuario", "value": "ejemplo_usuario"}]},
  {"title": "", "string_list_data": [{"href": "https://www.instagram.com/bob", "value": "@BOB"}]}
]`

type lookupBody struct {
	Success    bool          `json:"success"`
	Count      int           `json:"count"`
	Added      int           `json:"added"`
	Folder     string        `json:"folder"`
	BoardState *domain.Board `json:"boardState"`
	Error      string        `json:"error"`
	Path       string        `json:"path"`
}

func TestLookupImport_MergesIntoStoredBoard(t *testing.T) {
	ts := setupTestServer(t)
	ts.writeExport(t, "instagram/connections/followers_and_following/followers_1.json", followersExport)

	stored := decodeBoard(t, ts.api.Get("/api/board").Body.Bytes())

	resp := ts.api.Get("/api/instagram-import")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body lookupBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "instagram", body.Folder)
	assert.Equal(t, 3, body.Count)
	assert.Equal(t, 2, body.Added, "the sample follower is already on the board")

	require.NotNil(t, body.BoardState)
	assert.Len(t, body.BoardState.Followers, 3)
	assert.NoError(t, body.BoardState.Check())
	assert.Equal(t, stored.Columns[0].ID, body.BoardState.Columns[0].ID)
	assert.Len(t, body.BoardState.Columns[0].FollowerIDs, 3)

	assert.Equal(t, stored, ts.storedBoard(t), "lookup does not save")
}

func TestLookupImport_Fresh(t *testing.T) {
	ts := setupTestServer(t)
	ts.writeExport(t, "instagram/followers.json", followersExport)

	resp := ts.api.Get("/api/instagram-import?fresh=true")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body lookupBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Added)
	assert.Len(t, body.BoardState.Columns, 6)
}

func TestLookupImport_NothingFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/instagram-import")
	require.Equal(t, http.StatusNotFound, resp.Code)

	var body lookupBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.NotEmpty(t, body.Error)
	assert.Equal(t, filepath.Join(ts.importRoot, "instagram", "connections"), body.Path)
}
