package spacetraveling

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test_snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	require.NotNil(t, s)
	require.NotNil(t, s.db)
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	s := setupTestStore(t)

	page := PostPagination{
		NextPage: "https://repo.cdn.prismic.io/api/v2/documents/search?page=2",
		Results: []PostSummary{
			{UID: "como-utilizar-hooks", Title: "Como utilizar Hooks", Author: "Joseph Oliveira"},
		},
	}
	before := time.Now().Add(-time.Second)
	require.NoError(t, s.SaveSnapshot("page:first", page))

	var got PostPagination
	at, err := s.LoadSnapshot("page:first", &got)
	require.NoError(t, err)
	assert.Equal(t, page, got)
	assert.True(t, at.After(before))
}

func TestSaveSnapshotReplaces(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.SaveSnapshot("post:a", Post{UID: "a", Title: "Original"}))
	require.NoError(t, s.SaveSnapshot("post:a", Post{UID: "a", Title: "Updated"}))

	var got Post
	_, err := s.LoadSnapshot("post:a", &got)
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.Title)
}

func TestLoadSnapshotMissing(t *testing.T) {
	s := setupTestStore(t)

	var got Post
	_, err := s.LoadSnapshot("post:nope", &got)
	assert.ErrorIs(t, err, ErrSnapshotMissing)
}

func TestPruneSnapshots(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.SaveSnapshot("post:old", Post{UID: "old"}))
	_, err := s.db.Exec(`UPDATE snapshots SET fetched_at = ? WHERE key = ?`,
		time.Now().Add(-48*time.Hour).UnixMilli(), "post:old")
	require.NoError(t, err)
	require.NoError(t, s.SaveSnapshot("post:new", Post{UID: "new"}))

	n, err := s.PruneSnapshots(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var got Post
	_, err = s.LoadSnapshot("post:old", &got)
	assert.ErrorIs(t, err, ErrSnapshotMissing)
	_, err = s.LoadSnapshot("post:new", &got)
	assert.NoError(t, err)
}

func TestDeleteSnapshots(t *testing.T) {
	s := setupTestStore(t)

	require.NoError(t, s.SaveSnapshot("a", 1))
	require.NoError(t, s.SaveSnapshot("b", 2))
	require.NoError(t, s.DeleteSnapshots())

	var v int
	_, err := s.LoadSnapshot("a", &v)
	assert.ErrorIs(t, err, ErrSnapshotMissing)
}
