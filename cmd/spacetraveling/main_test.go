package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env"), "version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "spacetraveling dev\n", out.String())
}

func TestCheckListsFirstPage(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v2":
			_, _ = w.Write([]byte(`{"refs":[{"id":"master","ref":"REF1","label":"Master","isMasterRef":true}]}`))
		case "/api/v2/documents/search":
			_, _ = w.Write([]byte(`{"page":1,"results_per_page":1,"total_pages":2,
				"next_page":"` + srv.URL + `/api/v2/documents/search?page=2&pageSize=1",
				"results":[{"id":"X1","uid":"como-utilizar-hooks","type":"posts",
				"first_publication_date":"2021-03-15T19:25:28+0000",
				"data":{"title":"Como utilizar Hooks","subtitle":"Pensando","author":"Joseph Oliveira","content":[]}}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	t.Setenv("PRISMIC_API_ENDPOINT", srv.URL+"/api/v2")
	t.Setenv("PRISMIC_POST_TYPE", "posts")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env"), "check"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "como-utilizar-hooks")
	assert.Contains(t, out.String(), "15 mar 2021")
	assert.Contains(t, out.String(), "next page: "+srv.URL)
}

func TestSnapshotsPrune(t *testing.T) {
	t.Setenv("SNAPSHOT_PATH", filepath.Join(t.TempDir(), "snapshots.db"))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env"), "snapshots"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "removed 0 snapshots\n", out.String())

	out.Reset()
	cmd = newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env"), "snapshots", "--all"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "removed all snapshots\n", out.String())
}
