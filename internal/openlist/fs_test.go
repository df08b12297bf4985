package openlist

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMkdirThenList_RoundTrip(t *testing.T) {
	// In-memory directory tree: parent path -> child names.
	dirs := map[string][]string{"/": nil}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/fs/mkdir", func(w http.ResponseWriter, r *http.Request) {
		var req pathRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		parent := path.Dir(req.Path)
		dirs[parent] = append(dirs[parent], path.Base(req.Path))
		dirs[req.Path] = nil
		writeEnvelope(w, 200, "success", nil)
	})
	mux.HandleFunc("/api/fs/list", func(w http.ResponseWriter, r *http.Request) {
		var req listRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		children, ok := dirs[req.Path]
		if !ok {
			writeEnvelope(w, 500, "object not found", nil)

			return
		}

		content := make([]entryResponse, 0, len(children))
		for _, name := range children {
			content = append(content, entryResponse{
				Name:     name,
				IsDir:    true,
				Modified: "2026-08-30T12:00:00Z",
			})
		}

		writeEnvelope(w, 200, "success", listResponse{Content: content, Total: len(content)})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL, Options{})
	ctx := context.Background()

	require.NoError(t, client.Mkdir(ctx, "/reports"))

	entries, err := client.ListAll(ctx, "/")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "reports", entries[0].Name)
	assert.True(t, entries[0].IsDir)
	assert.Equal(t, 2026, entries[0].Modified.Year())

	err = client.Mkdir(ctx, "/reports/q3")
	require.NoError(t, err)

	entries, err = client.ListAll(ctx, "/reports")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "q3", entries[0].Name)
}

func TestListAll_Paginates(t *testing.T) {
	const total = 75

	var requests int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++

		var req listRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, DefaultPageSize, req.PerPage)

		start := (req.Page - 1) * req.PerPage

		var content []entryResponse

		for i := start; i < start+req.PerPage && i < total; i++ {
			content = append(content, entryResponse{
				Name:     fmt.Sprintf("file-%03d.txt", i),
				Size:     int64(i),
				Modified: "2026-01-15T08:30:00Z",
			})
		}

		writeEnvelope(w, 200, "success", listResponse{Content: content, Total: total})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, Options{})
	entries, err := client.ListAll(context.Background(), "/big")
	require.NoError(t, err)

	assert.Len(t, entries, total)
	assert.Equal(t, 3, requests)
	assert.Equal(t, "file-000.txt", entries[0].Name)
	assert.Equal(t, "file-074.txt", entries[74].Name)
}

func TestList_SendsPageParameters(t *testing.T) {
	var gotReq listRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		writeEnvelope(w, 200, "success", listResponse{Total: 0})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, Options{})
	_, totalCount, err := client.List(context.Background(), "/docs", 2, 10, true)
	require.NoError(t, err)

	assert.Equal(t, "/docs", gotReq.Path)
	assert.Equal(t, 2, gotReq.Page)
	assert.Equal(t, 10, gotReq.PerPage)
	assert.True(t, gotReq.Refresh)
	assert.Zero(t, totalCount)
}

func TestStat_ParsesEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/fs/get", r.URL.Path)

		var req pathRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "/docs/report.pdf", req.Path)

		writeEnvelope(w, 200, "success", entryResponse{
			Name:     "report.pdf",
			Size:     4096,
			IsDir:    false,
			Modified: "2026-02-01T10:00:00Z",
			Sign:     "abc123",
			RawURL:   "https://cdn.example.com/report.pdf",
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, Options{})
	entry, err := client.Stat(context.Background(), "/docs/report.pdf")
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", entry.Name)
	assert.Equal(t, int64(4096), entry.Size)
	assert.False(t, entry.IsDir)
	assert.Equal(t, "abc123", entry.Sign)
	assert.Equal(t, "https://cdn.example.com/report.pdf", entry.RawURL)
	assert.Equal(t, time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC), entry.Modified.UTC())
}

func TestStat_InvalidTimestampFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(w, 200, "success", entryResponse{
			Name:     "odd.bin",
			Modified: "not-a-timestamp",
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, Options{})
	entry, err := client.Stat(context.Background(), "/odd.bin")
	require.NoError(t, err)

	assert.WithinDuration(t, time.Now().UTC(), entry.Modified, time.Minute)
}

func TestSearch_SendsScopeAndParsesHits(t *testing.T) {
	var gotReq searchRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/fs/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		writeEnvelope(w, 200, "success", listResponse{
			Content: []entryResponse{
				{Name: "notes.txt", Parent: "/docs/archive", Modified: "2026-03-03T03:03:03Z"},
			},
			Total: 1,
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, Options{})
	hits, totalCount, err := client.Search(context.Background(), "/docs", "notes", SearchScopeFiles, 1, 0)
	require.NoError(t, err)

	assert.Equal(t, "/docs", gotReq.Parent)
	assert.Equal(t, "notes", gotReq.Keywords)
	assert.Equal(t, SearchScopeFiles, gotReq.Scope)
	assert.Equal(t, DefaultPageSize, gotReq.PerPage)
	assert.Equal(t, 1, totalCount)
	require.Len(t, hits, 1)
	assert.Equal(t, "/docs/archive", hits[0].Parent)
}

func TestRename_SendsPathAndName(t *testing.T) {
	var gotReq renameRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/fs/rename", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		writeEnvelope(w, 200, "success", nil)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, Options{})
	require.NoError(t, client.Rename(context.Background(), "/docs/old.txt", "new.txt"))

	assert.Equal(t, "/docs/old.txt", gotReq.Path)
	assert.Equal(t, "new.txt", gotReq.Name)
}

func TestRemove_SendsDirAndNames(t *testing.T) {
	var gotReq removeRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/fs/remove", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		writeEnvelope(w, 200, "success", nil)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, Options{})
	require.NoError(t, client.Remove(context.Background(), "/docs", "a.txt", "b.txt"))

	assert.Equal(t, "/docs", gotReq.Dir)
	assert.Equal(t, []string{"a.txt", "b.txt"}, gotReq.Names)
}

func TestRemove_NoNames(t *testing.T) {
	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		writeEnvelope(w, 200, "success", nil)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, Options{})
	err := client.Remove(context.Background(), "/docs")
	assert.ErrorIs(t, err, ErrNoNames)
	assert.Zero(t, calls)
}

func TestCopyAndMove_SendTransferPayload(t *testing.T) {
	tests := []struct {
		name string
		path string
		call func(c *Client) error
	}{
		{
			name: "copy",
			path: "/api/fs/copy",
			call: func(c *Client) error {
				return c.Copy(context.Background(), "/src", "/dst", "f.txt")
			},
		},
		{
			name: "move",
			path: "/api/fs/move",
			call: func(c *Client) error {
				return c.Move(context.Background(), "/src", "/dst", "f.txt")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string

			var gotReq transferRequest

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
				writeEnvelope(w, 200, "success", nil)
			}))
			defer srv.Close()

			client := newTestClient(t, srv.URL, Options{})
			require.NoError(t, tt.call(client))

			assert.Equal(t, tt.path, gotPath)
			assert.Equal(t, "/src", gotReq.SrcDir)
			assert.Equal(t, "/dst", gotReq.DstDir)
			assert.Equal(t, []string{"f.txt"}, gotReq.Names)
		})
	}
}

func TestMe_ParsesUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/me", r.URL.Path)

		writeEnvelope(w, 200, "success", userResponse{
			ID:       1,
			Username: "admin",
			BasePath: "/",
			Role:     2,
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, Options{})
	user, err := client.Me(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, "/", user.BasePath)
	assert.False(t, user.Disabled)
}
