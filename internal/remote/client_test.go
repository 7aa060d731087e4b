package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchCatalogSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/mangas", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"manga_id": 7,
				"title": "Alpha",
				"status": "OnGoing",
				"views": 42,
				"chapters": [{"chapter_id": 71, "chapter_num": 1.5, "chapter_name": "Chapter 1.5"}],
				"genres": [{"genre_id": 1, "genre": "Action"}],
				"authors": [{"author_id": 3, "name": "ONE", "role": "story"}]
			}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	mangas, err := client.FetchCatalogSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, mangas, 1)

	m := mangas[0]
	assert.Equal(t, int64(7), m.MangaID)
	assert.Equal(t, "Alpha", m.Title)
	assert.Equal(t, int64(42), m.Views)
	require.Len(t, m.Chapters, 1)
	assert.Equal(t, 1.5, m.Chapters[0].ChapterNum)
	require.Len(t, m.Authors, 1)
	assert.Equal(t, "story", m.Authors[0].Role)
}

func TestFetchCatalogSnapshot_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	_, err := client.FetchCatalogSnapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestFetchCatalogSnapshot_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "a list"`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	_, err := client.FetchCatalogSnapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestFetchReleaseNotes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/releases", r.URL.Path)
		w.Write([]byte(`[{"release_id": 1, "version": "1.2.0", "url": "https://example.com/r/1"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	releases, err := client.FetchReleaseNotes(context.Background())
	require.NoError(t, err)
	require.Len(t, releases, 1)
	assert.Equal(t, "1.2.0", releases[0].Version)
}

func TestFetchUserReadingStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/9/reading-status", r.URL.Path)
		w.Write([]byte(`[{"manga_id": 7, "status": "Reading"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	statuses, err := client.FetchUserReadingStatus(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "Reading", statuses[0].Status)
}

func TestIncrementMangaViews(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	require.NoError(t, client.IncrementMangaViews(context.Background(), 7))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/v1/mangas/7/views", gotPath)
}

func TestIncrementMangaViews_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	err := client.IncrementMangaViews(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}
