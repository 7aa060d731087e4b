// Package remote is the HTTP client for the catalog service. It is the only
// place the engine touches the network; everything it returns is a plain DTO
// snapshot that the sync engine folds into the local mirror.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client interfaces with the remote catalog API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new catalog API client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// MangaData is one title of the remote snapshot with its nested collections.
type MangaData struct {
	MangaID       int64         `json:"manga_id"`
	Title         string        `json:"title"`
	Description   string        `json:"descr"`
	CoverImageURL string        `json:"cover_image_url"`
	Status        string        `json:"status"`
	Color         string        `json:"color"`
	Rating        *float64      `json:"rating"`
	Views         int64         `json:"views"`
	MalURL        string        `json:"mal_url"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Chapters      []ChapterData `json:"chapters"`
	Genres        []GenreData   `json:"genres"`
	Authors       []AuthorData  `json:"authors"`
}

// ChapterData is one chapter nested in a MangaData.
type ChapterData struct {
	ChapterID  int64     `json:"chapter_id"`
	ChapterNum float64   `json:"chapter_num"`
	Name       string    `json:"chapter_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// GenreData is one genre nested in a MangaData.
type GenreData struct {
	GenreID int64  `json:"genre_id"`
	Genre   string `json:"genre"`
}

// AuthorData is one author nested in a MangaData, with the role they play
// for that title.
type AuthorData struct {
	AuthorID int64  `json:"author_id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// ReleaseData is one release note of the client application.
type ReleaseData struct {
	ReleaseID   int64     `json:"release_id"`
	Version     string    `json:"version"`
	URL         string    `json:"url"`
	Description string    `json:"descr"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReadingStatusData is one saved per-title status of the signed-in account.
type ReadingStatusData struct {
	MangaID int64  `json:"manga_id"`
	Status  string `json:"status"`
}

// FetchCatalogSnapshot fetches the full catalog: every title with its nested
// chapters, genres and authors.
func (c *Client) FetchCatalogSnapshot(ctx context.Context) ([]MangaData, error) {
	var mangas []MangaData
	if err := c.getJSON(ctx, "/api/v1/mangas", &mangas); err != nil {
		return nil, fmt.Errorf("fetch catalog snapshot: %w", err)
	}
	return mangas, nil
}

// FetchReleaseNotes fetches all release notes.
func (c *Client) FetchReleaseNotes(ctx context.Context) ([]ReleaseData, error) {
	var releases []ReleaseData
	if err := c.getJSON(ctx, "/api/v1/releases", &releases); err != nil {
		return nil, fmt.Errorf("fetch release notes: %w", err)
	}
	return releases, nil
}

// FetchUserReadingStatus fetches the account's saved per-title reading
// statuses, used to hydrate local state after sign-in.
func (c *Client) FetchUserReadingStatus(ctx context.Context, userID int64) ([]ReadingStatusData, error) {
	var statuses []ReadingStatusData
	path := fmt.Sprintf("/api/v1/users/%d/reading-status", userID)
	if err := c.getJSON(ctx, path, &statuses); err != nil {
		return nil, fmt.Errorf("fetch reading status for user %d: %w", userID, err)
	}
	return statuses, nil
}

// IncrementMangaViews bumps the remote view counter for one title. The
// response body is irrelevant; only the status matters.
func (c *Client) IncrementMangaViews(ctx context.Context, mangaID int64) error {
	path := fmt.Sprintf("/api/v1/mangas/%d/views", mangaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("increment views for manga %d: %w", mangaID, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("increment views for manga %d: %w", mangaID, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("increment views for manga %d: unexpected status %d", mangaID, resp.StatusCode)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode response: %w", path, err)
	}
	return nil
}
