// Package catalogsync replaces the local catalog mirror with a fresh remote
// snapshot: fetch, guard against an empty response, delete the old rows,
// bulk-insert the new ones.
package catalogsync

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tientran/mangamirror/internal/entities"
	"github.com/tientran/mangamirror/internal/remote"
)

// ErrEmptySnapshot signals that the remote returned zero titles and the
// local mirror was deliberately left untouched. A no-op, not a failure: a
// transient empty response must never wipe a good local copy.
var ErrEmptySnapshot = errors.New("remote returned an empty catalog snapshot")

// Fetcher is the slice of the remote client the engine needs.
type Fetcher interface {
	FetchCatalogSnapshot(ctx context.Context) ([]remote.MangaData, error)
	FetchReleaseNotes(ctx context.Context) ([]remote.ReleaseData, error)
}

// Config tunes the replace step.
type Config struct {
	// Atomic wraps the delete+reinsert in one transaction. Off by default:
	// the baseline design accepts a possibly-partial mirror on mid-sync
	// failure over holding a long write transaction.
	Atomic bool

	// BatchSize caps rows per multi-row insert statement.
	BatchSize int
}

// Engine orchestrates full catalog refreshes.
type Engine struct {
	db      *gorm.DB
	fetcher Fetcher
	cfg     Config
}

// NewEngine creates a sync engine.
func NewEngine(db *gorm.DB, fetcher Fetcher, cfg Config) *Engine {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Engine{db: db, fetcher: fetcher, cfg: cfg}
}

// UpdateCatalog fetches the full remote snapshot and replaces the local
// catalog tables with it. On success the mirror equals the snapshot exactly.
// On failure the operation stops at the failing step; user reading state is
// never touched either way.
func (e *Engine) UpdateCatalog(ctx context.Context) error {
	snapshot, err := e.fetcher.FetchCatalogSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("catalog sync: %w", err)
	}
	if len(snapshot) == 0 {
		log.Printf("Catalog sync: empty snapshot, keeping existing mirror")
		return ErrEmptySnapshot
	}

	releases, err := e.fetcher.FetchReleaseNotes(ctx)
	if err != nil {
		return fmt.Errorf("catalog sync: %w", err)
	}

	rows := flatten(snapshot, releases)

	if e.cfg.Atomic {
		err = e.db.Transaction(func(tx *gorm.DB) error {
			return e.replace(tx, rows)
		})
	} else {
		err = e.replace(e.db, rows)
	}
	if err != nil {
		return fmt.Errorf("catalog sync: %w", err)
	}

	log.Printf("Catalog sync: replaced mirror with %d mangas, %d chapters, %d genres, %d authors, %d releases",
		len(rows.mangas), len(rows.chapters), len(rows.genres), len(rows.authors), len(rows.releases))
	return nil
}

// flatRows is the snapshot pulled apart into per-table slices with junction
// rows deduplicated.
type flatRows struct {
	mangas       []entities.Manga
	chapters     []entities.Chapter
	genres       []entities.Genre
	authors      []entities.Author
	mangaGenres  []entities.MangaGenre
	mangaAuthors []entities.MangaAuthor
	releases     []entities.AppRelease
}

func flatten(snapshot []remote.MangaData, releases []remote.ReleaseData) flatRows {
	var rows flatRows
	seenGenres := make(map[int64]bool)
	seenAuthors := make(map[int64]bool)
	seenMangaGenres := make(map[[2]int64]bool)
	type authorKey struct {
		mangaID, authorID int64
		role              string
	}
	seenMangaAuthors := make(map[authorKey]bool)

	for _, m := range snapshot {
		rows.mangas = append(rows.mangas, entities.Manga{
			ID:            m.MangaID,
			Title:         m.Title,
			Description:   m.Description,
			CoverImageURL: m.CoverImageURL,
			Status:        entities.MangaStatus(m.Status),
			Color:         m.Color,
			Rating:        m.Rating,
			Views:         m.Views,
			MalURL:        m.MalURL,
			UpdatedAt:     m.UpdatedAt,
		})

		for _, ch := range m.Chapters {
			rows.chapters = append(rows.chapters, entities.Chapter{
				ID:        ch.ChapterID,
				MangaID:   m.MangaID,
				Num:       ch.ChapterNum,
				Name:      ch.Name,
				CreatedAt: ch.CreatedAt,
			})
		}

		for _, g := range m.Genres {
			if !seenGenres[g.GenreID] {
				seenGenres[g.GenreID] = true
				rows.genres = append(rows.genres, entities.Genre{ID: g.GenreID, Genre: g.Genre})
			}
			pair := [2]int64{m.MangaID, g.GenreID}
			if !seenMangaGenres[pair] {
				seenMangaGenres[pair] = true
				rows.mangaGenres = append(rows.mangaGenres, entities.MangaGenre{
					MangaID: m.MangaID,
					GenreID: g.GenreID,
				})
			}
		}

		for _, a := range m.Authors {
			if !seenAuthors[a.AuthorID] {
				seenAuthors[a.AuthorID] = true
				rows.authors = append(rows.authors, entities.Author{ID: a.AuthorID, Name: a.Name, Role: a.Role})
			}
			key := authorKey{m.MangaID, a.AuthorID, a.Role}
			if !seenMangaAuthors[key] {
				seenMangaAuthors[key] = true
				rows.mangaAuthors = append(rows.mangaAuthors, entities.MangaAuthor{
					MangaID:  m.MangaID,
					AuthorID: a.AuthorID,
					Role:     a.Role,
				})
			}
		}
	}

	for _, rel := range releases {
		rows.releases = append(rows.releases, entities.AppRelease{
			ID:          rel.ReleaseID,
			Version:     rel.Version,
			URL:         rel.URL,
			Description: rel.Description,
			CreatedAt:   rel.CreatedAt,
		})
	}
	return rows
}

// replace deletes the catalog tables and bulk-inserts the snapshot. Deleting
// mangas cascades chapters and the junction rows; genres and authors are
// cleared explicitly to drop entries no longer referenced.
func (e *Engine) replace(db *gorm.DB, rows flatRows) error {
	all := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{
		&entities.Manga{},
		&entities.Genre{},
		&entities.Author{},
		&entities.AppRelease{},
	} {
		if err := all.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}

	batch := e.cfg.BatchSize
	inserts := []struct {
		name string
		rows any
		len  int
	}{
		{"mangas", rows.mangas, len(rows.mangas)},
		{"genres", rows.genres, len(rows.genres)},
		{"authors", rows.authors, len(rows.authors)},
		{"chapters", rows.chapters, len(rows.chapters)},
		{"manga genres", rows.mangaGenres, len(rows.mangaGenres)},
		{"manga authors", rows.mangaAuthors, len(rows.mangaAuthors)},
		{"releases", rows.releases, len(rows.releases)},
	}
	for _, ins := range inserts {
		if ins.len == 0 {
			continue
		}
		if err := db.Omit(clause.Associations).CreateInBatches(ins.rows, batch).Error; err != nil {
			return fmt.Errorf("insert %s: %w", ins.name, err)
		}
	}
	return nil
}
