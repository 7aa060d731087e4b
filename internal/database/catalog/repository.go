// Package catalog is the read-only query layer over the local mirror.
//
// Every list accessor takes (offset, limit), orders deterministically (except
// the random sample) and returns an empty slice when the underlying query
// fails; the failure is logged. Callers never branch on error versus empty:
// the worst user-visible outcome of a storage fault is an empty list.
package catalog

import (
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/tientran/mangamirror/internal/entities"
)

// Repository handles all catalog read queries.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) listMangas(query *gorm.DB) []entities.Manga {
	var mangas []entities.Manga
	if err := query.Find(&mangas).Error; err != nil {
		log.Printf("Catalog query failed: %v", err)
		return []entities.Manga{}
	}
	return mangas
}

// GetMangasByUpdateTime lists mangas most recently updated first.
func (r *Repository) GetMangasByUpdateTime(offset, limit int) []entities.Manga {
	return r.listMangas(r.db.
		Order("updated_at DESC").
		Offset(offset).Limit(limit))
}

// GetMangasByViews lists mangas most viewed first.
func (r *Repository) GetMangasByViews(offset, limit int) []entities.Manga {
	return r.listMangas(r.db.
		Order("views DESC").
		Offset(offset).Limit(limit))
}

// GetMangasByGenre lists mangas carrying a genre, most viewed first.
func (r *Repository) GetMangasByGenre(genreID int64, offset, limit int) []entities.Manga {
	return r.listMangas(r.db.
		Joins("JOIN manga_genres ON manga_genres.manga_id = mangas.manga_id").
		Where("manga_genres.genre_id = ?", genreID).
		Order("mangas.views DESC").
		Offset(offset).Limit(limit))
}

// GetMangasByAuthor lists an author's mangas, most recently updated first.
func (r *Repository) GetMangasByAuthor(authorID int64, offset, limit int) []entities.Manga {
	return r.listMangas(r.db.
		Distinct("mangas.*").
		Joins("JOIN manga_authors ON manga_authors.manga_id = mangas.manga_id").
		Where("manga_authors.author_id = ?", authorID).
		Order("mangas.updated_at DESC").
		Offset(offset).Limit(limit))
}

// SearchMangasByTitle does a case-insensitive substring match on the title.
func (r *Repository) SearchMangasByTitle(term string, offset, limit int) []entities.Manga {
	pattern := "%" + strings.ToLower(term) + "%"
	return r.listMangas(r.db.
		Where("LOWER(title) LIKE ?", pattern).
		Order("updated_at DESC").
		Offset(offset).Limit(limit))
}

// GetRandomMangas returns up to limit rows drawn freshly on every call.
// Repeated calls return different rows; that is the point of the shuffle
// view, so callers must not expect stable results.
func (r *Repository) GetRandomMangas(limit int) []entities.Manga {
	return r.listMangas(r.db.
		Order("RANDOM()").
		Limit(limit))
}

// GetMangaByID returns one manga with its genres and authors attached, or
// nil when absent or unreadable.
func (r *Repository) GetMangaByID(id int64) *entities.Manga {
	var manga entities.Manga
	err := r.db.Where("manga_id = ?", id).First(&manga).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		log.Printf("Catalog query for manga %d failed: %v", id, err)
		return nil
	}

	if err := r.db.
		Joins("JOIN manga_genres ON manga_genres.genre_id = genres.genre_id").
		Where("manga_genres.manga_id = ?", id).
		Order("genres.genre ASC").
		Find(&manga.Genres).Error; err != nil {
		log.Printf("Catalog genre lookup for manga %d failed: %v", id, err)
	}
	if err := r.db.
		Joins("JOIN manga_authors ON manga_authors.author_id = authors.author_id").
		Where("manga_authors.manga_id = ?", id).
		Order("authors.name ASC").
		Find(&manga.Authors).Error; err != nil {
		log.Printf("Catalog author lookup for manga %d failed: %v", id, err)
	}
	return &manga
}

// GetChapters lists a manga's chapters ordered by chapter number.
func (r *Repository) GetChapters(mangaID int64) []entities.Chapter {
	var chapters []entities.Chapter
	err := r.db.
		Where("manga_id = ?", mangaID).
		Order("chapter_num ASC").
		Find(&chapters).Error
	if err != nil {
		log.Printf("Catalog chapter query for manga %d failed: %v", mangaID, err)
		return []entities.Chapter{}
	}
	return chapters
}

// GetGenres lists all genres alphabetically.
func (r *Repository) GetGenres() []entities.Genre {
	var genres []entities.Genre
	if err := r.db.Order("genre ASC").Find(&genres).Error; err != nil {
		log.Printf("Catalog genre query failed: %v", err)
		return []entities.Genre{}
	}
	return genres
}

// GetAuthors lists all authors alphabetically.
func (r *Repository) GetAuthors() []entities.Author {
	var authors []entities.Author
	if err := r.db.Order("name ASC").Find(&authors).Error; err != nil {
		log.Printf("Catalog author query failed: %v", err)
		return []entities.Author{}
	}
	return authors
}

// GetReleaseNotes lists release notes newest first.
func (r *Repository) GetReleaseNotes(offset, limit int) []entities.AppRelease {
	var releases []entities.AppRelease
	err := r.db.
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&releases).Error
	if err != nil {
		log.Printf("Catalog release query failed: %v", err)
		return []entities.AppRelease{}
	}
	return releases
}

// GetLatestRelease returns the newest release note, or nil when there is
// none.
func (r *Repository) GetLatestRelease() *entities.AppRelease {
	var release entities.AppRelease
	err := r.db.Order("created_at DESC").First(&release).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		log.Printf("Catalog release query failed: %v", err)
		return nil
	}
	return &release
}
