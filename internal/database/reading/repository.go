// Package reading is the device-local read-tracking subsystem: which
// chapters were opened and when, and the user's per-title reading status.
// Nothing here touches the network; the catalog sync never touches these
// tables.
package reading

import (
	"log"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tientran/mangamirror/internal/entities"
)

// HistoryLogEntry is one title in the reading-history screen: every chapter
// number the device has opened, plus when the title was last read.
type HistoryLogEntry struct {
	MangaID       int64     `json:"manga_id"`
	Title         string    `json:"title"`
	CoverImageURL string    `json:"cover_image_url"`
	ChapterNums   []float64 `json:"chapter_nums"`
	LastReadAt    time.Time `json:"last_read_at"`
}

// Repository handles all read-tracking database operations.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository creates a new read-tracking repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// NewRepositoryWithClock creates a repository with an injected clock.
func NewRepositoryWithClock(db *gorm.DB, now func() time.Time) *Repository {
	return &Repository{db: db, now: now}
}

// UpsertReadingHistory records that a chapter was opened. A repeat read of
// the same chapter bumps readed_at rather than adding a row.
func (r *Repository) UpsertReadingHistory(mangaID, chapterID int64, chapterNum float64) error {
	entry := entities.ReadingHistory{
		MangaID:    mangaID,
		ChapterID:  chapterID,
		ChapterNum: chapterNum,
		ReadAt:     r.now(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "manga_id"}, {Name: "chapter_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"chapter_num": entry.ChapterNum,
			"readed_at":   entry.ReadAt,
		}),
	}).Create(&entry).Error
}

// GetReadChapterIDs returns the set of chapters of one title the device has
// opened, for marking the chapter grid. Empty on error.
func (r *Repository) GetReadChapterIDs(mangaID int64) map[int64]bool {
	var ids []int64
	err := r.db.Model(&entities.ReadingHistory{}).
		Where("manga_id = ?", mangaID).
		Pluck("chapter_id", &ids).Error
	if err != nil {
		log.Printf("Read-chapter query for manga %d failed: %v", mangaID, err)
		return map[int64]bool{}
	}
	read := make(map[int64]bool, len(ids))
	for _, id := range ids {
		read[id] = true
	}
	return read
}

type historyRow struct {
	MangaID       int64
	ChapterNum    float64
	ReadAt        time.Time
	Title         string
	CoverImageURL string
}

// GetUserReadHistory groups history rows per title with all read chapter
// numbers and the most recent read time, newest group first, paginated on
// groups. History of a title that no longer exists in the mirror joins away
// silently; it reappears if a later sync brings the title back.
func (r *Repository) GetUserReadHistory(offset, limit int) []HistoryLogEntry {
	var rows []historyRow
	err := r.db.Table("reading_history").
		Select("reading_history.manga_id, reading_history.chapter_num, reading_history.readed_at AS read_at, mangas.title, mangas.cover_image_url").
		Joins("JOIN mangas ON mangas.manga_id = reading_history.manga_id").
		Order("reading_history.readed_at DESC").
		Scan(&rows).Error
	if err != nil {
		log.Printf("Read-history query failed: %v", err)
		return []HistoryLogEntry{}
	}

	// Rows arrive newest first, so group order by first occurrence is the
	// required most-recent-read order.
	byManga := make(map[int64]*HistoryLogEntry, len(rows))
	var ordered []*HistoryLogEntry
	for _, row := range rows {
		entry, ok := byManga[row.MangaID]
		if !ok {
			entry = &HistoryLogEntry{
				MangaID:       row.MangaID,
				Title:         row.Title,
				CoverImageURL: row.CoverImageURL,
				LastReadAt:    row.ReadAt,
			}
			byManga[row.MangaID] = entry
			ordered = append(ordered, entry)
		}
		entry.ChapterNums = append(entry.ChapterNums, row.ChapterNum)
	}

	if offset >= len(ordered) {
		return []HistoryLogEntry{}
	}
	end := offset + limit
	if limit <= 0 || end > len(ordered) {
		end = len(ordered)
	}

	page := make([]HistoryLogEntry, 0, end-offset)
	for _, entry := range ordered[offset:end] {
		sort.Float64s(entry.ChapterNums)
		page = append(page, *entry)
	}
	return page
}

// SetReadingStatus creates or updates the user's status for one title.
func (r *Repository) SetReadingStatus(mangaID int64, status string) error {
	var existing entities.ReadingStatus
	result := r.db.Where("manga_id = ?", mangaID).First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		entry := entities.ReadingStatus{
			MangaID:   mangaID,
			Status:    status,
			UpdatedAt: r.now(),
		}
		return r.db.Create(&entry).Error
	} else if result.Error != nil {
		return result.Error
	}

	existing.Status = status
	existing.UpdatedAt = r.now()
	return r.db.Save(&existing).Error
}

// GetReadingStatus returns the status for one title, or nil when the user
// never set one.
func (r *Repository) GetReadingStatus(mangaID int64) (*entities.ReadingStatus, error) {
	var status entities.ReadingStatus
	err := r.db.Where("manga_id = ?", mangaID).First(&status).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// GetMangasByReadingStatus lists titles the user filed under one status,
// most recently touched first. Empty on error.
func (r *Repository) GetMangasByReadingStatus(status string, offset, limit int) []entities.Manga {
	var mangas []entities.Manga
	err := r.db.Model(&entities.Manga{}).
		Joins("JOIN reading_status ON reading_status.manga_id = mangas.manga_id").
		Where("reading_status.status = ?", status).
		Order("reading_status.updated_at DESC").
		Offset(offset).Limit(limit).
		Find(&mangas).Error
	if err != nil {
		log.Printf("Reading-status query for %q failed: %v", status, err)
		return []entities.Manga{}
	}
	return mangas
}

// BulkImportReadingStatus hydrates local status rows from the remote
// account's saved state after sign-in. Insert-or-replace: the remote wins on
// conflict at import time only.
func (r *Repository) BulkImportReadingStatus(entries []entities.ReadingStatus) error {
	if len(entries) == 0 {
		return nil
	}
	now := r.now()
	for i := range entries {
		if entries[i].UpdatedAt.IsZero() {
			entries[i].UpdatedAt = now
		}
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "manga_id"}},
		UpdateAll: true,
	}).CreateInBatches(entries, 100).Error
}

// ClearReadingStatus deletes every status row. Called on logout; reading
// history is never cleared automatically.
func (r *Repository) ClearReadingStatus() error {
	return r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&entities.ReadingStatus{}).Error
}
