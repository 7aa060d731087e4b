package reading

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tientran/mangamirror/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_reading_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.Manga{},
		&entities.Chapter{},
		&entities.ReadingStatus{},
		&entities.ReadingHistory{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, repo, cleanup
}

func createTestManga(t *testing.T, db *gorm.DB, id int64, title string) {
	require.NoError(t, db.Create(&entities.Manga{
		ID:        id,
		Title:     title,
		Status:    entities.MangaStatusOnGoing,
		UpdatedAt: time.Now(),
	}).Error)
}

func repoWithClock(db *gorm.DB, at time.Time) *Repository {
	return NewRepositoryWithClock(db, func() time.Time { return at })
}

func TestUpsertReadingHistory_RepeatReadBumpsTimestamp(t *testing.T) {
	db, _, cleanup := setupTestDB(t)
	defer cleanup()

	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	require.NoError(t, repoWithClock(db, first).UpsertReadingHistory(1, 1, 1))
	require.NoError(t, repoWithClock(db, second).UpsertReadingHistory(1, 1, 1))

	var rows []entities.ReadingHistory
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.WithinDuration(t, second, rows[0].ReadAt, time.Second)
}

func TestGetReadChapterIDs(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.UpsertReadingHistory(1, 11, 1))
	require.NoError(t, repo.UpsertReadingHistory(1, 12, 2))
	require.NoError(t, repo.UpsertReadingHistory(2, 21, 1))

	read := repo.GetReadChapterIDs(1)
	assert.Len(t, read, 2)
	assert.True(t, read[11])
	assert.True(t, read[12])
	assert.False(t, read[21])
}

func TestGetUserReadHistory_GroupsAndOrders(t *testing.T) {
	db, _, cleanup := setupTestDB(t)
	defer cleanup()

	createTestManga(t, db, 1, "First")
	createTestManga(t, db, 2, "Second")

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repoWithClock(db, base.Add(10*time.Second)).UpsertReadingHistory(1, 11, 1))
	require.NoError(t, repoWithClock(db, base.Add(20*time.Second)).UpsertReadingHistory(1, 12, 2))
	require.NoError(t, repoWithClock(db, base.Add(15*time.Second)).UpsertReadingHistory(2, 21, 1))

	history := NewRepository(db).GetUserReadHistory(0, 10)
	require.Len(t, history, 2)

	assert.Equal(t, int64(1), history[0].MangaID)
	assert.Equal(t, "First", history[0].Title)
	assert.Equal(t, []float64{1, 2}, history[0].ChapterNums)
	assert.WithinDuration(t, base.Add(20*time.Second), history[0].LastReadAt, time.Second)

	assert.Equal(t, int64(2), history[1].MangaID)
	assert.Equal(t, []float64{1}, history[1].ChapterNums)
}

func TestGetUserReadHistory_OrphanedHistoryDropsOut(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	createTestManga(t, db, 1, "Kept")
	require.NoError(t, repo.UpsertReadingHistory(1, 11, 1))
	// Title 99 was dropped from the mirror by a sync; its history stays in
	// the table but joins away from the view.
	require.NoError(t, repo.UpsertReadingHistory(99, 991, 1))

	history := repo.GetUserReadHistory(0, 10)
	require.Len(t, history, 1)
	assert.Equal(t, int64(1), history[0].MangaID)

	var raw int64
	require.NoError(t, db.Model(&entities.ReadingHistory{}).Count(&raw).Error)
	assert.Equal(t, int64(2), raw)
}

func TestGetUserReadHistory_Pagination(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := int64(1); i <= 5; i++ {
		createTestManga(t, db, i, string(rune('A'+i-1)))
		require.NoError(t, repoWithClock(db, base.Add(time.Duration(i)*time.Minute)).
			UpsertReadingHistory(i, i*10, 1))
	}

	full := repo.GetUserReadHistory(0, 5)
	require.Len(t, full, 5)

	var pages []HistoryLogEntry
	for offset := 0; offset < 5; offset += 2 {
		pages = append(pages, repo.GetUserReadHistory(offset, 2)...)
	}
	require.Len(t, pages, 5)
	for i := range full {
		assert.Equal(t, full[i].MangaID, pages[i].MangaID)
	}

	assert.Empty(t, repo.GetUserReadHistory(10, 2))
}

func TestReadingStatus_SetAndGet(t *testing.T) {
	_, repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.SetReadingStatus(1, entities.ReadingStatusReading))

	status, err := repo.GetReadingStatus(1)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, entities.ReadingStatusReading, status.Status)

	// A never-set title reports nil, not an error
	none, err := repo.GetReadingStatus(2)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestReadingStatus_UpdateReplacesValue(t *testing.T) {
	db, _, cleanup := setupTestDB(t)
	defer cleanup()

	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	require.NoError(t, repoWithClock(db, first).SetReadingStatus(1, entities.ReadingStatusPlanToRead))
	require.NoError(t, repoWithClock(db, second).SetReadingStatus(1, entities.ReadingStatusCompleted))

	var rows []entities.ReadingStatus
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, entities.ReadingStatusCompleted, rows[0].Status)
	assert.WithinDuration(t, second, rows[0].UpdatedAt, time.Second)
}

func TestGetMangasByReadingStatus(t *testing.T) {
	db, _, cleanup := setupTestDB(t)
	defer cleanup()

	createTestManga(t, db, 1, "A")
	createTestManga(t, db, 2, "B")
	createTestManga(t, db, 3, "C")

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repoWithClock(db, base).SetReadingStatus(1, entities.ReadingStatusReading))
	require.NoError(t, repoWithClock(db, base.Add(time.Minute)).SetReadingStatus(2, entities.ReadingStatusReading))
	require.NoError(t, repoWithClock(db, base).SetReadingStatus(3, entities.ReadingStatusDropped))

	mangas := NewRepository(db).GetMangasByReadingStatus(entities.ReadingStatusReading, 0, 10)
	require.Len(t, mangas, 2)
	assert.Equal(t, "B", mangas[0].Title)
	assert.Equal(t, "A", mangas[1].Title)
}

func TestBulkImportReadingStatus_RemoteWins(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.SetReadingStatus(1, entities.ReadingStatusDropped))

	err := repo.BulkImportReadingStatus([]entities.ReadingStatus{
		{MangaID: 1, Status: entities.ReadingStatusReading},
		{MangaID: 2, Status: entities.ReadingStatusCompleted},
	})
	require.NoError(t, err)

	var rows []entities.ReadingStatus
	require.NoError(t, db.Order("manga_id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, entities.ReadingStatusReading, rows[0].Status)
	assert.Equal(t, entities.ReadingStatusCompleted, rows[1].Status)
}

func TestBulkImportReadingStatus_KeepsRemoteTimestamps(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	remoteAt := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	err := repo.BulkImportReadingStatus([]entities.ReadingStatus{
		{MangaID: 1, Status: entities.ReadingStatusReading, UpdatedAt: remoteAt},
	})
	require.NoError(t, err)

	var row entities.ReadingStatus
	require.NoError(t, db.Where("manga_id = ?", 1).First(&row).Error)
	assert.WithinDuration(t, remoteAt, row.UpdatedAt, time.Second)
}

func TestClearReadingStatus_KeepsHistory(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.SetReadingStatus(1, entities.ReadingStatusReading))
	require.NoError(t, repo.UpsertReadingHistory(1, 11, 1))

	require.NoError(t, repo.ClearReadingStatus())

	var statusCount, historyCount int64
	require.NoError(t, db.Model(&entities.ReadingStatus{}).Count(&statusCount).Error)
	require.NoError(t, db.Model(&entities.ReadingHistory{}).Count(&historyCount).Error)
	assert.Equal(t, int64(0), statusCount)
	assert.Equal(t, int64(1), historyCount)
}
