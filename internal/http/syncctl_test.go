package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tientran/mangamirror/internal/catalogsync"
	"github.com/tientran/mangamirror/internal/database/reading"
	"github.com/tientran/mangamirror/internal/database/refresh"
	"github.com/tientran/mangamirror/internal/entities"
	"github.com/tientran/mangamirror/internal/remote"
)

type staticFetcher struct {
	snapshot []remote.MangaData
}

func (f *staticFetcher) FetchCatalogSnapshot(ctx context.Context) ([]remote.MangaData, error) {
	return f.snapshot, nil
}

func (f *staticFetcher) FetchReleaseNotes(ctx context.Context) ([]remote.ReleaseData, error) {
	return nil, nil
}

func setupSyncTest(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&entities.Manga{},
		&entities.Chapter{},
		&entities.Genre{},
		&entities.Author{},
		&entities.MangaGenre{},
		&entities.MangaAuthor{},
		&entities.AppRelease{},
		&entities.ReadingStatus{},
		&entities.ReadingHistory{},
		&entities.UpdateHistory{},
	))
	return db
}

func TestRefresh_ThrottledReportsRetryAfter(t *testing.T) {
	db := setupSyncTest(t)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-10 * time.Second)
	require.NoError(t, db.Create(&entities.UpdateHistory{
		Name:            entities.RefreshSourceClient,
		RefreshCycle:    42,
		LastRefreshedAt: &last,
	}).Error)

	gate := refresh.NewRepositoryWithClock(db, func() time.Time { return now })
	engine := catalogsync.NewEngine(db, &staticFetcher{}, catalogsync.Config{})
	ctrl := NewSyncController(gate, engine, nil, reading.NewRepository(db))

	router := gin.New()
	router.POST("/api/refresh", ctrl.Refresh)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(32), body["retry_after_seconds"])
}

func TestRefresh_DueRunsSyncAndClaimsGate(t *testing.T) {
	db := setupSyncTest(t)

	require.NoError(t, db.Create(&entities.UpdateHistory{
		Name:         entities.RefreshSourceClient,
		RefreshCycle: 42,
	}).Error)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	gate := refresh.NewRepositoryWithClock(db, func() time.Time { return now })
	fetcher := &staticFetcher{snapshot: []remote.MangaData{
		{MangaID: 1, Title: "Alpha", UpdatedAt: now},
	}}
	engine := catalogsync.NewEngine(db, fetcher, catalogsync.Config{})
	ctrl := NewSyncController(gate, engine, nil, reading.NewRepository(db))

	router := gin.New()
	router.POST("/api/refresh", ctrl.Refresh)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&entities.Manga{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// The first call claimed the gate, so an immediate retry is throttled.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRefresh_EmptySnapshotIsNotAnError(t *testing.T) {
	db := setupSyncTest(t)

	require.NoError(t, db.Create(&entities.UpdateHistory{
		Name:         entities.RefreshSourceClient,
		RefreshCycle: 42,
	}).Error)
	require.NoError(t, db.Create(&entities.Manga{ID: 1, Title: "Alpha", UpdatedAt: time.Now()}).Error)

	gate := refresh.NewRepository(db)
	engine := catalogsync.NewEngine(db, &staticFetcher{}, catalogsync.Config{})
	ctrl := NewSyncController(gate, engine, nil, reading.NewRepository(db))

	router := gin.New()
	router.POST("/api/refresh", ctrl.Refresh)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&entities.Manga{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLogout_ClearsStatusKeepsHistory(t *testing.T) {
	db := setupSyncTest(t)

	require.NoError(t, db.Create(&entities.ReadingStatus{MangaID: 1, Status: entities.ReadingStatusReading, UpdatedAt: time.Now()}).Error)
	require.NoError(t, db.Create(&entities.ReadingHistory{MangaID: 1, ChapterID: 11, ChapterNum: 1, ReadAt: time.Now()}).Error)

	ctrl := NewSyncController(refresh.NewRepository(db), nil, nil, reading.NewRepository(db))
	router := gin.New()
	router.POST("/api/account/logout", ctrl.Logout)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/account/logout", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var statusCount, historyCount int64
	require.NoError(t, db.Model(&entities.ReadingStatus{}).Count(&statusCount).Error)
	require.NoError(t, db.Model(&entities.ReadingHistory{}).Count(&historyCount).Error)
	assert.Equal(t, int64(0), statusCount)
	assert.Equal(t, int64(1), historyCount)
}
