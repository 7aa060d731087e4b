package http

import (
	"github.com/gin-gonic/gin"

	"github.com/tientran/mangamirror/internal/catalogsync"
	"github.com/tientran/mangamirror/internal/database"
	"github.com/tientran/mangamirror/internal/database/appinfo"
	"github.com/tientran/mangamirror/internal/database/catalog"
	"github.com/tientran/mangamirror/internal/database/reading"
	"github.com/tientran/mangamirror/internal/database/refresh"
	"github.com/tientran/mangamirror/internal/remote"
	"github.com/tientran/mangamirror/internal/tasks"
)

// RouterConfig receives all handler dependencies, keeping the router
// testable and the parameter count sane.
type RouterConfig struct {
	DB          *database.Database
	CatalogRepo *catalog.Repository
	ReadingRepo *reading.Repository
	AppInfoRepo *appinfo.Repository
	RefreshGate *refresh.Repository
	SyncEngine  *catalogsync.Engine
	Remote      *remote.Client
	TaskClient  *tasks.Client // optional
	Version     string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	healthCtrl := NewHealthController(cfg.DB, cfg.Version)
	catalogCtrl := NewCatalogController(cfg.CatalogRepo)
	readingCtrl := NewReadingController(cfg.ReadingRepo, cfg.TaskClient)
	syncCtrl := NewSyncController(cfg.RefreshGate, cfg.SyncEngine, cfg.Remote, cfg.ReadingRepo)
	appInfoCtrl := NewAppInfoController(cfg.AppInfoRepo)

	router.GET("/health", healthCtrl.Status)

	api := router.Group("/api")
	{
		api.GET("/mangas", catalogCtrl.ListMangas)
		api.GET("/mangas/random", catalogCtrl.RandomMangas)
		api.GET("/mangas/search", catalogCtrl.SearchMangas)
		api.GET("/mangas/:id", catalogCtrl.GetManga)
		api.GET("/mangas/:id/chapters", catalogCtrl.GetChapters)
		api.GET("/mangas/:id/read-chapters", readingCtrl.ReadChapters)
		api.GET("/mangas/:id/status", readingCtrl.GetStatus)
		api.PUT("/mangas/:id/status", readingCtrl.SetStatus)

		api.GET("/genres", catalogCtrl.ListGenres)
		api.GET("/genres/:id/mangas", catalogCtrl.MangasByGenre)
		api.GET("/authors", catalogCtrl.ListAuthors)
		api.GET("/authors/:id/mangas", catalogCtrl.MangasByAuthor)

		api.GET("/releases", catalogCtrl.ListReleases)
		api.GET("/releases/latest", catalogCtrl.LatestRelease)

		api.POST("/history", readingCtrl.RecordRead)
		api.GET("/history", readingCtrl.History)
		api.GET("/library", readingCtrl.Library)

		api.POST("/refresh", syncCtrl.Refresh)
		api.POST("/account/import-status", syncCtrl.ImportStatus)
		api.POST("/account/logout", syncCtrl.Logout)

		api.GET("/app-info/:key", appInfoCtrl.Get)
		api.PUT("/app-info/:key", appInfoCtrl.Set)
	}

	return router
}
