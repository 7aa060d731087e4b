package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tientran/mangamirror/internal/catalogsync"
	"github.com/tientran/mangamirror/internal/config"
	"github.com/tientran/mangamirror/internal/database"
	"github.com/tientran/mangamirror/internal/database/appinfo"
	"github.com/tientran/mangamirror/internal/database/catalog"
	"github.com/tientran/mangamirror/internal/database/reading"
	"github.com/tientran/mangamirror/internal/database/refresh"
	"github.com/tientran/mangamirror/internal/entities"
	http_controllers "github.com/tientran/mangamirror/internal/http"
	"github.com/tientran/mangamirror/internal/remote"
	"github.com/tientran/mangamirror/internal/scheduler"
	"github.com/tientran/mangamirror/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down within
// the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the engine together and serves it.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting MangaMirror v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Migration failure is non-fatal: the app runs degraded on whatever
	// schema exists, and the query layer maps the fallout to empty results.
	if err := db.Migrate(database.SeedConfig{
		ClientRefreshCycleSeconds: cfg.Refresh.ClientCycleSeconds,
		ServerRefreshCycleSeconds: cfg.Refresh.ServerCycleSeconds,
	}); err != nil {
		log.Printf("WARNING: migration failed, continuing degraded: %v", err)
	}

	catalogRepo := catalog.NewRepository(db.DB)
	readingRepo := reading.NewRepository(db.DB)
	appInfoRepo := appinfo.NewRepository(db.DB)
	refreshGate := refresh.NewRepository(db.DB)

	remoteClient := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Timeout)

	syncEngine := catalogsync.NewEngine(db.DB, remoteClient, catalogsync.Config{
		Atomic:    cfg.Sync.Atomic,
		BatchSize: cfg.Sync.BatchSize,
	})

	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		})
		if err != nil {
			log.Printf("WARNING: task queue unavailable, view counters will not sync: %v", err)
		} else {
			taskClient.Register(tasks.NewIncrementViewsQueue(remoteClient))
			var taskCtx context.Context
			taskCtx, taskCtxCancel = context.WithCancel(context.Background())
			go taskClient.Start(taskCtx)
		}
	}

	refreshScheduler := scheduler.NewCatalogRefreshScheduler(refreshGate, syncEngine, cfg.Refresh.Schedule)
	if err := refreshScheduler.Start(context.Background()); err != nil {
		log.Printf("WARNING: background refresh disabled: %v", err)
	}

	// Initial bootstrap: pull a catalog once per process start if the client
	// gate allows it, so a fresh install is not empty until the first tick.
	bootState := catalogsync.NewBootState()
	go func() {
		if err := syncEngine.EnsureCatalog(context.Background(), bootState, refreshGate, entities.RefreshSourceClient); err != nil {
			log.Printf("Initial catalog bootstrap failed: %v", err)
		}
	}()

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		DB:          db,
		CatalogRepo: catalogRepo,
		ReadingRepo: readingRepo,
		AppInfoRepo: appInfoRepo,
		RefreshGate: refreshGate,
		SyncEngine:  syncEngine,
		Remote:      remoteClient,
		TaskClient:  taskClient,
		Version:     version,
	})

	Serve(router, cfg, func(ctx context.Context) {
		refreshScheduler.Stop()
		if taskClient != nil {
			taskClient.Stop(ctx)
			if taskCtxCancel != nil {
				taskCtxCancel()
			}
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task queue: %v", err)
			}
		}
	})
}

// RunSync performs a one-shot catalog refresh from the CLI, bypassing the
// HTTP server but not the refresh gate.
func RunSync(cfg *config.Config) error {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(database.SeedConfig{
		ClientRefreshCycleSeconds: cfg.Refresh.ClientCycleSeconds,
		ServerRefreshCycleSeconds: cfg.Refresh.ServerCycleSeconds,
	}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	gate := refresh.NewRepository(db.DB)
	if !gate.ShouldRefresh(entities.RefreshSourceClient) {
		return fmt.Errorf("refresh not due, next attempt allowed in %ds",
			gate.SecondsUntilNextRefresh(entities.RefreshSourceClient))
	}

	remoteClient := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Timeout)
	engine := catalogsync.NewEngine(db.DB, remoteClient, catalogsync.Config{
		Atomic:    cfg.Sync.Atomic,
		BatchSize: cfg.Sync.BatchSize,
	})
	return engine.UpdateCatalog(context.Background())
}
