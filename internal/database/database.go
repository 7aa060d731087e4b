package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tientran/mangamirror/internal/entities"
)

// SchemaVersion is written to app_info under the "version" key on first
// migration.
const SchemaVersion = "1"

// DefaultReadMode seeds the read_mode preference if the device has none yet.
const DefaultReadMode = "webtoon"

// SeedConfig carries the per-source refresh cycle lengths applied on every
// migration. Cycle lengths are upserted; last_refreshed_at is preserved.
type SeedConfig struct {
	ClientRefreshCycleSeconds int64
	ServerRefreshCycleSeconds int64
}

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Printf("Database opened at %s", dbPath)
	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates all tables and indexes if absent and upserts the seed rows.
// Safe to call on every process start; never drops existing data. A failure
// is reported to the caller but leaves whatever schema did get created in
// place so the app can run degraded.
func (d *Database) Migrate(seed SeedConfig) error {
	err := d.DB.AutoMigrate(
		&entities.Manga{},
		&entities.Chapter{},
		&entities.Genre{},
		&entities.Author{},
		&entities.MangaGenre{},
		&entities.MangaAuthor{},
		&entities.AppRelease{},
		&entities.UpdateHistory{},
		&entities.ReadingStatus{},
		&entities.ReadingHistory{},
		&entities.AppInfo{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := d.seedAppInfo(); err != nil {
		return fmt.Errorf("failed to seed app info: %w", err)
	}
	if err := d.seedRefreshSources(seed); err != nil {
		return fmt.Errorf("failed to seed refresh sources: %w", err)
	}
	return nil
}

// seedAppInfo inserts the version marker and read-mode preference only when
// absent, so user-changed values survive restarts.
func (d *Database) seedAppInfo() error {
	defaults := []entities.AppInfo{
		{Name: entities.AppInfoKeyVersion, Value: SchemaVersion},
		{Name: entities.AppInfoKeyReadMode, Value: DefaultReadMode},
	}
	for _, info := range defaults {
		var existing entities.AppInfo
		result := d.DB.Where("name = ?", info.Name).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := d.DB.Create(&info).Error; err != nil {
				return fmt.Errorf("failed to create app info %s: %w", info.Name, err)
			}
		} else if result.Error != nil {
			return result.Error
		}
	}
	return nil
}

// seedRefreshSources upserts the two refresh records. Only refresh_cycle is
// written on an existing row: last_refreshed_at belongs to the gate.
func (d *Database) seedRefreshSources(seed SeedConfig) error {
	sources := []entities.UpdateHistory{
		{Name: entities.RefreshSourceServer, RefreshCycle: seed.ServerRefreshCycleSeconds},
		{Name: entities.RefreshSourceClient, RefreshCycle: seed.ClientRefreshCycleSeconds},
	}
	for _, source := range sources {
		var existing entities.UpdateHistory
		result := d.DB.Where("name = ?", source.Name).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := d.DB.Create(&source).Error; err != nil {
				return fmt.Errorf("failed to create refresh source %s: %w", source.Name, err)
			}
			log.Printf("Created refresh source %s (cycle %ds)", source.Name, source.RefreshCycle)
		} else if result.Error != nil {
			return result.Error
		} else if existing.RefreshCycle != source.RefreshCycle {
			err := d.DB.Model(&entities.UpdateHistory{}).
				Where("name = ?", source.Name).
				Update("refresh_cycle", source.RefreshCycle).Error
			if err != nil {
				return fmt.Errorf("failed to update refresh source %s: %w", source.Name, err)
			}
		}
	}
	return nil
}

// clearableTables maps external table names to their models for ClearTable.
var clearableTables = map[string]any{
	"mangas":          &entities.Manga{},
	"chapters":        &entities.Chapter{},
	"genres":          &entities.Genre{},
	"authors":         &entities.Author{},
	"manga_genres":    &entities.MangaGenre{},
	"manga_authors":   &entities.MangaAuthor{},
	"app_releases":    &entities.AppRelease{},
	"reading_status":  &entities.ReadingStatus{},
	"reading_history": &entities.ReadingHistory{},
	"app_info":        &entities.AppInfo{},
}

// ClearTable deletes every row of one of the known tables.
func (d *Database) ClearTable(name string) error {
	model, ok := clearableTables[name]
	if !ok {
		return fmt.Errorf("unknown table %q", name)
	}
	return d.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error
}
