package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Remote
		Refresh
		Sync
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Remote struct {
		BaseURL string
		Timeout time.Duration
	}
	Refresh struct {
		ClientCycleSeconds int64  // cooldown for manual, user-initiated refreshes
		ServerCycleSeconds int64  // cooldown for the periodic background check
		Schedule           string // cron format: how often the background check runs
	}
	Sync struct {
		Atomic    bool // wrap the delete+reinsert in one transaction
		BatchSize int
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8288)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	v.SetDefault("remote_base_url", "")
	v.SetDefault("remote_timeout", "30s")

	// Refresh throttling defaults
	v.SetDefault("client_refresh_cycle_seconds", DefaultClientRefreshCycleSeconds)
	v.SetDefault("server_refresh_cycle_seconds", DefaultServerRefreshCycleSeconds)
	v.SetDefault("refresh_schedule", "*/5 * * * *") // gate check every 5 minutes

	// Catalog sync defaults
	v.SetDefault("sync_atomic", false)
	v.SetDefault("sync_batch_size", 100)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "1m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Remote: Remote{
			BaseURL: v.GetString("REMOTE_BASE_URL"),
			Timeout: v.GetDuration("REMOTE_TIMEOUT"),
		},
		Refresh: Refresh{
			ClientCycleSeconds: v.GetInt64("CLIENT_REFRESH_CYCLE_SECONDS"),
			ServerCycleSeconds: v.GetInt64("SERVER_REFRESH_CYCLE_SECONDS"),
			Schedule:           v.GetString("REFRESH_SCHEDULE"),
		},
		Sync: Sync{
			Atomic:    v.GetBool("SYNC_ATOMIC"),
			BatchSize: v.GetInt("SYNC_BATCH_SIZE"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
	}
}
