package entities

import (
	"time"
)

// AppInfo is a free-form key/value row (schema version marker, UI
// preferences, ...).
type AppInfo struct {
	Name  string `gorm:"column:name;primaryKey;size:128" json:"name"`
	Value string `gorm:"column:value;type:text" json:"value"`
}

func (AppInfo) TableName() string {
	return "app_info"
}

// Known app-info keys
const (
	AppInfoKeyVersion  = "version"
	AppInfoKeyReadMode = "read_mode"
)

// Refresh source names. Each source throttles catalog refreshes
// independently.
const (
	RefreshSourceServer = "server"
	RefreshSourceClient = "client"
)

// UpdateHistory is one refresh record per source: how long the cooldown is
// and when the last refresh was claimed. A nil LastRefreshedAt means the
// source has never refreshed and is always due.
type UpdateHistory struct {
	Name            string     `gorm:"column:name;primaryKey;size:32" json:"name"`
	RefreshCycle    int64      `gorm:"column:refresh_cycle" json:"refresh_cycle"`
	LastRefreshedAt *time.Time `gorm:"column:last_refreshed_at" json:"last_refreshed_at,omitempty"`
}

func (UpdateHistory) TableName() string {
	return "update_history"
}

// AppRelease is one release note of the client application, mirrored from
// the remote like the catalog tables.
type AppRelease struct {
	ID          int64     `gorm:"column:release_id;primaryKey;autoIncrement:false" json:"release_id"`
	Version     string    `gorm:"column:version;size:64" json:"version"`
	URL         string    `gorm:"column:url;size:1024" json:"url"`
	Description string    `gorm:"column:descr;type:text" json:"descr"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (AppRelease) TableName() string {
	return "app_releases"
}
