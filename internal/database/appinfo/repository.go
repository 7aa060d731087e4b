// Package appinfo provides database operations for the app_info key/value
// table.
//
// # Usage
//
//	repo := appinfo.NewRepository(db)
//	value, err := repo.Get(entities.AppInfoKeyReadMode)
package appinfo

import (
	"gorm.io/gorm"

	"github.com/tientran/mangamirror/internal/entities"
)

// Repository handles all app-info database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new app-info repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get retrieves a value by key. Returns an empty string with no error when
// the key has never been set.
func (r *Repository) Get(key string) (string, error) {
	var info entities.AppInfo
	err := r.db.Where("name = ?", key).First(&info).Error
	if err == gorm.ErrRecordNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return info.Value, nil
}

// Set creates or updates a key.
func (r *Repository) Set(key, value string) error {
	var info entities.AppInfo
	result := r.db.Where("name = ?", key).First(&info)

	if result.Error == gorm.ErrRecordNotFound {
		info = entities.AppInfo{
			Name:  key,
			Value: value,
		}
		return r.db.Create(&info).Error
	} else if result.Error != nil {
		return result.Error
	}

	info.Value = value
	return r.db.Save(&info).Error
}
