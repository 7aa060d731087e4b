package entities

import (
	"time"
)

// Reading status labels shown to the user. Stored as-is.
const (
	ReadingStatusCompleted  = "Completed"
	ReadingStatusReading    = "Reading"
	ReadingStatusOnHold     = "On Hold"
	ReadingStatusDropped    = "Dropped"
	ReadingStatusPlanToRead = "Plan to Read"
	ReadingStatusReReading  = "Re-Reading"
	ReadingStatusNone       = "None"
)

// ReadingStatusLabels lists every valid status label.
var ReadingStatusLabels = []string{
	ReadingStatusCompleted,
	ReadingStatusReading,
	ReadingStatusOnHold,
	ReadingStatusDropped,
	ReadingStatusPlanToRead,
	ReadingStatusReReading,
	ReadingStatusNone,
}

// IsValidReadingStatus reports whether label is one of the known statuses.
func IsValidReadingStatus(label string) bool {
	for _, s := range ReadingStatusLabels {
		if s == label {
			return true
		}
	}
	return false
}

// ReadingStatus is the device-local relationship of the user to one title.
// One row per manga. No foreign key to mangas: the catalog mirror is fully
// replaced on sync and must not wipe user state with it.
//
// UpdatedAt is written by the repository, not by GORM time tracking: the
// library view sorts on it and the bulk import replays remote timestamps.
type ReadingStatus struct {
	MangaID   int64     `gorm:"column:manga_id;primaryKey;autoIncrement:false" json:"manga_id"`
	Status    string    `gorm:"column:status;size:32" json:"status"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at"`
}

func (ReadingStatus) TableName() string {
	return "reading_status"
}

// ReadingHistory records that a chapter was opened on this device. Repeat
// reads bump ReadAt. Rows outlive catalog syncs for the same reason
// ReadingStatus does.
type ReadingHistory struct {
	MangaID    int64     `gorm:"column:manga_id;primaryKey;autoIncrement:false" json:"manga_id"`
	ChapterID  int64     `gorm:"column:chapter_id;primaryKey;autoIncrement:false" json:"chapter_id"`
	ChapterNum float64   `gorm:"column:chapter_num" json:"chapter_num"`
	ReadAt     time.Time `gorm:"column:readed_at;index" json:"readed_at"`
}

func (ReadingHistory) TableName() string {
	return "reading_history"
}
