// Package refresh implements the per-source refresh gate over the
// update_history table.
//
// A full catalog refresh is expensive, so each trigger source ("server" for
// the periodic background check, "client" for a manual pull) carries its own
// cooldown. ShouldRefresh both decides and claims: the due check and the
// timestamp advance happen in one write transaction, so of two racing
// callers only one observes true.
package refresh

import (
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/tientran/mangamirror/internal/entities"
)

// Repository handles all refresh-gate database operations.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository creates a new refresh-gate repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// NewRepositoryWithClock creates a repository with an injected clock.
func NewRepositoryWithClock(db *gorm.DB, now func() time.Time) *Repository {
	return &Repository{db: db, now: now}
}

// ShouldRefresh reports whether a refresh of source is due, and if so
// advances last_refreshed_at to now as part of the same decision. An unknown
// source or a failed read reports false: never refresh on uncertain state.
func (r *Repository) ShouldRefresh(source string) bool {
	due := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var record entities.UpdateHistory
		if err := tx.Where("name = ?", source).First(&record).Error; err != nil {
			return err
		}

		now := r.now()
		due = isDue(record, now)
		if !due {
			return nil
		}

		return tx.Model(&entities.UpdateHistory{}).
			Where("name = ?", source).
			Update("last_refreshed_at", now).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			log.Printf("Refresh gate: unknown source %q, refusing refresh", source)
		} else {
			log.Printf("Refresh gate: check for source %q failed: %v", source, err)
		}
		return false
	}
	return due
}

// SecondsUntilNextRefresh returns how long until source is due again. Pure
// read, no claim. Used only for throttle messaging after a rejected refresh;
// returns 0 when the source is due, unknown, or unreadable.
func (r *Repository) SecondsUntilNextRefresh(source string) int64 {
	var record entities.UpdateHistory
	if err := r.db.Where("name = ?", source).First(&record).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Printf("Refresh gate: read for source %q failed: %v", source, err)
		}
		return 0
	}

	now := r.now()
	if isDue(record, now) {
		return 0
	}

	elapsed := int64(now.Sub(*record.LastRefreshedAt) / time.Second)
	return record.RefreshCycle - elapsed
}

// isDue treats a missing timestamp as infinitely elapsed, and a timestamp in
// the future (clock rolled back) as due as well.
func isDue(record entities.UpdateHistory, now time.Time) bool {
	if record.LastRefreshedAt == nil {
		return true
	}
	elapsed := now.Sub(*record.LastRefreshedAt)
	return elapsed < 0 || elapsed >= time.Duration(record.RefreshCycle)*time.Second
}
