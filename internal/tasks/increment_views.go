package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
)

// ViewIncrementer pushes one view-counter increment to the remote catalog.
type ViewIncrementer interface {
	IncrementMangaViews(ctx context.Context, mangaID int64) error
}

// IncrementViewsTask bumps the remote view counter for one title after a
// chapter was opened locally.
type IncrementViewsTask struct {
	MangaID int64 `json:"manga_id"`
}

// Config returns the queue configuration for view-increment tasks.
func (t IncrementViewsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "increment_views",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     1 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// IncrementViewsProcessor creates a processor function for
// IncrementViewsTask.
func IncrementViewsProcessor(remote ViewIncrementer) backlite.QueueProcessor[IncrementViewsTask] {
	return func(ctx context.Context, task IncrementViewsTask) error {
		if remote == nil {
			return fmt.Errorf("remote client not configured")
		}
		if err := remote.IncrementMangaViews(ctx, task.MangaID); err != nil {
			return fmt.Errorf("increment views for manga %d: %w", task.MangaID, err)
		}
		return nil
	}
}

// NewIncrementViewsQueue creates a backlite queue for view-increment tasks.
func NewIncrementViewsQueue(remote ViewIncrementer) backlite.Queue {
	return backlite.NewQueue(IncrementViewsProcessor(remote))
}
