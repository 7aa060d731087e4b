// Package scheduler drives the periodic background refresh. Each tick asks
// the refresh gate whether the "server" source is due; the gate, not the
// cron schedule, decides when a sync actually runs, so the schedule can be
// much tighter than the cooldown without causing extra fetches.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/tientran/mangamirror/internal/catalogsync"
	"github.com/tientran/mangamirror/internal/database/refresh"
	"github.com/tientran/mangamirror/internal/entities"
)

// CatalogRefreshScheduler manages the periodic catalog refresh check.
type CatalogRefreshScheduler struct {
	gate   *refresh.Repository
	engine *catalogsync.Engine

	schedule string
	cron     *cron.Cron
	entryID  cron.EntryID

	mu         sync.RWMutex
	isRunning  bool
	isSyncing  bool
	cancelFunc context.CancelFunc
	ctx        context.Context
}

// NewCatalogRefreshScheduler creates a new scheduler instance.
func NewCatalogRefreshScheduler(gate *refresh.Repository, engine *catalogsync.Engine, schedule string) *CatalogRefreshScheduler {
	return &CatalogRefreshScheduler{
		gate:     gate,
		engine:   engine,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler.
func (s *CatalogRefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.runSync()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule refresh job: %w", err)
	}
	s.entryID = entryID

	s.ctx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Catalog refresh scheduler: started with schedule '%s'", s.schedule)
	return nil
}

// Stop halts the scheduler. A sync already in flight runs to completion;
// cancellation mid-sync is not supported.
func (s *CatalogRefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	s.cron.Remove(s.entryID)
	s.cron.Stop()
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	log.Printf("Catalog refresh scheduler: stopped")
}

// IsRunning reports whether the scheduler is active.
func (s *CatalogRefreshScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *CatalogRefreshScheduler) runSync() {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		log.Printf("Catalog refresh scheduler: previous sync still running, skipping tick")
		return
	}
	s.isSyncing = true
	ctx := s.ctx
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	if !s.gate.ShouldRefresh(entities.RefreshSourceServer) {
		return
	}

	log.Printf("Catalog refresh scheduler: refresh due, syncing")
	if err := s.engine.UpdateCatalog(ctx); err != nil {
		if errors.Is(err, catalogsync.ErrEmptySnapshot) {
			log.Printf("Catalog refresh scheduler: %v", err)
			return
		}
		log.Printf("Catalog refresh scheduler: sync failed: %v", err)
	}
}
