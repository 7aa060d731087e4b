package catalogsync

import (
	"context"
	"errors"
	"sync"
)

// Gate is the slice of the refresh gate the bootstrap needs.
type Gate interface {
	ShouldRefresh(source string) bool
}

// BootState tracks one-time bootstrap work for a single process run. It
// replaces process-wide "has initialized" flags so tests stay re-entrant:
// every run (and every test) carries its own state.
type BootState struct {
	mu            sync.Mutex
	catalogLoaded bool
}

// NewBootState returns a fresh, not-yet-bootstrapped state.
func NewBootState() *BootState {
	return &BootState{}
}

// EnsureCatalog runs one catalog refresh for source at most once per state
// instance, and only when the gate says it is due. An empty snapshot counts
// as a completed attempt; later syncs are the scheduler's job.
func (e *Engine) EnsureCatalog(ctx context.Context, st *BootState, gate Gate, source string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.catalogLoaded {
		return nil
	}
	if !gate.ShouldRefresh(source) {
		st.catalogLoaded = true
		return nil
	}

	err := e.UpdateCatalog(ctx)
	if err != nil && !errors.Is(err, ErrEmptySnapshot) {
		return err
	}
	st.catalogLoaded = true
	return nil
}
