package session

import (
	"context"
	"fmt"

	"github.com/harrison/teachtree/internal/visibility"
)

// Save writes the current visibility snapshot to store under key.
// A nil store is a no-op.
func (s *Session) Save(ctx context.Context, store visibility.Store, key string) error {
	if store == nil {
		return nil
	}

	s.mu.Lock()
	snap := s.ctrl.Snapshot()
	s.mu.Unlock()

	if err := store.Save(ctx, key, snap); err != nil {
		return fmt.Errorf("save visibility for %s: %w", key, err)
	}
	s.logger.LogDebug(fmt.Sprintf("saved visibility snapshot %s (%d nodes)", snap.ID, len(snap.Visible)))
	return nil
}

// Restore loads the snapshot saved under key and applies it. It reports
// whether any saved node survived; a missing snapshot or a nil store
// leaves the state untouched and returns false.
func (s *Session) Restore(ctx context.Context, store visibility.Store, key string) (bool, error) {
	if store == nil {
		return false, nil
	}

	snap, found, err := store.Load(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load visibility for %s: %w", key, err)
	}
	if !found {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	restored := s.ctrl.Restore(snap)
	if !restored {
		s.logger.LogInfo(fmt.Sprintf("saved visibility for %s no longer matches the tree, using defaults", key))
		return false, nil
	}
	s.logVisibility("restored", snap.ID)
	return true, nil
}
