package visibility

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SnapshotVersion is the current schema version of persisted snapshots
const SnapshotVersion = 1

// Snapshot is the persistable part of a controller's state.
// Ids are stored, not indexes, so a snapshot stays meaningful across rebuilds.
type Snapshot struct {
	Version   int       `json:"version"`
	ID        string    `json:"id"`
	Visible   []string  `json:"visible"`
	Highlight []string  `json:"highlight,omitempty"`
	SavedAt   time.Time `json:"saved_at"`
}

// Store persists snapshots under a caller-chosen key (usually the transcript name).
// Load reports found=false, not an error, when nothing was saved for key.
type Store interface {
	Save(ctx context.Context, key string, snap Snapshot) error
	Load(ctx context.Context, key string) (snap Snapshot, found bool, err error)
	Delete(ctx context.Context, key string) error
}

// Snapshot captures the visible ids (sorted) and the highlight path
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Version:   SnapshotVersion,
		ID:        uuid.NewString(),
		Visible:   c.visible.IDs(),
		Highlight: append([]string(nil), c.highlight...),
		SavedAt:   time.Now().UTC(),
	}
}

// Restore applies a snapshot. Stale ids are dropped; when none remain the
// initial state applies, highlight cleared, and Restore returns false.
// Snapshots from another schema version are ignored.
func (c *Controller) Restore(snap Snapshot) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if snap.Version != SnapshotVersion {
		return false
	}

	c.visible = c.retain(snap.Visible)
	for _, id := range snap.Visible {
		if c.visible.Contains(id) {
			c.highlight = append([]string(nil), snap.Highlight...)
			return true
		}
	}
	c.highlight = nil
	return false
}
