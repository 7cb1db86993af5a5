package models

import (
	"context"
	"time"
)

// SnapshotStore is the durable home for evicted playlists.
// The payload is opaque to implementations; it is produced by [Encode].
type SnapshotStore interface {
	// Upsert inserts or replaces the snapshot stored under name.
	Upsert(ctx context.Context, name string, payload []byte, usage int64) error
	// Fetch returns the payload stored under name, or shared.ErrSnapshotNotFound.
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// SnapshotCatalog enumerates and removes stored snapshots.
type SnapshotCatalog interface {
	List(ctx context.Context) ([]SnapshotInfo, error) // List returns stored snapshots, most recently updated first
	Delete(ctx context.Context, name string) error    // Delete removes one snapshot, or returns shared.ErrSnapshotNotFound
	Clear(ctx context.Context) error                  // Clear removes every stored snapshot
}

// SnapshotInfo describes one stored snapshot without its payload.
type SnapshotInfo struct {
	Name      string    `json:"name"`
	Usage     int64     `json:"usage"`
	Size      int       `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}
