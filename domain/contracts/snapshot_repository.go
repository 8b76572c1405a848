package contracts

import (
	"context"

	"spshare/domain/snapshot"
)

// SnapshotRepository tracks snapshot runs.
type SnapshotRepository interface {
	// Create starts a running snapshot for siteURL and returns it with its id.
	Create(ctx context.Context, siteURL, mode string) (*snapshot.Snapshot, error)

	// Complete marks a running snapshot completed with its final counts.
	Complete(ctx context.Context, id int64, listsCount, itemsCount int) error

	// Fail marks a running snapshot failed.
	Fail(ctx context.Context, id int64, cause error) error

	// Get returns ErrSnapshotNotFound for unknown ids.
	Get(ctx context.Context, id int64) (*snapshot.Snapshot, error)

	// List returns the most recent snapshots first, optionally for one site.
	List(ctx context.Context, siteURL string, limit int) ([]*snapshot.Snapshot, error)
}
