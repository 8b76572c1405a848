package application

import (
	"context"
	"errors"
	"slices"
	"sync"

	"spshare/domain/snapshot"
	"spshare/logging"
)

// ErrSnapshotNotRunning is returned when cancelling a snapshot this runner
// is not executing.
var ErrSnapshotNotRunning = errors.New("snapshot is not running")

// SnapshotRunner executes snapshots in the background and lets callers
// cancel them while they run.
type SnapshotRunner struct {
	service *SnapshotService
	baseCtx context.Context
	logger  *logging.Logger

	mu      sync.Mutex
	running map[int64]context.CancelFunc
	wg      sync.WaitGroup
}

// NewSnapshotRunner creates a runner. Runs are canceled when baseCtx ends.
func NewSnapshotRunner(baseCtx context.Context, service *SnapshotService) *SnapshotRunner {
	return &SnapshotRunner{
		service: service,
		baseCtx: baseCtx,
		logger:  logging.Default().WithComponent("snapshot_runner"),
		running: make(map[int64]context.CancelFunc),
	}
}

// Start records a running snapshot and executes it asynchronously. ctx only
// bounds the creation of the snapshot record.
func (r *SnapshotRunner) Start(ctx context.Context, params snapshot.Parameters) (*snapshot.Snapshot, error) {
	snap, params, err := r.service.Begin(ctx, params)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(r.baseCtx)
	r.mu.Lock()
	r.running[snap.ID] = cancel
	r.mu.Unlock()

	started := *snap
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			delete(r.running, snap.ID)
			r.mu.Unlock()
			cancel()
		}()

		if _, err := r.service.Execute(runCtx, snap, params); err != nil {
			if errors.Is(runCtx.Err(), context.Canceled) {
				r.logger.Info("Snapshot cancelled", "snapshot_id", snap.ID)
				return
			}
			r.logger.Error("Background snapshot failed", "snapshot_id", snap.ID, "error", err)
		}
	}()

	r.logger.Info("Snapshot queued", "snapshot_id", snap.ID, "site_url", params.SiteURL)
	return &started, nil
}

// Cancel stops a running snapshot. The snapshot is recorded as failed.
func (r *SnapshotRunner) Cancel(id int64) error {
	r.mu.Lock()
	cancel, ok := r.running[id]
	r.mu.Unlock()
	if !ok {
		return ErrSnapshotNotRunning
	}
	cancel()
	r.logger.Info("Snapshot cancellation requested", "snapshot_id", id)
	return nil
}

// Running returns the ids of the snapshots in progress, ascending.
func (r *SnapshotRunner) Running() []int64 {
	r.mu.Lock()
	ids := make([]int64, 0, len(r.running))
	for id := range r.running {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	slices.Sort(ids)
	return ids
}

// Wait blocks until every started snapshot has finished.
func (r *SnapshotRunner) Wait() {
	r.wg.Wait()
}
