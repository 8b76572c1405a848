package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"

	"spshare/domain/contracts"
	"spshare/domain/sharepoint"
	"spshare/domain/snapshot"
	"spshare/logging"
	"spshare/spquery"
)

// SnapshotService enumerates a site and writes what it finds to the
// catalog.
type SnapshotService struct {
	sharepoint contracts.SiteEnumerator
	snapshots  contracts.SnapshotRepository
	catalog    contracts.CatalogRepository
	logger     *logging.Logger
}

// NewSnapshotService creates a snapshot service with its dependencies injected.
func NewSnapshotService(
	sp contracts.SiteEnumerator,
	snapshots contracts.SnapshotRepository,
	catalog contracts.CatalogRepository,
) *SnapshotService {
	return &SnapshotService{
		sharepoint: sp,
		snapshots:  snapshots,
		catalog:    catalog,
		logger:     logging.Default().WithComponent("snapshot_service"),
	}
}

// Run takes one snapshot. The returned snapshot is completed, or failed
// together with a non-nil error.
func (s *SnapshotService) Run(ctx context.Context, params snapshot.Parameters) (*snapshot.Snapshot, error) {
	snap, params, err := s.Begin(ctx, params)
	if err != nil {
		return nil, err
	}
	return s.Execute(ctx, snap, params)
}

// Begin validates params and records a running snapshot. The normalized
// parameters are returned for Execute.
func (s *SnapshotService) Begin(ctx context.Context, params snapshot.Parameters) (*snapshot.Snapshot, snapshot.Parameters, error) {
	params = params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, params, err
	}

	snap, err := s.snapshots.Create(ctx, params.SiteURL, params.Mode.String())
	if err != nil {
		return nil, params, fmt.Errorf("create snapshot: %w", err)
	}
	return snap, params, nil
}

// Execute enumerates the site of a snapshot created by Begin and marks it
// completed or failed.
func (s *SnapshotService) Execute(ctx context.Context, snap *snapshot.Snapshot, params snapshot.Parameters) (*snapshot.Snapshot, error) {
	logger := s.logger.WithSnapshot(snap.ID).WithSite(params.SiteURL)
	logger.Info("Snapshot started",
		"mode", params.Mode.String(),
		"page_size", params.PageSize,
		"concurrency", params.Concurrency)

	start := time.Now()
	lists, items, runErr := s.run(ctx, snap.ID, params, logger)

	// the run context may be canceled by now; the final status is written
	// regardless
	finishCtx := context.WithoutCancel(ctx)
	if runErr == nil {
		if err := s.snapshots.Complete(finishCtx, snap.ID, lists, items); err != nil {
			runErr = fmt.Errorf("complete snapshot %d: %w", snap.ID, err)
		}
	}
	if runErr != nil {
		if err := s.snapshots.Fail(finishCtx, snap.ID, runErr); err != nil {
			logger.Error("Failed to mark snapshot failed", "error", err)
		}
		logger.Error("Snapshot failed", "error", runErr, "duration_ms", time.Since(start).Milliseconds())
		snap.Status = snapshot.StatusFailed
		snap.Error = runErr.Error()
		return snap, runErr
	}

	logger.Performance("snapshot", time.Since(start),
		slog.Int("lists", lists),
		slog.Int("items", items))

	return s.snapshots.Get(finishCtx, snap.ID)
}

func (s *SnapshotService) run(ctx context.Context, snapshotID int64, params snapshot.Parameters, logger *logging.Logger) (int, int, error) {
	site, err := s.sharepoint.GetSite(ctx, params.SiteURL, spquery.SiteOptions(spquery.Detail)...)
	if err != nil {
		return 0, 0, fmt.Errorf("get site: %w", err)
	}
	siteRecord, err := snapshot.NewSiteRecord(snapshotID, site)
	if err != nil {
		return 0, 0, err
	}
	if err := s.catalog.SaveSite(ctx, siteRecord); err != nil {
		return 0, 0, err
	}

	all, err := s.sharepoint.GetLists(ctx, params.SiteURL, spquery.ListOptions(params.Mode)...)
	if err != nil {
		return 0, 0, fmt.Errorf("get lists: %w", err)
	}
	var lists []*sharepoint.List
	var records []snapshot.ListRecord
	for i := range all {
		l := &all[i]
		if !params.Wants(l.Title, l.Hidden) {
			logger.Debug("Skipping list", "list_id", l.ID, "title", l.Title, "hidden", l.Hidden)
			continue
		}
		rec, err := snapshot.NewListRecord(snapshotID, l)
		if err != nil {
			return 0, 0, err
		}
		lists = append(lists, l)
		records = append(records, rec)
	}
	if err := s.catalog.SaveLists(ctx, records); err != nil {
		return 0, 0, err
	}

	var items atomic.Int64
	p := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(params.Concurrency)
	for _, list := range lists {
		list := list // per-iteration copy; go.mod targets go 1.21
		p.Go(func(ctx context.Context) error {
			n, err := s.walkList(ctx, snapshotID, params, list)
			items.Add(int64(n))
			return err
		})
	}
	err = p.Wait()
	return len(lists), int(items.Load()), err
}

// walkList stores every item of one list, one page per transaction.
func (s *SnapshotService) walkList(ctx context.Context, snapshotID int64, params snapshot.Parameters, list *sharepoint.List) (int, error) {
	logger := s.logger.WithSnapshot(snapshotID).WithList(list.ID, list.Title)
	start := time.Now()
	count := 0

	err := s.sharepoint.WalkListItems(ctx, params.SiteURL, list, params.PageSize, params.Mode, func(page []sharepoint.ListItem) error {
		records := make([]snapshot.ItemRecord, 0, len(page))
		for i := range page {
			rec, err := snapshot.NewItemRecord(snapshotID, list.ID, &page[i])
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		if err := s.catalog.SaveItems(ctx, records); err != nil {
			return err
		}
		count += len(records)
		logger.Debug("Stored item page", "items", len(records), "total", count)
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("list %s: %w", list.Title, err)
	}

	logger.Performance("list_items", time.Since(start), slog.Int("items", count))
	return count, nil
}
