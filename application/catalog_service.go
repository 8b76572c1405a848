package application

import (
	"context"
	"errors"
	"fmt"

	"spshare/domain/contracts"
	"spshare/domain/snapshot"
	"spshare/logging"
)

// Paging bounds for catalog item reads.
const (
	DefaultItemPageSize = 100
	MaxItemPageSize     = 1000
)

// SnapshotDetail is a snapshot together with its catalogued site and lists.
type SnapshotDetail struct {
	Snapshot *snapshot.Snapshot    `json:"snapshot"`
	Site     *snapshot.SiteRecord  `json:"site,omitempty"`
	Lists    []snapshot.ListRecord `json:"lists"`
}

// ItemPage is one page of catalogued items. NextAfter is zero on the last
// page.
type ItemPage struct {
	Items     []snapshot.ItemRecord `json:"items"`
	NextAfter int                   `json:"next_after,omitempty"`
}

// CatalogService reads back what snapshot runs stored.
type CatalogService struct {
	snapshots contracts.SnapshotRepository
	catalog   contracts.CatalogRepository
	logger    *logging.Logger
}

// NewCatalogService creates a catalog service with its dependencies injected.
func NewCatalogService(snapshots contracts.SnapshotRepository, catalog contracts.CatalogRepository) *CatalogService {
	return &CatalogService{
		snapshots: snapshots,
		catalog:   catalog,
		logger:    logging.Default().WithComponent("catalog_service"),
	}
}

// ListSnapshots returns recent snapshots, newest first. An empty siteURL
// lists all sites.
func (s *CatalogService) ListSnapshots(ctx context.Context, siteURL string, limit int) ([]*snapshot.Snapshot, error) {
	snaps, err := s.snapshots.List(ctx, siteURL, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return snaps, nil
}

// GetSnapshot loads a snapshot with its site and lists. A snapshot that
// failed before its site was stored has a nil Site.
func (s *CatalogService) GetSnapshot(ctx context.Context, id int64) (*SnapshotDetail, error) {
	snap, err := s.snapshots.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	site, err := s.catalog.GetSite(ctx, id)
	if err != nil && !errors.Is(err, contracts.ErrSnapshotNotFound) {
		return nil, fmt.Errorf("get site for snapshot %d: %w", id, err)
	}

	lists, err := s.catalog.GetLists(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get lists for snapshot %d: %w", id, err)
	}
	if lists == nil {
		lists = []snapshot.ListRecord{}
	}

	return &SnapshotDetail{Snapshot: snap, Site: site, Lists: lists}, nil
}

// GetItems returns up to limit items of one list after item id afterID.
func (s *CatalogService) GetItems(ctx context.Context, id int64, listID string, afterID, limit int) (*ItemPage, error) {
	if listID == "" {
		return nil, fmt.Errorf("list id is required")
	}
	if afterID < 0 {
		afterID = 0
	}
	switch {
	case limit <= 0:
		limit = DefaultItemPageSize
	case limit > MaxItemPageSize:
		limit = MaxItemPageSize
	}

	if _, err := s.snapshots.Get(ctx, id); err != nil {
		return nil, err
	}

	items, err := s.catalog.GetItems(ctx, id, listID, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("get items for list %s: %w", listID, err)
	}

	page := &ItemPage{Items: items}
	if page.Items == nil {
		page.Items = []snapshot.ItemRecord{}
	}
	if len(items) == limit {
		page.NextAfter = items[len(items)-1].ItemID
	}
	s.logger.Debug("Catalog item page", "snapshot_id", id, "list_id", listID, "after", afterID, "count", len(items))
	return page, nil
}
