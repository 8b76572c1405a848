package contracts

import (
	"context"

	"spshare/domain/snapshot"
)

// CatalogRepository stores the entities enumerated by a snapshot.
type CatalogRepository interface {
	SaveSite(ctx context.Context, site snapshot.SiteRecord) error

	// SaveLists upserts lists in one transaction.
	SaveLists(ctx context.Context, lists []snapshot.ListRecord) error

	// SaveItems upserts items in one transaction. Their lists must have
	// been saved first.
	SaveItems(ctx context.Context, items []snapshot.ItemRecord) error

	GetSite(ctx context.Context, snapshotID int64) (*snapshot.SiteRecord, error)
	GetLists(ctx context.Context, snapshotID int64) ([]snapshot.ListRecord, error)

	// GetItems pages through the items of one list in item id order,
	// starting after afterID.
	GetItems(ctx context.Context, snapshotID int64, listID string, afterID, limit int) ([]snapshot.ItemRecord, error)
}
