package contracts

import (
	"context"

	"spshare/domain/sharepoint"
	"spshare/odata"
	"spshare/spquery"
)

// SiteEnumerator is the part of the SharePoint service a snapshot run
// reads from. spclient.Service satisfies it.
type SiteEnumerator interface {
	GetSite(ctx context.Context, siteURL string, opts ...odata.QueryOption) (*sharepoint.Site, error)
	GetLists(ctx context.Context, siteURL string, opts ...odata.QueryOption) ([]sharepoint.List, error)
	WalkListItems(ctx context.Context, siteURL string, list *sharepoint.List, pageSize int, mode spquery.Mode, fn func([]sharepoint.ListItem) error) error
}
