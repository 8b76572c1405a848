package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"spshare/domain/sharepoint"
	"spshare/odata"
	"spshare/spquery"
)

// MockSiteEnumerator implements contracts.SiteEnumerator for testing.
// WalkListItems feeds the [][]sharepoint.ListItem returned by the
// expectation to the callback page by page.
type MockSiteEnumerator struct {
	mock.Mock
}

func (m *MockSiteEnumerator) GetSite(ctx context.Context, siteURL string, opts ...odata.QueryOption) (*sharepoint.Site, error) {
	args := m.Called(ctx, siteURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sharepoint.Site), args.Error(1)
}

func (m *MockSiteEnumerator) GetLists(ctx context.Context, siteURL string, opts ...odata.QueryOption) ([]sharepoint.List, error) {
	args := m.Called(ctx, siteURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sharepoint.List), args.Error(1)
}

func (m *MockSiteEnumerator) WalkListItems(ctx context.Context, siteURL string, list *sharepoint.List, pageSize int, mode spquery.Mode, fn func([]sharepoint.ListItem) error) error {
	args := m.Called(ctx, siteURL, list.ID, pageSize, mode)
	if pages, ok := args.Get(0).([][]sharepoint.ListItem); ok {
		for _, page := range pages {
			if err := fn(page); err != nil {
				return err
			}
		}
	}
	return args.Error(1)
}
