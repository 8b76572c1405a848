package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"spshare/domain/contracts"
	"spshare/domain/snapshot"
	"spshare/test/helpers"
)

func TestCatalogService_GetSnapshot(t *testing.T) {
	// Arrange
	repos := helpers.NewMockRepositories()
	snap := &snapshot.Snapshot{ID: 4, SiteURL: testSiteURL, Status: snapshot.StatusCompleted}
	site := &snapshot.SiteRecord{SnapshotID: 4, URL: testSiteURL, Title: "backup"}
	lists := []snapshot.ListRecord{{SnapshotID: 4, ListID: "a", Title: "Documents"}}

	repos.Snapshots.On("Get", mock.Anything, int64(4)).Return(snap, nil)
	repos.Catalog.On("GetSite", mock.Anything, int64(4)).Return(site, nil)
	repos.Catalog.On("GetLists", mock.Anything, int64(4)).Return(lists, nil)

	service := NewCatalogService(repos.Snapshots, repos.Catalog)

	// Act
	detail, err := service.GetSnapshot(context.Background(), 4)

	// Assert
	require.NoError(t, err)
	assert.Same(t, snap, detail.Snapshot)
	assert.Equal(t, "backup", detail.Site.Title)
	assert.Len(t, detail.Lists, 1)
	repos.AssertAllExpectations(t)
}

func TestCatalogService_GetSnapshot_FailedBeforeSite(t *testing.T) {
	repos := helpers.NewMockRepositories()
	snap := &snapshot.Snapshot{ID: 5, Status: snapshot.StatusFailed, Error: "get site: forbidden"}

	repos.Snapshots.On("Get", mock.Anything, int64(5)).Return(snap, nil)
	repos.Catalog.On("GetSite", mock.Anything, int64(5)).
		Return(nil, fmt.Errorf("site of snapshot 5: %w", contracts.ErrSnapshotNotFound))
	repos.Catalog.On("GetLists", mock.Anything, int64(5)).Return(nil, nil)

	service := NewCatalogService(repos.Snapshots, repos.Catalog)
	detail, err := service.GetSnapshot(context.Background(), 5)

	require.NoError(t, err)
	assert.Nil(t, detail.Site)
	assert.NotNil(t, detail.Lists)
	assert.Empty(t, detail.Lists)
}

func TestCatalogService_GetSnapshot_NotFound(t *testing.T) {
	repos := helpers.NewMockRepositories()
	repos.Snapshots.On("Get", mock.Anything, int64(9)).Return(nil, contracts.ErrSnapshotNotFound)

	service := NewCatalogService(repos.Snapshots, repos.Catalog)
	_, err := service.GetSnapshot(context.Background(), 9)

	assert.ErrorIs(t, err, contracts.ErrSnapshotNotFound)
	repos.Catalog.AssertNotCalled(t, "GetSite", mock.Anything, mock.Anything)
}

func TestCatalogService_GetItems(t *testing.T) {
	full := []snapshot.ItemRecord{{ItemID: 3}, {ItemID: 4}}

	tests := []struct {
		name      string
		after     int
		limit     int
		wantLimit int
		wantAfter int
		returned  []snapshot.ItemRecord
		wantNext  int
	}{
		{name: "full page has next", after: 2, limit: 2, wantLimit: 2, wantAfter: 2, returned: full, wantNext: 4},
		{name: "short page is last", after: 2, limit: 5, wantLimit: 5, wantAfter: 2, returned: full, wantNext: 0},
		{name: "defaults", after: -1, limit: 0, wantLimit: DefaultItemPageSize, wantAfter: 0, returned: nil, wantNext: 0},
		{name: "clamped", after: 0, limit: 50000, wantLimit: MaxItemPageSize, wantAfter: 0, returned: full, wantNext: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos := helpers.NewMockRepositories()
			repos.Snapshots.On("Get", mock.Anything, int64(1)).Return(&snapshot.Snapshot{ID: 1}, nil)
			repos.Catalog.On("GetItems", mock.Anything, int64(1), "list", tt.wantAfter, tt.wantLimit).Return(tt.returned, nil)

			service := NewCatalogService(repos.Snapshots, repos.Catalog)
			page, err := service.GetItems(context.Background(), 1, "list", tt.after, tt.limit)

			require.NoError(t, err)
			assert.NotNil(t, page.Items)
			assert.Equal(t, tt.wantNext, page.NextAfter)
			repos.AssertAllExpectations(t)
		})
	}
}

func TestCatalogService_ListSnapshots_Error(t *testing.T) {
	repos := helpers.NewMockRepositories()
	repos.Snapshots.On("List", mock.Anything, "", 10).Return(nil, errors.New("locked"))

	service := NewCatalogService(repos.Snapshots, repos.Catalog)
	_, err := service.ListSnapshots(context.Background(), "", 10)

	assert.EqualError(t, err, "list snapshots: locked")
}
