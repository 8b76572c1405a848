package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"spshare/domain/snapshot"
)

// MockSnapshotRepository implements contracts.SnapshotRepository for testing
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Create(ctx context.Context, siteURL, mode string) (*snapshot.Snapshot, error) {
	args := m.Called(ctx, siteURL, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*snapshot.Snapshot), args.Error(1)
}

func (m *MockSnapshotRepository) Complete(ctx context.Context, id int64, listsCount, itemsCount int) error {
	args := m.Called(ctx, id, listsCount, itemsCount)
	return args.Error(0)
}

func (m *MockSnapshotRepository) Fail(ctx context.Context, id int64, cause error) error {
	args := m.Called(ctx, id, cause)
	return args.Error(0)
}

func (m *MockSnapshotRepository) Get(ctx context.Context, id int64) (*snapshot.Snapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*snapshot.Snapshot), args.Error(1)
}

func (m *MockSnapshotRepository) List(ctx context.Context, siteURL string, limit int) ([]*snapshot.Snapshot, error) {
	args := m.Called(ctx, siteURL, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*snapshot.Snapshot), args.Error(1)
}

// MockCatalogRepository implements contracts.CatalogRepository for testing
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) SaveSite(ctx context.Context, site snapshot.SiteRecord) error {
	args := m.Called(ctx, site)
	return args.Error(0)
}

func (m *MockCatalogRepository) SaveLists(ctx context.Context, lists []snapshot.ListRecord) error {
	args := m.Called(ctx, lists)
	return args.Error(0)
}

func (m *MockCatalogRepository) SaveItems(ctx context.Context, items []snapshot.ItemRecord) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockCatalogRepository) GetSite(ctx context.Context, snapshotID int64) (*snapshot.SiteRecord, error) {
	args := m.Called(ctx, snapshotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*snapshot.SiteRecord), args.Error(1)
}

func (m *MockCatalogRepository) GetLists(ctx context.Context, snapshotID int64) ([]snapshot.ListRecord, error) {
	args := m.Called(ctx, snapshotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]snapshot.ListRecord), args.Error(1)
}

func (m *MockCatalogRepository) GetItems(ctx context.Context, snapshotID int64, listID string, afterID, limit int) ([]snapshot.ItemRecord, error) {
	args := m.Called(ctx, snapshotID, listID, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]snapshot.ItemRecord), args.Error(1)
}
