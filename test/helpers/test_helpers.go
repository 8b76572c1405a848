package helpers

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"spshare/database"
	"spshare/domain/sharepoint"
	"spshare/domain/snapshot"
	"spshare/logging"
	"spshare/test/mocks"
)

// NewTestDatabase opens a migrated catalog in a temp dir and closes it when
// the test ends.
func NewTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	cfg := database.DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "catalog.db")
	cfg.MaxOpenConns = 4

	db, err := database.New(cfg, QuietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// QuietLogger discards all output.
func QuietLogger() *logging.Logger {
	return logging.NewLoggerTo(io.Discard, &logging.Config{Level: "error", Format: "text"})
}

// MockRepositories holds all repository mocks for easy injection
type MockRepositories struct {
	Snapshots *mocks.MockSnapshotRepository
	Catalog   *mocks.MockCatalogRepository
}

// NewMockRepositories creates a new set of repository mocks
func NewMockRepositories() *MockRepositories {
	return &MockRepositories{
		Snapshots: &mocks.MockSnapshotRepository{},
		Catalog:   &mocks.MockCatalogRepository{},
	}
}

// ExpectSnapshotCreated sets up a Create call returning a running snapshot.
func (m *MockRepositories) ExpectSnapshotCreated(id int64, siteURL string) *snapshot.Snapshot {
	s := &snapshot.Snapshot{ID: id, SiteURL: siteURL, Status: snapshot.StatusRunning, StartedAt: time.Now()}
	m.Snapshots.On("Create", mock.Anything, siteURL, mock.Anything).Return(s, nil)
	return s
}

// AssertAllExpectations verifies all mock expectations were met
func (m *MockRepositories) AssertAllExpectations(t mock.TestingT) {
	m.Snapshots.AssertExpectations(t)
	m.Catalog.AssertExpectations(t)
}

// TestData provides simple builders for test data
type TestData struct{}

// NewTestData creates a test data builder
func NewTestData() *TestData {
	return &TestData{}
}

// SimpleSite creates a basic site for testing
func (td *TestData) SimpleSite(title string) *sharepoint.Site {
	return &sharepoint.Site{
		ID:          "5f0e3c1a-2b4d-4e6f-8a9b-0c1d2e3f4a5b",
		Title:       title,
		URL:         "https://test.sharepoint.com/sites/" + title,
		WebTemplate: "STS",
	}
}

// SimpleList creates a basic list for testing
func (td *TestData) SimpleList(n int, hidden bool, itemCount int) *sharepoint.List {
	return &sharepoint.List{
		ID:           fmt.Sprintf("00000000-0000-0000-0000-%012d", n),
		Title:        fmt.Sprintf("List %d", n),
		BaseTemplate: sharepoint.ListTemplateGenericList,
		ItemCount:    itemCount,
		Hidden:       hidden,
	}
}

// Items creates count plain items with ids from first.
func (td *TestData) Items(first, count int) []sharepoint.ListItem {
	items := make([]sharepoint.ListItem, 0, count)
	for id := first; id < first+count; id++ {
		items = append(items, sharepoint.ListItem{
			ID:          id,
			FileLeafRef: fmt.Sprintf("%d_.000", id),
			FileRef:     fmt.Sprintf("/sites/test/Lists/l/%d_.000", id),
		})
	}
	return items
}

// Helper for common test context
func TestContext() context.Context {
	return context.Background()
}
