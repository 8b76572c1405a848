package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"spshare/application"
	"spshare/domain/contracts"
	"spshare/domain/snapshot"
)

type MockCatalogReader struct {
	mock.Mock
}

func (m *MockCatalogReader) ListSnapshots(ctx context.Context, siteURL string, limit int) ([]*snapshot.Snapshot, error) {
	args := m.Called(siteURL, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*snapshot.Snapshot), args.Error(1)
}

func (m *MockCatalogReader) GetSnapshot(ctx context.Context, id int64) (*application.SnapshotDetail, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.SnapshotDetail), args.Error(1)
}

func (m *MockCatalogReader) GetItems(ctx context.Context, id int64, listID string, afterID, limit int) (*application.ItemPage, error) {
	args := m.Called(id, listID, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.ItemPage), args.Error(1)
}

type stubHealth struct {
	err error
}

func (s stubHealth) Health(context.Context) (map[string]any, error) {
	if s.err != nil {
		return nil, s.err
	}
	return map[string]any{"read_pool": map[string]any{"open_connections": 1}}, nil
}

func serve(t *testing.T, cfg RouterConfig, target string) *httptest.ResponseRecorder {
	t.Helper()
	if cfg.Health == nil {
		cfg.Health = stubHealth{}
	}
	w := httptest.NewRecorder()
	NewRouter(cfg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestCatalogHandlers_ListSnapshots(t *testing.T) {
	catalog := new(MockCatalogReader)
	catalog.On("ListSnapshots", "https://contoso.sharepoint.com/sites/a", 5).
		Return([]*snapshot.Snapshot{{ID: 2, Status: snapshot.StatusCompleted}, {ID: 1, Status: snapshot.StatusFailed}}, nil)

	w := serve(t, RouterConfig{Catalog: catalog}, "/snapshots?site=https%3A%2F%2Fcontoso.sharepoint.com%2Fsites%2Fa&limit=5")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got []snapshot.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	catalog.AssertExpectations(t)
}

func TestCatalogHandlers_ListSnapshots_EmptyIsArray(t *testing.T) {
	catalog := new(MockCatalogReader)
	catalog.On("ListSnapshots", "", 0).Return(nil, nil)

	w := serve(t, RouterConfig{Catalog: catalog}, "/snapshots")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCatalogHandlers_GetSnapshot(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		setup      func(m *MockCatalogReader)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "found",
			target: "/snapshots/3",
			setup: func(m *MockCatalogReader) {
				m.On("GetSnapshot", int64(3)).Return(&application.SnapshotDetail{
					Snapshot: &snapshot.Snapshot{ID: 3},
					Lists:    []snapshot.ListRecord{{ListID: "abc", Title: "Documents"}},
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `"Documents"`,
		},
		{
			name:   "not found",
			target: "/snapshots/4",
			setup: func(m *MockCatalogReader) {
				m.On("GetSnapshot", int64(4)).Return(nil, fmt.Errorf("snapshot 4: %w", contracts.ErrSnapshotNotFound))
			},
			wantStatus: http.StatusNotFound,
			wantBody:   "snapshot not found",
		},
		{
			name:       "bad id",
			target:     "/snapshots/abc",
			setup:      func(m *MockCatalogReader) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   `invalid snapshotID: \"abc\"`,
		},
		{
			name:   "storage error",
			target: "/snapshots/5",
			setup: func(m *MockCatalogReader) {
				m.On("GetSnapshot", int64(5)).Return(nil, errors.New("database is locked"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "database is locked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := new(MockCatalogReader)
			tt.setup(catalog)

			w := serve(t, RouterConfig{Catalog: catalog}, tt.target)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			catalog.AssertExpectations(t)
		})
	}
}

func TestCatalogHandlers_ListItems(t *testing.T) {
	catalog := new(MockCatalogReader)
	catalog.On("GetItems", int64(7), "0f8c", 100, 2).Return(&application.ItemPage{
		Items:     []snapshot.ItemRecord{{ItemID: 101}, {ItemID: 102}},
		NextAfter: 102,
	}, nil)

	w := serve(t, RouterConfig{Catalog: catalog}, "/snapshots/7/lists/0f8c/items?after=100&limit=2")

	require.Equal(t, http.StatusOK, w.Code)
	var page application.ItemPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 102, page.NextAfter)

	w = serve(t, RouterConfig{Catalog: catalog}, "/snapshots/7/lists/0f8c/items?after=x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	catalog.AssertExpectations(t)
}

func TestHealth(t *testing.T) {
	w := serve(t, RouterConfig{Catalog: new(MockCatalogReader)}, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = serve(t, RouterConfig{Catalog: new(MockCatalogReader), Health: stubHealth{err: errors.New("ping failed")}}, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "ping failed")
}

func TestMetricsMountedWhenConfigured(t *testing.T) {
	w := serve(t, RouterConfig{Catalog: new(MockCatalogReader)}, "/metrics")
	assert.Equal(t, http.StatusNotFound, w.Code)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("spshare_requests_total 1\n"))
	})
	w = serve(t, RouterConfig{Catalog: new(MockCatalogReader), Metrics: metrics}, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "spshare_requests_total")
}
