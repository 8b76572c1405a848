package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"spshare/application"
	"spshare/domain/snapshot"
	"spshare/spquery"
)

type MockSnapshotStarter struct {
	mock.Mock
}

func (m *MockSnapshotStarter) Start(ctx context.Context, params snapshot.Parameters) (*snapshot.Snapshot, error) {
	args := m.Called(params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*snapshot.Snapshot), args.Error(1)
}

func (m *MockSnapshotStarter) Cancel(id int64) error {
	return m.Called(id).Error(0)
}

func (m *MockSnapshotStarter) Running() []int64 {
	return m.Called().Get(0).([]int64)
}

func post(cfg RouterConfig, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, target, nil)
	} else {
		req = httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if cfg.Health == nil {
		cfg.Health = stubHealth{}
	}
	w := httptest.NewRecorder()
	NewRouter(cfg).ServeHTTP(w, req)
	return w
}

func TestSnapshotHandlers_Start(t *testing.T) {
	defaults := snapshot.DefaultParameters("https://contoso.sharepoint.com/sites/default")

	tests := []struct {
		name       string
		body       string
		match      func(p snapshot.Parameters) bool
		wantStatus int
	}{
		{
			name: "defaults",
			body: "",
			match: func(p snapshot.Parameters) bool {
				return p.SiteURL == defaults.SiteURL && p.Mode == spquery.Overview && !p.IncludeHidden
			},
			wantStatus: http.StatusAccepted,
		},
		{
			name: "overrides",
			body: `{"site_url":"https://contoso.sharepoint.com/sites/other","mode":"detail","include_hidden":true,"lists":["Documents"],"page_size":100}`,
			match: func(p snapshot.Parameters) bool {
				return p.SiteURL == "https://contoso.sharepoint.com/sites/other" &&
					p.Mode == spquery.Detail && p.IncludeHidden &&
					len(p.ListTitles) == 1 && p.PageSize == 100
			},
			wantStatus: http.StatusAccepted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := new(MockSnapshotStarter)
			runner.On("Start", mock.MatchedBy(tt.match)).
				Return(&snapshot.Snapshot{ID: 21, Status: snapshot.StatusRunning}, nil)

			w := post(RouterConfig{Catalog: new(MockCatalogReader), Runner: runner, SnapshotDefaults: defaults}, "/snapshots", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), `"id":21`)
			runner.AssertExpectations(t)
		})
	}
}

func TestSnapshotHandlers_StartRejects(t *testing.T) {
	runner := new(MockSnapshotStarter)
	cfg := RouterConfig{Catalog: new(MockCatalogReader), Runner: runner}

	w := post(cfg, "/snapshots", `{"mode":"detail"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "site_url is required")

	w = post(cfg, "/snapshots", `{"site_url":"/sites/relative"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(cfg, "/snapshots", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	runner.AssertNotCalled(t, "Start", mock.Anything)
}

func TestSnapshotHandlers_Cancel(t *testing.T) {
	runner := new(MockSnapshotStarter)
	runner.On("Cancel", int64(3)).Return(nil)
	runner.On("Cancel", int64(4)).Return(application.ErrSnapshotNotRunning)
	cfg := RouterConfig{Catalog: new(MockCatalogReader), Runner: runner}

	w := post(cfg, "/snapshots/3/cancel", "")
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = post(cfg, "/snapshots/4/cancel", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "not running")

	runner.AssertExpectations(t)
}

func TestSnapshotHandlers_Running(t *testing.T) {
	runner := new(MockSnapshotStarter)
	runner.On("Running").Return([]int64{5, 8})

	w := serve(t, RouterConfig{Catalog: new(MockCatalogReader), Runner: runner}, "/snapshots/running")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"running":[5,8]}`, w.Body.String())
}

func TestReadOnlyRouterHasNoStart(t *testing.T) {
	w := post(RouterConfig{Catalog: new(MockCatalogReader)}, "/snapshots", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
