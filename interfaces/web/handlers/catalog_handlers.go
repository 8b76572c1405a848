package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"spshare/application"
	"spshare/domain/snapshot"
	"spshare/logging"
)

// CatalogReader is the read side of the catalog the handlers serve.
type CatalogReader interface {
	ListSnapshots(ctx context.Context, siteURL string, limit int) ([]*snapshot.Snapshot, error)
	GetSnapshot(ctx context.Context, id int64) (*application.SnapshotDetail, error)
	GetItems(ctx context.Context, id int64, listID string, afterID, limit int) (*application.ItemPage, error)
}

// CatalogHandlers serves snapshots and their catalogued entities as JSON.
type CatalogHandlers struct {
	catalog CatalogReader
	logger  *logging.Logger
}

// NewCatalogHandlers creates catalog handlers over the given reader.
func NewCatalogHandlers(catalog CatalogReader) *CatalogHandlers {
	return &CatalogHandlers{
		catalog: catalog,
		logger:  logging.Default().WithComponent("catalog_handler"),
	}
}

// ListSnapshots handles GET /snapshots?site=&limit=.
func (h *CatalogHandlers) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 0)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	snaps, err := h.catalog.ListSnapshots(r.Context(), r.URL.Query().Get("site"), limit)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	if snaps == nil {
		snaps = []*snapshot.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snaps, h.logger)
}

// GetSnapshot handles GET /snapshots/{snapshotID}.
func (h *CatalogHandlers) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "snapshotID")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	detail, err := h.catalog.GetSnapshot(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, detail, h.logger)
}

// ListItems handles GET /snapshots/{snapshotID}/lists/{listID}/items?after=&limit=.
func (h *CatalogHandlers) ListItems(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "snapshotID")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	after, err := intQuery(r, "after", 0)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	limit, err := intQuery(r, "limit", 0)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	page, err := h.catalog.GetItems(r.Context(), id, chi.URLParam(r, "listID"), after, limit)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, page, h.logger)
}
