package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"spshare/domain/snapshot"
	"spshare/logging"
	"spshare/spquery"
)

// SnapshotStarter starts and cancels background snapshot runs.
type SnapshotStarter interface {
	Start(ctx context.Context, params snapshot.Parameters) (*snapshot.Snapshot, error)
	Cancel(id int64) error
	Running() []int64
}

// SnapshotHandlers triggers snapshot runs over HTTP.
type SnapshotHandlers struct {
	runner   SnapshotStarter
	defaults snapshot.Parameters
	logger   *logging.Logger
}

// NewSnapshotHandlers creates snapshot handlers. defaults supplies the site
// and tuning used when a request leaves them out.
func NewSnapshotHandlers(runner SnapshotStarter, defaults snapshot.Parameters) *SnapshotHandlers {
	return &SnapshotHandlers{
		runner:   runner,
		defaults: defaults,
		logger:   logging.Default().WithComponent("snapshot_handler"),
	}
}

// startRequest is the body of POST /snapshots. Every field is optional.
type startRequest struct {
	SiteURL       string   `json:"site_url"`
	Mode          string   `json:"mode"`
	IncludeHidden *bool    `json:"include_hidden"`
	Lists         []string `json:"lists"`
	PageSize      int      `json:"page_size"`
	Concurrency   int      `json:"concurrency"`
}

func (h *SnapshotHandlers) parameters(req startRequest) snapshot.Parameters {
	p := h.defaults
	if site := strings.TrimSpace(req.SiteURL); site != "" {
		p.SiteURL = site
	}
	if req.Mode != "" {
		p.Mode = spquery.ParseMode(req.Mode)
	}
	if req.IncludeHidden != nil {
		p.IncludeHidden = *req.IncludeHidden
	}
	if len(req.Lists) > 0 {
		p.ListTitles = req.Lists
	}
	if req.PageSize != 0 {
		p.PageSize = req.PageSize
	}
	if req.Concurrency != 0 {
		p.Concurrency = req.Concurrency
	}
	return p
}

// Start handles POST /snapshots and answers 202 with the queued snapshot.
func (h *SnapshotHandlers) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, badRequest("invalid request body: "+err.Error()), h.logger)
			return
		}
	}

	params := h.parameters(req)
	if params.SiteURL == "" {
		writeError(w, badRequest("site_url is required"), h.logger)
		return
	}
	if err := params.Normalize().Validate(); err != nil {
		writeError(w, badRequest(err.Error()), h.logger)
		return
	}

	snap, err := h.runner.Start(r.Context(), params)
	if err != nil {
		h.logger.Error("Failed to start snapshot", "site_url", params.SiteURL, "error", err)
		writeError(w, err, h.logger)
		return
	}

	h.logger.Info("Snapshot started", "snapshot_id", snap.ID, "site_url", snap.SiteURL)
	writeJSON(w, http.StatusAccepted, snap, h.logger)
}

// Cancel handles POST /snapshots/{snapshotID}/cancel.
func (h *SnapshotHandlers) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := int64Param(r, "snapshotID")
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	if err := h.runner.Cancel(id); err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"id": id, "cancelled": true}, h.logger)
}

// Running handles GET /snapshots/running.
func (h *SnapshotHandlers) Running(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"running": h.runner.Running()}, h.logger)
}
