// Package snapshot holds the catalog records written by a snapshot run.
package snapshot

import (
	"encoding/json"
	"fmt"
	"time"

	"spshare/domain/sharepoint"
)

// Status is the lifecycle state of a snapshot.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Snapshot is one catalogued enumeration of a site.
type Snapshot struct {
	ID          int64      `json:"id"`
	SiteURL     string     `json:"site_url"`
	Mode        string     `json:"mode"`
	Status      Status     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	ListsCount  int        `json:"lists_count"`
	ItemsCount  int        `json:"items_count"`
}

// Duration returns how long the run took, or zero while it is running.
func (s *Snapshot) Duration() time.Duration {
	if s.CompletedAt == nil {
		return 0
	}
	return s.CompletedAt.Sub(s.StartedAt)
}

func (s *Snapshot) IsFinished() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed
}

// SiteRecord is the catalogued web.
type SiteRecord struct {
	SnapshotID  int64           `json:"snapshot_id"`
	SiteID      string          `json:"site_id"`
	URL         string          `json:"url"`
	Title       string          `json:"title"`
	WebTemplate string          `json:"web_template"`
	Created     time.Time       `json:"created"`
	Raw         json.RawMessage `json:"raw"`
}

func NewSiteRecord(snapshotID int64, site *sharepoint.Site) (SiteRecord, error) {
	raw, err := json.Marshal(site)
	if err != nil {
		return SiteRecord{}, fmt.Errorf("encode site %s: %w", site.URL, err)
	}
	return SiteRecord{
		SnapshotID:  snapshotID,
		SiteID:      site.ID,
		URL:         site.URL,
		Title:       site.Title,
		WebTemplate: site.WebTemplate,
		Created:     site.Created.Time,
		Raw:         raw,
	}, nil
}

// ListRecord is a catalogued list.
type ListRecord struct {
	SnapshotID   int64           `json:"snapshot_id"`
	ListID       string          `json:"list_id"`
	Title        string          `json:"title"`
	BaseTemplate int             `json:"base_template"`
	ItemCount    int             `json:"item_count"`
	Hidden       bool            `json:"hidden"`
	LastModified time.Time       `json:"last_modified"`
	Raw          json.RawMessage `json:"raw"`
}

func NewListRecord(snapshotID int64, list *sharepoint.List) (ListRecord, error) {
	raw, err := json.Marshal(list)
	if err != nil {
		return ListRecord{}, fmt.Errorf("encode list %s: %w", list.Title, err)
	}
	return ListRecord{
		SnapshotID:   snapshotID,
		ListID:       list.ID,
		Title:        list.Title,
		BaseTemplate: int(list.BaseTemplate),
		ItemCount:    list.ItemCount,
		Hidden:       list.Hidden,
		LastModified: list.LastItemModifiedDate.Time,
		Raw:          raw,
	}, nil
}

// ItemRecord is a catalogued list item. Raw keeps every loaded field.
type ItemRecord struct {
	SnapshotID  int64           `json:"snapshot_id"`
	ListID      string          `json:"list_id"`
	ItemID      int             `json:"item_id"`
	FileRef     string          `json:"file_ref"`
	FileLeafRef string          `json:"file_leaf_ref"`
	IsFolder    bool            `json:"is_folder"`
	FileSize    int64           `json:"file_size"`
	Modified    time.Time       `json:"modified"`
	Raw         json.RawMessage `json:"raw"`
}

func NewItemRecord(snapshotID int64, listID string, item *sharepoint.ListItem) (ItemRecord, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return ItemRecord{}, fmt.Errorf("encode item %d: %w", item.ID, err)
	}
	return ItemRecord{
		SnapshotID:  snapshotID,
		ListID:      listID,
		ItemID:      item.ID,
		FileRef:     item.FileRef,
		FileLeafRef: item.FileLeafRef,
		IsFolder:    item.IsFolder(),
		FileSize:    item.FileSize(),
		Modified:    item.Modified.Time,
		Raw:         raw,
	}, nil
}
