package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spshare/database"
	"spshare/domain/contracts"
	"spshare/domain/snapshot"
)

// SqliteCatalogRepository implements contracts.CatalogRepository.
type SqliteCatalogRepository struct {
	*BaseRepository
}

// NewSqliteCatalogRepository creates a new catalog repository.
func NewSqliteCatalogRepository(database *database.Database) contracts.CatalogRepository {
	return &SqliteCatalogRepository{
		BaseRepository: NewBaseRepository(database),
	}
}

// SaveSite upserts the site of a snapshot.
func (r *SqliteCatalogRepository) SaveSite(ctx context.Context, site snapshot.SiteRecord) error {
	_, err := r.WriteDB().ExecContext(ctx, `
		INSERT INTO snapshot_sites (snapshot_id, site_id, url, title, web_template, created, raw_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (snapshot_id, url) DO UPDATE SET
			site_id = excluded.site_id,
			title = excluded.title,
			web_template = excluded.web_template,
			created = excluded.created,
			raw_json = excluded.raw_json`,
		site.SnapshotID, site.SiteID, site.URL, site.Title, site.WebTemplate,
		r.ToTimeText(site.Created), string(site.Raw))
	if err != nil {
		return fmt.Errorf("save site %s: %w", site.URL, err)
	}
	return nil
}

// SaveLists upserts lists in one transaction.
func (r *SqliteCatalogRepository) SaveLists(ctx context.Context, lists []snapshot.ListRecord) error {
	if len(lists) == 0 {
		return nil
	}
	for _, l := range lists[1:] {
		if l.SnapshotID != lists[0].SnapshotID {
			return ErrSnapshotMismatch{Expected: lists[0].SnapshotID, Actual: l.SnapshotID}
		}
	}
	return r.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO snapshot_lists (snapshot_id, list_id, title, base_template, item_count, hidden, last_modified, raw_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (snapshot_id, list_id) DO UPDATE SET
				title = excluded.title,
				base_template = excluded.base_template,
				item_count = excluded.item_count,
				hidden = excluded.hidden,
				last_modified = excluded.last_modified,
				raw_json = excluded.raw_json`)
		if err != nil {
			return fmt.Errorf("prepare list insert: %w", err)
		}
		defer stmt.Close()

		for _, l := range lists {
			if _, err := stmt.ExecContext(ctx, l.SnapshotID, l.ListID, l.Title, l.BaseTemplate, l.ItemCount,
				r.ToBoolInt(l.Hidden), r.ToTimeText(l.LastModified), string(l.Raw)); err != nil {
				return fmt.Errorf("save list %s: %w", l.Title, err)
			}
		}
		return nil
	})
}

// SaveItems upserts a batch of items in one transaction.
func (r *SqliteCatalogRepository) SaveItems(ctx context.Context, items []snapshot.ItemRecord) error {
	if len(items) == 0 {
		return nil
	}
	for _, it := range items[1:] {
		if it.SnapshotID != items[0].SnapshotID {
			return ErrSnapshotMismatch{Expected: items[0].SnapshotID, Actual: it.SnapshotID}
		}
	}
	return r.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO snapshot_items (snapshot_id, list_id, item_id, file_ref, file_leaf_ref, is_folder, file_size, modified, raw_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (snapshot_id, list_id, item_id) DO UPDATE SET
				file_ref = excluded.file_ref,
				file_leaf_ref = excluded.file_leaf_ref,
				is_folder = excluded.is_folder,
				file_size = excluded.file_size,
				modified = excluded.modified,
				raw_json = excluded.raw_json`)
		if err != nil {
			return fmt.Errorf("prepare item insert: %w", err)
		}
		defer stmt.Close()

		for _, it := range items {
			if _, err := stmt.ExecContext(ctx, it.SnapshotID, it.ListID, it.ItemID, it.FileRef, it.FileLeafRef,
				r.ToBoolInt(it.IsFolder), it.FileSize, r.ToTimeText(it.Modified), string(it.Raw)); err != nil {
				return fmt.Errorf("save item %d of list %s: %w", it.ItemID, it.ListID, err)
			}
		}
		return nil
	})
}

// GetSite returns the catalogued site of a snapshot.
func (r *SqliteCatalogRepository) GetSite(ctx context.Context, snapshotID int64) (*snapshot.SiteRecord, error) {
	var (
		s       snapshot.SiteRecord
		created sql.NullString
		raw     string
	)
	err := r.ReadDB().QueryRowContext(ctx, `
		SELECT snapshot_id, site_id, url, title, web_template, created, raw_json
		FROM snapshot_sites WHERE snapshot_id = ? ORDER BY url LIMIT 1`, snapshotID).
		Scan(&s.SnapshotID, &s.SiteID, &s.URL, &s.Title, &s.WebTemplate, &created, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("site of snapshot %d: %w", snapshotID, contracts.ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get site of snapshot %d: %w", snapshotID, err)
	}
	s.Created = r.FromTimeText(created)
	s.Raw = []byte(raw)
	return &s, nil
}

// GetLists returns the lists of a snapshot ordered by title.
func (r *SqliteCatalogRepository) GetLists(ctx context.Context, snapshotID int64) ([]snapshot.ListRecord, error) {
	rows, err := r.ReadDB().QueryContext(ctx, `
		SELECT snapshot_id, list_id, title, base_template, item_count, hidden, last_modified, raw_json
		FROM snapshot_lists WHERE snapshot_id = ? ORDER BY title`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("get lists of snapshot %d: %w", snapshotID, err)
	}
	defer rows.Close()

	var out []snapshot.ListRecord
	for rows.Next() {
		var (
			l        snapshot.ListRecord
			hidden   int
			modified sql.NullString
			raw      string
		)
		if err := rows.Scan(&l.SnapshotID, &l.ListID, &l.Title, &l.BaseTemplate, &l.ItemCount, &hidden, &modified, &raw); err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		l.Hidden = hidden != 0
		l.LastModified = r.FromTimeText(modified)
		l.Raw = []byte(raw)
		out = append(out, l)
	}
	return out, rows.Err()
}

// GetItems returns up to limit items with item_id > afterID.
func (r *SqliteCatalogRepository) GetItems(ctx context.Context, snapshotID int64, listID string, afterID, limit int) ([]snapshot.ItemRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.ReadDB().QueryContext(ctx, `
		SELECT snapshot_id, list_id, item_id, file_ref, file_leaf_ref, is_folder, file_size, modified, raw_json
		FROM snapshot_items
		WHERE snapshot_id = ? AND list_id = ? AND item_id > ?
		ORDER BY item_id LIMIT ?`, snapshotID, listID, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("get items of list %s: %w", listID, err)
	}
	defer rows.Close()

	var out []snapshot.ItemRecord
	for rows.Next() {
		var (
			it       snapshot.ItemRecord
			folder   int
			modified sql.NullString
			raw      string
		)
		if err := rows.Scan(&it.SnapshotID, &it.ListID, &it.ItemID, &it.FileRef, &it.FileLeafRef, &folder, &it.FileSize, &modified, &raw); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		it.IsFolder = folder != 0
		it.Modified = r.FromTimeText(modified)
		it.Raw = []byte(raw)
		out = append(out, it)
	}
	return out, rows.Err()
}
