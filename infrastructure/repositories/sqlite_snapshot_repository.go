package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spshare/database"
	"spshare/domain/contracts"
	"spshare/domain/snapshot"
)

// SqliteSnapshotRepository implements contracts.SnapshotRepository with read/write database separation.
type SqliteSnapshotRepository struct {
	*BaseRepository
	now func() time.Time
}

// NewSqliteSnapshotRepository creates a new snapshot repository.
func NewSqliteSnapshotRepository(database *database.Database) contracts.SnapshotRepository {
	return &SqliteSnapshotRepository{
		BaseRepository: NewBaseRepository(database),
		now:            time.Now,
	}
}

const snapshotColumns = `id, site_url, mode, status, started_at, completed_at, error, lists_count, items_count`

// Create starts a running snapshot.
func (r *SqliteSnapshotRepository) Create(ctx context.Context, siteURL, mode string) (*snapshot.Snapshot, error) {
	started := r.now().UTC()
	res, err := r.WriteDB().ExecContext(ctx,
		`INSERT INTO snapshots (site_url, mode, status, started_at) VALUES (?, ?, ?, ?)`,
		siteURL, mode, string(snapshot.StatusRunning), r.ToTimeText(started))
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("snapshot id: %w", err)
	}
	return &snapshot.Snapshot{
		ID:        id,
		SiteURL:   siteURL,
		Mode:      mode,
		Status:    snapshot.StatusRunning,
		StartedAt: started,
	}, nil
}

// Complete marks a running snapshot completed.
func (r *SqliteSnapshotRepository) Complete(ctx context.Context, id int64, listsCount, itemsCount int) error {
	return r.finish(ctx, id,
		`UPDATE snapshots SET status = ?, completed_at = ?, lists_count = ?, items_count = ? WHERE id = ? AND status = ?`,
		string(snapshot.StatusCompleted), r.ToTimeText(r.now()), listsCount, itemsCount, id, string(snapshot.StatusRunning))
}

// Fail marks a running snapshot failed with the cause text.
func (r *SqliteSnapshotRepository) Fail(ctx context.Context, id int64, cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	return r.finish(ctx, id,
		`UPDATE snapshots SET status = ?, completed_at = ?, error = ? WHERE id = ? AND status = ?`,
		string(snapshot.StatusFailed), r.ToTimeText(r.now()), msg, id, string(snapshot.StatusRunning))
}

func (r *SqliteSnapshotRepository) finish(ctx context.Context, id int64, query string, args ...any) error {
	res, err := r.WriteDB().ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update snapshot %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update snapshot %d: %w", id, err)
	}
	if n > 0 {
		return nil
	}
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("snapshot %d: %w", id, contracts.ErrSnapshotFinished)
}

// Get retrieves a snapshot by id.
func (r *SqliteSnapshotRepository) Get(ctx context.Context, id int64) (*snapshot.Snapshot, error) {
	row := r.ReadDB().QueryRowContext(ctx, `SELECT `+snapshotColumns+` FROM snapshots WHERE id = ?`, id)
	s, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("snapshot %d: %w", id, contracts.ErrSnapshotNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %d: %w", id, err)
	}
	return s, nil
}

// List returns recent snapshots, newest first. An empty siteURL lists all
// sites.
func (r *SqliteSnapshotRepository) List(ctx context.Context, siteURL string, limit int) ([]*snapshot.Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + snapshotColumns + ` FROM snapshots`
	args := []any{}
	if siteURL != "" {
		query += ` WHERE site_url = ?`
		args = append(args, siteURL)
	}
	query += ` ORDER BY started_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.ReadDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []*snapshot.Snapshot
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SqliteSnapshotRepository) scan(row rowScanner) (*snapshot.Snapshot, error) {
	var (
		s         snapshot.Snapshot
		status    string
		started   sql.NullString
		completed sql.NullString
		errText   sql.NullString
	)
	if err := row.Scan(&s.ID, &s.SiteURL, &s.Mode, &status, &started, &completed, &errText, &s.ListsCount, &s.ItemsCount); err != nil {
		return nil, err
	}
	s.Status = snapshot.Status(status)
	s.StartedAt = r.FromTimeText(started)
	s.CompletedAt = r.FromTimeTextToPointer(completed)
	s.Error = r.FromNullString(errText)
	return &s, nil
}
