package repositories

import (
	"context"
	"database/sql"
	"time"

	"spshare/database"
)

// BaseRepository provides common SQL type conversion methods and database access that can be embedded in all repositories.
type BaseRepository struct {
	db *database.Database
}

// NewBaseRepository creates a new BaseRepository with database access
func NewBaseRepository(database *database.Database) *BaseRepository {
	return &BaseRepository{
		db: database,
	}
}

// ReadDB returns the pool used for SELECT statements.
func (b *BaseRepository) ReadDB() *sql.DB {
	return b.db.ReadDB()
}

// WriteDB returns the serialized connection used for INSERT/UPDATE/DELETE.
func (b *BaseRepository) WriteDB() *sql.DB {
	return b.db.WriteDB()
}

// WithTx executes a function within a write transaction
func (b *BaseRepository) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return b.db.WithTx(ctx, fn)
}

// FromNullString safely converts sql.NullString to string.
// Returns empty string if the SQL value is NULL.
func (b *BaseRepository) FromNullString(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}

// ToNullString converts a string to sql.NullString.
// Empty string becomes NULL for database storage.
func (b *BaseRepository) ToNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

// timeLayout is RFC 3339 with a fixed-width fraction so stored
// timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ToTimeText renders t in UTC. The zero time becomes NULL.
func (b *BaseRepository) ToTimeText(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: t.UTC().Format(timeLayout), Valid: true}
}

// FromTimeText parses a stored timestamp. NULL or unparsable text yields
// the zero time.
func (b *BaseRepository) FromTimeText(ns sql.NullString) time.Time {
	if !ns.Valid {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, ns.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FromTimeTextToPointer is FromTimeText returning nil for NULL.
func (b *BaseRepository) FromTimeTextToPointer(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t := b.FromTimeText(ns)
	return &t
}

// ToBoolInt stores a bool as 0 or 1.
func (b *BaseRepository) ToBoolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
