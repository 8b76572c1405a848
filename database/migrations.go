package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is one schema change, named "<version>_<name>.sql".
type Migration struct {
	Version int64
	Name    string
	SQL     string
}

// loadMigrations reads every *.sql file under dir in fsys, ordered by
// version. Versions must be unique.
func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	paths, err := fs.Glob(fsys, path.Join(dir, "*"))
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}

	byVersion := make(map[int64]string, len(paths))
	migrations := make([]Migration, 0, len(paths))
	for _, p := range paths {
		file := path.Base(p)
		name, ok := strings.CutSuffix(file, ".sql")
		if !ok {
			return nil, fmt.Errorf("unexpected file in migrations: %s", file)
		}
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			return nil, fmt.Errorf("migration %s: want <version>_<name>.sql", file)
		}
		version, err := strconv.ParseInt(prefix, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("migration %s: bad version: %w", file, err)
		}
		if prev, dup := byVersion[version]; dup {
			return nil, fmt.Errorf("duplicate migration version %d: %s and %s", version, prev, name)
		}
		byVersion[version] = name

		body, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", file, err)
		}
		migrations = append(migrations, Migration{Version: version, Name: name, SQL: string(body)})
	}

	slices.SortFunc(migrations, func(a, b Migration) int {
		switch {
		case a.Version < b.Version:
			return -1
		case a.Version > b.Version:
			return 1
		}
		return 0
	})
	return migrations, nil
}

func embeddedMigrations() ([]Migration, error) {
	return loadMigrations(migrationFiles, "migrations")
}

const migrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version    INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
)`

// runMigrations applies every embedded migration not yet recorded in
// schema_migrations, each in its own transaction.
func (d *Database) runMigrations(ctx context.Context) error {
	migrations, err := embeddedMigrations()
	if err != nil {
		return err
	}
	if _, err := d.writeDB.ExecContext(ctx, migrationsTable); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied, err := d.appliedVersions(ctx)
	if err != nil {
		return err
	}

	pending := 0
	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		d.logger.Database("Applying migration", "version", m.Version, "name", m.Name)
		if err := d.WithTx(ctx, func(tx *sql.Tx) error { return applyMigration(ctx, tx, m) }); err != nil {
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
		pending++
	}

	d.logger.Database("Schema up to date", "applied", pending, "total", len(migrations))
	return nil
}

func applyMigration(ctx context.Context, tx *sql.Tx, m Migration) error {
	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.Version, m.Name)
	return err
}

func (d *Database) appliedVersions(ctx context.Context) (map[int64]bool, error) {
	rows, err := d.writeDB.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int64]bool)
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// fileExists reports whether path names a non-empty file.
func fileExists(path string) bool {
	if path == ":memory:" {
		return false
	}
	stat, err := os.Stat(path)
	return err == nil && stat.Size() > 0
}
