package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"spshare/logging"

	_ "modernc.org/sqlite"
)

// Config holds database configuration
type Config struct {
	Path              string        `yaml:"path"`
	MaxOpenConns      int           `yaml:"max_open_conns"`
	MaxIdleConns      int           `yaml:"max_idle_conns"`
	ConnMaxLifetime   time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime   time.Duration `yaml:"conn_max_idle_time"`
	BusyTimeoutMs     int           `yaml:"busy_timeout_ms"`
	EnableForeignKeys bool          `yaml:"enable_foreign_keys"`
	EnableWAL         bool          `yaml:"enable_wal"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Path:              "./spshare.db",
		MaxOpenConns:      25,
		MaxIdleConns:      5,
		ConnMaxLifetime:   time.Hour,
		ConnMaxIdleTime:   15 * time.Minute,
		BusyTimeoutMs:     5000,
		EnableForeignKeys: true,
		EnableWAL:         true,
	}
}

// Database wraps the catalog connections: a pool for reads and a single
// serialized connection for writes.
type Database struct {
	readDB  *sql.DB
	writeDB *sql.DB
	config  Config
	logger  *logging.Logger
}

// New opens the catalog at config.Path and applies pending migrations.
func New(config Config, logger *logging.Logger) (*Database, error) {
	if logger == nil {
		logger = logging.Default().WithComponent("database")
	}
	dbExists := fileExists(config.Path)

	logger.Database("Opening database connections",
		"path", config.Path,
		"exists", dbExists,
		"read_max_open_conns", config.MaxOpenConns,
		"write_max_open_conns", 1)

	readDB, err := sql.Open("sqlite", buildDSN(config, false))
	if err != nil {
		return nil, fmt.Errorf("failed to open read database: %w", err)
	}
	readDB.SetMaxOpenConns(config.MaxOpenConns)
	readDB.SetMaxIdleConns(config.MaxIdleConns)
	readDB.SetConnMaxLifetime(config.ConnMaxLifetime)
	readDB.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	writeDB, err := sql.Open("sqlite", buildDSN(config, true))
	if err != nil {
		readDB.Close()
		return nil, fmt.Errorf("failed to open write database: %w", err)
	}
	// Single connection forces serialization
	writeDB.SetMaxOpenConns(1)
	writeDB.SetMaxIdleConns(1)
	writeDB.SetConnMaxLifetime(config.ConnMaxLifetime)
	writeDB.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	database := &Database{
		readDB:  readDB,
		writeDB: writeDB,
		config:  config,
		logger:  logger,
	}

	if err := database.initialize(); err != nil {
		readDB.Close()
		writeDB.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.runMigrations(context.Background()); err != nil {
		readDB.Close()
		writeDB.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	logger.Database("Database initialized successfully",
		"path", config.Path,
		"existed", dbExists,
		"wal_mode", config.EnableWAL)

	return database, nil
}

// buildDSN constructs the modernc DSN. Pragmas are applied to every new
// connection the pool opens.
func buildDSN(config Config, write bool) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", config.BusyTimeoutMs))
	if config.EnableForeignKeys {
		q.Add("_pragma", "foreign_keys(1)")
	}
	if config.EnableWAL {
		q.Add("_pragma", "journal_mode(WAL)")
		q.Add("_pragma", "synchronous(NORMAL)")
	}
	q.Add("_pragma", "temp_store(MEMORY)")
	if write {
		q.Set("_txlock", "immediate")
	}
	return "file:" + config.Path + "?" + q.Encode()
}

func (d *Database) initialize() error {
	conns := map[string]*sql.DB{"read": d.readDB, "write": d.writeDB}
	for connType, conn := range conns {
		if err := conn.Ping(); err != nil {
			return fmt.Errorf("failed to ping %s database: %w", connType, err)
		}
		if !d.config.EnableWAL {
			continue
		}
		var journalMode string
		if err := conn.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
			return fmt.Errorf("failed to read journal mode on %s connection: %w", connType, err)
		}
		if journalMode != "wal" {
			d.logger.Warn("WAL mode not enabled", "connection", connType, "journal_mode", journalMode)
		}
	}
	d.logPoolStats()
	return nil
}

// ReadDB returns the read connection pool.
func (d *Database) ReadDB() *sql.DB {
	return d.readDB
}

// WriteDB returns the serialized write connection.
func (d *Database) WriteDB() *sql.DB {
	return d.writeDB
}

// Close closes both database connections
func (d *Database) Close() error {
	d.logger.Database("Closing database connections")

	if d.config.EnableWAL {
		if _, err := d.writeDB.Exec("PRAGMA wal_checkpoint(TRUNCATE);"); err != nil {
			d.logger.Warn("failed to checkpoint WAL", "error", err)
		}
	}

	var errs []error
	if err := d.readDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("read connection: %w", err))
	}
	if err := d.writeDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("write connection: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to close connections: %v", errs)
	}
	return nil
}

// Health checks database connectivity and returns pool statistics for both connections
func (d *Database) Health(ctx context.Context) (map[string]any, error) {
	if err := d.readDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("read database ping failed: %w", err)
	}
	if err := d.writeDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("write database ping failed: %w", err)
	}
	return map[string]any{
		"read_pool":  poolStats(d.readDB.Stats(), d.config.MaxOpenConns),
		"write_pool": poolStats(d.writeDB.Stats(), 1),
	}, nil
}

func poolStats(s sql.DBStats, maxOpen int) map[string]any {
	return map[string]any{
		"open_connections": s.OpenConnections,
		"in_use":           s.InUse,
		"idle":             s.Idle,
		"wait_count":       s.WaitCount,
		"wait_duration":    s.WaitDuration.String(),
		"max_open_conns":   maxOpen,
	}
}

func (d *Database) logPoolStats() {
	readStats := d.readDB.Stats()
	writeStats := d.writeDB.Stats()

	d.logger.Database("Read connection pool stats",
		"open_connections", readStats.OpenConnections,
		"idle", readStats.Idle)
	d.logger.Database("Write connection pool stats",
		"open_connections", writeStats.OpenConnections,
		"idle", writeStats.Idle)
}

// WithTx executes fn within a write transaction. The transaction is rolled
// back when fn returns an error.
func (d *Database) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := d.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			d.logger.Error("Failed to rollback transaction", "error", rollbackErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
