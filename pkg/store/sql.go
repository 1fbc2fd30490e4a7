package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// SQL persists keys in a relational database. It works with any
// database/sql compatible driver. Requires a table with schema:
//
//	CREATE TABLE filament_values (
//	    id CHAR(16) PRIMARY KEY,
//	    name TEXT NOT NULL,
//	    value TEXT NOT NULL
//	);
//
// The primary key is the xxhash of the signal key rendered as fixed-width
// hex, so arbitrarily long keys fit a short indexed column; the full key
// is kept alongside for inspection.
type SQL struct {
	db        *sql.DB
	tableName string
	dialect   Dialect

	mu     sync.Mutex
	closed bool
}

// Dialect selects the SQL syntax for query generation.
type Dialect int

const (
	// DialectPostgreSQL uses PostgreSQL syntax ($1, $2 placeholders).
	DialectPostgreSQL Dialect = iota
	// DialectMySQL uses MySQL syntax (? placeholders).
	DialectMySQL
	// DialectSQLite uses SQLite syntax (? placeholders).
	DialectSQLite
)

// SQLOption configures the SQL store.
type SQLOption func(*sqlConfig)

type sqlConfig struct {
	tableName string
	dialect   Dialect
}

// WithTableName sets the table name. Default: "filament_values".
func WithTableName(name string) SQLOption {
	return func(c *sqlConfig) { c.tableName = name }
}

// WithDialect sets the SQL dialect. Default: DialectPostgreSQL.
func WithDialect(d Dialect) SQLOption {
	return func(c *sqlConfig) { c.dialect = d }
}

// NewSQL creates a SQL-backed store on an existing connection pool.
func NewSQL(db *sql.DB, opts ...SQLOption) *SQL {
	cfg := &sqlConfig{
		tableName: "filament_values",
		dialect:   DialectPostgreSQL,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &SQL{db: db, tableName: cfg.tableName, dialect: cfg.dialect}
}

// hashKey renders the xxhash of key as fixed-width hex.
func hashKey(key string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(key))
}

// placeholder returns the placeholder syntax for the dialect.
func (s *SQL) placeholder(n int) string {
	if s.dialect == DialectPostgreSQL {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// upsertQuery returns the dialect-specific insert-or-update statement.
func (s *SQL) upsertQuery() string {
	switch s.dialect {
	case DialectMySQL:
		return fmt.Sprintf(`
			INSERT INTO %s (id, name, value)
			VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE
				name = VALUES(name),
				value = VALUES(value)
		`, s.tableName)
	case DialectSQLite:
		return fmt.Sprintf(`
			INSERT OR REPLACE INTO %s (id, name, value)
			VALUES (?, ?, ?)
		`, s.tableName)
	default:
		return fmt.Sprintf(`
			INSERT INTO %s (id, name, value)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				value = EXCLUDED.value
		`, s.tableName)
	}
}

// Load returns the value under key.
func (s *SQL) Load(ctx context.Context, key string) (string, bool, error) {
	if s.isClosed() {
		return "", false, ErrClosed
	}
	query := fmt.Sprintf(`SELECT value FROM %s WHERE id = %s`, s.tableName, s.placeholder(1))
	var value string
	err := s.db.QueryRowContext(ctx, query, hashKey(key)).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// Save stores value under key.
func (s *SQL) Save(ctx context.Context, key, value string) error {
	if s.isClosed() {
		return ErrClosed
	}
	_, err := s.db.ExecContext(ctx, s.upsertQuery(), hashKey(key), key, value)
	return err
}

// Delete removes key.
func (s *SQL) Delete(ctx context.Context, key string) error {
	if s.isClosed() {
		return ErrClosed
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = %s`, s.tableName, s.placeholder(1))
	_, err := s.db.ExecContext(ctx, query, hashKey(key))
	return err
}

// Close marks the store closed. The underlying connection pool is not
// closed, as it may be shared with other components.
func (s *SQL) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *SQL) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// CreateTable creates the value table if it doesn't exist. This is a
// convenience method for development and testing.
func (s *SQL) CreateTable(ctx context.Context) error {
	var query string
	switch s.dialect {
	case DialectMySQL:
		query = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id CHAR(16) PRIMARY KEY,
				name TEXT NOT NULL,
				value TEXT NOT NULL
			)
		`, s.tableName)
	case DialectSQLite:
		query = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				value TEXT NOT NULL
			)
		`, s.tableName)
	default:
		query = fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id CHAR(16) PRIMARY KEY,
				name TEXT NOT NULL,
				value TEXT NOT NULL
			)
		`, s.tableName)
	}
	_, err := s.db.ExecContext(ctx, query)
	return err
}

var _ Store = (*SQL)(nil)
