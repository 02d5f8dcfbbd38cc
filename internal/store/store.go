// Package store persists the collected graph into SQLite. Nodes are keyed
// by their content-addressed entity id, so re-running analysis upserts in
// place instead of growing the tables.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Querier abstracts *sql.DB and *sql.Tx so store methods work in both contexts.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Store wraps a SQLite connection for graph storage.
type Store struct {
	db     *sql.DB
	q      Querier // active querier: db or tx
	dbPath string
}

// Open opens or creates a SQLite database at the given path.
// ":memory:" opens a private in-memory database.
func Open(dbPath string) (*Store, error) {
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"
	if dbPath == ":memory:" {
		dsn = ":memory:?_foreign_keys=on"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// a single writer avoids SQLITE_BUSY on the batch upserts
	db.SetMaxOpenConns(1)

	s := &Store{db: db, dbPath: dbPath}
	s.q = s.db
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// WithTransaction executes fn within a single SQLite transaction. The
// callback receives a transaction-scoped Store; the receiver's q field is
// never mutated, so concurrent readers on s are unaffected.
func (s *Store) WithTransaction(fn func(txStore *Store) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	txStore := &Store{db: s.db, q: tx, dbPath: s.dbPath}
	if err := fn(txStore); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying sql.DB (for advanced queries).
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS repositories (
		entity_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		url TEXT DEFAULT '',
		root_path TEXT NOT NULL,
		indexed_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS nodes (
		entity_id TEXT PRIMARY KEY,
		repository TEXT NOT NULL,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		file_path TEXT DEFAULT '',
		language TEXT DEFAULT '',
		start_line INTEGER DEFAULT 0,
		end_line INTEGER DEFAULT 0,
		start_column INTEGER DEFAULT 0,
		end_column INTEGER DEFAULT 0,
		parent_id TEXT DEFAULT '',
		properties TEXT DEFAULT '{}',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_nodes_kind ON nodes(repository, kind);
	CREATE INDEX IF NOT EXISTS idx_nodes_name ON nodes(repository, name);
	CREATE INDEX IF NOT EXISTS idx_nodes_file ON nodes(repository, file_path);
	CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id);

	CREATE TABLE IF NOT EXISTS edges (
		entity_id TEXT PRIMARY KEY,
		repository TEXT NOT NULL,
		source_id TEXT NOT NULL REFERENCES nodes(entity_id) ON DELETE CASCADE,
		target_id TEXT NOT NULL REFERENCES nodes(entity_id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		weight INTEGER DEFAULT 0,
		properties TEXT DEFAULT '{}',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id, type);
	CREATE INDEX IF NOT EXISTS idx_edges_target ON edges(target_id, type);
	CREATE INDEX IF NOT EXISTS idx_edges_type ON edges(repository, type);
	`
	_, err := s.db.Exec(schema)
	return err
}

// marshalProps serializes properties to JSON.
func marshalProps(props map[string]any) string {
	if props == nil {
		return "{}"
	}
	b, err := json.Marshal(props)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// unmarshalProps deserializes JSON properties.
func unmarshalProps(data string) map[string]any {
	if data == "" {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return map[string]any{}
	}
	return m
}

// Now returns the current time in ISO 8601 format.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
