// Package sqlite provides an embedded identifier history store on modernc.org/sqlite.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// registers the "sqlite" driver
	_ "modernc.org/sqlite"
)

// Schema creates the history table and its indexes.
const Schema = `
CREATE TABLE IF NOT EXISTS sys_identifier_history (
	identifier TEXT    NOT NULL,
	type_tag   TEXT    NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_identifier_history_identifier
	ON sys_identifier_history (identifier);
CREATE INDEX IF NOT EXISTS ix_identifier_history_type_created
	ON sys_identifier_history (type_tag, created_at DESC);
`

type openConfig struct {
	busyTimeout int
	synchronous string
	migrate     bool
}

// OpenOption customises Open.
type OpenOption func(*openConfig)

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds. Default: 10000.
func WithBusyTimeout(ms int) OpenOption { return func(c *openConfig) { c.busyTimeout = ms } }

// WithSynchronous sets PRAGMA synchronous. Default: "NORMAL".
func WithSynchronous(mode string) OpenOption { return func(c *openConfig) { c.synchronous = mode } }

// WithoutMigrate skips creating the schema.
func WithoutMigrate() OpenOption { return func(c *openConfig) { c.migrate = false } }

// Open opens the database at path, applies pragmas and creates the schema.
// Use ":memory:" for a throwaway database.
//
// The pool is limited to one connection: every ":memory:" connection is a
// separate database, and SQLite serializes writers anyway.
func Open(path string, opts ...OpenOption) (*sql.DB, error) {
	cfg := openConfig{busyTimeout: 10_000, synchronous: "NORMAL", migrate: true}
	for _, o := range opts {
		o(&cfg)
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout),
		fmt.Sprintf("PRAGMA synchronous = %s", cfg.synchronous),
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}

	if cfg.migrate {
		if _, err := db.Exec(Schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: exec schema: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return db, nil
}
