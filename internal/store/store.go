// Package store is the on-device persistence layer: one SQLite database with
// one table per entity kind. It owns all local state and requires no network.
// Access is serialized internally, so callers need no external locking.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

const dbFile = "fitsync.db"

// Store wraps the database connection.
type Store struct {
	mu   sync.Mutex
	conn *sql.DB
}

// Open opens an existing database and runs any pending migrations.
func Open(baseDir string) (*Store, error) {
	dbPath := filepath.Join(baseDir, dbFile)

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found: run 'fitsync init' first")
	}

	return open(dbPath)
}

// Initialize creates the database directory and database, then runs migrations.
func Initialize(baseDir string) (*Store, error) {
	dbPath := filepath.Join(baseDir, dbFile)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	return open(dbPath)
}

// OpenMemory opens an in-memory database for tests.
func OpenMemory() (*Store, error) {
	return open(":memory:")
}

func open(dbPath string) (*Store, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Serialize everything through one connection; the mutex above guards
	// multi-statement operations.
	conn.SetMaxOpenConns(1)

	// WAL for concurrent reads while writes are serialized
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	conn.Exec("PRAGMA synchronous=NORMAL")
	conn.Exec("PRAGMA foreign_keys=ON")

	s := &Store{conn: conn}
	if _, err := s.RunMigrations(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Conn exposes the raw connection for components that own their own tables
// (the offline queue). Callers must not touch entity tables through it.
func (s *Store) Conn() *sql.DB {
	return s.conn
}

// UpsertRow inserts or replaces a row in table keyed by the "id" column.
// Boolean values are coerced to 0/1 and nil values are dropped rather than
// written, so partial rows never null out existing columns on conflict.
func (s *Store) UpsertRow(table string, row map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cols := make([]string, 0, len(row))
	for col, val := range row {
		if val == nil {
			continue
		}
		cols = append(cols, col)
	}
	if len(cols) == 0 {
		return fmt.Errorf("upsert %s: empty row", table)
	}
	sort.Strings(cols)

	args := make([]any, 0, len(cols))
	updates := make([]string, 0, len(cols))
	for _, col := range cols {
		val := row[col]
		if b, ok := val.(bool); ok {
			if b {
				val = 1
			} else {
				val = 0
			}
		}
		args = append(args, val)
		if col != "id" {
			updates = append(updates, fmt.Sprintf("%s=excluded.%s", col, col))
		}
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(id) DO UPDATE SET %s",
		table,
		strings.Join(cols, ", "),
		strings.TrimRight(strings.Repeat("?, ", len(cols)), ", "),
		strings.Join(updates, ", "),
	)

	if _, err := s.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("upsert %s: %w", table, err)
	}
	return nil
}

// DeleteRow removes a row by id. Deleting a missing row is not an error.
func (s *Store) DeleteRow(table, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.conn.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id); err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return nil
}
