package store

import (
	"database/sql"
	"fmt"
)

// Migration is a single versioned schema change.
type Migration struct {
	Version int
	SQL     string
}

// Migrations lists schema changes in order. Version 1 is the base schema;
// later versions are additive.
var Migrations = []Migration{
	{Version: 1, SQL: schema},
	{Version: 2, SQL: `
		CREATE TABLE IF NOT EXISTS id_mappings (
		    temp_id TEXT PRIMARY KEY,
		    server_id TEXT NOT NULL,
		    entity_type TEXT NOT NULL,
		    mapped_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`},
}

// GetSchemaVersion returns the current schema version from the database.
func (s *Store) GetSchemaVersion() (int, error) {
	var version string
	err := s.conn.QueryRow("SELECT value FROM schema_info WHERE key = 'version'").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		// Table might not exist yet
		return 0, nil
	}
	var v int
	fmt.Sscanf(version, "%d", &v)
	return v, nil
}

func (s *Store) setSchemaVersion(version int) error {
	_, err := s.conn.Exec(`INSERT OR REPLACE INTO schema_info (key, value) VALUES ('version', ?)`,
		fmt.Sprintf("%d", version))
	return err
}

// RunMigrations applies any pending migrations and returns how many ran.
func (s *Store) RunMigrations() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.conn.Exec(`CREATE TABLE IF NOT EXISTS schema_info (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		return 0, fmt.Errorf("create schema_info: %w", err)
	}

	currentVersion, err := s.GetSchemaVersion()
	if err != nil {
		return 0, fmt.Errorf("get schema version: %w", err)
	}

	migrationsRun := 0
	for _, migration := range Migrations {
		if migration.Version <= currentVersion {
			continue
		}
		if _, err := s.conn.Exec(migration.SQL); err != nil {
			return migrationsRun, fmt.Errorf("migration %d: %w", migration.Version, err)
		}
		if err := s.setSchemaVersion(migration.Version); err != nil {
			return migrationsRun, fmt.Errorf("set version %d: %w", migration.Version, err)
		}
		migrationsRun++
	}

	return migrationsRun, nil
}
