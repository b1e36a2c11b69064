package store

import (
	"database/sql"
	"fmt"
)

// RecordIDMapping stores a temporary-UUID to server-id mapping. Recording the
// same temp id again overwrites the previous mapping.
func (s *Store) RecordIDMapping(tempID, serverID, entityType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(
		`INSERT INTO id_mappings (temp_id, server_id, entity_type)
		 VALUES (?, ?, ?)
		 ON CONFLICT(temp_id) DO UPDATE SET server_id=excluded.server_id, entity_type=excluded.entity_type, mapped_at=CURRENT_TIMESTAMP`,
		tempID, serverID, entityType)
	if err != nil {
		return fmt.Errorf("record id mapping %s: %w", tempID, err)
	}
	return nil
}

// ResolveID returns the server id mapped to a temporary id. When no mapping
// exists the input id is returned unchanged (it is already canonical).
func (s *Store) ResolveID(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var serverID string
	err := s.conn.QueryRow(`SELECT server_id FROM id_mappings WHERE temp_id = ?`, id).Scan(&serverID)
	if err == sql.ErrNoRows {
		return id, nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve id %s: %w", id, err)
	}
	return serverID, nil
}
