package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fitsync/fitsync/internal/models"
)

func scanActivityDiary(row interface{ Scan(...any) error }) (*models.ActivityDiary, error) {
	var d models.ActivityDiary
	var endedAt sql.NullTime
	err := row.Scan(
		&d.ID, &d.Date, &d.StartedAt, &endedAt, &d.Notes, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if endedAt.Valid {
		t := endedAt.Time
		d.EndedAt = &t
	}
	return &d, nil
}

// UpsertActivityDiary inserts or replaces a workout session row. Entries are
// stored separately; see UpsertActivityEntry.
func (s *Store) UpsertActivityDiary(d *models.ActivityDiary) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	d.UpdatedAt = time.Now().UTC()

	row := map[string]any{
		"id":         d.ID,
		"date":       d.Date,
		"started_at": d.StartedAt,
		"notes":      d.Notes,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}
	if d.EndedAt != nil {
		row["ended_at"] = *d.EndedAt
	}
	return s.UpsertRow("activity_diaries", row)
}

// GetActivityDiary returns a session by id with its entries, or nil when absent.
func (s *Store) GetActivityDiary(id string) (*models.ActivityDiary, error) {
	d, err := s.getActivityDiaryRow("id = ?", id)
	if err != nil || d == nil {
		return d, err
	}
	d.Entries, err = s.ListActivityEntries(d.ID)
	return d, err
}

// GetActivityDiaryByDate returns the most recent session for a date with its
// entries, or nil when absent.
func (s *Store) GetActivityDiaryByDate(date string) (*models.ActivityDiary, error) {
	d, err := s.getActivityDiaryRow("date = ? ORDER BY started_at DESC LIMIT 1", date)
	if err != nil || d == nil {
		return d, err
	}
	d.Entries, err = s.ListActivityEntries(d.ID)
	return d, err
}

// GetOpenActivityDiary returns the open session (ended_at IS NULL) with its
// entries, or nil when none is open.
func (s *Store) GetOpenActivityDiary() (*models.ActivityDiary, error) {
	d, err := s.getActivityDiaryRow("ended_at IS NULL ORDER BY started_at DESC LIMIT 1")
	if err != nil || d == nil {
		return d, err
	}
	d.Entries, err = s.ListActivityEntries(d.ID)
	return d, err
}

func (s *Store) getActivityDiaryRow(where string, args ...any) (*models.ActivityDiary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := scanActivityDiary(s.conn.QueryRow(
		`SELECT id, date, started_at, ended_at, notes, created_at, updated_at
		 FROM activity_diaries WHERE `+where, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get activity diary: %w", err)
	}
	return d, nil
}

// UpsertActivityEntry inserts or replaces one exercise row; sets are stored as
// an ordered JSON array.
func (s *Store) UpsertActivityEntry(e *models.ActivityEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.UpdatedAt = time.Now().UTC()

	sets := e.Sets
	if sets == nil {
		sets = []models.ExerciseSet{}
	}
	setsJSON, err := json.Marshal(sets)
	if err != nil {
		return fmt.Errorf("marshal sets: %w", err)
	}

	return s.UpsertRow("activity_entries", map[string]any{
		"id":            e.ID,
		"diary_id":      e.DiaryID,
		"exercise_name": e.ExerciseName,
		"position":      e.Position,
		"sets":          string(setsJSON),
		"created_at":    e.CreatedAt,
		"updated_at":    e.UpdatedAt,
	})
}

// ListActivityEntries returns a session's exercises ordered by position.
func (s *Store) ListActivityEntries(diaryID string) ([]models.ActivityEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.conn.Query(
		`SELECT id, diary_id, exercise_name, position, sets, created_at, updated_at
		 FROM activity_entries WHERE diary_id = ? ORDER BY position ASC, created_at ASC`,
		diaryID)
	if err != nil {
		return nil, fmt.Errorf("list activity entries: %w", err)
	}
	defer rows.Close()

	var entries []models.ActivityEntry
	for rows.Next() {
		var e models.ActivityEntry
		var setsJSON string
		if err := rows.Scan(&e.ID, &e.DiaryID, &e.ExerciseName, &e.Position, &setsJSON,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan activity entry: %w", err)
		}
		if err := json.Unmarshal([]byte(setsJSON), &e.Sets); err != nil {
			return nil, fmt.Errorf("unmarshal sets for %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteActivityEntry removes one exercise row.
func (s *Store) DeleteActivityEntry(id string) error {
	return s.DeleteRow("activity_entries", id)
}

// DeleteActivityEntriesByDiary removes every exercise row of a session.
func (s *Store) DeleteActivityEntriesByDiary(diaryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.conn.Exec(`DELETE FROM activity_entries WHERE diary_id = ?`, diaryID); err != nil {
		return fmt.Errorf("delete entries of session %s: %w", diaryID, err)
	}
	return nil
}
