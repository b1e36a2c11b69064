package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fitsync/fitsync/internal/models"
)

const diaryColumns = `id, date, goal_calories, goal_protein_g, goal_carbs_g, goal_fat_g,
	consumed_calories, consumed_protein_g, consumed_carbs_g, consumed_fat_g,
	macro_ratio, created_at, updated_at`

func scanDiary(row interface{ Scan(...any) error }) (*models.DailyDiary, error) {
	var d models.DailyDiary
	err := row.Scan(
		&d.ID, &d.Date, &d.GoalCalories, &d.GoalProteinG, &d.GoalCarbsG, &d.GoalFatG,
		&d.ConsumedCalories, &d.ConsumedProteinG, &d.ConsumedCarbsG, &d.ConsumedFatG,
		&d.MacroRatio, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// UpsertDiary inserts or replaces a daily diary aggregate.
func (s *Store) UpsertDiary(d *models.DailyDiary) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	d.UpdatedAt = time.Now().UTC()

	return s.UpsertRow("daily_diaries", map[string]any{
		"id":                 d.ID,
		"date":               d.Date,
		"goal_calories":      d.GoalCalories,
		"goal_protein_g":     d.GoalProteinG,
		"goal_carbs_g":       d.GoalCarbsG,
		"goal_fat_g":         d.GoalFatG,
		"consumed_calories":  d.ConsumedCalories,
		"consumed_protein_g": d.ConsumedProteinG,
		"consumed_carbs_g":   d.ConsumedCarbsG,
		"consumed_fat_g":     d.ConsumedFatG,
		"macro_ratio":        d.MacroRatio,
		"created_at":         d.CreatedAt,
		"updated_at":         d.UpdatedAt,
	})
}

// GetDiaryByDate returns the diary for a YYYY-MM-DD date, or nil when absent.
func (s *Store) GetDiaryByDate(date string) (*models.DailyDiary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := scanDiary(s.conn.QueryRow(
		fmt.Sprintf("SELECT %s FROM daily_diaries WHERE date = ?", diaryColumns), date))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get diary by date: %w", err)
	}
	return d, nil
}

// GetDiary returns a diary by id, or nil when absent.
func (s *Store) GetDiary(id string) (*models.DailyDiary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := scanDiary(s.conn.QueryRow(
		fmt.Sprintf("SELECT %s FROM daily_diaries WHERE id = ?", diaryColumns), id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get diary: %w", err)
	}
	return d, nil
}

const entryColumns = `id, diary_id, food_id, food_name, meal_type, quantity, unit,
	calories, protein_g, carbs_g, fat_g, created_at, updated_at`

func scanEntry(row interface{ Scan(...any) error }) (*models.FoodEntry, error) {
	var e models.FoodEntry
	err := row.Scan(
		&e.ID, &e.DiaryID, &e.FoodID, &e.FoodName, &e.MealType, &e.Quantity, &e.Unit,
		&e.Calories, &e.ProteinG, &e.CarbsG, &e.FatG, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpsertFoodEntry inserts or replaces a diary food entry.
func (s *Store) UpsertFoodEntry(e *models.FoodEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.UpdatedAt = time.Now().UTC()

	return s.UpsertRow("diary_food_entries", map[string]any{
		"id":         e.ID,
		"diary_id":   e.DiaryID,
		"food_id":    e.FoodID,
		"food_name":  e.FoodName,
		"meal_type":  string(e.MealType),
		"quantity":   e.Quantity,
		"unit":       e.Unit,
		"calories":   e.Calories,
		"protein_g":  e.ProteinG,
		"carbs_g":    e.CarbsG,
		"fat_g":      e.FatG,
		"created_at": e.CreatedAt,
		"updated_at": e.UpdatedAt,
	})
}

// GetFoodEntry returns an entry by id, or nil when absent.
func (s *Store) GetFoodEntry(id string) (*models.FoodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := scanEntry(s.conn.QueryRow(
		fmt.Sprintf("SELECT %s FROM diary_food_entries WHERE id = ?", entryColumns), id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get food entry: %w", err)
	}
	return e, nil
}

// ListFoodEntries returns all entries for a diary in insertion order.
func (s *Store) ListFoodEntries(diaryID string) ([]models.FoodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.conn.Query(
		fmt.Sprintf("SELECT %s FROM diary_food_entries WHERE diary_id = ? ORDER BY created_at ASC, id ASC", entryColumns),
		diaryID)
	if err != nil {
		return nil, fmt.Errorf("list food entries: %w", err)
	}
	defer rows.Close()

	var entries []models.FoodEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan food entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// RekeyDiary re-points a diary row from its temporary id to the
// server-assigned id, carrying its entries along. A no-op when the temp id
// is gone.
func (s *Store) RekeyDiary(tempID, serverID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.conn.Exec(
		`UPDATE daily_diaries SET id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		serverID, tempID); err != nil {
		return fmt.Errorf("rekey diary %s: %w", tempID, err)
	}
	if _, err := s.conn.Exec(
		`UPDATE diary_food_entries SET diary_id = ? WHERE diary_id = ?`,
		serverID, tempID); err != nil {
		return fmt.Errorf("rekey diary entries %s: %w", tempID, err)
	}
	return nil
}

// RekeyFoodEntry re-points an entry row from its temporary id to the
// server-assigned id without duplicating it. A no-op when the temp id is gone
// (already rekeyed by an earlier drain).
func (s *Store) RekeyFoodEntry(tempID, serverID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.conn.Exec(
		`UPDATE diary_food_entries SET id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		serverID, tempID)
	if err != nil {
		return fmt.Errorf("rekey food entry %s: %w", tempID, err)
	}
	return nil
}
