package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fitsync/fitsync/internal/models"
)

const foodColumns = `id, name, brand, barcode, calories, protein_g, carbs_g, fat_g,
	serving_size, serving_unit, source, verified, created_at, updated_at`

func scanFood(row interface{ Scan(...any) error }) (*models.Food, error) {
	var f models.Food
	var verified int
	err := row.Scan(
		&f.ID, &f.Name, &f.Brand, &f.Barcode, &f.Calories, &f.ProteinG, &f.CarbsG,
		&f.FatG, &f.ServingSize, &f.ServingUnit, &f.Source, &verified,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	f.Verified = verified != 0
	return &f, nil
}

// UpsertFood inserts or replaces a cached food catalog item.
func (s *Store) UpsertFood(f *models.Food) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	f.UpdatedAt = time.Now().UTC()

	return s.UpsertRow("foods", map[string]any{
		"id":           f.ID,
		"name":         f.Name,
		"brand":        f.Brand,
		"barcode":      f.Barcode,
		"calories":     f.Calories,
		"protein_g":    f.ProteinG,
		"carbs_g":      f.CarbsG,
		"fat_g":        f.FatG,
		"serving_size": f.ServingSize,
		"serving_unit": f.ServingUnit,
		"source":       f.Source,
		"verified":     f.Verified,
		"created_at":   f.CreatedAt,
		"updated_at":   f.UpdatedAt,
	})
}

// GetFood returns a cached food or nil when absent.
func (s *Store) GetFood(id string) (*models.Food, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := scanFood(s.conn.QueryRow(
		fmt.Sprintf("SELECT %s FROM foods WHERE id = ?", foodColumns), id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get food: %w", err)
	}
	return f, nil
}

// SearchFoods matches cached foods by substring on name or brand, or exact
// barcode. An empty query returns everything up to limit.
func (s *Store) SearchFoods(query string, limit int) ([]models.Food, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}

	var rows *sql.Rows
	var err error
	if query == "" {
		rows, err = s.conn.Query(
			fmt.Sprintf("SELECT %s FROM foods ORDER BY name ASC LIMIT ?", foodColumns), limit)
	} else {
		like := "%" + query + "%"
		rows, err = s.conn.Query(
			fmt.Sprintf(`SELECT %s FROM foods
				WHERE name LIKE ? OR brand LIKE ? OR barcode = ?
				ORDER BY name ASC LIMIT ?`, foodColumns),
			like, like, query, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("search foods: %w", err)
	}
	defer rows.Close()

	var foods []models.Food
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("scan food: %w", err)
		}
		foods = append(foods, *f)
	}
	return foods, rows.Err()
}
