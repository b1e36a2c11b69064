package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fitsync/fitsync/internal/models"
)

// UpsertProfile inserts or replaces a cached profile.
func (s *Store) UpsertProfile(p *models.Profile) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = time.Now().UTC()

	return s.UpsertRow("user_profiles", map[string]any{
		"id":             p.ID,
		"email":          p.Email,
		"display_name":   p.DisplayName,
		"locale":         p.Locale,
		"goal_calories":  p.GoalCalories,
		"goal_protein_g": p.GoalProteinG,
		"goal_carbs_g":   p.GoalCarbsG,
		"goal_fat_g":     p.GoalFatG,
		"macro_ratio":    p.MacroRatio,
		"created_at":     p.CreatedAt,
		"updated_at":     p.UpdatedAt,
	})
}

// GetProfile returns the cached profile or nil when absent.
func (s *Store) GetProfile(id string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p models.Profile
	err := s.conn.QueryRow(`
		SELECT id, email, display_name, locale, goal_calories, goal_protein_g,
		       goal_carbs_g, goal_fat_g, macro_ratio, created_at, updated_at
		FROM user_profiles WHERE id = ?`, id).Scan(
		&p.ID, &p.Email, &p.DisplayName, &p.Locale, &p.GoalCalories, &p.GoalProteinG,
		&p.GoalCarbsG, &p.GoalFatG, &p.MacroRatio, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// ListProfiles returns all cached profiles.
func (s *Store) ListProfiles() ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.conn.Query(`
		SELECT id, email, display_name, locale, goal_calories, goal_protein_g,
		       goal_carbs_g, goal_fat_g, macro_ratio, created_at, updated_at
		FROM user_profiles ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(
			&p.ID, &p.Email, &p.DisplayName, &p.Locale, &p.GoalCalories, &p.GoalProteinG,
			&p.GoalCarbsG, &p.GoalFatG, &p.MacroRatio, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
