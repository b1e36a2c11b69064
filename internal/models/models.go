package models

import (
	"time"
)

// MealType classifies a food diary entry.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// ValidMealType reports whether s is a known meal type.
func ValidMealType(s string) bool {
	switch MealType(s) {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// Profile is the user's account profile plus nutrition goals.
type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	Locale       string    `json:"locale"`
	GoalCalories int       `json:"goal_calories"`
	GoalProteinG float64   `json:"goal_protein_g"`
	GoalCarbsG   float64   `json:"goal_carbs_g"`
	GoalFatG     float64   `json:"goal_fat_g"`
	MacroRatio   string    `json:"macro_ratio"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProfileGoals is the subset of Profile used to seed a new daily diary.
type ProfileGoals struct {
	Calories   int     `json:"calories"`
	ProteinG   float64 `json:"protein_g"`
	CarbsG     float64 `json:"carbs_g"`
	FatG       float64 `json:"fat_g"`
	MacroRatio string  `json:"macro_ratio"`
}

// Goals extracts the diary-seeding goals from a profile.
func (p *Profile) Goals() ProfileGoals {
	return ProfileGoals{
		Calories:   p.GoalCalories,
		ProteinG:   p.GoalProteinG,
		CarbsG:     p.GoalCarbsG,
		FatG:       p.GoalFatG,
		MacroRatio: p.MacroRatio,
	}
}

// Food is a catalog item (per-serving macros).
type Food struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand,omitempty"`
	Barcode     string    `json:"barcode,omitempty"`
	Calories    int       `json:"calories"`
	ProteinG    float64   `json:"protein_g"`
	CarbsG      float64   `json:"carbs_g"`
	FatG        float64   `json:"fat_g"`
	ServingSize float64   `json:"serving_size"`
	ServingUnit string    `json:"serving_unit"`
	Source      string    `json:"source,omitempty"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DailyDiary is the per-date nutrition aggregate. Consumed totals must equal
// the sum of the diary's entries whenever the aggregate is settled; while
// offline the totals are updated speculatively and reconciled after sync.
type DailyDiary struct {
	ID               string    `json:"id"`
	Date             string    `json:"date"` // YYYY-MM-DD
	GoalCalories     int       `json:"goal_calories"`
	GoalProteinG     float64   `json:"goal_protein_g"`
	GoalCarbsG       float64   `json:"goal_carbs_g"`
	GoalFatG         float64   `json:"goal_fat_g"`
	ConsumedCalories int       `json:"consumed_calories"`
	ConsumedProteinG float64   `json:"consumed_protein_g"`
	ConsumedCarbsG   float64   `json:"consumed_carbs_g"`
	ConsumedFatG     float64   `json:"consumed_fat_g"`
	MacroRatio       string    `json:"macro_ratio"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// FoodEntry is one logged food item inside a daily diary. The ID is a
// client-generated UUID until the server assigns a canonical one.
type FoodEntry struct {
	ID        string    `json:"id"`
	DiaryID   string    `json:"diary_id"`
	FoodID    string    `json:"food_id,omitempty"`
	FoodName  string    `json:"food_name"`
	MealType  MealType  `json:"meal_type"`
	Quantity  float64   `json:"quantity"`
	Unit      string    `json:"unit"`
	Calories  int       `json:"calories"`
	ProteinG  float64   `json:"protein_g"`
	CarbsG    float64   `json:"carbs_g"`
	FatG      float64   `json:"fat_g"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExerciseSet is one set of an exercise (reps at a weight).
type ExerciseSet struct {
	Reps     int     `json:"reps"`
	WeightKg float64 `json:"weight_kg"`
}

// ActivityEntry is one exercise inside an activity diary, with its ordered sets.
type ActivityEntry struct {
	ID           string        `json:"id"`
	DiaryID      string        `json:"diary_id"`
	ExerciseName string        `json:"exercise_name"`
	Position     int           `json:"position"`
	Sets         []ExerciseSet `json:"sets"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// ActivityDiary is a workout session. At most one open session (EndedAt nil)
// exists per user; closing it stamps EndedAt and makes it eligible for upload.
type ActivityDiary struct {
	ID        string          `json:"id"`
	Date      string          `json:"date"` // YYYY-MM-DD
	StartedAt time.Time       `json:"started_at"`
	EndedAt   *time.Time      `json:"ended_at,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	Entries   []ActivityEntry `json:"entries,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Open reports whether the session has not been closed yet.
func (d *ActivityDiary) Open() bool {
	return d.EndedAt == nil
}
