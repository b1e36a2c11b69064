package store

import (
	"testing"
	"time"

	"github.com/fitsync/fitsync/internal/models"
)

func seedDiary(t *testing.T, s *Store, id, date string) *models.DailyDiary {
	t.Helper()
	d := &models.DailyDiary{ID: id, Date: date, GoalCalories: 2000}
	if err := s.UpsertDiary(d); err != nil {
		t.Fatalf("seed diary: %v", err)
	}
	return d
}

func TestDiaryRoundTrip(t *testing.T) {
	s := setupStore(t)
	seedDiary(t, s, "d1", "2026-03-01")

	d, err := s.GetDiaryByDate("2026-03-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if d == nil || d.ID != "d1" || d.GoalCalories != 2000 {
		t.Fatalf("got %+v", d)
	}

	d.ConsumedCalories = 250
	if err := s.UpsertDiary(d); err != nil {
		t.Fatalf("update: %v", err)
	}
	d2, _ := s.GetDiary("d1")
	if d2.ConsumedCalories != 250 {
		t.Errorf("consumed = %d, want 250", d2.ConsumedCalories)
	}
}

func TestListFoodEntriesOrdered(t *testing.T) {
	s := setupStore(t)
	seedDiary(t, s, "d1", "2026-03-01")

	base := time.Now().UTC().Add(-time.Hour)
	for i, id := range []string{"e1", "e2", "e3"} {
		e := &models.FoodEntry{
			ID: id, DiaryID: "d1", FoodName: id, MealType: models.MealSnack,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.UpsertFoodEntry(e); err != nil {
			t.Fatalf("upsert %s: %v", id, err)
		}
	}

	entries, err := s.ListFoodEntries("d1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	for i, want := range []string{"e1", "e2", "e3"} {
		if entries[i].ID != want {
			t.Errorf("entries[%d] = %s, want %s", i, entries[i].ID, want)
		}
	}
}

func TestRekeyFoodEntry(t *testing.T) {
	s := setupStore(t)
	seedDiary(t, s, "d1", "2026-03-01")

	e := &models.FoodEntry{ID: "tmp-uuid", DiaryID: "d1", FoodName: "Oats", MealType: models.MealBreakfast}
	if err := s.UpsertFoodEntry(e); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := s.RekeyFoodEntry("tmp-uuid", "srv-1"); err != nil {
		t.Fatalf("rekey: %v", err)
	}

	if old, _ := s.GetFoodEntry("tmp-uuid"); old != nil {
		t.Errorf("temp row still present after rekey")
	}
	got, _ := s.GetFoodEntry("srv-1")
	if got == nil || got.FoodName != "Oats" {
		t.Fatalf("rekeyed row = %+v", got)
	}

	entries, _ := s.ListFoodEntries("d1")
	if len(entries) != 1 {
		t.Errorf("entry duplicated by rekey: %d rows", len(entries))
	}
}

func TestRekeyDiaryCarriesEntries(t *testing.T) {
	s := setupStore(t)
	seedDiary(t, s, "tmp-diary", "2026-03-01")
	e := &models.FoodEntry{ID: "e1", DiaryID: "tmp-diary", FoodName: "Rice", MealType: models.MealDinner}
	if err := s.UpsertFoodEntry(e); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := s.RekeyDiary("tmp-diary", "srv-diary"); err != nil {
		t.Fatalf("rekey: %v", err)
	}

	entries, _ := s.ListFoodEntries("srv-diary")
	if len(entries) != 1 || entries[0].ID != "e1" {
		t.Fatalf("entries after rekey = %+v", entries)
	}
	if stale, _ := s.ListFoodEntries("tmp-diary"); len(stale) != 0 {
		t.Errorf("entries still attached to temp diary id")
	}
}

func TestOpenActivityDiary(t *testing.T) {
	s := setupStore(t)

	if open, _ := s.GetOpenActivityDiary(); open != nil {
		t.Fatalf("open session in empty store: %+v", open)
	}

	session := &models.ActivityDiary{ID: "w1", Date: "2026-03-01", StartedAt: time.Now().UTC()}
	if err := s.UpsertActivityDiary(session); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	open, err := s.GetOpenActivityDiary()
	if err != nil {
		t.Fatalf("get open: %v", err)
	}
	if open == nil || open.ID != "w1" {
		t.Fatalf("open = %+v", open)
	}

	now := time.Now().UTC()
	session.EndedAt = &now
	if err := s.UpsertActivityDiary(session); err != nil {
		t.Fatalf("close: %v", err)
	}
	if open, _ := s.GetOpenActivityDiary(); open != nil {
		t.Errorf("session still open after close: %+v", open)
	}
}

func TestActivityEntrySetsRoundTrip(t *testing.T) {
	s := setupStore(t)
	if err := s.UpsertActivityDiary(&models.ActivityDiary{ID: "w1", Date: "2026-03-01", StartedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	e := &models.ActivityEntry{
		ID: "x1", DiaryID: "w1", ExerciseName: "Squat", Position: 0,
		Sets: []models.ExerciseSet{{Reps: 5, WeightKg: 100}, {Reps: 5, WeightKg: 105}},
	}
	if err := s.UpsertActivityEntry(e); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	entries, err := s.ListActivityEntries("w1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || len(entries[0].Sets) != 2 {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].Sets[1].WeightKg != 105 {
		t.Errorf("set order lost: %+v", entries[0].Sets)
	}
}
