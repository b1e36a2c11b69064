package repo

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/fitsync/fitsync/internal/apiclient"
	"github.com/fitsync/fitsync/internal/models"
)

var testGoals = models.ProfileGoals{Calories: 2000, ProteinG: 150, CarbsG: 200, FatG: 70}

func TestGetDailyDiaryLocalHitSkipsRemote(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("/v1/diaries/", func(w http.ResponseWriter, r *http.Request) {
		t.Error("remote called despite cached diary")
	})

	if err := f.st.UpsertDiary(&models.DailyDiary{ID: "d1", Date: "2026-03-01", GoalCalories: 2000}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	view, err := f.diaries(t).GetDailyDiary(context.Background(), "2026-03-01", &testGoals)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Diary.ID != "d1" {
		t.Errorf("diary = %+v", view.Diary)
	}
}

func TestGetDailyDiaryFetchesAndCaches(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("GET /v1/diaries/2026-03-01", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, apiclient.DiaryResponse{
			Diary: models.DailyDiary{ID: "srv-d1", Date: "2026-03-01", GoalCalories: 2100, ConsumedCalories: 300},
			Entries: []models.FoodEntry{
				{ID: "srv-e1", FoodName: "Oats", MealType: models.MealBreakfast, Calories: 300},
			},
		})
	})

	view, err := f.diaries(t).GetDailyDiary(context.Background(), "2026-03-01", &testGoals)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Diary.ID != "srv-d1" || len(view.Entries) != 1 {
		t.Fatalf("view = %+v", view)
	}

	// Cached: a second call is served locally (the handler would 404 other paths).
	cached, err := f.st.GetDiaryByDate("2026-03-01")
	if err != nil || cached == nil {
		t.Fatalf("diary not cached: %v %v", cached, err)
	}
	entries, _ := f.st.ListFoodEntries("srv-d1")
	if len(entries) != 1 || entries[0].ID != "srv-e1" {
		t.Errorf("entries not cached: %+v", entries)
	}
}

func TestGetDailyDiaryOfflineSynthesizes(t *testing.T) {
	f := newFixture(t)
	f.net.up = false

	view, err := f.diaries(t).GetDailyDiary(context.Background(), "2026-03-01", &testGoals)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := uuid.Parse(view.Diary.ID); err != nil {
		t.Errorf("synthesized diary id %q is not a UUID", view.Diary.ID)
	}
	if view.Diary.GoalCalories != 2000 || view.Diary.ConsumedCalories != 0 {
		t.Errorf("diary = %+v", view.Diary)
	}
	if n := pendingCount(t, f.q); n != 1 {
		t.Errorf("pending tasks = %d, want 1 create_diary", n)
	}

	// The synthesized diary is now cached; no second task on re-read.
	again, err := f.diaries(t).GetDailyDiary(context.Background(), "2026-03-01", &testGoals)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if again.Diary.ID != view.Diary.ID {
		t.Errorf("re-read returned a different diary")
	}
	if n := pendingCount(t, f.q); n != 1 {
		t.Errorf("pending tasks = %d after re-read, want 1", n)
	}
}

func TestCreateFoodEntryOfflineSpeculativeTotals(t *testing.T) {
	f := newFixture(t)
	f.net.up = false
	repo := f.diaries(t)

	entry := &models.FoodEntry{FoodName: "Protein bar", MealType: models.MealSnack, Calories: 250, ProteinG: 20}
	created, err := repo.CreateFoodEntry(context.Background(), "2026-03-01", entry, &testGoals)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := uuid.Parse(created.ID); err != nil {
		t.Errorf("offline entry id %q is not a UUID", created.ID)
	}

	view, err := repo.GetDailyDiary(context.Background(), "2026-03-01", &testGoals)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if view.Diary.ConsumedCalories != 250 || view.Diary.ConsumedProteinG != 20 {
		t.Errorf("speculative totals = %+v", view.Diary)
	}
	if len(view.Entries) != 1 || view.Entries[0].ID != created.ID {
		t.Errorf("entries = %+v", view.Entries)
	}

	// One create_diary task plus one create_food_entry task.
	if n := pendingCount(t, f.q); n != 2 {
		t.Errorf("pending tasks = %d, want 2", n)
	}
}

func TestCreateFoodEntryOnlineAdoptsServerIDs(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("GET /v1/diaries/2026-03-01", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, apiclient.DiaryResponse{
			Diary: models.DailyDiary{ID: "srv-d1", Date: "2026-03-01", GoalCalories: 2000},
		})
	})
	f.mux.HandleFunc("POST /v1/diaries/2026-03-01/entries", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, apiclient.EntryResponse{
			Entry: models.FoodEntry{ID: "srv-e1", DiaryID: "srv-d1", FoodName: "Oats", MealType: models.MealBreakfast, Calories: 300},
			Diary: models.DailyDiary{ID: "srv-d1", Date: "2026-03-01", GoalCalories: 2000, ConsumedCalories: 300},
		})
	})
	repo := f.diaries(t)

	entry := &models.FoodEntry{FoodName: "Oats", MealType: models.MealBreakfast, Calories: 300}
	created, err := repo.CreateFoodEntry(context.Background(), "2026-03-01", entry, &testGoals)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "srv-e1" {
		t.Errorf("entry id = %s, want server id", created.ID)
	}

	diary, _ := f.st.GetDiaryByDate("2026-03-01")
	if diary.ConsumedCalories != 300 {
		t.Errorf("diary totals = %+v, want server totals", diary)
	}
	if n := pendingCount(t, f.q); n != 0 {
		t.Errorf("pending tasks = %d, want 0 for a synchronous write", n)
	}
}

func TestOfflineReplayReconcilesIDsAndTotals(t *testing.T) {
	f := newFixture(t)
	f.net.up = false
	repo := f.diaries(t)
	ctx := context.Background()

	entry := &models.FoodEntry{FoodName: "Protein bar", MealType: models.MealSnack, Calories: 250}
	created, err := repo.CreateFoodEntry(ctx, "2026-03-01", entry, &testGoals)
	if err != nil {
		t.Fatalf("offline create: %v", err)
	}
	tempDiary, _ := f.st.GetDiaryByDate("2026-03-01")

	// Server comes back: create_diary then create_food_entry replay in order.
	f.mux.HandleFunc("POST /v1/diaries", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, apiclient.DiaryResponse{
			Diary: models.DailyDiary{ID: "srv-d1", Date: "2026-03-01", GoalCalories: 2000},
		})
	})
	f.mux.HandleFunc("POST /v1/diaries/2026-03-01/entries", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, apiclient.EntryResponse{
			Entry: models.FoodEntry{ID: "srv-e1", DiaryID: "srv-d1", FoodName: "Protein bar", MealType: models.MealSnack, Calories: 250},
			Diary: models.DailyDiary{ID: "srv-d1", Date: "2026-03-01", GoalCalories: 2000, ConsumedCalories: 250},
		})
	})
	f.net.up = true

	res, err := f.q.ProcessQueue(ctx)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if res.Completed != 2 || res.Failed != 0 {
		t.Fatalf("drain result = %+v", res)
	}

	diary, _ := f.st.GetDiaryByDate("2026-03-01")
	if diary.ID != "srv-d1" {
		t.Errorf("diary id = %s, want server id after rekey", diary.ID)
	}
	if diary.ConsumedCalories != 250 {
		t.Errorf("reconciled totals = %+v", diary)
	}

	entries, _ := f.st.ListFoodEntries("srv-d1")
	if len(entries) != 1 || entries[0].ID != "srv-e1" {
		t.Fatalf("entries after replay = %+v", entries)
	}

	// Temporary ids still resolve for later operations.
	if got, _ := f.st.ResolveID(created.ID); got != "srv-e1" {
		t.Errorf("ResolveID(%s) = %s", created.ID, got)
	}
	if got, _ := f.st.ResolveID(tempDiary.ID); got != "srv-d1" {
		t.Errorf("ResolveID(%s) = %s", tempDiary.ID, got)
	}
}

func TestReplayCreateDiaryConflictAdoptsExisting(t *testing.T) {
	f := newFixture(t)
	f.net.up = false
	repo := f.diaries(t)
	ctx := context.Background()

	if _, err := repo.GetDailyDiary(ctx, "2026-03-01", &testGoals); err != nil {
		t.Fatalf("synthesize: %v", err)
	}

	f.mux.HandleFunc("POST /v1/diaries", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"code":"diary_exists","message":"diary already exists"}`))
	})
	f.mux.HandleFunc("GET /v1/diaries/2026-03-01", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, apiclient.DiaryResponse{
			Diary: models.DailyDiary{ID: "srv-d1", Date: "2026-03-01", GoalCalories: 1800},
		})
	})
	f.net.up = true

	res, err := f.q.ProcessQueue(ctx)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if res.Completed != 1 {
		t.Fatalf("drain result = %+v", res)
	}

	diary, _ := f.st.GetDiaryByDate("2026-03-01")
	if diary.ID != "srv-d1" || diary.GoalCalories != 1800 {
		t.Errorf("diary = %+v, want the server's existing diary", diary)
	}
}

func TestDeleteFoodEntryOfflineQueuesAndAdjusts(t *testing.T) {
	f := newFixture(t)
	f.net.up = false
	repo := f.diaries(t)
	ctx := context.Background()

	entry := &models.FoodEntry{FoodName: "Protein bar", MealType: models.MealSnack, Calories: 250}
	created, err := repo.CreateFoodEntry(ctx, "2026-03-01", entry, &testGoals)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	before := pendingCount(t, f.q)

	if err := repo.DeleteFoodEntry(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	diary, _ := f.st.GetDiaryByDate("2026-03-01")
	if diary.ConsumedCalories != 0 {
		t.Errorf("totals after delete = %+v", diary)
	}
	if got, _ := f.st.GetFoodEntry(created.ID); got != nil {
		t.Errorf("entry still present locally")
	}
	if n := pendingCount(t, f.q); n != before+1 {
		t.Errorf("pending = %d, want %d", n, before+1)
	}
}

func TestDeleteFoodEntryAbsentIsNoop(t *testing.T) {
	f := newFixture(t)
	f.net.up = false
	repo := f.diaries(t)

	if err := repo.DeleteFoodEntry(context.Background(), "no-such-entry"); err != nil {
		t.Fatalf("delete of absent entry: %v", err)
	}
	if n := pendingCount(t, f.q); n != 0 {
		t.Errorf("pending = %d, want 0", n)
	}
}

func TestOfflineCreateThenDeleteReplaysClean(t *testing.T) {
	f := newFixture(t)
	f.net.up = false
	repo := f.diaries(t)
	ctx := context.Background()

	entry := &models.FoodEntry{FoodName: "Protein bar", MealType: models.MealSnack, Calories: 250}
	created, err := repo.CreateFoodEntry(ctx, "2026-03-01", entry, &testGoals)
	if err != nil {
		t.Fatalf("offline create: %v", err)
	}
	if err := repo.DeleteFoodEntry(ctx, created.ID); err != nil {
		t.Fatalf("offline delete: %v", err)
	}

	f.mux.HandleFunc("POST /v1/diaries", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, apiclient.DiaryResponse{
			Diary: models.DailyDiary{ID: "srv-d1", Date: "2026-03-01", GoalCalories: 2000},
		})
	})
	f.mux.HandleFunc("POST /v1/diaries/2026-03-01/entries", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, apiclient.EntryResponse{
			Entry: models.FoodEntry{ID: "srv-e1", DiaryID: "srv-d1", FoodName: "Protein bar", MealType: models.MealSnack, Calories: 250},
			Diary: models.DailyDiary{ID: "srv-d1", Date: "2026-03-01", GoalCalories: 2000, ConsumedCalories: 250},
		})
	})
	f.mux.HandleFunc("DELETE /v1/diaries/2026-03-01/entries/srv-e1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]models.DailyDiary{
			"diary": {ID: "srv-d1", Date: "2026-03-01", GoalCalories: 2000, ConsumedCalories: 0},
		})
	})
	f.net.up = true

	res, err := f.q.ProcessQueue(ctx)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if res.Completed != 3 || res.Failed != 0 {
		t.Fatalf("drain result = %+v", res)
	}

	// The create replay restores the entry; the delete replay must remove it
	// again so the aggregate and its entries agree.
	diary, _ := f.st.GetDiaryByDate("2026-03-01")
	if diary.ConsumedCalories != 0 {
		t.Errorf("totals after drain = %d, want 0", diary.ConsumedCalories)
	}
	entries, _ := f.st.ListFoodEntries(diary.ID)
	if len(entries) != 0 {
		t.Errorf("entries after drain = %+v, want none", entries)
	}
}

func TestOnlineDeleteOfUnsyncedEntryCompensates(t *testing.T) {
	f := newFixture(t)
	f.net.up = false
	repo := f.diaries(t)
	ctx := context.Background()

	entry := &models.FoodEntry{FoodName: "Protein bar", MealType: models.MealSnack, Calories: 250}
	created, err := repo.CreateFoodEntry(ctx, "2026-03-01", entry, &testGoals)
	if err != nil {
		t.Fatalf("offline create: %v", err)
	}

	// Server state: the entry exists only after its create replays.
	serverCreates := 0
	serverHasEntry := false
	f.mux.HandleFunc("POST /v1/diaries", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, apiclient.DiaryResponse{
			Diary: models.DailyDiary{ID: "srv-d1", Date: "2026-03-01", GoalCalories: 2000},
		})
	})
	f.mux.HandleFunc("POST /v1/diaries/2026-03-01/entries", func(w http.ResponseWriter, r *http.Request) {
		serverCreates++
		serverHasEntry = true
		writeJSON(t, w, apiclient.EntryResponse{
			Entry: models.FoodEntry{ID: "srv-e1", DiaryID: "srv-d1", FoodName: "Protein bar", MealType: models.MealSnack, Calories: 250},
			Diary: models.DailyDiary{ID: "srv-d1", Date: "2026-03-01", GoalCalories: 2000, ConsumedCalories: 250},
		})
	})
	f.mux.HandleFunc("DELETE /v1/diaries/2026-03-01/entries/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "srv-e1" || !serverHasEntry {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"code":"not_found","message":"no such entry"}`))
			return
		}
		serverHasEntry = false
		writeJSON(t, w, map[string]models.DailyDiary{
			"diary": {ID: "srv-d1", Date: "2026-03-01", GoalCalories: 2000, ConsumedCalories: 0},
		})
	})
	f.net.up = true

	// The server 404s because the create is still queued; the delete must be
	// queued behind it rather than treated as already done.
	if err := repo.DeleteFoodEntry(ctx, created.ID); err != nil {
		t.Fatalf("online delete of unsynced entry: %v", err)
	}
	if n := pendingCount(t, f.q); n != 3 {
		t.Fatalf("pending = %d, want create_diary + create + delete", n)
	}

	res, err := f.q.ProcessQueue(ctx)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if res.Completed != 3 || res.Failed != 0 {
		t.Fatalf("drain result = %+v", res)
	}

	if serverCreates != 1 {
		t.Errorf("server creates = %d, want 1", serverCreates)
	}
	if serverHasEntry {
		t.Error("entry still exists server-side after drain")
	}
	diary, _ := f.st.GetDiaryByDate("2026-03-01")
	if diary.ConsumedCalories != 0 {
		t.Errorf("totals after drain = %d, want 0", diary.ConsumedCalories)
	}
	entries, _ := f.st.ListFoodEntries(diary.ID)
	if len(entries) != 0 {
		t.Errorf("entries after drain = %+v, want none", entries)
	}
}

func TestCreateFoodEntryRejectedSurfaces(t *testing.T) {
	f := newFixture(t)
	if err := f.st.UpsertDiary(&models.DailyDiary{ID: "srv-d1", Date: "2026-03-01", GoalCalories: 2000}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	f.mux.HandleFunc("POST /v1/diaries/2026-03-01/entries", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"code":"invalid_entry","message":"calories out of range"}`))
	})
	repo := f.diaries(t)

	entry := &models.FoodEntry{FoodName: "Mystery", MealType: models.MealSnack, Calories: -1}
	_, err := repo.CreateFoodEntry(context.Background(), "2026-03-01", entry, &testGoals)
	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("err = %v, want the server's rejection", err)
	}
	if n := pendingCount(t, f.q); n != 0 {
		t.Errorf("rejected entry queued %d tasks, want 0", n)
	}
}

func TestUnauthorizedSurfacesWithoutQueueing(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"auth_expired","message":"token expired"}`))
	})
	repo := f.diaries(t)

	_, err := repo.GetDailyDiary(context.Background(), "2026-03-01", &testGoals)
	if !errors.Is(err, apiclient.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if n := pendingCount(t, f.q); n != 0 {
		t.Errorf("auth failure queued %d tasks", n)
	}
}
