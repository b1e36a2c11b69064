package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fitsync/fitsync/internal/apiclient"
	"github.com/fitsync/fitsync/internal/models"
	"github.com/fitsync/fitsync/internal/queue"
	"github.com/fitsync/fitsync/internal/store"
)

// DiaryView is a daily diary aggregate with its visible entries.
type DiaryView struct {
	Diary   models.DailyDiary  `json:"diary"`
	Entries []models.FoodEntry `json:"entries"`
}

// DiaryRepo serves the daily nutrition diary and its food entries.
// Local-preferred: a cached diary is trusted once present; missing diaries
// are fetched when online or synthesized from goal defaults when offline,
// and failed remote writes are deferred to the offline queue.
type DiaryRepo struct {
	st  *store.Store
	api *apiclient.Client
	net Reachability
	q   *queue.Queue
}

// NewDiaryRepo creates the diary repository.
func NewDiaryRepo(st *store.Store, api *apiclient.Client, net Reachability, q *queue.Queue) *DiaryRepo {
	if net == nil {
		net = AlwaysReachable()
	}
	return &DiaryRepo{st: st, api: api, net: net, q: q}
}

// Strategy reports the repository's fallback policy.
func (r *DiaryRepo) Strategy() Strategy { return StrategyLocalPreferred }

// GetDailyDiary returns the diary for a YYYY-MM-DD date. A cached diary is
// returned without a remote call even when online. When absent it is fetched
// from the server; offline it is synthesized from defaults, persisted and
// queued for remote creation.
func (r *DiaryRepo) GetDailyDiary(ctx context.Context, date string, defaults *models.ProfileGoals) (*DiaryView, error) {
	local, err := r.st.GetDiaryByDate(date)
	if err != nil {
		return nil, err
	}
	if local != nil {
		entries, err := r.st.ListFoodEntries(local.ID)
		if err != nil {
			return nil, err
		}
		return &DiaryView{Diary: *local, Entries: entries}, nil
	}

	if r.net.IsReachable() {
		view, err := r.fetchRemoteDiary(ctx, date, defaults)
		if err == nil {
			return view, nil
		}
		if !apiclient.Unavailable(err) {
			return nil, err
		}
		slog.Debug("remote diary fetch failed, synthesizing locally", "date", date, "err", err)
	}

	return r.synthesizeDiary(date, defaults)
}

func (r *DiaryRepo) fetchRemoteDiary(ctx context.Context, date string, defaults *models.ProfileGoals) (*DiaryView, error) {
	resp, err := r.api.GetDiary(ctx, date)
	if errors.Is(err, apiclient.ErrNotFound) {
		goals := models.ProfileGoals{}
		if defaults != nil {
			goals = *defaults
		}
		resp, err = r.api.CreateDiary(ctx, date, goals)
	}
	if err != nil {
		return nil, err
	}

	if err := r.st.UpsertDiary(&resp.Diary); err != nil {
		return nil, fmt.Errorf("persist diary: %w", err)
	}
	for i := range resp.Entries {
		resp.Entries[i].DiaryID = resp.Diary.ID
		if err := r.st.UpsertFoodEntry(&resp.Entries[i]); err != nil {
			return nil, fmt.Errorf("persist diary entry: %w", err)
		}
	}
	return &DiaryView{Diary: resp.Diary, Entries: resp.Entries}, nil
}

// synthesizeDiary creates a fresh local diary for the date under a temporary
// id and queues creation of the remote counterpart.
func (r *DiaryRepo) synthesizeDiary(date string, defaults *models.ProfileGoals) (*DiaryView, error) {
	goals := models.ProfileGoals{}
	if defaults != nil {
		goals = *defaults
	}

	diary := &models.DailyDiary{
		ID:           uuid.NewString(),
		Date:         date,
		GoalCalories: goals.Calories,
		GoalProteinG: goals.ProteinG,
		GoalCarbsG:   goals.CarbsG,
		GoalFatG:     goals.FatG,
		MacroRatio:   goals.MacroRatio,
	}
	if err := r.st.UpsertDiary(diary); err != nil {
		return nil, fmt.Errorf("persist synthesized diary: %w", err)
	}

	_, err := r.q.Enqueue(models.ActionCreateDiary, models.CreateDiaryPayload{
		DiaryID: diary.ID,
		Date:    date,
		Goals:   goals,
	})
	if err != nil {
		return nil, err
	}

	return &DiaryView{Diary: *diary}, nil
}

// CreateFoodEntry logs a food entry against the diary for a date. The local
// write always happens first; online, the server write follows synchronously
// and its recomputed totals replace the speculative local ones. Offline, the
// entry keeps its temporary UUID and a replay task is queued.
func (r *DiaryRepo) CreateFoodEntry(ctx context.Context, date string, entry *models.FoodEntry, defaults *models.ProfileGoals) (*models.FoodEntry, error) {
	view, err := r.GetDailyDiary(ctx, date, defaults)
	if err != nil {
		return nil, err
	}
	diary := view.Diary

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.DiaryID = diary.ID
	if entry.MealType == "" {
		entry.MealType = models.MealSnack
	}

	// Local write first: the caller sees the entry immediately.
	if err := r.st.UpsertFoodEntry(entry); err != nil {
		return nil, fmt.Errorf("persist food entry: %w", err)
	}
	if err := r.applySpeculativeDelta(&diary, entry, 1); err != nil {
		return nil, err
	}

	if r.net.IsReachable() {
		resp, err := r.api.CreateFoodEntry(ctx, date, entry)
		switch {
		case err == nil:
			if err := r.adoptServerEntry(entry.ID, &resp.Entry, &resp.Diary); err != nil {
				return nil, err
			}
			return &resp.Entry, nil
		case !apiclient.Unavailable(err):
			return nil, err
		default:
			slog.Debug("remote entry create failed, queuing replay", "date", date, "err", err)
		}
	}

	_, err = r.q.Enqueue(models.ActionCreateFoodEntry, models.CreateFoodEntryPayload{
		EntryID: entry.ID,
		Date:    date,
		Entry:   *entry,
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteFoodEntry removes an entry by id (temporary ids are resolved through
// the mapping table). The local row and totals update immediately; the remote
// delete is synchronous when online and queued otherwise.
func (r *DiaryRepo) DeleteFoodEntry(ctx context.Context, id string) error {
	resolved, err := r.st.ResolveID(id)
	if err != nil {
		return err
	}
	entry, err := r.st.GetFoodEntry(resolved)
	if err != nil {
		return err
	}
	if entry == nil {
		return nil // absence is not an error
	}

	diary, err := r.st.GetDiary(entry.DiaryID)
	if err != nil {
		return err
	}
	if diary == nil {
		return fmt.Errorf("entry %s references missing diary %s", resolved, entry.DiaryID)
	}

	if err := r.st.DeleteRow("diary_food_entries", resolved); err != nil {
		return fmt.Errorf("delete food entry: %w", err)
	}
	if err := r.applySpeculativeDelta(diary, entry, -1); err != nil {
		return err
	}

	if r.net.IsReachable() {
		serverDiary, err := r.api.DeleteFoodEntry(ctx, diary.Date, resolved)
		switch {
		case err == nil:
			serverDiary.ID = diary.ID
			if err := r.st.UpsertDiary(serverDiary); err != nil {
				return fmt.Errorf("persist reconciled diary: %w", err)
			}
			return nil
		case errors.Is(err, apiclient.ErrNotFound):
			// A 404 for an entry whose create task is still queued just means
			// the server has not seen it yet. The delete must be queued too,
			// so that replay order puts it after the create and undoes it.
			if !r.pendingCreateExists(resolved) {
				return nil // genuinely gone server-side
			}
		case !apiclient.Unavailable(err):
			return err
		default:
			slog.Debug("remote entry delete failed, queuing replay", "entry", resolved, "err", err)
		}
	}

	_, err = r.q.Enqueue(models.ActionDeleteFoodEntry, models.DeleteFoodEntryPayload{
		EntryID: resolved,
		DiaryID: diary.ID,
		Date:    diary.Date,
	})
	return err
}

// pendingCreateExists reports whether a create_food_entry task for the given
// entry id is still waiting in the queue.
func (r *DiaryRepo) pendingCreateExists(entryID string) bool {
	tasks, err := r.q.ListTasks()
	if err != nil {
		return false
	}
	for _, t := range tasks {
		if t.Status != models.TaskPending || t.ActionType != models.ActionCreateFoodEntry {
			continue
		}
		var p models.CreateFoodEntryPayload
		if models.DecodePayload(t.ActionType, t.Payload, &p) == nil && p.EntryID == entryID {
			return true
		}
	}
	return false
}

// applySpeculativeDelta shifts the aggregate's running totals by one entry's
// values. sign is +1 for a logged entry, -1 for a removed one.
func (r *DiaryRepo) applySpeculativeDelta(diary *models.DailyDiary, entry *models.FoodEntry, sign int) error {
	diary.ConsumedCalories += sign * entry.Calories
	diary.ConsumedProteinG += float64(sign) * entry.ProteinG
	diary.ConsumedCarbsG += float64(sign) * entry.CarbsG
	diary.ConsumedFatG += float64(sign) * entry.FatG
	if diary.ConsumedCalories < 0 {
		diary.ConsumedCalories = 0
	}
	diary.UpdatedAt = time.Now().UTC()
	if err := r.st.UpsertDiary(diary); err != nil {
		return fmt.Errorf("persist speculative totals: %w", err)
	}
	return nil
}

// adoptServerEntry replaces a speculative local entry and its parent
// aggregate with the server's authoritative versions. The temp-to-server id
// mapping is recorded so later operations referencing the temporary id still
// resolve.
func (r *DiaryRepo) adoptServerEntry(tempID string, serverEntry *models.FoodEntry, serverDiary *models.DailyDiary) error {
	if serverEntry.ID != tempID {
		if err := r.st.RecordIDMapping(tempID, serverEntry.ID, "food_entry"); err != nil {
			return err
		}
		if err := r.st.RekeyFoodEntry(tempID, serverEntry.ID); err != nil {
			return err
		}
	}
	local, err := r.st.GetDiaryByDate(serverDiary.Date)
	if err != nil {
		return err
	}
	if local != nil && local.ID != serverDiary.ID {
		// Keep the local row key; the server id becomes canonical only after
		// the diary itself is rekeyed by the create_diary replay.
		serverDiary.ID = local.ID
	}
	serverEntry.DiaryID = serverDiary.ID
	if err := r.st.UpsertFoodEntry(serverEntry); err != nil {
		return fmt.Errorf("persist reconciled entry: %w", err)
	}
	if err := r.st.UpsertDiary(serverDiary); err != nil {
		return fmt.Errorf("persist reconciled diary: %w", err)
	}
	return nil
}
