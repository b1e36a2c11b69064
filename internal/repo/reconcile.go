package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/fitsync/fitsync/internal/apiclient"
	"github.com/fitsync/fitsync/internal/models"
	"github.com/fitsync/fitsync/internal/queue"
)

// RegisterHandlers binds the diary repository's replay handlers on the queue.
// Must run at startup before the first drain.
func (r *DiaryRepo) RegisterHandlers(q *queue.Queue) {
	q.Register(models.ActionCreateDiary, r.replayCreateDiary)
	q.Register(models.ActionCreateFoodEntry, r.replayCreateFoodEntry)
	q.Register(models.ActionDeleteFoodEntry, r.replayDeleteFoodEntry)
}

// replayCreateDiary creates the remote counterpart of a diary synthesized
// offline, then re-points the local row to the server-assigned id. The
// server's totals replace the speculative ones; entry replays queued after
// this task restore the consumed sums entry by entry.
func (r *DiaryRepo) replayCreateDiary(ctx context.Context, raw json.RawMessage) error {
	var p models.CreateDiaryPayload
	if err := models.DecodePayload(models.ActionCreateDiary, raw, &p); err != nil {
		return err
	}

	resp, err := r.api.CreateDiary(ctx, p.Date, p.Goals)
	if err != nil {
		// The diary may already exist server-side (task replayed twice, or
		// another code path created it). Conflict resolves to the existing one.
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
			resp, err = r.api.GetDiary(ctx, p.Date)
		}
		if err != nil {
			return fmt.Errorf("create remote diary %s: %w", p.Date, err)
		}
	}

	serverID := resp.Diary.ID
	if serverID != p.DiaryID {
		if err := r.st.RecordIDMapping(p.DiaryID, serverID, "daily_diary"); err != nil {
			return err
		}
		if err := r.st.RekeyDiary(p.DiaryID, serverID); err != nil {
			return err
		}
	}
	if err := r.st.UpsertDiary(&resp.Diary); err != nil {
		return fmt.Errorf("persist reconciled diary: %w", err)
	}
	return nil
}

// replayCreateFoodEntry performs the real remote entry creation for an entry
// logged offline: the server assigns the canonical id and recomputes the
// aggregate, and the local state adopts both.
func (r *DiaryRepo) replayCreateFoodEntry(ctx context.Context, raw json.RawMessage) error {
	var p models.CreateFoodEntryPayload
	if err := models.DecodePayload(models.ActionCreateFoodEntry, raw, &p); err != nil {
		return err
	}

	entry := p.Entry
	resp, err := r.api.CreateFoodEntry(ctx, p.Date, &entry)
	if err != nil {
		return fmt.Errorf("replay entry create %s: %w", p.EntryID, err)
	}

	return r.adoptServerEntry(p.EntryID, &resp.Entry, &resp.Diary)
}

// replayDeleteFoodEntry replays an offline deletion. The entry id may still
// be temporary; the mapping table resolves it to the server id assigned by an
// earlier replay in the same drain.
func (r *DiaryRepo) replayDeleteFoodEntry(ctx context.Context, raw json.RawMessage) error {
	var p models.DeleteFoodEntryPayload
	if err := models.DecodePayload(models.ActionDeleteFoodEntry, raw, &p); err != nil {
		return err
	}

	entryID, err := r.st.ResolveID(p.EntryID)
	if err != nil {
		return err
	}

	serverDiary, err := r.api.DeleteFoodEntry(ctx, p.Date, entryID)
	if err != nil {
		if errors.Is(err, apiclient.ErrNotFound) {
			// Gone server-side, but an earlier create replay in this drain may
			// have restored the local row. Drop it either way.
			return r.st.DeleteRow("diary_food_entries", entryID)
		}
		return fmt.Errorf("replay entry delete %s: %w", entryID, err)
	}

	// An earlier create replay re-inserts the entry locally; the delete must
	// remove that row again or the aggregate stops matching its entries.
	if err := r.st.DeleteRow("diary_food_entries", entryID); err != nil {
		return err
	}

	local, err := r.st.GetDiaryByDate(p.Date)
	if err != nil {
		return err
	}
	if local != nil && local.ID != serverDiary.ID {
		serverDiary.ID = local.ID
	}
	if err := r.st.UpsertDiary(serverDiary); err != nil {
		return fmt.Errorf("persist reconciled diary: %w", err)
	}
	return nil
}
