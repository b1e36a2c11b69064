package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fitsync/fitsync/internal/apiclient"
	"github.com/fitsync/fitsync/internal/models"
	"github.com/fitsync/fitsync/internal/queue"
	"github.com/fitsync/fitsync/internal/store"
)

// ErrSessionOpen is returned when starting a session while another is open.
var ErrSessionOpen = errors.New("an activity session is already open")

// ErrNoOpenSession is returned by mutators that need an open session.
var ErrNoOpenSession = errors.New("no open activity session")

// ActivityRepo serves workout sessions. Local-preferred: the session lives
// locally while open and is uploaded (or queued for upload) once closed.
type ActivityRepo struct {
	st  *store.Store
	api *apiclient.Client
	net Reachability
	q   *queue.Queue
}

// NewActivityRepo creates the activity diary repository.
func NewActivityRepo(st *store.Store, api *apiclient.Client, net Reachability, q *queue.Queue) *ActivityRepo {
	if net == nil {
		net = AlwaysReachable()
	}
	return &ActivityRepo{st: st, api: api, net: net, q: q}
}

// Strategy reports the repository's fallback policy.
func (r *ActivityRepo) Strategy() Strategy { return StrategyLocalPreferred }

// RegisterHandlers binds the activity replay handler on the queue.
func (r *ActivityRepo) RegisterHandlers(q *queue.Queue) {
	q.Register(models.ActionUploadActivityDiary, r.replayUpload)
}

// StartSession opens a new workout session for the date. Only one session may
// be open at a time.
func (r *ActivityRepo) StartSession(ctx context.Context, date, notes string) (*models.ActivityDiary, error) {
	open, err := r.st.GetOpenActivityDiary()
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, fmt.Errorf("%w: started %s", ErrSessionOpen, open.StartedAt.Format(time.RFC3339))
	}

	session := &models.ActivityDiary{
		ID:        uuid.NewString(),
		Date:      date,
		StartedAt: time.Now().UTC(),
		Notes:     notes,
	}
	if err := r.st.UpsertActivityDiary(session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	return session, nil
}

// OpenSession returns the currently open session, or nil when none is open.
func (r *ActivityRepo) OpenSession() (*models.ActivityDiary, error) {
	return r.st.GetOpenActivityDiary()
}

// AddExercise appends an exercise to the open session.
func (r *ActivityRepo) AddExercise(ctx context.Context, name string) (*models.ActivityEntry, error) {
	session, err := r.requireOpen()
	if err != nil {
		return nil, err
	}

	entry := &models.ActivityEntry{
		ID:           uuid.NewString(),
		DiaryID:      session.ID,
		ExerciseName: name,
		Position:     len(session.Entries),
		Sets:         []models.ExerciseSet{},
	}
	if err := r.st.UpsertActivityEntry(entry); err != nil {
		return nil, fmt.Errorf("persist exercise: %w", err)
	}
	return entry, nil
}

// AddSet appends a set to an exercise of the open session.
func (r *ActivityRepo) AddSet(ctx context.Context, entryID string, set models.ExerciseSet) (*models.ActivityEntry, error) {
	return r.mutateSets(entryID, func(sets []models.ExerciseSet) ([]models.ExerciseSet, error) {
		return append(sets, set), nil
	})
}

// UpdateSet replaces the set at index on an exercise of the open session.
func (r *ActivityRepo) UpdateSet(ctx context.Context, entryID string, index int, set models.ExerciseSet) (*models.ActivityEntry, error) {
	return r.mutateSets(entryID, func(sets []models.ExerciseSet) ([]models.ExerciseSet, error) {
		if index < 0 || index >= len(sets) {
			return nil, fmt.Errorf("set index %d out of range", index)
		}
		sets[index] = set
		return sets, nil
	})
}

// RemoveSet removes the set at index on an exercise of the open session.
func (r *ActivityRepo) RemoveSet(ctx context.Context, entryID string, index int) (*models.ActivityEntry, error) {
	return r.mutateSets(entryID, func(sets []models.ExerciseSet) ([]models.ExerciseSet, error) {
		if index < 0 || index >= len(sets) {
			return nil, fmt.Errorf("set index %d out of range", index)
		}
		return append(sets[:index], sets[index+1:]...), nil
	})
}

func (r *ActivityRepo) mutateSets(entryID string, fn func([]models.ExerciseSet) ([]models.ExerciseSet, error)) (*models.ActivityEntry, error) {
	session, err := r.requireOpen()
	if err != nil {
		return nil, err
	}

	// Full id or an unambiguous prefix.
	var entry *models.ActivityEntry
	for i := range session.Entries {
		if session.Entries[i].ID == entryID {
			entry = &session.Entries[i]
			break
		}
		if strings.HasPrefix(session.Entries[i].ID, entryID) {
			if entry != nil {
				return nil, fmt.Errorf("exercise id %s is ambiguous", entryID)
			}
			entry = &session.Entries[i]
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("exercise %s not in open session", entryID)
	}

	sets, err := fn(entry.Sets)
	if err != nil {
		return nil, err
	}
	entry.Sets = sets
	if err := r.st.UpsertActivityEntry(entry); err != nil {
		return nil, fmt.Errorf("persist exercise: %w", err)
	}
	return entry, nil
}

func (r *ActivityRepo) requireOpen() (*models.ActivityDiary, error) {
	session, err := r.st.GetOpenActivityDiary()
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNoOpenSession
	}
	return session, nil
}

// CloseSession stamps the open session's end time and hands it to
// SaveActivityDiary for upload or deferral.
func (r *ActivityRepo) CloseSession(ctx context.Context) (*models.ActivityDiary, error) {
	session, err := r.requireOpen()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session.EndedAt = &now
	if err := r.SaveActivityDiary(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SaveActivityDiary persists the session locally and, once the session is
// closed, uploads it: synchronously when reachable, otherwise through the
// offline queue.
func (r *ActivityRepo) SaveActivityDiary(ctx context.Context, session *models.ActivityDiary) error {
	if err := r.st.UpsertActivityDiary(session); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	for i := range session.Entries {
		if err := r.st.UpsertActivityEntry(&session.Entries[i]); err != nil {
			return fmt.Errorf("persist exercise: %w", err)
		}
	}
	if session.Open() {
		return nil // only closed sessions are eligible for upload
	}

	if r.net.IsReachable() {
		uploaded, err := r.api.UploadActivityDiary(ctx, session)
		switch {
		case err == nil:
			return r.adoptServerSession(session.ID, uploaded)
		case !apiclient.Unavailable(err):
			return err
		default:
			slog.Debug("session upload failed, queuing replay", "session", session.ID, "err", err)
		}
	}

	_, err := r.q.Enqueue(models.ActionUploadActivityDiary, models.UploadActivityDiaryPayload{
		DiaryID: session.ID,
		Session: *session,
	})
	return err
}

// GetActivityDiaryByDate returns the session for a date: the local row when
// present, otherwise a remote fetch persisted through the cache. Absent both
// sides, or absent locally while offline, yields (nil, nil).
func (r *ActivityRepo) GetActivityDiaryByDate(ctx context.Context, date string) (*models.ActivityDiary, error) {
	local, err := r.st.GetActivityDiaryByDate(date)
	if err != nil {
		return nil, err
	}
	if local != nil {
		return local, nil
	}

	if !r.net.IsReachable() {
		return nil, nil
	}
	remote, err := r.api.GetActivityDiary(ctx, date)
	switch {
	case err == nil:
	case errors.Is(err, apiclient.ErrNotFound):
		return nil, nil
	case !apiclient.Unavailable(err):
		return nil, err
	default:
		slog.Debug("remote session fetch failed", "date", date, "err", err)
		return nil, nil
	}

	if err := r.st.UpsertActivityDiary(remote); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	for i := range remote.Entries {
		remote.Entries[i].DiaryID = remote.ID
		if err := r.st.UpsertActivityEntry(&remote.Entries[i]); err != nil {
			return nil, fmt.Errorf("persist exercise: %w", err)
		}
	}
	return remote, nil
}

// adoptServerSession records the temp-to-server mapping and re-points local
// rows after a successful upload.
func (r *ActivityRepo) adoptServerSession(tempID string, uploaded *models.ActivityDiary) error {
	if uploaded.ID != tempID {
		if err := r.st.RecordIDMapping(tempID, uploaded.ID, "activity_diary"); err != nil {
			return err
		}
	}
	if err := r.st.UpsertActivityDiary(uploaded); err != nil {
		return fmt.Errorf("persist uploaded session: %w", err)
	}
	if uploaded.ID != tempID {
		// Drop the temp-keyed rows; the server-keyed copies replace them.
		if err := r.st.DeleteActivityEntriesByDiary(tempID); err != nil {
			return err
		}
		if err := r.st.DeleteRow("activity_diaries", tempID); err != nil {
			return err
		}
	}
	for i := range uploaded.Entries {
		uploaded.Entries[i].DiaryID = uploaded.ID
		if err := r.st.UpsertActivityEntry(&uploaded.Entries[i]); err != nil {
			return fmt.Errorf("persist uploaded exercise: %w", err)
		}
	}
	return nil
}

// replayUpload uploads a session queued while offline.
func (r *ActivityRepo) replayUpload(ctx context.Context, raw json.RawMessage) error {
	var p models.UploadActivityDiaryPayload
	if err := models.DecodePayload(models.ActionUploadActivityDiary, raw, &p); err != nil {
		return err
	}

	session := p.Session
	uploaded, err := r.api.UploadActivityDiary(ctx, &session)
	if err != nil {
		return fmt.Errorf("replay session upload %s: %w", p.DiaryID, err)
	}
	return r.adoptServerSession(p.DiaryID, uploaded)
}
