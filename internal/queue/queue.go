// Package queue is the durable offline mutation queue: deferred writes are
// persisted as tasks and replayed through registered handlers once the
// network returns. Delivery is at-least-once; tasks are never deleted.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fitsync/fitsync/internal/models"
	"github.com/fitsync/fitsync/internal/store"
)

// Handler replays one deferred mutation. A nil return marks the task
// completed; an error marks it failed (terminal until RequeueFailed).
type Handler func(ctx context.Context, payload json.RawMessage) error

// Registry maps action types to replay handlers. It is constructed once at
// startup and handed to the queue; registration must finish before the first
// drain, or matching tasks are left pending.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds a handler to an action type. The last registration for a
// given action type wins.
func (r *Registry) Register(actionType string, h Handler) {
	r.mu.Lock()
	r.handlers[actionType] = h
	r.mu.Unlock()
}

func (r *Registry) lookup(actionType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[actionType]
	return h, ok
}

// Queue owns the offline_queue table. It is the only component that mutates
// task status.
type Queue struct {
	st       *store.Store
	registry *Registry

	drainMu sync.Mutex // one drain pass at a time
}

// New creates a queue backed by st using the given registry.
func New(st *store.Store, registry *Registry) *Queue {
	return &Queue{st: st, registry: registry}
}

// Register binds a handler on the queue's registry.
func (q *Queue) Register(actionType string, h Handler) {
	q.registry.Register(actionType, h)
}

// Enqueue durably persists a pending task before returning. Identical
// payloads enqueue distinct tasks; the queue does not deduplicate.
func (q *Queue) Enqueue(actionType string, payload any) (*models.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", actionType, err)
	}

	task := &models.Task{
		ID:         uuid.NewString(),
		ActionType: actionType,
		Payload:    data,
		CreatedAt:  time.Now().UTC(),
		Status:     models.TaskPending,
	}

	_, err = q.st.Conn().Exec(
		`INSERT INTO offline_queue (id, action_type, payload, created_at, status)
		 VALUES (?, ?, ?, ?, ?)`,
		task.ID, task.ActionType, string(task.Payload), task.CreatedAt, task.Status)
	if err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", actionType, err)
	}

	slog.Debug("queued offline action", "action", actionType, "task", task.ID)
	return task, nil
}

// DrainResult summarises one ProcessQueue pass.
type DrainResult struct {
	Processed int
	Completed int
	Failed    int
	Skipped   int // pending tasks with no registered handler
}

// ProcessQueue replays all pending tasks in creation order. Tasks without a
// registered handler stay pending; a handler error marks that task failed and
// the pass continues with the next task.
func (q *Queue) ProcessQueue(ctx context.Context) (DrainResult, error) {
	q.drainMu.Lock()
	defer q.drainMu.Unlock()

	var result DrainResult

	tasks, err := q.listByStatus(models.TaskPending)
	if err != nil {
		return result, err
	}

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		handler, ok := q.registry.lookup(task.ActionType)
		if !ok {
			slog.Warn("no handler registered, leaving task pending", "action", task.ActionType, "task", task.ID)
			result.Skipped++
			continue
		}

		result.Processed++
		if err := handler(ctx, task.Payload); err != nil {
			slog.Warn("task replay failed", "action", task.ActionType, "task", task.ID, "err", err)
			if err := q.setStatus(task.ID, models.TaskFailed, err.Error()); err != nil {
				return result, err
			}
			result.Failed++
			continue
		}

		if err := q.setStatus(task.ID, models.TaskCompleted, ""); err != nil {
			return result, err
		}
		result.Completed++
	}

	if result.Processed > 0 {
		slog.Info("drained offline queue",
			"completed", result.Completed, "failed", result.Failed, "skipped", result.Skipped)
	}
	return result, nil
}

// RequeueFailed flips failed tasks back to pending so the next drain retries
// them. Retry policy is the caller's decision; nothing requeues automatically.
func (q *Queue) RequeueFailed(ctx context.Context) (int, error) {
	res, err := q.st.Conn().ExecContext(ctx,
		`UPDATE offline_queue SET status = ?, error = '' WHERE status = ?`,
		models.TaskPending, models.TaskFailed)
	if err != nil {
		return 0, fmt.Errorf("requeue failed tasks: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Counts returns how many tasks are in each status.
func (q *Queue) Counts() (pending, completed, failed int, err error) {
	rows, err := q.st.Conn().Query(
		`SELECT status, COUNT(*) FROM offline_queue GROUP BY status`)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("count tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status models.TaskStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return 0, 0, 0, fmt.Errorf("scan task count: %w", err)
		}
		switch status {
		case models.TaskPending:
			pending = n
		case models.TaskCompleted:
			completed = n
		case models.TaskFailed:
			failed = n
		}
	}
	return pending, completed, failed, rows.Err()
}

// ListTasks returns all tasks in creation order, newest last.
func (q *Queue) ListTasks() ([]models.Task, error) {
	return q.list(`SELECT id, action_type, payload, created_at, status, error
		FROM offline_queue ORDER BY created_at ASC, id ASC`)
}

func (q *Queue) listByStatus(status models.TaskStatus) ([]models.Task, error) {
	return q.list(`SELECT id, action_type, payload, created_at, status, error
		FROM offline_queue WHERE status = ? ORDER BY created_at ASC, id ASC`, status)
}

func (q *Queue) list(query string, args ...any) ([]models.Task, error) {
	rows, err := q.st.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		var payload string
		if err := rows.Scan(&t.ID, &t.ActionType, &payload, &t.CreatedAt, &t.Status, &t.Error); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Payload = json.RawMessage(payload)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (q *Queue) setStatus(id string, status models.TaskStatus, errMsg string) error {
	_, err := q.st.Conn().Exec(
		`UPDATE offline_queue SET status = ?, error = ? WHERE id = ?`,
		status, errMsg, id)
	if err != nil {
		return fmt.Errorf("set task %s status: %w", id, err)
	}
	return nil
}
