package tracker

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/fentz26/tasktally/internal/lifecycle"
	"github.com/fentz26/tasktally/internal/models"
	"github.com/fentz26/tasktally/internal/store"
	"github.com/google/uuid"
)

// Ledger notes written by task operations.
const (
	NoteTaskCreated     = "Task created"
	NoteInitialEstimate = "Initial estimate"
	NoteEditedRemaining = "Updated via task edit"
)

// TaskFilter narrows GetTasks. Zero fields do not filter.
type TaskFilter struct {
	ProjectID    string
	PhaseKey     string
	Statuses     []models.TaskStatus
	Urgency      models.Level
	Importance   models.Level
	CategoryList string
	DueBefore    *time.Time
	Search       string
}

// DeleteResult reports what DeleteTask removed.
type DeleteResult struct {
	TaskID               string `json:"task_id"`
	TimeLogsDeleted      int64  `json:"time_logs_deleted"`
	LedgerEntriesDeleted int64  `json:"ledger_entries_deleted"`
}

// CreateTask persists a new task with its initial history and ledger entry.
func (s *Service) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	if task == nil {
		return nil, validationErr("task is required")
	}
	if err := validateTask(task); err != nil {
		return nil, s.record(ctx, "task.create", task, task.ID, err)
	}

	now := s.clock()
	created := *task
	if created.ID == "" {
		created.ID = uuid.New().String()
	}
	if created.Status == "" {
		created.Status = models.TaskStatusReady
	}
	created.Title = strings.TrimSpace(created.Title)
	created.CategoryLists = append([]string(nil), task.CategoryLists...)
	created.CreatedAt = now
	created.UpdatedAt = now
	created.StatusHistory = []models.StatusEvent{{
		Status:    created.Status,
		Timestamp: now,
		Note:      NoteTaskCreated,
	}}
	remaining := 0.0
	if created.Estimate != nil {
		remaining = *created.Estimate
	}
	created.RemainingHours = models.Float(remaining)

	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		existing, err := tx.GetTask(ctx, created.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return validationErr("task %s already exists", created.ID)
		}
		if err := tx.InsertTask(ctx, &created); err != nil {
			return err
		}
		if remaining > 0 {
			return tx.InsertRemainingHours(ctx, &models.RemainingHoursEntry{
				ID:             uuid.New().String(),
				TaskID:         created.ID,
				RemainingHours: remaining,
				Timestamp:      now,
				Note:           NoteInitialEstimate,
			})
		}
		return nil
	})
	if err := s.record(ctx, "task.create", map[string]interface{}{"title": created.Title, "status": created.Status}, created.ID, err); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateTask creates the task when isEdit is false. Otherwise it replaces
// the persisted task, validating any status change and recording a ledger
// entry when the remaining hours move. The status history is append-only
// and incoming history is ignored; an empty status or nil remaining hours
// keep the persisted values.
func (s *Service) UpdateTask(ctx context.Context, task *models.Task, isEdit bool) (*models.Task, error) {
	if !isEdit {
		return s.CreateTask(ctx, task)
	}
	if task == nil || strings.TrimSpace(task.ID) == "" {
		return nil, validationErr("task id is required")
	}
	if err := validateTask(task); err != nil {
		return nil, s.record(ctx, "task.update", task, task.ID, err)
	}

	now := s.clock()
	var updated models.Task
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		stored, err := tx.GetTask(ctx, task.ID)
		if err != nil {
			return err
		}
		if stored == nil {
			return fmt.Errorf("%w: task %s", ErrNotFound, task.ID)
		}
		current := lifecycle.Normalize(*stored, now)

		updated = *task
		updated.Title = strings.TrimSpace(updated.Title)
		updated.CategoryLists = append([]string(nil), task.CategoryLists...)
		updated.CreatedAt = current.CreatedAt
		updated.UpdatedAt = now
		if updated.Status == "" {
			updated.Status = current.Status
		}

		if updated.Status == current.Status {
			updated.StatusHistory = current.StatusHistory
		} else {
			if !lifecycle.IsValidTransition(current.Status, updated.Status) {
				return fmt.Errorf("%w: %s => %s", ErrInvalidTransition, current.Status.Label(), updated.Status.Label())
			}
			updated.StatusHistory = lifecycle.AppendEvent(current.StatusHistory, models.StatusEvent{
				Status:    updated.Status,
				Timestamp: now,
				Note:      lifecycle.TransitionNote(current.Status, updated.Status),
			})
		}

		var entry *models.RemainingHoursEntry
		if updated.RemainingHours == nil {
			updated.RemainingHours = current.RemainingHours
		} else if *updated.RemainingHours != *current.RemainingHours {
			entry = &models.RemainingHoursEntry{
				ID:                     uuid.New().String(),
				TaskID:                 updated.ID,
				RemainingHours:         *updated.RemainingHours,
				PreviousRemainingHours: models.Float(*current.RemainingHours),
				Timestamp:              now,
				Note:                   NoteEditedRemaining,
			}
		}

		// Guard on the raw stored status so legacy rows still match.
		written, err := tx.UpdateTask(ctx, &updated, stored.Status)
		if err != nil {
			return err
		}
		if !written {
			return fmt.Errorf("%w: task %s status changed concurrently", ErrInvalidTransition, updated.ID)
		}
		if entry != nil {
			return tx.InsertRemainingHours(ctx, entry)
		}
		return nil
	})
	if err := s.record(ctx, "task.update", map[string]interface{}{"task_id": task.ID, "status": task.Status}, task.ID, err); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTask removes a task together with its time logs and ledger.
func (s *Service) DeleteTask(ctx context.Context, id string) (*DeleteResult, error) {
	if strings.TrimSpace(id) == "" {
		return nil, validationErr("task id is required")
	}

	result := &DeleteResult{TaskID: id}
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		var err error
		if result.TimeLogsDeleted, err = tx.DeleteTimeLogsForTask(ctx, id); err != nil {
			return err
		}
		if result.LedgerEntriesDeleted, err = tx.DeleteRemainingHoursForTask(ctx, id); err != nil {
			return err
		}
		found, err := tx.DeleteTask(ctx, id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: task %s", ErrNotFound, id)
		}
		return nil
	})
	if err := s.record(ctx, "task.delete", map[string]string{"task_id": id}, id, err); err != nil {
		return nil, err
	}
	return result, nil
}

// GetTask retrieves a normalized task by ID.
func (s *Service) GetTask(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	if task == nil {
		return nil, fmt.Errorf("%w: task %s", ErrNotFound, id)
	}
	normalized := lifecycle.Normalize(*task, s.clock())
	return &normalized, nil
}

// GetTasks returns normalized tasks matching filter. Terminal tasks are
// omitted unless includeTerminal is set.
func (s *Service) GetTasks(ctx context.Context, filter TaskFilter, includeTerminal bool) ([]models.Task, error) {
	q := store.TaskQuery{
		Statuses:     filter.Statuses,
		ProjectID:    filter.ProjectID,
		PhaseKey:     filter.PhaseKey,
		Urgency:      filter.Urgency,
		Importance:   filter.Importance,
		CategoryList: filter.CategoryList,
		DueBefore:    filter.DueBefore,
		Search:       filter.Search,
	}
	if !includeTerminal {
		q.ExcludeStatuses = lifecycle.TerminalStatuses()
	}

	tasks, err := s.store.ListTasks(ctx, q)
	if err != nil {
		return nil, classify(err)
	}
	now := s.clock()
	for i := range tasks {
		tasks[i] = lifecycle.Normalize(tasks[i], now)
	}
	return tasks, nil
}

// GetStatusHistory returns the status history of a task, oldest first.
func (s *Service) GetStatusHistory(ctx context.Context, id string) ([]models.StatusEvent, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	return task.StatusHistory, nil
}

func validateTask(task *models.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return validationErr("title is required")
	}
	if task.Status != "" && !task.Status.Valid() {
		return validationErr("unknown status %q", task.Status)
	}
	if task.Urgency != "" && !task.Urgency.Valid() {
		return validationErr("unknown urgency %q", task.Urgency)
	}
	if task.Importance != "" && !task.Importance.Valid() {
		return validationErr("unknown importance %q", task.Importance)
	}
	if err := validateHours("estimate", task.Estimate); err != nil {
		return err
	}
	return validateHours("remaining hours", task.RemainingHours)
}

func validateHours(field string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return validationErr("%s must be a non-negative number", field)
	}
	return nil
}
