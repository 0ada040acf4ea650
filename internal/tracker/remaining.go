package tracker

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/fentz26/tasktally/internal/lifecycle"
	"github.com/fentz26/tasktally/internal/models"
	"github.com/fentz26/tasktally/internal/store"
	"github.com/google/uuid"
)

// WorkResult is the outcome of LogWork.
type WorkResult struct {
	Log   *models.TimeLog             `json:"log"`
	Entry *models.RemainingHoursEntry `json:"entry,omitempty"`
}

// UpdateRemainingHours sets a task's remaining hours and appends a ledger
// entry. It returns nil, nil when value equals the current remaining hours.
// The value is stored as given; rounding and clamping are up to the caller.
func (s *Service) UpdateRemainingHours(ctx context.Context, taskID string, value float64, note string) (*models.RemainingHoursEntry, error) {
	inputs := map[string]interface{}{"task_id": taskID, "remaining_hours": value, "note": note}
	if strings.TrimSpace(taskID) == "" {
		return nil, validationErr("task id is required")
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return nil, s.record(ctx, "remaining.update", inputs, taskID, validationErr("remaining hours must be a non-negative number"))
	}

	now := s.clock()
	var entry *models.RemainingHoursEntry
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		task, err := tx.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		if task == nil {
			return fmt.Errorf("%w: task %s", ErrNotFound, taskID)
		}
		current := *lifecycle.Normalize(*task, now).RemainingHours
		if current == value {
			return nil
		}
		if err := tx.SetRemainingHours(ctx, taskID, value, now); err != nil {
			return err
		}
		entry = &models.RemainingHoursEntry{
			ID:                     uuid.New().String(),
			TaskID:                 taskID,
			RemainingHours:         value,
			PreviousRemainingHours: models.Float(current),
			Timestamp:              now,
			Note:                   note,
		}
		return tx.InsertRemainingHours(ctx, entry)
	})
	if err != nil {
		return nil, s.record(ctx, "remaining.update", inputs, taskID, err)
	}
	if entry == nil {
		return nil, nil
	}
	s.record(ctx, "remaining.update", inputs, taskID, nil)
	return entry, nil
}

// GetRemainingHoursHistory returns a task's ledger, oldest first.
func (s *Service) GetRemainingHoursHistory(ctx context.Context, taskID string) ([]models.RemainingHoursEntry, error) {
	entries, err := s.store.ListRemainingHours(ctx, taskID)
	if err != nil {
		return nil, classify(err)
	}
	return entries, nil
}

// LogWork saves a time log and then burns the logged hours down from the
// task's remaining hours. The two steps commit separately; if the second
// fails the saved log is still returned alongside the error.
func (s *Service) LogWork(ctx context.Context, log *models.TimeLog) (*WorkResult, error) {
	saved, err := s.SaveTimeLog(ctx, log)
	if err != nil {
		return nil, err
	}
	result := &WorkResult{Log: saved}

	task, err := s.GetTask(ctx, saved.TaskID)
	if err != nil {
		return result, err
	}
	next := BurnDown(*task.RemainingHours, saved.Hours)
	result.Entry, err = s.UpdateRemainingHours(ctx, saved.TaskID, next, fmt.Sprintf("Logged %sh", FormatHours(saved.Hours)))
	return result, err
}
