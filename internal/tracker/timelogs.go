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

// SaveTimeLog records hours against a task. The task must currently be
// estimated or in progress. A log whose ID already exists is replaced.
func (s *Service) SaveTimeLog(ctx context.Context, log *models.TimeLog) (*models.TimeLog, error) {
	if log == nil {
		return nil, validationErr("time log is required")
	}
	saved := *log
	saved.TaskID = strings.TrimSpace(saved.TaskID)
	if err := s.prepareTimeLog(&saved); err != nil {
		return nil, s.record(ctx, "timelog.save", log, saved.TaskID, err)
	}

	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		task, err := tx.GetTask(ctx, saved.TaskID)
		if err != nil {
			return err
		}
		if task == nil {
			return fmt.Errorf("%w: task %s", ErrNotFound, saved.TaskID)
		}
		status := lifecycle.Normalize(*task, saved.CreatedAt).Status
		if !lifecycle.IsLoggable(status) {
			return fmt.Errorf("%w: task %s is %s", ErrInvalidTaskState, saved.TaskID, status.Label())
		}
		existing, err := tx.GetTimeLog(ctx, saved.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.TaskID != saved.TaskID {
				return validationErr("log %s belongs to another task", saved.ID)
			}
			saved.CreatedAt = existing.CreatedAt
		}
		return tx.PutTimeLog(ctx, &saved)
	})
	inputs := map[string]interface{}{"log_id": saved.ID, "hours": saved.Hours, "date": saved.DateLogged}
	if err := s.record(ctx, "timelog.save", inputs, saved.TaskID, err); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (s *Service) prepareTimeLog(log *models.TimeLog) error {
	if log.TaskID == "" {
		return validationErr("task id is required")
	}
	if math.IsNaN(log.Hours) || math.IsInf(log.Hours, 0) || log.Hours <= 0 {
		return validationErr("hours must be greater than zero")
	}
	if log.DateLogged == "" {
		log.DateLogged = s.today()
	} else if _, err := time.Parse(models.DateLayout, log.DateLogged); err != nil {
		return validationErr("date %q is not YYYY-MM-DD", log.DateLogged)
	}
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = s.clock()
	}
	return nil
}

// DeleteTimeLog removes a log. Remaining hours are not adjusted.
func (s *Service) DeleteTimeLog(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return validationErr("time log id is required")
	}
	var taskID string
	existing, err := s.store.GetTimeLog(ctx, id)
	if err == nil && existing != nil {
		taskID = existing.TaskID
	}
	if err == nil {
		var found bool
		found, err = s.store.DeleteTimeLog(ctx, id)
		if err == nil && !found {
			err = fmt.Errorf("%w: time log %s", ErrNotFound, id)
		}
	}
	return s.record(ctx, "timelog.delete", map[string]string{"log_id": id}, taskID, err)
}

// GetTimeLogs returns logs for taskID, or every task when taskID is empty.
// The date range is inclusive and applies only when both bounds are given;
// a single bound is ignored.
func (s *Service) GetTimeLogs(ctx context.Context, taskID string, start, end *time.Time) ([]models.TimeLog, error) {
	q := store.TimeLogQuery{TaskID: taskID}
	if start != nil && end != nil {
		q.StartDate = start.Format(models.DateLayout)
		q.EndDate = end.Format(models.DateLayout)
	}
	logs, err := s.store.ListTimeLogs(ctx, q)
	if err != nil {
		return nil, classify(err)
	}
	return logs, nil
}
