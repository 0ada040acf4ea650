package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fentz26/tasktally/internal/models"
)

const taskColumns = `id, title, description, status, urgency, importance, estimate, remaining_hours,
	status_history, due_on, project_id, phase_key, category_lists, created_at, updated_at`

// TaskQuery selects tasks for listing. Zero fields do not filter.
type TaskQuery struct {
	Statuses        []models.TaskStatus
	ExcludeStatuses []models.TaskStatus
	ProjectID       string
	PhaseKey        string
	Urgency         models.Level
	Importance      models.Level
	CategoryList    string
	DueBefore       *time.Time
	Search          string
}

// GetTask retrieves a task by ID. It returns nil, nil when no task matches.
func (s *Store) GetTask(ctx context.Context, id string) (*models.Task, error) {
	return getTask(ctx, s.db, id)
}

// GetTask reads a task inside the transaction.
func (t *Tx) GetTask(ctx context.Context, id string) (*models.Task, error) {
	return getTask(ctx, t.tx, id)
}

// ListTasks returns tasks matching q, most recently created first.
func (s *Store) ListTasks(ctx context.Context, q TaskQuery) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var where []string
	var args []any

	if len(q.Statuses) > 0 {
		where = append(where, "status IN ("+placeholders(len(q.Statuses))+")")
		for _, st := range q.Statuses {
			args = append(args, string(st))
		}
	}
	if len(q.ExcludeStatuses) > 0 {
		where = append(where, "status NOT IN ("+placeholders(len(q.ExcludeStatuses))+")")
		for _, st := range q.ExcludeStatuses {
			args = append(args, string(st))
		}
	}
	if q.ProjectID != "" {
		where = append(where, "project_id = ?")
		args = append(args, q.ProjectID)
	}
	if q.PhaseKey != "" {
		where = append(where, "phase_key = ?")
		args = append(args, q.PhaseKey)
	}
	if q.Urgency != "" {
		where = append(where, "urgency = ?")
		args = append(args, string(q.Urgency))
	}
	if q.Importance != "" {
		where = append(where, "importance = ?")
		args = append(args, string(q.Importance))
	}
	if q.CategoryList != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(tasks.category_lists) WHERE json_each.value = ?)")
		args = append(args, q.CategoryList)
	}
	if q.DueBefore != nil {
		where = append(where, "due_on IS NOT NULL AND due_on <= ?")
		args = append(args, q.DueBefore.Format(models.DateLayout))
	}
	if term := strings.TrimSpace(q.Search); term != "" {
		where = append(where, "LOWER(title) LIKE ?")
		args = append(args, "%"+strings.ToLower(term)+"%")
	}

	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// InsertTask writes a new task row.
func (t *Tx) InsertTask(ctx context.Context, task *models.Task) error {
	history, lists, err := encodeTaskJSON(task)
	if err != nil {
		return err
	}

	_, err = t.tx.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.Title, task.Description, string(task.Status), string(task.Urgency), string(task.Importance),
		nullFloat(task.Estimate), nullFloat(task.RemainingHours), history, nullDate(task.DueOn),
		task.ProjectID, task.PhaseKey, lists, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// UpdateTask overwrites every column of an existing task, but only while
// the stored status still equals expectedStatus. It reports whether a row
// was written; false means the task is gone or its status moved underneath us.
func (t *Tx) UpdateTask(ctx context.Context, task *models.Task, expectedStatus models.TaskStatus) (bool, error) {
	history, lists, err := encodeTaskJSON(task)
	if err != nil {
		return false, err
	}

	result, err := t.tx.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, urgency = ?, importance = ?,
			estimate = ?, remaining_hours = ?, status_history = ?, due_on = ?, project_id = ?,
			phase_key = ?, category_lists = ?, created_at = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		task.Title, task.Description, string(task.Status), string(task.Urgency), string(task.Importance),
		nullFloat(task.Estimate), nullFloat(task.RemainingHours), history, nullDate(task.DueOn),
		task.ProjectID, task.PhaseKey, lists, task.CreatedAt, task.UpdatedAt,
		task.ID, string(expectedStatus),
	)
	if err != nil {
		return false, fmt.Errorf("update task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// SetRemainingHours updates only the remaining-hours column of a task.
func (t *Tx) SetRemainingHours(ctx context.Context, taskID string, hours float64, updatedAt time.Time) error {
	result, err := t.tx.ExecContext(ctx,
		`UPDATE tasks SET remaining_hours = ?, updated_at = ? WHERE id = ?`,
		hours, updatedAt, taskID,
	)
	if err != nil {
		return fmt.Errorf("update remaining hours: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	} else if n == 0 {
		return fmt.Errorf("update remaining hours: task %s: %w", taskID, sql.ErrNoRows)
	}
	return nil
}

// DeleteTask removes a task row. It reports whether a row existed.
func (t *Tx) DeleteTask(ctx context.Context, id string) (bool, error) {
	result, err := t.tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}
	return n > 0, nil
}

func getTask(ctx context.Context, q queryer, id string) (*models.Task, error) {
	row := q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}
	return task, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var task models.Task
	var status, urgency, importance string
	var estimate, remaining sql.NullFloat64
	var history, dueOn, lists sql.NullString

	if err := row.Scan(
		&task.ID, &task.Title, &task.Description, &status, &urgency, &importance,
		&estimate, &remaining, &history, &dueOn, &task.ProjectID, &task.PhaseKey,
		&lists, &task.CreatedAt, &task.UpdatedAt,
	); err != nil {
		return nil, err
	}

	task.Status = models.TaskStatus(status)
	task.Urgency = models.Level(urgency)
	task.Importance = models.Level(importance)
	if estimate.Valid {
		task.Estimate = models.Float(estimate.Float64)
	}
	if remaining.Valid {
		task.RemainingHours = models.Float(remaining.Float64)
	}
	// Legacy rows may carry NULL history; lifecycle.Normalize fills it in.
	if history.Valid && history.String != "" {
		if err := json.Unmarshal([]byte(history.String), &task.StatusHistory); err != nil {
			return nil, fmt.Errorf("decode status history: %w", err)
		}
	}
	if dueOn.Valid && dueOn.String != "" {
		d, err := time.ParseInLocation(models.DateLayout, dueOn.String, time.Local)
		if err != nil {
			return nil, fmt.Errorf("decode due date: %w", err)
		}
		task.DueOn = &d
	}
	if lists.Valid && lists.String != "" {
		if err := json.Unmarshal([]byte(lists.String), &task.CategoryLists); err != nil {
			return nil, fmt.Errorf("decode category lists: %w", err)
		}
	}
	return &task, nil
}

func encodeTaskJSON(task *models.Task) (history, lists sql.NullString, err error) {
	if len(task.StatusHistory) > 0 {
		data, err := json.Marshal(task.StatusHistory)
		if err != nil {
			return history, lists, fmt.Errorf("encode status history: %w", err)
		}
		history = sql.NullString{String: string(data), Valid: true}
	}
	if len(task.CategoryLists) > 0 {
		data, err := json.Marshal(task.CategoryLists)
		if err != nil {
			return history, lists, fmt.Errorf("encode category lists: %w", err)
		}
		lists = sql.NullString{String: string(data), Valid: true}
	}
	return history, lists, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullDate(d *time.Time) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Format(models.DateLayout), Valid: true}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
