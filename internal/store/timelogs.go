package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fentz26/tasktally/internal/models"
)

const timeLogColumns = `id, task_id, hours, date_logged, category_key, notes, created_at`

// TimeLogQuery selects time logs. An empty TaskID matches every task; the
// date range is only applied when both StartDate and EndDate are set
// (YYYY-MM-DD, inclusive).
type TimeLogQuery struct {
	TaskID    string
	StartDate string
	EndDate   string
}

// ListTimeLogs returns logs matching q, oldest day first.
func (s *Store) ListTimeLogs(ctx context.Context, q TimeLogQuery) ([]models.TimeLog, error) {
	query := `SELECT ` + timeLogColumns + ` FROM time_logs`
	var where []string
	var args []any

	if q.TaskID != "" {
		where = append(where, "task_id = ?")
		args = append(args, q.TaskID)
	}
	if q.StartDate != "" && q.EndDate != "" {
		where = append(where, "date_logged >= ? AND date_logged <= ?")
		args = append(args, q.StartDate, q.EndDate)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date_logged ASC, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query time logs: %w", err)
	}
	defer rows.Close()

	var logs []models.TimeLog
	for rows.Next() {
		log, err := scanTimeLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan time log: %w", err)
		}
		logs = append(logs, *log)
	}
	return logs, rows.Err()
}

// GetTimeLog retrieves a log by ID. It returns nil, nil when no log matches.
func (s *Store) GetTimeLog(ctx context.Context, id string) (*models.TimeLog, error) {
	return getTimeLog(ctx, s.db, id)
}

// GetTimeLog reads a log inside the transaction.
func (t *Tx) GetTimeLog(ctx context.Context, id string) (*models.TimeLog, error) {
	return getTimeLog(ctx, t.tx, id)
}

func getTimeLog(ctx context.Context, q queryer, id string) (*models.TimeLog, error) {
	row := q.QueryRowContext(ctx, `SELECT `+timeLogColumns+` FROM time_logs WHERE id = ?`, id)
	log, err := scanTimeLog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query time log: %w", err)
	}
	return log, nil
}

// DeleteTimeLog removes a single log. It reports whether a row existed.
func (s *Store) DeleteTimeLog(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM time_logs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete time log: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}
	return n > 0, nil
}

// PutTimeLog inserts a log, replacing any existing row with the same ID.
// A replaced row keeps its task and creation time.
func (t *Tx) PutTimeLog(ctx context.Context, log *models.TimeLog) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO time_logs (`+timeLogColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET hours = excluded.hours,
			date_logged = excluded.date_logged, category_key = excluded.category_key, notes = excluded.notes`,
		log.ID, log.TaskID, log.Hours, log.DateLogged, nullString(log.CategoryKey), log.Notes, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert time log: %w", err)
	}
	return nil
}

// DeleteTimeLogsForTask removes every log belonging to a task.
func (t *Tx) DeleteTimeLogsForTask(ctx context.Context, taskID string) (int64, error) {
	result, err := t.tx.ExecContext(ctx, `DELETE FROM time_logs WHERE task_id = ?`, taskID)
	if err != nil {
		return 0, fmt.Errorf("delete time logs: %w", err)
	}
	return result.RowsAffected()
}

func scanTimeLog(row rowScanner) (*models.TimeLog, error) {
	var log models.TimeLog
	var categoryKey sql.NullString
	if err := row.Scan(&log.ID, &log.TaskID, &log.Hours, &log.DateLogged, &categoryKey, &log.Notes, &log.CreatedAt); err != nil {
		return nil, err
	}
	if categoryKey.Valid {
		log.CategoryKey = categoryKey.String
	}
	return &log, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
