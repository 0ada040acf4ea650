package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fentz26/tasktally/internal/models"
)

// ListRemainingHours returns the burn-down ledger of a task, oldest first.
func (s *Store) ListRemainingHours(ctx context.Context, taskID string) ([]models.RemainingHoursEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task_id, remaining_hours, previous_remaining_hours, timestamp, note
		 FROM remaining_hours_history WHERE task_id = ? ORDER BY timestamp ASC, rowid ASC`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("query remaining hours: %w", err)
	}
	defer rows.Close()

	var entries []models.RemainingHoursEntry
	for rows.Next() {
		var e models.RemainingHoursEntry
		var previous sql.NullFloat64
		if err := rows.Scan(&e.ID, &e.TaskID, &e.RemainingHours, &previous, &e.Timestamp, &e.Note); err != nil {
			return nil, fmt.Errorf("scan remaining hours: %w", err)
		}
		if previous.Valid {
			e.PreviousRemainingHours = models.Float(previous.Float64)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// InsertRemainingHours appends a ledger entry.
func (t *Tx) InsertRemainingHours(ctx context.Context, e *models.RemainingHoursEntry) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO remaining_hours_history (id, task_id, remaining_hours, previous_remaining_hours, timestamp, note)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.TaskID, e.RemainingHours, nullFloat(e.PreviousRemainingHours), e.Timestamp, e.Note,
	)
	if err != nil {
		return fmt.Errorf("insert remaining hours: %w", err)
	}
	return nil
}

// DeleteRemainingHoursForTask removes a task's whole ledger.
func (t *Tx) DeleteRemainingHoursForTask(ctx context.Context, taskID string) (int64, error) {
	result, err := t.tx.ExecContext(ctx, `DELETE FROM remaining_hours_history WHERE task_id = ?`, taskID)
	if err != nil {
		return 0, fmt.Errorf("delete remaining hours: %w", err)
	}
	return result.RowsAffected()
}
