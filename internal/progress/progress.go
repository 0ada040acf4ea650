// Package progress derives burn-up metrics for a task from its time logs.
package progress

import (
	"math"

	"github.com/fentz26/tasktally/internal/models"
)

// Progress summarizes how much of a task's estimate has been used.
type Progress struct {
	TaskID         string   `json:"task_id"`
	LoggedHours    float64  `json:"logged_hours"`
	Estimate       *float64 `json:"estimate,omitempty"`
	RemainingHours *float64 `json:"remaining_hours,omitempty"`
	Percentage     int      `json:"percentage"`
	OverBudget     bool     `json:"over_budget"`
	LogCount       int      `json:"log_count"`
}

// TotalHours sums the hours of logs.
func TotalHours(logs []models.TimeLog) float64 {
	var total float64
	for _, l := range logs {
		total += l.Hours
	}
	return total
}

// Percentage returns total as a whole percentage of estimate, clamped to
// [0, 100]. Halves round up. Without a positive estimate it is 0.
func Percentage(total float64, estimate *float64) int {
	if estimate == nil || *estimate <= 0 {
		return 0
	}
	pct := math.Floor(total/(*estimate)*100 + 0.5)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return int(pct)
}

// IsOverBudget reports whether more time was logged than estimated.
// Tasks without a positive estimate are never over budget.
func IsOverBudget(total float64, estimate *float64) bool {
	if estimate == nil || *estimate <= 0 {
		return false
	}
	return total > *estimate
}

// Calculate derives the progress of task from logs. Logs for other tasks
// are ignored.
func Calculate(task models.Task, logs []models.TimeLog) Progress {
	own := logs[:0:0]
	for _, l := range logs {
		if l.TaskID == task.ID {
			own = append(own, l)
		}
	}
	total := TotalHours(own)
	return Progress{
		TaskID:         task.ID,
		LoggedHours:    total,
		Estimate:       task.Estimate,
		RemainingHours: task.RemainingHours,
		Percentage:     Percentage(total, task.Estimate),
		OverBudget:     IsOverBudget(total, task.Estimate),
		LogCount:       len(own),
	}
}
