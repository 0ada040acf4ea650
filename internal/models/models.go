// Package models defines the core domain types for tasktally.
package models

import "time"

// TaskStatus represents the current lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusReady      TaskStatus = "ready"
	TaskStatusEstimated  TaskStatus = "estimated"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusBlocked    TaskStatus = "blocked"
	TaskStatusBackburner TaskStatus = "backburner"
	TaskStatusOnHold     TaskStatus = "on_hold"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusAbandoned  TaskStatus = "abandoned"
	TaskStatusArchived   TaskStatus = "archived"
)

// AllStatuses lists every status in board order.
var AllStatuses = []TaskStatus{
	TaskStatusReady,
	TaskStatusEstimated,
	TaskStatusInProgress,
	TaskStatusBlocked,
	TaskStatusBackburner,
	TaskStatusOnHold,
	TaskStatusCompleted,
	TaskStatusAbandoned,
	TaskStatusArchived,
}

var statusLabels = map[TaskStatus]string{
	TaskStatusReady:      "Ready",
	TaskStatusEstimated:  "Estimated",
	TaskStatusInProgress: "In Progress",
	TaskStatusBlocked:    "Blocked",
	TaskStatusBackburner: "Backburner",
	TaskStatusOnHold:     "On Hold",
	TaskStatusCompleted:  "Completed",
	TaskStatusAbandoned:  "Abandoned",
	TaskStatusArchived:   "Archived",
}

// Label returns the human-readable name of the status.
func (s TaskStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Level is a coarse low/medium/high rating used for urgency and importance.
type Level string

const (
	LevelLow    Level = "low"
	LevelMedium Level = "medium"
	LevelHigh   Level = "high"
)

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	}
	return false
}

// StatusEvent records a single status change. Events are never edited.
type StatusEvent struct {
	Status    TaskStatus `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
	Note      string     `json:"note,omitempty"`
}

// Task is a unit of tracked work.
type Task struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description,omitempty"`
	Status         TaskStatus    `json:"status"`
	Urgency        Level         `json:"urgency,omitempty"`
	Importance     Level         `json:"importance,omitempty"`
	Estimate       *float64      `json:"estimate,omitempty"`
	RemainingHours *float64      `json:"remaining_hours,omitempty"`
	StatusHistory  []StatusEvent `json:"status_history"`
	DueOn          *time.Time    `json:"due_on,omitempty"`
	ProjectID      string        `json:"project_id,omitempty"`
	PhaseKey       string        `json:"phase_key,omitempty"`
	CategoryLists  []string      `json:"category_lists,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// RemainingHoursEntry is one row of the burn-down ledger.
type RemainingHoursEntry struct {
	ID                     string    `json:"id"`
	TaskID                 string    `json:"task_id"`
	RemainingHours         float64   `json:"remaining_hours"`
	PreviousRemainingHours *float64  `json:"previous_remaining_hours,omitempty"`
	Timestamp              time.Time `json:"timestamp"`
	Note                   string    `json:"note,omitempty"`
}

// TimeLog is an amount of time worked on a task on a given day.
type TimeLog struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	Hours       float64   `json:"hours"`
	DateLogged  string    `json:"date_logged"` // YYYY-MM-DD
	CategoryKey string    `json:"category_key,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DateLayout is the storage format for calendar dates.
const DateLayout = "2006-01-02"

// AuditEntry records the outcome of a state-mutating action.
type AuditEntry struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	InputsHash string    `json:"inputs_hash"`
	Outcome    string    `json:"outcome"`
	TaskID     string    `json:"task_id,omitempty"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
