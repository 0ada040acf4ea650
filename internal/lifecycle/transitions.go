// Package lifecycle holds the task status state machine.
//
// Everything here is pure: the transition table is fixed data built at
// package init and never mutated, and Normalize returns a new Task rather
// than patching its argument.
package lifecycle

import "github.com/fentz26/tasktally/internal/models"

// transitions maps a status to the statuses it may move to next.
var transitions = map[models.TaskStatus][]models.TaskStatus{
	models.TaskStatusReady: {
		models.TaskStatusEstimated,
		models.TaskStatusInProgress,
		models.TaskStatusAbandoned,
		models.TaskStatusArchived,
	},
	models.TaskStatusEstimated: {
		models.TaskStatusInProgress,
		models.TaskStatusAbandoned,
		models.TaskStatusArchived,
	},
	models.TaskStatusInProgress: {
		models.TaskStatusBlocked,
		models.TaskStatusBackburner,
		models.TaskStatusOnHold,
		models.TaskStatusCompleted,
		models.TaskStatusAbandoned,
		models.TaskStatusArchived,
	},
	models.TaskStatusBlocked: {
		models.TaskStatusInProgress,
		models.TaskStatusBackburner,
		models.TaskStatusOnHold,
		models.TaskStatusAbandoned,
		models.TaskStatusArchived,
	},
	models.TaskStatusBackburner: {
		models.TaskStatusInProgress,
		models.TaskStatusBlocked,
		models.TaskStatusOnHold,
		models.TaskStatusAbandoned,
		models.TaskStatusArchived,
	},
	models.TaskStatusOnHold: {
		models.TaskStatusInProgress,
		models.TaskStatusAbandoned,
		models.TaskStatusArchived,
	},
	models.TaskStatusCompleted: {
		models.TaskStatusAbandoned,
		models.TaskStatusArchived,
	},
	models.TaskStatusAbandoned: {
		models.TaskStatusArchived,
	},
	models.TaskStatusArchived: {},
}

// IsValidTransition reports whether a task may move from one status to
// another. Staying in the same status is always allowed.
func IsValidTransition(from, to models.TaskStatus) bool {
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns a copy of the statuses reachable from s.
func AllowedTransitions(s models.TaskStatus) []models.TaskStatus {
	next := transitions[s]
	out := make([]models.TaskStatus, len(next))
	copy(out, next)
	return out
}

// IsLoggable reports whether time may be logged against a task in status s.
func IsLoggable(s models.TaskStatus) bool {
	return s == models.TaskStatusEstimated || s == models.TaskStatusInProgress
}

// IsTerminal reports whether s is a finished state hidden from default listings.
func IsTerminal(s models.TaskStatus) bool {
	switch s {
	case models.TaskStatusCompleted, models.TaskStatusAbandoned, models.TaskStatusArchived:
		return true
	default:
		return false
	}
}

// TerminalStatuses lists the statuses for which IsTerminal is true.
func TerminalStatuses() []models.TaskStatus {
	return []models.TaskStatus{
		models.TaskStatusCompleted,
		models.TaskStatusAbandoned,
		models.TaskStatusArchived,
	}
}
