package lifecycle

import (
	"fmt"
	"time"

	"github.com/fentz26/tasktally/internal/models"
)

// InitialStatusNote is the note on an event synthesized for a legacy record.
const InitialStatusNote = "Initial status"

// Normalize fills in fields that older records may lack so every task the
// rest of the program sees satisfies the same invariants:
//   - Status defaults to ready.
//   - StatusHistory has at least one event, stamped with CreatedAt (or now).
//   - RemainingHours defaults to Estimate, or 0 without one.
//   - CreatedAt defaults to the first history timestamp.
//
// The argument is not modified.
func Normalize(t models.Task, now time.Time) models.Task {
	out := t
	if out.Status == "" {
		out.Status = models.TaskStatusReady
	}

	if len(out.StatusHistory) == 0 {
		ts := out.CreatedAt
		if ts.IsZero() {
			ts = now
		}
		out.StatusHistory = []models.StatusEvent{{
			Status:    out.Status,
			Timestamp: ts,
			Note:      InitialStatusNote,
		}}
	} else {
		out.StatusHistory = append([]models.StatusEvent(nil), t.StatusHistory...)
	}

	if out.RemainingHours == nil {
		var rh float64
		if out.Estimate != nil {
			rh = *out.Estimate
		}
		out.RemainingHours = &rh
	}

	if out.CreatedAt.IsZero() {
		out.CreatedAt = out.StatusHistory[0].Timestamp
	}
	if len(out.CategoryLists) > 0 {
		out.CategoryLists = append([]string(nil), t.CategoryLists...)
	}
	return out
}

// AppendEvent returns a new history with ev appended. The event timestamp
// is raised to the previous event's timestamp when the clock went backwards,
// keeping the history monotonic.
func AppendEvent(history []models.StatusEvent, ev models.StatusEvent) []models.StatusEvent {
	out := make([]models.StatusEvent, 0, len(history)+1)
	out = append(out, history...)
	if n := len(out); n > 0 && ev.Timestamp.Before(out[n-1].Timestamp) {
		ev.Timestamp = out[n-1].Timestamp
	}
	return append(out, ev)
}

// TransitionNote describes a status change, e.g. "Ready => Estimated".
func TransitionNote(from, to models.TaskStatus) string {
	return fmt.Sprintf("%s => %s", from.Label(), to.Label())
}
