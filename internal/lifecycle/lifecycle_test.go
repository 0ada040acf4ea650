package lifecycle

import (
	"testing"
	"time"

	"github.com/fentz26/tasktally/internal/models"
)

func TestIsValidTransition_Table(t *testing.T) {
	tests := []struct {
		from, to models.TaskStatus
		want     bool
	}{
		{models.TaskStatusReady, models.TaskStatusEstimated, true},
		{models.TaskStatusReady, models.TaskStatusInProgress, true},
		{models.TaskStatusReady, models.TaskStatusCompleted, false},
		{models.TaskStatusReady, models.TaskStatusBlocked, false},
		{models.TaskStatusEstimated, models.TaskStatusArchived, true},
		{models.TaskStatusEstimated, models.TaskStatusReady, false},
		{models.TaskStatusInProgress, models.TaskStatusCompleted, true},
		{models.TaskStatusInProgress, models.TaskStatusReady, false},
		{models.TaskStatusBlocked, models.TaskStatusBackburner, true},
		{models.TaskStatusBlocked, models.TaskStatusCompleted, false},
		{models.TaskStatusBackburner, models.TaskStatusBlocked, true},
		{models.TaskStatusOnHold, models.TaskStatusInProgress, true},
		{models.TaskStatusOnHold, models.TaskStatusBlocked, false},
		{models.TaskStatusCompleted, models.TaskStatusAbandoned, true},
		{models.TaskStatusCompleted, models.TaskStatusInProgress, false},
		{models.TaskStatusAbandoned, models.TaskStatusArchived, true},
		{models.TaskStatusAbandoned, models.TaskStatusReady, false},
		{models.TaskStatusArchived, models.TaskStatusInProgress, false},
		{models.TaskStatusArchived, models.TaskStatusReady, false},
	}

	for _, tt := range tests {
		if got := IsValidTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("IsValidTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestIsValidTransition_SameStatusAlwaysAllowed(t *testing.T) {
	for _, s := range models.AllStatuses {
		if !IsValidTransition(s, s) {
			t.Errorf("Expected %s -> %s to be valid", s, s)
		}
	}
}

func TestArchivedHasNoOutgoingTransitions(t *testing.T) {
	if next := AllowedTransitions(models.TaskStatusArchived); len(next) != 0 {
		t.Errorf("Expected no transitions out of archived, got %v", next)
	}
	for _, s := range models.AllStatuses {
		if s != models.TaskStatusArchived && IsValidTransition(models.TaskStatusArchived, s) {
			t.Errorf("archived -> %s should be invalid", s)
		}
	}
}

func TestAllowedTransitions_ReturnsCopy(t *testing.T) {
	next := AllowedTransitions(models.TaskStatusReady)
	next[0] = models.TaskStatusCompleted

	if IsValidTransition(models.TaskStatusReady, models.TaskStatusCompleted) {
		t.Fatal("mutating the returned slice changed the transition table")
	}
}

func TestIsLoggable(t *testing.T) {
	for _, s := range models.AllStatuses {
		want := s == models.TaskStatusEstimated || s == models.TaskStatusInProgress
		if got := IsLoggable(s); got != want {
			t.Errorf("IsLoggable(%s) = %v, want %v", s, got, want)
		}
	}
}

func TestNormalize_LegacyTaskWithoutHistory(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	legacy := models.Task{
		ID:        "t1",
		Status:    models.TaskStatusInProgress,
		Estimate:  models.Float(6),
		CreatedAt: created,
	}

	got := Normalize(legacy, now)

	if len(got.StatusHistory) != 1 {
		t.Fatalf("Expected 1 synthesized event, got %d", len(got.StatusHistory))
	}
	ev := got.StatusHistory[0]
	if ev.Status != models.TaskStatusInProgress {
		t.Errorf("Expected synthesized status in_progress, got %s", ev.Status)
	}
	if !ev.Timestamp.Equal(created) {
		t.Errorf("Expected timestamp %v, got %v", created, ev.Timestamp)
	}
	if got.RemainingHours == nil || *got.RemainingHours != 6 {
		t.Errorf("Expected remaining hours defaulted to estimate, got %v", got.RemainingHours)
	}
	if legacy.StatusHistory != nil || legacy.RemainingHours != nil {
		t.Error("Normalize must not modify its argument")
	}
}

func TestNormalize_MissingCreatedAtUsesNow(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	got := Normalize(models.Task{ID: "t1"}, now)

	if got.Status != models.TaskStatusReady {
		t.Errorf("Expected default status ready, got %s", got.Status)
	}
	if !got.StatusHistory[0].Timestamp.Equal(now) {
		t.Errorf("Expected synthesized timestamp to be now, got %v", got.StatusHistory[0].Timestamp)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("Expected CreatedAt backfilled to now, got %v", got.CreatedAt)
	}
	if *got.RemainingHours != 0 {
		t.Errorf("Expected remaining 0 without estimate, got %v", *got.RemainingHours)
	}
}

func TestNormalize_KeepsExistingHistory(t *testing.T) {
	ts := time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)
	task := models.Task{
		Status: models.TaskStatusEstimated,
		StatusHistory: []models.StatusEvent{
			{Status: models.TaskStatusReady, Timestamp: ts, Note: "Task created"},
			{Status: models.TaskStatusEstimated, Timestamp: ts.Add(time.Hour), Note: "Ready => Estimated"},
		},
		RemainingHours: models.Float(3),
		CreatedAt:      ts,
	}

	got := Normalize(task, time.Now())
	if len(got.StatusHistory) != 2 {
		t.Fatalf("Expected history preserved, got %d events", len(got.StatusHistory))
	}
	got.StatusHistory[0].Note = "changed"
	if task.StatusHistory[0].Note != "Task created" {
		t.Error("Normalize must copy the history slice")
	}
}

func TestAppendEvent_KeepsTimestampsMonotonic(t *testing.T) {
	base := time.Date(2024, 5, 5, 12, 0, 0, 0, time.UTC)
	history := []models.StatusEvent{{Status: models.TaskStatusReady, Timestamp: base}}

	out := AppendEvent(history, models.StatusEvent{
		Status:    models.TaskStatusEstimated,
		Timestamp: base.Add(-time.Minute),
	})

	if len(out) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(out))
	}
	if out[1].Timestamp.Before(out[0].Timestamp) {
		t.Error("Expected appended timestamp to be clamped to the previous event")
	}
	if len(history) != 1 {
		t.Error("AppendEvent must not grow the input slice")
	}
}

func TestTransitionNote(t *testing.T) {
	got := TransitionNote(models.TaskStatusInProgress, models.TaskStatusOnHold)
	if got != "In Progress => On Hold" {
		t.Errorf("Unexpected note %q", got)
	}
}
