package tracker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fentz26/tasktally/internal/audit"
	"github.com/fentz26/tasktally/internal/categories"
	"github.com/fentz26/tasktally/internal/lifecycle"
	"github.com/fentz26/tasktally/internal/models"
	"github.com/fentz26/tasktally/internal/store"
)

var testEpoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	svc := NewService(s, audit.NewRecorder(s), categories.DefaultTaxonomy())
	clock := testEpoch
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return svc, s
}

func createTask(t *testing.T, svc *Service, title string, estimate *float64) *models.Task {
	t.Helper()
	task, err := svc.CreateTask(context.Background(), &models.Task{Title: title, Estimate: estimate})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	return task
}

func moveTo(t *testing.T, svc *Service, id string, status models.TaskStatus) *models.Task {
	t.Helper()
	ctx := context.Background()
	task, err := svc.GetTask(ctx, id)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	task.Status = status
	updated, err := svc.UpdateTask(ctx, task, true)
	if err != nil {
		t.Fatalf("UpdateTask to %s failed: %v", status, err)
	}
	return updated
}

func TestCreateTask_Defaults(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	task := createTask(t, svc, "Write report", models.Float(8))
	if task.ID == "" {
		t.Error("Task ID should be assigned")
	}
	if task.Status != models.TaskStatusReady {
		t.Errorf("Expected status ready, got %s", task.Status)
	}
	if len(task.StatusHistory) != 1 || task.StatusHistory[0].Note != NoteTaskCreated {
		t.Errorf("Expected one 'Task created' event, got %+v", task.StatusHistory)
	}
	if task.RemainingHours == nil || *task.RemainingHours != 8 {
		t.Errorf("Expected remaining hours 8, got %v", task.RemainingHours)
	}

	entries, err := svc.GetRemainingHoursHistory(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetRemainingHoursHistory failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 ledger entry, got %d", len(entries))
	}
	if entries[0].Note != NoteInitialEstimate || entries[0].PreviousRemainingHours != nil {
		t.Errorf("Unexpected initial entry: %+v", entries[0])
	}

	got, err := svc.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Title != "Write report" || !got.CreatedAt.Equal(task.CreatedAt) {
		t.Errorf("Round trip mismatch: %+v", got)
	}
}

func TestCreateTask_NoEstimateWritesNoLedger(t *testing.T) {
	svc, _ := newTestService(t)
	task := createTask(t, svc, "Quick fix", nil)

	if *task.RemainingHours != 0 {
		t.Errorf("Expected remaining hours 0, got %v", *task.RemainingHours)
	}
	entries, _ := svc.GetRemainingHoursHistory(context.Background(), task.ID)
	if len(entries) != 0 {
		t.Errorf("Expected no ledger entries, got %d", len(entries))
	}
}

func TestCreateTask_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []*models.Task{
		{Title: "  "},
		{Title: "x", Status: "done"},
		{Title: "x", Urgency: "extreme"},
		{Title: "x", Estimate: models.Float(-1)},
	}
	for _, c := range cases {
		if _, err := svc.CreateTask(ctx, c); !errors.Is(err, ErrValidation) {
			t.Errorf("CreateTask(%+v): expected ErrValidation, got %v", c, err)
		}
	}
}

func TestUpdateTask_NotEditCreates(t *testing.T) {
	svc, _ := newTestService(t)
	task, err := svc.UpdateTask(context.Background(), &models.Task{Title: "New"}, false)
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if task.ID == "" || task.Status != models.TaskStatusReady {
		t.Errorf("Expected a freshly created task, got %+v", task)
	}
}

func TestUpdateTask_ValidTransitionAppendsEvent(t *testing.T) {
	svc, _ := newTestService(t)
	task := createTask(t, svc, "Task", models.Float(4))

	updated := moveTo(t, svc, task.ID, models.TaskStatusEstimated)
	if len(updated.StatusHistory) != 2 {
		t.Fatalf("Expected 2 history events, got %d", len(updated.StatusHistory))
	}
	last := updated.StatusHistory[1]
	if last.Status != models.TaskStatusEstimated || last.Note != "Ready => Estimated" {
		t.Errorf("Unexpected event: %+v", last)
	}
	if last.Timestamp.Before(updated.StatusHistory[0].Timestamp) {
		t.Error("History timestamps should be non-decreasing")
	}
	if !updated.CreatedAt.Equal(task.CreatedAt) {
		t.Error("CreatedAt should be preserved on edit")
	}

	history, err := svc.GetStatusHistory(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("GetStatusHistory failed: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("Expected persisted history of 2, got %d", len(history))
	}
}

func TestUpdateTask_InvalidTransitionAbortsWholeUpdate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	task := createTask(t, svc, "Task", models.Float(4))

	edit := *task
	edit.Title = "Renamed"
	edit.Status = models.TaskStatusCompleted
	edit.RemainingHours = models.Float(1)
	_, err := svc.UpdateTask(ctx, &edit, true)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition, got %v", err)
	}

	got, _ := svc.GetTask(ctx, task.ID)
	if got.Title != "Task" || got.Status != models.TaskStatusReady || *got.RemainingHours != 4 {
		t.Errorf("Task should be unchanged, got %+v", got)
	}
	if len(got.StatusHistory) != 1 {
		t.Errorf("History should be unchanged, got %d events", len(got.StatusHistory))
	}
	entries, _ := svc.GetRemainingHoursHistory(ctx, task.ID)
	if len(entries) != 1 {
		t.Errorf("Ledger should be unchanged, got %d entries", len(entries))
	}
}

func TestUpdateTask_ArchivedIsFinal(t *testing.T) {
	svc, _ := newTestService(t)
	task := createTask(t, svc, "Task", nil)
	moveTo(t, svc, task.ID, models.TaskStatusArchived)

	for _, st := range models.AllStatuses {
		if st == models.TaskStatusArchived {
			continue
		}
		got, _ := svc.GetTask(context.Background(), task.ID)
		got.Status = st
		if _, err := svc.UpdateTask(context.Background(), got, true); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("archived => %s: expected ErrInvalidTransition, got %v", st, err)
		}
	}
}

func TestUpdateTask_SameStatusKeepsHistory(t *testing.T) {
	svc, _ := newTestService(t)
	task := createTask(t, svc, "Task", nil)

	edit := *task
	edit.Description = "more detail"
	edit.Status = ""
	edit.StatusHistory = nil
	updated, err := svc.UpdateTask(context.Background(), &edit, true)
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if updated.Status != models.TaskStatusReady || len(updated.StatusHistory) != 1 {
		t.Errorf("Expected status and history unchanged, got %s with %d events", updated.Status, len(updated.StatusHistory))
	}
	if updated.Description != "more detail" {
		t.Errorf("Expected description updated, got %q", updated.Description)
	}
}

func TestUpdateTask_RemainingHoursChangeWritesLedger(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	task := createTask(t, svc, "Task", models.Float(10))

	edit := *task
	edit.RemainingHours = models.Float(6)
	if _, err := svc.UpdateTask(ctx, &edit, true); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	entries, _ := svc.GetRemainingHoursHistory(ctx, task.ID)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 ledger entries, got %d", len(entries))
	}
	e := entries[1]
	if e.RemainingHours != 6 || e.PreviousRemainingHours == nil || *e.PreviousRemainingHours != 10 {
		t.Errorf("Unexpected entry: %+v", e)
	}
	if e.Note != NoteEditedRemaining {
		t.Errorf("Expected note %q, got %q", NoteEditedRemaining, e.Note)
	}

	edit.RemainingHours = nil
	updated, err := svc.UpdateTask(ctx, &edit, true)
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if *updated.RemainingHours != 6 {
		t.Errorf("Nil remaining hours should keep 6, got %v", *updated.RemainingHours)
	}
}

func TestUpdateTask_Unknown(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.UpdateTask(context.Background(), &models.Task{ID: "missing", Title: "x"}, true)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLegacyTaskIsNormalizedAndEditable(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()

	created := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	legacy := &models.Task{
		ID:        "legacy",
		Title:     "Old task",
		Status:    models.TaskStatusInProgress,
		Estimate:  models.Float(5),
		CreatedAt: created,
		UpdatedAt: created,
	}
	if err := s.InTx(ctx, func(tx *store.Tx) error { return tx.InsertTask(ctx, legacy) }); err != nil {
		t.Fatalf("InsertTask failed: %v", err)
	}

	got, err := svc.GetTask(ctx, "legacy")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if len(got.StatusHistory) != 1 || got.StatusHistory[0].Note != lifecycle.InitialStatusNote {
		t.Errorf("Expected synthesized initial event, got %+v", got.StatusHistory)
	}
	if !got.StatusHistory[0].Timestamp.Equal(created) {
		t.Errorf("Synthesized event should use CreatedAt, got %v", got.StatusHistory[0].Timestamp)
	}
	if *got.RemainingHours != 5 {
		t.Errorf("Expected remaining hours to default to estimate, got %v", *got.RemainingHours)
	}

	updated := moveTo(t, svc, "legacy", models.TaskStatusBlocked)
	if len(updated.StatusHistory) != 2 {
		t.Errorf("Expected synthesized event plus transition, got %d", len(updated.StatusHistory))
	}
}

func TestDeleteTask_Cascades(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	task := createTask(t, svc, "Task", models.Float(3))
	moveTo(t, svc, task.ID, models.TaskStatusInProgress)
	if _, err := svc.SaveTimeLog(ctx, &models.TimeLog{TaskID: task.ID, Hours: 1}); err != nil {
		t.Fatalf("SaveTimeLog failed: %v", err)
	}

	result, err := svc.DeleteTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if result.TimeLogsDeleted != 1 || result.LedgerEntriesDeleted != 1 {
		t.Errorf("Unexpected delete result: %+v", result)
	}
	if _, err := svc.GetTask(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	logs, _ := svc.GetTimeLogs(ctx, task.ID, nil, nil)
	if len(logs) != 0 {
		t.Errorf("Expected logs removed, got %d", len(logs))
	}

	if _, err := svc.DeleteTask(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestGetTasks_TerminalFiltering(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	open := createTask(t, svc, "Open", nil)
	done := createTask(t, svc, "Done", nil)
	moveTo(t, svc, done.ID, models.TaskStatusAbandoned)

	tasks, err := svc.GetTasks(ctx, TaskFilter{}, false)
	if err != nil {
		t.Fatalf("GetTasks failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != open.ID {
		t.Errorf("Expected only the open task, got %+v", tasks)
	}

	all, _ := svc.GetTasks(ctx, TaskFilter{}, true)
	if len(all) != 2 {
		t.Errorf("Expected 2 tasks including terminal, got %d", len(all))
	}

	found, _ := svc.GetTasks(ctx, TaskFilter{Search: "OPE"}, true)
	if len(found) != 1 || found[0].ID != open.ID {
		t.Errorf("Expected search to match 'Open', got %+v", found)
	}
}

func TestSaveTimeLog_RequiresLoggableStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	task := createTask(t, svc, "Task", models.Float(4))

	_, err := svc.SaveTimeLog(ctx, &models.TimeLog{TaskID: task.ID, Hours: 1})
	if !errors.Is(err, ErrInvalidTaskState) {
		t.Fatalf("Expected ErrInvalidTaskState for ready task, got %v", err)
	}
	logs, _ := svc.GetTimeLogs(ctx, task.ID, nil, nil)
	if len(logs) != 0 {
		t.Errorf("Rejected log must not be written, got %d", len(logs))
	}

	moveTo(t, svc, task.ID, models.TaskStatusEstimated)
	log, err := svc.SaveTimeLog(ctx, &models.TimeLog{TaskID: task.ID, Hours: 1.5, CategoryKey: "work.coding"})
	if err != nil {
		t.Fatalf("SaveTimeLog failed: %v", err)
	}
	if log.ID == "" {
		t.Error("Log ID should be assigned")
	}
	if today := testEpoch.Local().Format(models.DateLayout); log.DateLogged != today {
		t.Errorf("Expected date to default to today, got %s", log.DateLogged)
	}

	moveTo(t, svc, task.ID, models.TaskStatusInProgress)
	moveTo(t, svc, task.ID, models.TaskStatusBlocked)
	if _, err := svc.SaveTimeLog(ctx, &models.TimeLog{TaskID: task.ID, Hours: 1}); !errors.Is(err, ErrInvalidTaskState) {
		t.Errorf("Expected ErrInvalidTaskState for blocked task, got %v", err)
	}
}

func TestSaveTimeLog_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []*models.TimeLog{
		{TaskID: "", Hours: 1},
		{TaskID: "t", Hours: 0},
		{TaskID: "t", Hours: -2},
		{TaskID: "t", Hours: 1, DateLogged: "03/01/2024"},
	}
	for _, c := range cases {
		if _, err := svc.SaveTimeLog(ctx, c); !errors.Is(err, ErrValidation) {
			t.Errorf("SaveTimeLog(%+v): expected ErrValidation, got %v", c, err)
		}
	}
	if _, err := svc.SaveTimeLog(ctx, &models.TimeLog{TaskID: "missing", Hours: 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown task, got %v", err)
	}
}

func TestSaveTimeLog_ReplacesExistingID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	task := createTask(t, svc, "Task", nil)
	moveTo(t, svc, task.ID, models.TaskStatusInProgress)

	log, _ := svc.SaveTimeLog(ctx, &models.TimeLog{TaskID: task.ID, Hours: 1})
	log.Hours = 2.5
	if _, err := svc.SaveTimeLog(ctx, log); err != nil {
		t.Fatalf("SaveTimeLog replace failed: %v", err)
	}
	logs, _ := svc.GetTimeLogs(ctx, task.ID, nil, nil)
	if len(logs) != 1 || logs[0].Hours != 2.5 {
		t.Errorf("Expected one log of 2.5h, got %+v", logs)
	}
}

func TestSaveTimeLog_CannotMoveLogToAnotherTask(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	owner := createTask(t, svc, "Owner", nil)
	other := createTask(t, svc, "Other", nil)
	moveTo(t, svc, owner.ID, models.TaskStatusInProgress)
	moveTo(t, svc, other.ID, models.TaskStatusInProgress)

	log, err := svc.SaveTimeLog(ctx, &models.TimeLog{TaskID: owner.ID, Hours: 1})
	if err != nil {
		t.Fatalf("SaveTimeLog failed: %v", err)
	}
	moveTo(t, svc, owner.ID, models.TaskStatusCompleted)

	moved := *log
	moved.TaskID = other.ID
	if _, err := svc.SaveTimeLog(ctx, &moved); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation when reusing a log ID for another task, got %v", err)
	}

	ownerLogs, _ := svc.GetTimeLogs(ctx, owner.ID, nil, nil)
	if len(ownerLogs) != 1 || ownerLogs[0].ID != log.ID {
		t.Errorf("Expected the log to stay on its task, got %+v", ownerLogs)
	}
	otherLogs, _ := svc.GetTimeLogs(ctx, other.ID, nil, nil)
	if len(otherLogs) != 0 {
		t.Errorf("Expected no logs on the other task, got %d", len(otherLogs))
	}
}

func TestCreateTask_DuplicateID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	task := createTask(t, svc, "First", nil)

	_, err := svc.CreateTask(ctx, &models.Task{ID: task.ID, Title: "Second"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for a duplicate ID, got %v", err)
	}
	got, _ := svc.GetTask(ctx, task.ID)
	if got.Title != "First" {
		t.Errorf("Expected original task untouched, got %q", got.Title)
	}
}

func TestDeleteTimeLog_DoesNotReconcileRemaining(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	task := createTask(t, svc, "Task", models.Float(5))
	moveTo(t, svc, task.ID, models.TaskStatusInProgress)

	work, err := svc.LogWork(ctx, &models.TimeLog{TaskID: task.ID, Hours: 2})
	if err != nil {
		t.Fatalf("LogWork failed: %v", err)
	}
	if err := svc.DeleteTimeLog(ctx, work.Log.ID); err != nil {
		t.Fatalf("DeleteTimeLog failed: %v", err)
	}

	got, _ := svc.GetTask(ctx, task.ID)
	if *got.RemainingHours != 3 {
		t.Errorf("Remaining hours should stay 3 after delete, got %v", *got.RemainingHours)
	}
	if err := svc.DeleteTimeLog(ctx, work.Log.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestGetTimeLogs_DateRange(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	task := createTask(t, svc, "Task", nil)
	moveTo(t, svc, task.ID, models.TaskStatusInProgress)

	for _, d := range []string{"2024-01-01", "2024-01-15", "2024-02-01"} {
		if _, err := svc.SaveTimeLog(ctx, &models.TimeLog{TaskID: task.ID, Hours: 1, DateLogged: d}); err != nil {
			t.Fatalf("SaveTimeLog failed: %v", err)
		}
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(2024, 1, 15, 0, 0, 0, 0, time.Local)
	logs, err := svc.GetTimeLogs(ctx, task.ID, &start, &end)
	if err != nil {
		t.Fatalf("GetTimeLogs failed: %v", err)
	}
	if len(logs) != 2 {
		t.Errorf("Expected 2 logs in inclusive range, got %d", len(logs))
	}

	// A single bound is ignored.
	logs, _ = svc.GetTimeLogs(ctx, task.ID, &start, nil)
	if len(logs) != 3 {
		t.Errorf("Expected one-sided range to return all 3 logs, got %d", len(logs))
	}

	all, _ := svc.GetTimeLogs(ctx, "", nil, nil)
	if len(all) != 3 {
		t.Errorf("Expected 3 logs across tasks, got %d", len(all))
	}
}

func TestUpdateRemainingHours(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	task := createTask(t, svc, "Task", models.Float(8))

	entry, err := svc.UpdateRemainingHours(ctx, task.ID, 5.5, "re-estimated")
	if err != nil {
		t.Fatalf("UpdateRemainingHours failed: %v", err)
	}
	if entry == nil || entry.RemainingHours != 5.5 || *entry.PreviousRemainingHours != 8 {
		t.Fatalf("Unexpected entry: %+v", entry)
	}

	entry, err = svc.UpdateRemainingHours(ctx, task.ID, 5.5, "again")
	if err != nil || entry != nil {
		t.Errorf("Unchanged value should be a no-op, got %+v, %v", entry, err)
	}
	entries, _ := svc.GetRemainingHoursHistory(ctx, task.ID)
	if len(entries) != 2 {
		t.Errorf("Expected 2 ledger entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Timestamp.Before(entries[i-1].Timestamp) {
			t.Error("Ledger should be ordered oldest first")
		}
	}

	if _, err := svc.UpdateRemainingHours(ctx, task.ID, -1, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected ErrValidation for negative hours, got %v", err)
	}
	if _, err := svc.UpdateRemainingHours(ctx, "missing", 1, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestLogWork_BurnsDown(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	task := createTask(t, svc, "Task", models.Float(2))
	moveTo(t, svc, task.ID, models.TaskStatusInProgress)

	work, err := svc.LogWork(ctx, &models.TimeLog{TaskID: task.ID, Hours: 1.1})
	if err != nil {
		t.Fatalf("LogWork failed: %v", err)
	}
	if work.Entry == nil || work.Entry.RemainingHours != 1 {
		t.Fatalf("Expected remaining 1 after rounding, got %+v", work.Entry)
	}
	if work.Entry.Note != "Logged 1.1h" {
		t.Errorf("Unexpected note %q", work.Entry.Note)
	}

	work, err = svc.LogWork(ctx, &models.TimeLog{TaskID: task.ID, Hours: 3})
	if err != nil {
		t.Fatalf("LogWork failed: %v", err)
	}
	if work.Entry.RemainingHours != 0 {
		t.Errorf("Expected remaining clamped to 0, got %v", work.Entry.RemainingHours)
	}
}

func TestCalculateTaskProgress(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	task := createTask(t, svc, "Task", models.Float(4))
	moveTo(t, svc, task.ID, models.TaskStatusInProgress)
	other := createTask(t, svc, "Other", nil)
	moveTo(t, svc, other.ID, models.TaskStatusInProgress)

	svc.SaveTimeLog(ctx, &models.TimeLog{TaskID: task.ID, Hours: 1})
	svc.SaveTimeLog(ctx, &models.TimeLog{TaskID: task.ID, Hours: 0.5})
	svc.SaveTimeLog(ctx, &models.TimeLog{TaskID: other.ID, Hours: 7})

	p, err := svc.CalculateTaskProgress(ctx, task.ID)
	if err != nil {
		t.Fatalf("CalculateTaskProgress failed: %v", err)
	}
	if p.LoggedHours != 1.5 || p.Percentage != 38 || p.OverBudget {
		t.Errorf("Unexpected progress: %+v", p)
	}

	if _, err := svc.CalculateTaskProgress(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestAnalyzeCategoriesInTimeLogs(t *testing.T) {
	svc, _ := newTestService(t)
	logs := []models.TimeLog{
		{TaskID: "a", Hours: 2, CategoryKey: "work.coding"},
		{TaskID: "b", Hours: 1, CategoryKey: "work.coding"},
		{TaskID: "c", Hours: 0.5},
	}

	a := svc.AnalyzeCategoriesInTimeLogs(logs)
	b := a.Categories["work.coding"]
	if b == nil || b.Hours != 3 || b.Count != 2 || b.ItemTitle != "Coding" {
		t.Errorf("Unexpected bucket: %+v", b)
	}
	if a.UncategorizedHours != 0.5 || a.UncategorizedCount != 1 {
		t.Errorf("Unexpected uncategorized totals: %v / %d", a.UncategorizedHours, a.UncategorizedCount)
	}
}

func TestMutationsAreAudited(t *testing.T) {
	svc, s := newTestService(t)
	ctx := context.Background()
	task := createTask(t, svc, "Task", nil)

	edit := *task
	edit.Status = models.TaskStatusCompleted
	svc.UpdateTask(ctx, &edit, true)

	entries, err := s.ListAudit(ctx, task.ID, 0)
	if err != nil {
		t.Fatalf("ListAudit failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 audit entries, got %d", len(entries))
	}
	if entries[0].Action != "task.update" || entries[0].Outcome != audit.OutcomeRejected {
		t.Errorf("Expected rejected update first, got %+v", entries[0])
	}
	if entries[1].Action != "task.create" || entries[1].Outcome != audit.OutcomeSuccess {
		t.Errorf("Expected successful create, got %+v", entries[1])
	}
}
