package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fentz26/tasktally/internal/models"
	"github.com/fentz26/tasktally/internal/tracker"
)

// handleTasks handles POST /tasks and GET /tasks
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createTask(w, r)
	case http.MethodGet:
		s.listTasks(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var task models.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		writeError(w, fmt.Errorf("%w: invalid json", tracker.ErrValidation))
		return
	}

	created, err := s.service.CreateTask(r.Context(), &task)
	writeResult(w, http.StatusCreated, err, created)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	filter, includeTerminal, err := parseTaskFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	tasks, err := s.service.GetTasks(r.Context(), filter, includeTerminal)
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func parseTaskFilter(r *http.Request) (tracker.TaskFilter, bool, error) {
	q := r.URL.Query()
	filter := tracker.TaskFilter{
		ProjectID:    q.Get("project"),
		PhaseKey:     q.Get("phase"),
		Urgency:      models.Level(q.Get("urgency")),
		Importance:   models.Level(q.Get("importance")),
		CategoryList: q.Get("category_list"),
		Search:       q.Get("q"),
	}

	if raw := q.Get("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			st := models.TaskStatus(strings.TrimSpace(part))
			if !st.Valid() {
				return filter, false, fmt.Errorf("%w: unknown status %q", tracker.ErrValidation, st)
			}
			filter.Statuses = append(filter.Statuses, st)
		}
	}
	if raw := q.Get("due_before"); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			return filter, false, err
		}
		filter.DueBefore = d
	}

	var includeTerminal bool
	if raw := q.Get("all"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, false, fmt.Errorf("%w: all must be a boolean", tracker.ErrValidation)
		}
		includeTerminal = v
	}
	return filter, includeTerminal, nil
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request, taskID string) {
	task, err := s.service.GetTask(r.Context(), taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// taskPatch is the body of PUT /tasks/{id}. Nil fields are left alone.
type taskPatch struct {
	Title          *string            `json:"title"`
	Description    *string            `json:"description"`
	Status         *models.TaskStatus `json:"status"`
	Urgency        *models.Level      `json:"urgency"`
	Importance     *models.Level      `json:"importance"`
	Estimate       *float64           `json:"estimate"`
	RemainingHours *float64           `json:"remaining_hours"`
	DueOn          *time.Time         `json:"due_on"`
	ProjectID      *string            `json:"project_id"`
	PhaseKey       *string            `json:"phase_key"`
	CategoryLists  *[]string          `json:"category_lists"`
}

// apply copies the present fields onto task. Status and remaining hours
// are cleared unless given so the service resolves them from the row it
// reads inside its transaction.
func (p *taskPatch) apply(task *models.Task) {
	task.Status = ""
	task.RemainingHours = nil
	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.Status != nil {
		task.Status = *p.Status
	}
	if p.Urgency != nil {
		task.Urgency = *p.Urgency
	}
	if p.Importance != nil {
		task.Importance = *p.Importance
	}
	if p.Estimate != nil {
		task.Estimate = p.Estimate
	}
	if p.RemainingHours != nil {
		task.RemainingHours = p.RemainingHours
	}
	if p.DueOn != nil {
		task.DueOn = p.DueOn
	}
	if p.ProjectID != nil {
		task.ProjectID = *p.ProjectID
	}
	if p.PhaseKey != nil {
		task.PhaseKey = *p.PhaseKey
	}
	if p.CategoryLists != nil {
		task.CategoryLists = *p.CategoryLists
	}
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request, taskID string) {
	var patch taskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, fmt.Errorf("%w: invalid json", tracker.ErrValidation))
		return
	}

	task, err := s.service.GetTask(r.Context(), taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	patch.apply(task)

	updated, err := s.service.UpdateTask(r.Context(), task, true)
	writeResult(w, http.StatusOK, err, updated)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request, taskID string) {
	result, err := s.service.DeleteTask(r.Context(), taskID)
	writeResult(w, http.StatusOK, err, result)
}

func (s *Server) getProgress(w http.ResponseWriter, r *http.Request, taskID string) {
	p, err := s.service.CalculateTaskProgress(r.Context(), taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) getStatusHistory(w http.ResponseWriter, r *http.Request, taskID string) {
	history, err := s.service.GetStatusHistory(r.Context(), taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) getRemainingHistory(w http.ResponseWriter, r *http.Request, taskID string) {
	if _, err := s.service.GetTask(r.Context(), taskID); err != nil {
		writeError(w, err)
		return
	}
	entries, err := s.service.GetRemainingHoursHistory(r.Context(), taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.RemainingHoursEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

type remainingRequest struct {
	RemainingHours *float64 `json:"remaining_hours"`
	Note           string   `json:"note"`
}

func (s *Server) updateRemaining(w http.ResponseWriter, r *http.Request, taskID string) {
	var req remainingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid json", tracker.ErrValidation))
		return
	}
	if req.RemainingHours == nil {
		writeError(w, fmt.Errorf("%w: remaining_hours is required", tracker.ErrValidation))
		return
	}

	entry, err := s.service.UpdateRemainingHours(r.Context(), taskID, *req.RemainingHours, req.Note)
	writeResult(w, http.StatusOK, err, entry)
}

func parseDate(raw string) (*time.Time, error) {
	d, err := time.ParseInLocation(models.DateLayout, raw, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q is not YYYY-MM-DD", tracker.ErrValidation, raw)
	}
	return &d, nil
}
