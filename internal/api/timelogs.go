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

// handleTimeLogs handles POST /timelogs and GET /timelogs
func (s *Server) handleTimeLogs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.saveTimeLog(w, r)
	case http.MethodGet:
		s.listTimeLogs(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleTimeLogByID handles DELETE /timelogs/{id}
func (s *Server) handleTimeLogByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/timelogs/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	err := s.service.DeleteTimeLog(r.Context(), id)
	writeResult(w, http.StatusOK, err, nil)
}

// saveTimeLog records a log. With burn_down=true the logged hours are also
// subtracted from the task's remaining hours.
func (s *Server) saveTimeLog(w http.ResponseWriter, r *http.Request) {
	var log models.TimeLog
	if err := json.NewDecoder(r.Body).Decode(&log); err != nil {
		writeError(w, fmt.Errorf("%w: invalid json", tracker.ErrValidation))
		return
	}

	if r.URL.Query().Get("burn_down") == "true" {
		work, err := s.service.LogWork(r.Context(), &log)
		writeResult(w, http.StatusCreated, err, work)
		return
	}

	saved, err := s.service.SaveTimeLog(r.Context(), &log)
	writeResult(w, http.StatusCreated, err, saved)
}

func (s *Server) listTimeLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := s.queryTimeLogs(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if logs == nil {
		logs = []models.TimeLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleCategoryAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	logs, err := s.queryTimeLogs(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.service.AnalyzeCategoriesInTimeLogs(logs))
}

func (s *Server) queryTimeLogs(r *http.Request) ([]models.TimeLog, error) {
	q := r.URL.Query()
	var start, end *time.Time
	var err error
	if raw := q.Get("start"); raw != "" {
		if start, err = parseDate(raw); err != nil {
			return nil, err
		}
	}
	if raw := q.Get("end"); raw != "" {
		if end, err = parseDate(raw); err != nil {
			return nil, err
		}
	}
	return s.service.GetTimeLogs(r.Context(), q.Get("task_id"), start, end)
}

// handleAudit handles GET /audit?task_id=&limit=
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, fmt.Errorf("%w: limit must be a non-negative integer", tracker.ErrValidation))
			return
		}
		limit = n
	}

	entries, err := s.service.GetAuditTrail(r.Context(), r.URL.Query().Get("task_id"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
