// Package api serves the tracker over HTTP.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fentz26/tasktally/internal/tracker"
)

// Version is reported by the health endpoint.
var Version = "0.1.0"

// Server provides the HTTP API for tasktally.
type Server struct {
	service *tracker.Service
	addr    string
	server  *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(service *tracker.Service, addr string) *Server {
	return &Server{
		service: service,
		addr:    addr,
	}
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)

	// Task endpoints
	mux.HandleFunc("/tasks", s.handleTasks)
	mux.HandleFunc("/tasks/", s.handleTaskByID)

	// Time log endpoints
	mux.HandleFunc("/timelogs", s.handleTimeLogs)
	mux.HandleFunc("/timelogs/", s.handleTimeLogByID)

	mux.HandleFunc("/categories/analysis", s.handleCategoryAnalysis)
	mux.HandleFunc("/audit", s.handleAudit)

	return mux
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("Starting tasktally daemon on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	OK      bool   `json:"ok"`
	DB      string `json:"db"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	health := HealthResponse{
		OK:      true,
		DB:      "ok",
		Version: Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK
	if err := s.service.Ping(ctx); err != nil {
		health.OK = false
		health.DB = err.Error()
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

// handleTaskByID handles /tasks/{id}/*
func (s *Server) handleTaskByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/tasks/")
	parts := strings.Split(path, "/")

	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "task id required", http.StatusBadRequest)
		return
	}

	taskID := parts[0]
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		s.getTask(w, r, taskID)
	case action == "" && r.Method == http.MethodPut:
		s.updateTask(w, r, taskID)
	case action == "" && r.Method == http.MethodDelete:
		s.deleteTask(w, r, taskID)
	case action == "progress" && r.Method == http.MethodGet:
		s.getProgress(w, r, taskID)
	case action == "remaining" && r.Method == http.MethodGet:
		s.getRemainingHistory(w, r, taskID)
	case action == "remaining" && r.Method == http.MethodPost:
		s.updateRemaining(w, r, taskID)
	case action == "history" && r.Method == http.MethodGet:
		s.getStatusHistory(w, r, taskID)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// envelope wraps the outcome of a mutation together with its payload.
type envelope struct {
	tracker.Result
	Data interface{} `json:"data,omitempty"`
}

func statusFor(code tracker.Code) int {
	switch code {
	case tracker.CodeOK:
		return http.StatusOK
	case tracker.CodeValidation:
		return http.StatusBadRequest
	case tracker.CodeNotFound:
		return http.StatusNotFound
	case tracker.CodeInvalidTransition, tracker.CodeInvalidTaskState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeResult writes the envelope for err and data. okStatus is used on success.
func writeResult(w http.ResponseWriter, okStatus int, err error, data interface{}) {
	result := tracker.ResultOf(err)
	status := okStatus
	if err != nil {
		status = statusFor(result.Code)
	}
	writeJSON(w, status, envelope{Result: result, Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	writeResult(w, 0, err, nil)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}
