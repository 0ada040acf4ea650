// Package audit records the outcome of every state-mutating operation.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"

	"github.com/fentz26/tasktally/internal/models"
	"github.com/fentz26/tasktally/internal/store"
)

// Outcomes written by the tracker.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Recorder writes audit entries.
type Recorder struct {
	store *store.Store
}

// NewRecorder creates a new audit recorder.
func NewRecorder(s *store.Store) *Recorder {
	return &Recorder{store: s}
}

// Record writes an audit entry for a state-mutating action. Audit failures
// are logged and never fail the action being audited.
func (r *Recorder) Record(ctx context.Context, action string, inputs interface{}, outcome, taskID, details string) *models.AuditEntry {
	if r == nil || r.store == nil {
		return nil
	}
	entry, err := r.store.WriteAudit(ctx, action, hashInputs(inputs), outcome, taskID, details)
	if err != nil {
		log.Printf("audit: %s: %v", action, err)
		return nil
	}
	return entry
}

// hashInputs creates a SHA256 hash of the inputs for reproducibility.
func hashInputs(inputs interface{}) string {
	data, err := json.Marshal(inputs)
	if err != nil {
		return "hash_error"
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
