// Package tracker provides the task lifecycle and time ledger operations.
package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/fentz26/tasktally/internal/audit"
	"github.com/fentz26/tasktally/internal/categories"
	"github.com/fentz26/tasktally/internal/models"
	"github.com/fentz26/tasktally/internal/store"
)

// Service provides the tracker business logic.
type Service struct {
	store     *store.Store
	audit     *audit.Recorder
	directory categories.Directory
	now       func() time.Time
}

// NewService creates a new tracker service. rec and dir may be nil.
func NewService(s *store.Store, rec *audit.Recorder, dir categories.Directory) *Service {
	return &Service{
		store:     s,
		audit:     rec,
		directory: dir,
		now:       time.Now,
	}
}

// Ping checks that the underlying store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// today returns the current local calendar date.
func (s *Service) today() string {
	return s.now().Local().Format(models.DateLayout)
}

// record writes the audit entry for a mutation and returns err classified.
func (s *Service) record(ctx context.Context, action string, inputs interface{}, taskID string, err error) error {
	err = classify(err)
	outcome, details := audit.OutcomeSuccess, ""
	if err != nil {
		details = err.Error()
		outcome = audit.OutcomeRejected
		if errors.Is(err, ErrStoreFailure) {
			outcome = audit.OutcomeError
		}
	}
	s.audit.Record(ctx, action, inputs, outcome, taskID, details)
	return err
}
