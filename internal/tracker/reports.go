package tracker

import (
	"context"

	"github.com/fentz26/tasktally/internal/categories"
	"github.com/fentz26/tasktally/internal/models"
	"github.com/fentz26/tasktally/internal/progress"
)

// CalculateTaskProgress summarises the hours logged against a task.
func (s *Service) CalculateTaskProgress(ctx context.Context, taskID string) (*progress.Progress, error) {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	logs, err := s.GetTimeLogs(ctx, task.ID, nil, nil)
	if err != nil {
		return nil, err
	}
	p := progress.Calculate(*task, logs)
	return &p, nil
}

// AnalyzeCategoriesInTimeLogs groups logs by category using the service's
// directory for titles.
func (s *Service) AnalyzeCategoriesInTimeLogs(logs []models.TimeLog) *categories.Analysis {
	return categories.Analyze(logs, s.directory)
}

// GetAuditTrail returns the most recent audit entries, newest first. An
// empty taskID returns entries for every task; limit <= 0 returns all.
func (s *Service) GetAuditTrail(ctx context.Context, taskID string, limit int) ([]models.AuditEntry, error) {
	entries, err := s.store.ListAudit(ctx, taskID, limit)
	if err != nil {
		return nil, classify(err)
	}
	return entries, nil
}
