package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/taskpulse/internal/database"
	"github.com/mtlprog/taskpulse/internal/domain"
	"github.com/mtlprog/taskpulse/internal/repository"
	"github.com/mtlprog/taskpulse/internal/risk"
)

// RiskUpdate describes one task moved to at_risk by a sweep.
type RiskUpdate struct {
	TaskID         string
	PreviousStatus domain.TaskStatus
	Reason         string
}

// RiskSweepResult summarizes a sweep.
type RiskSweepResult struct {
	Processed int
	Updates   []RiskUpdate
}

// RiskService runs the periodic deadline-risk sweep.
type RiskService struct {
	pool      *pgxpool.Pool
	taskRepo  *repository.TaskRepository
	auditRepo *repository.AuditRepository
}

// NewRiskService creates a new RiskService.
func NewRiskService(pool *pgxpool.Pool, taskRepo *repository.TaskRepository, auditRepo *repository.AuditRepository) *RiskService {
	return &RiskService{pool: pool, taskRepo: taskRepo, auditRepo: auditRepo}
}

// ProcessAtRiskTasks evaluates every non-completed, non-blocked task and moves
// the ones at risk to at_risk. Each task is handled in its own transaction;
// failures are collected and the sweep continues.
func (s *RiskService) ProcessAtRiskTasks(ctx context.Context, now time.Time) (*RiskSweepResult, error) {
	tasks, err := s.taskRepo.ListRiskCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list risk candidates: %w", err)
	}

	result := &RiskSweepResult{Processed: len(tasks), Updates: []RiskUpdate{}}
	if len(tasks) == 0 {
		slog.Info("no tasks to evaluate for risk")
		return result, nil
	}

	var errs []error
	for _, task := range tasks {
		assessment := risk.Evaluate(task, now)
		if !risk.NeedsTransition(task, assessment) {
			continue
		}

		if err := s.markAtRisk(ctx, task, assessment.Reason); err != nil {
			if errors.Is(err, domain.ErrTaskStatusChanged) {
				slog.Info("task changed during risk sweep, skipped", "task_id", task.ID)
				continue
			}
			slog.Error("failed to mark task at risk",
				"task_id", task.ID,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("task %s: %w", task.ID, err))
			continue
		}

		result.Updates = append(result.Updates, RiskUpdate{
			TaskID:         task.ID,
			PreviousStatus: task.Status,
			Reason:         assessment.Reason,
		})
	}

	slog.Info("processed risk sweep",
		"total", len(tasks),
		"updated", len(result.Updates),
		"failed", len(errs),
	)

	if len(errs) > 0 {
		return result, fmt.Errorf("risk sweep had %d failures: %w", len(errs), errors.Join(errs...))
	}

	return result, nil
}

// markAtRisk transitions a single task and records the reason.
func (s *RiskService) markAtRisk(ctx context.Context, task *domain.Task, reason string) error {
	return database.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := s.taskRepo.MarkAtRisk(ctx, tx, task.ID, task.Status); err != nil {
			return err
		}

		if err := s.auditRepo.CreateTx(ctx, tx, &domain.AuditLogEntry{
			Action: domain.ActionRiskDetected,
			TaskID: &task.ID,
			Details: map[string]any{
				"reason":          reason,
				"previous_status": task.Status,
				"deadline":        task.Deadline.UTC().Format(time.RFC3339),
			},
		}); err != nil {
			return fmt.Errorf("create audit entry: %w", err)
		}

		slog.Info("task marked at risk",
			"task_id", task.ID,
			"old_status", task.Status,
			"reason", reason,
		)
		return nil
	})
}
