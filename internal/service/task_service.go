package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mtlprog/taskpulse/internal/database"
	"github.com/mtlprog/taskpulse/internal/domain"
	"github.com/mtlprog/taskpulse/internal/messaging"
	"github.com/mtlprog/taskpulse/internal/repository"
)

// CreateTaskInput holds the fields an admin supplies when assigning a task.
type CreateTaskInput struct {
	Title       string
	Description *string
	AssigneeID  string
	CreatorID   *string // defaults to the first admin
	Deadline    time.Time
	TeamID      *string // defaults to the assignee's team
}

// TaskDetail is a task together with its audit trail.
type TaskDetail struct {
	Task  *domain.Task
	Audit []*domain.AuditLogEntry
}

// TaskService coordinates task assignment and read models for the admin API.
type TaskService struct {
	pool         *pgxpool.Pool
	taskRepo     *repository.TaskRepository
	userRepo     *repository.UserRepository
	settingsRepo *repository.SettingsRepository
	auditRepo    *repository.AuditRepository
	messageRepo  *repository.MessageRepository
	dispatcher   messaging.Dispatcher
	validator    *Validator
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	pool *pgxpool.Pool,
	taskRepo *repository.TaskRepository,
	userRepo *repository.UserRepository,
	settingsRepo *repository.SettingsRepository,
	auditRepo *repository.AuditRepository,
	messageRepo *repository.MessageRepository,
	dispatcher messaging.Dispatcher,
) *TaskService {
	return &TaskService{
		pool:         pool,
		taskRepo:     taskRepo,
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
		auditRepo:    auditRepo,
		messageRepo:  messageRepo,
		dispatcher:   dispatcher,
		validator:    NewValidator(nil),
	}
}

// CreateTask inserts a pending task and notifies the assignee. A failed
// notification is logged and audited but does not fail the call.
func (s *TaskService) CreateTask(ctx context.Context, in CreateTaskInput) (*domain.Task, error) {
	if err := s.validator.ValidateNewTask(in); err != nil {
		return nil, err
	}

	assignee, err := s.userRepo.GetByID(ctx, in.AssigneeID)
	if err != nil {
		return nil, fmt.Errorf("get assignee: %w", err)
	}

	var creator *domain.User
	if in.CreatorID != nil && *in.CreatorID != "" {
		creator, err = s.userRepo.GetByID(ctx, *in.CreatorID)
	} else {
		creator, err = s.userRepo.FirstAdmin(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("get creator: %w", err)
	}

	teamID := in.TeamID
	if teamID == nil {
		teamID = assignee.TeamID
	}

	task := &domain.Task{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		AssigneeID:  assignee.ID,
		CreatorID:   creator.ID,
		Deadline:    in.Deadline.UTC(),
		Status:      domain.TaskStatusPending,
		TeamID:      teamID,
	}

	err = database.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := s.taskRepo.Create(ctx, tx, task); err != nil {
			return err
		}
		return s.auditRepo.CreateTx(ctx, tx, &domain.AuditLogEntry{
			Action: domain.ActionTaskCreated,
			TaskID: &task.ID,
			Details: map[string]any{
				"title":       task.Title,
				"assignee_id": task.AssigneeID,
				"creator_id":  task.CreatorID,
				"deadline":    task.Deadline.Format(time.RFC3339),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("task created",
		"task_id", task.ID,
		"assignee_id", task.AssigneeID,
		"creator_id", task.CreatorID,
	)

	s.notifyAssignment(ctx, task, assignee)

	return task, nil
}

// AssignmentMessage renders the message sent to a newly assigned user.
func AssignmentMessage(assigneeName, title, deadline string) string {
	return fmt.Sprintf("Hey %s, just assigned you a new task: \"%s\". It's due by %s. Let me know if you're good with this?",
		assigneeName, title, deadline)
}

func (s *TaskService) notifyAssignment(ctx context.Context, task *domain.Task, assignee *domain.User) {
	handle := assignee.Handle()
	if handle == "" {
		slog.Info("assignee has no messaging handle, assignment not sent", "task_id", task.ID, "assignee_id", assignee.ID)
		return
	}

	timezone := "UTC"
	if settings, err := s.settingsRepo.GetByUserID(ctx, assignee.ID); err == nil {
		timezone = settings.Timezone
	} else if !errors.Is(err, domain.ErrSettingsNotFound) {
		slog.Warn("failed to load assignee settings", "assignee_id", assignee.ID, "error", err)
	}

	body := AssignmentMessage(assignee.Name, task.Title, FormatDeadline(task.Deadline, timezone))
	result := s.dispatcher.Send(ctx, handle, body)

	status := domain.MessageStatusSent
	action := domain.ActionMsgSent
	details := map[string]any{
		"type": "assignment",
		"to":   assignee.Name,
		"body": body,
	}
	if result.Success {
		details["message_id"] = result.MessageID
	} else {
		status = domain.MessageStatusFailed
		action = domain.ActionMsgSendFailed
		details["error"] = result.Error
		slog.Error("failed to send assignment message", "task_id", task.ID, "error", result.Error)
	}

	assigneeID := assignee.ID
	if err := s.messageRepo.Create(ctx, &domain.Message{
		TaskID:    &task.ID,
		UserID:    &assigneeID,
		Direction: domain.DirectionOutbound,
		Content:   body,
		Status:    status,
	}); err != nil {
		slog.Error("failed to record assignment message", "task_id", task.ID, "error", err)
	}

	if err := s.auditRepo.Create(ctx, &domain.AuditLogEntry{
		Action:  action,
		TaskID:  &task.ID,
		Details: details,
	}); err != nil {
		slog.Error("failed to audit assignment message", "task_id", task.ID, "error", err)
	}
}

// GetTask returns a task with its audit trail.
func (s *TaskService) GetTask(ctx context.Context, taskID string) (*TaskDetail, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	entries, err := s.auditRepo.ListByTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}

	return &TaskDetail{Task: task, Audit: entries}, nil
}

// ListTasks returns a filtered page of tasks and the total count.
func (s *TaskService) ListTasks(ctx context.Context, filters repository.TaskListFilters) ([]repository.TaskListResult, int, error) {
	if err := s.validator.ValidateStatuses(filters.Statuses); err != nil {
		return nil, 0, err
	}
	if err := s.validator.ValidateSort(filters.Sort); err != nil {
		return nil, 0, err
	}
	return s.taskRepo.List(ctx, filters)
}

// Stats returns overview and per-assignee statistics for a period.
func (s *TaskService) Stats(ctx context.Context, filters repository.StatsFilters) (*repository.OverviewStatsResult, []repository.AssigneeStatsResult, error) {
	if !filters.PeriodEnd.After(filters.PeriodStart) {
		return nil, nil, fmt.Errorf("%w: period end must be after period start", domain.ErrInvalidPeriod)
	}

	overview, err := s.taskRepo.GetOverviewStats(ctx, filters)
	if err != nil {
		return nil, nil, err
	}

	assignees, err := s.taskRepo.GetAssigneeStats(ctx, filters)
	if err != nil {
		return nil, nil, err
	}

	return overview, assignees, nil
}
