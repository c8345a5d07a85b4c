package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mtlprog/taskpulse/internal/domain"
	"github.com/mtlprog/taskpulse/internal/messaging"
)

// ErrDispatchFailed is reported when the messaging channel rejects a reply.
var ErrDispatchFailed = errors.New("reply dispatch failed")

// auditActionPrefix tags every audit entry written for a plan event.
const auditActionPrefix = "AI_"

// Executor applies the side effects of an ActionPlan. Execution is
// best-effort: a failing step is logged and the remaining steps still run.
// Nothing is rolled back.
type Executor struct {
	users      UserReader
	tasks      TaskStore
	settings   SettingsStore
	audit      AuditWriter
	messages   MessageStore
	dispatcher messaging.Dispatcher
	now        func() time.Time
}

// NewExecutor creates an Executor. A nil now defaults to time.Now.
func NewExecutor(
	users UserReader,
	tasks TaskStore,
	settings SettingsStore,
	audit AuditWriter,
	messages MessageStore,
	dispatcher messaging.Dispatcher,
	now func() time.Time,
) *Executor {
	if now == nil {
		now = time.Now
	}
	return &Executor{
		users:      users,
		tasks:      tasks,
		settings:   settings,
		audit:      audit,
		messages:   messages,
		dispatcher: dispatcher,
		now:        now,
	}
}

// Execute applies plan on behalf of userID. The returned error joins every
// step that failed; a non-nil error does not mean nothing was applied.
func (x *Executor) Execute(ctx context.Context, plan *ActionPlan, userID string) error {
	var errs []error

	for _, m := range plan.Mutations {
		if err := x.apply(ctx, m); err != nil {
			slog.Error("failed to apply mutation", "user_id", userID, "error", err)
			errs = append(errs, err)
		}
	}

	for _, ev := range plan.Events {
		entry := &domain.AuditLogEntry{
			Action:  auditActionPrefix + strings.ToUpper(string(ev.Kind)),
			TaskID:  plan.TargetTaskID,
			Details: eventDetails(ev, userID),
		}
		if err := x.audit.Create(ctx, entry); err != nil {
			slog.Error("failed to write audit entry", "user_id", userID, "action", entry.Action, "error", err)
			errs = append(errs, fmt.Errorf("write audit %s: %w", entry.Action, err))
		}
	}

	if err := x.settings.TouchLastActive(ctx, userID, x.now()); err != nil {
		slog.Error("failed to update last active", "user_id", userID, "error", err)
		errs = append(errs, fmt.Errorf("touch last active: %w", err))
	}

	if plan.Reply != nil {
		if err := x.dispatch(ctx, plan, userID); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// apply switches over every Mutation variant.
func (x *Executor) apply(ctx context.Context, m Mutation) error {
	switch m := m.(type) {
	case TaskMutation:
		if m.Update.IsEmpty() {
			return nil
		}
		if err := x.tasks.ApplyUpdate(ctx, m.TaskID, m.AssigneeID, m.Update); err != nil {
			return fmt.Errorf("update task %s: %w", m.TaskID, err)
		}
		slog.Info("task updated", "task_id", m.TaskID, "assignee_id", m.AssigneeID)
		return nil
	default:
		return fmt.Errorf("unsupported mutation %T", m)
	}
}

func (x *Executor) dispatch(ctx context.Context, plan *ActionPlan, userID string) error {
	user, err := x.users.GetByID(ctx, userID)
	if err != nil {
		slog.Error("failed to load user for reply", "user_id", userID, "error", err)
		return fmt.Errorf("load user for reply: %w", err)
	}

	handle := user.Handle()
	if handle == "" {
		slog.Info("user has no messaging handle, reply not sent", "user_id", userID)
		return nil
	}

	result := x.dispatcher.Send(ctx, handle, *plan.Reply)

	status := domain.MessageStatusSent
	if !result.Success {
		status = domain.MessageStatusFailed
	}
	uid := userID
	msg := &domain.Message{
		TaskID:    plan.TargetTaskID,
		UserID:    &uid,
		Direction: domain.DirectionOutbound,
		Content:   *plan.Reply,
		Status:    status,
	}

	var errs []error
	if err := x.messages.Create(ctx, msg); err != nil {
		slog.Error("failed to record outbound message", "user_id", userID, "error", err)
		errs = append(errs, fmt.Errorf("record outbound message: %w", err))
	}
	if !result.Success {
		slog.Error("reply dispatch failed", "user_id", userID, "error", result.Error)
		errs = append(errs, fmt.Errorf("%w: %s", ErrDispatchFailed, result.Error))
	}

	return errors.Join(errs...)
}

func eventDetails(ev Event, userID string) map[string]any {
	details := map[string]any{
		"description": ev.Description,
		"user_id":     userID,
	}
	if len(ev.Metadata) > 0 {
		details["metadata"] = ev.Metadata
	}
	return details
}
