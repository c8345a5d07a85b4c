// Package engine turns one inbound message into an ActionPlan and applies it.
//
// Planning is a dry run: it reads the sender's context, classifies the message,
// resolves the task it refers to, derives task mutations, checks the sender's
// quiet hours and composes a reply. Executing a plan is a separate, best-effort
// step performed by Executor.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/mtlprog/taskpulse/internal/ai"
	"github.com/mtlprog/taskpulse/internal/domain"
	"github.com/mtlprog/taskpulse/internal/schedule"
)

// StopReply is sent when a user asks the assistant to pause.
const StopReply = "AI Paused. (Placeholder functionality)"

const (
	defaultBlockerReason = "User reported block"
	defaultHistoryLimit  = 10
)

// AmbiguityPolicy decides what happens when a message needs a target task but
// the classifier did not name one.
type AmbiguityPolicy string

const (
	// PolicyFirstTask acts on the first open task in source order.
	PolicyFirstTask AmbiguityPolicy = "first"
	// PolicyClarify reclassifies the message as AMBIGUOUS when the sender has
	// more than one open task.
	PolicyClarify AmbiguityPolicy = "clarify"
)

// ParseAmbiguityPolicy converts a string to a policy, defaulting to PolicyFirstTask.
func ParseAmbiguityPolicy(s string) AmbiguityPolicy {
	if AmbiguityPolicy(s) == PolicyClarify {
		return PolicyClarify
	}
	return PolicyFirstTask
}

// Deps holds the collaborators of the engine.
type Deps struct {
	Users      UserReader
	Tasks      TaskStore
	Settings   SettingsStore
	Messages   MessageStore
	Classifier ai.Classifier
	Generator  ai.Generator
	Executor   *Executor
}

// Options tunes engine behavior.
type Options struct {
	Policy       AmbiguityPolicy
	HistoryLimit int
	Now          func() time.Time
}

// Engine builds action plans for inbound messages.
type Engine struct {
	users      UserReader
	tasks      TaskStore
	settings   SettingsStore
	messages   MessageStore
	classifier ai.Classifier
	generator  ai.Generator
	executor   *Executor

	policy       AmbiguityPolicy
	historyLimit int
	now          func() time.Time
}

// New creates an Engine.
func New(deps Deps, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = defaultHistoryLimit
	}
	if opts.Policy == "" {
		opts.Policy = PolicyFirstTask
	}

	return &Engine{
		users:        deps.Users,
		tasks:        deps.Tasks,
		settings:     deps.Settings,
		messages:     deps.Messages,
		classifier:   deps.Classifier,
		generator:    deps.Generator,
		executor:     deps.Executor,
		policy:       opts.Policy,
		historyLimit: opts.HistoryLimit,
		now:          opts.Now,
	}
}

// PlanOptions carries the optional inputs of a dry run.
type PlanOptions struct {
	// Now overrides the current time for scheduling checks.
	Now *time.Time
	// History is the prior conversation, oldest first.
	History []ai.Turn
}

// ProcessMessage builds a plan for the message and executes it immediately.
func (e *Engine) ProcessMessage(ctx context.Context, userID, text string) error {
	plan, err := e.CreatePlan(ctx, userID, text, PlanOptions{History: e.loadHistory(ctx, userID)})
	if err != nil {
		return err
	}

	slog.Info("action plan created",
		"user_id", userID,
		"intent", plan.Classification.Intent,
		"source", plan.Classification.Source,
		"mutations", len(plan.Mutations),
		"reply", plan.Reply != nil,
	)

	return e.executor.Execute(ctx, plan, userID)
}

// CreatePlan builds an action plan without side effects.
func (e *Engine) CreatePlan(ctx context.Context, userID, text string, opts PlanOptions) (*ActionPlan, error) {
	user, err := e.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}

	settings, err := e.settings.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrSettingsNotFound) {
			return nil, fmt.Errorf("get ai settings for user %s: %w", userID, err)
		}
		settings = nil
	}

	openTasks, err := e.tasks.ListOpenByAssignee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list open tasks for user %s: %w", userID, err)
	}

	classification, err := e.classifier.Classify(ctx, text, openTasks)
	if err != nil {
		return nil, fmt.Errorf("classify message: %w", err)
	}

	plan := &ActionPlan{
		Classification: classification,
		Mutations:      []Mutation{},
	}
	plan.addEvent(EventInbound, "Received: "+text, map[string]any{
		"text":       text,
		"intent":     classification.Intent,
		"confidence": classification.Confidence,
		"source":     classification.Source,
	})

	if classification.Intent == domain.IntentStop {
		plan.setReply(StopReply)
		return plan, nil
	}

	target := e.resolveTarget(plan, openTasks)
	if target != nil {
		id := target.ID
		plan.TargetTaskID = &id
	}

	data := applyIntent(plan, target)

	now := e.now()
	if opts.Now != nil {
		now = *opts.Now
	}

	intent := plan.Classification.Intent
	decision := schedule.CanReplyNow(settings, now)
	if !decision.Allowed && intent != domain.IntentReschedule {
		plan.skipReply(decision.Reason)
		return plan, nil
	}

	reply, err := e.generator.Generate(ctx, settings.PersonalityOrDefault(), ai.ReplyContext{
		UserName:  user.Name,
		Message:   text,
		Task:      target,
		Intent:    intent,
		Data:      data,
		OpenTasks: openTasks,
		History:   opts.History,
	})
	if err != nil {
		return nil, fmt.Errorf("generate reply: %w", err)
	}
	plan.setReply(reply)

	return plan, nil
}

// resolveTarget picks the task the message refers to. It may rewrite the
// classification to AMBIGUOUS under PolicyClarify.
func (e *Engine) resolveTarget(plan *ActionPlan, openTasks []*domain.Task) *domain.Task {
	if len(openTasks) == 0 {
		return nil
	}

	c := &plan.Classification
	if len(c.TaskCandidates) > 0 {
		for _, t := range openTasks {
			if slices.Contains(c.TaskCandidates, t.ID) {
				return t
			}
		}
	}

	if !c.Intent.RequiresTarget() {
		return nil
	}

	if e.policy == PolicyClarify && len(openTasks) > 1 {
		original := c.Intent
		c.Intent = domain.IntentAmbiguous
		plan.addEvent(EventInternal, "Multiple open tasks, asking user to clarify", map[string]any{
			"original_intent": original,
			"open_tasks":      len(openTasks),
		})
		return nil
	}

	return openTasks[0]
}

// applyIntent derives task mutations from the classification.
func applyIntent(plan *ActionPlan, target *domain.Task) ai.ReplyData {
	var data ai.ReplyData
	c := plan.Classification

	if c.Intent.RequiresTarget() && target == nil {
		plan.addEvent(EventInternal, fmt.Sprintf("No open task to apply %s to", c.Intent), nil)
		return data
	}

	switch c.Intent {
	case domain.IntentDone:
		status := domain.TaskStatusCompleted
		plan.addTaskMutation(target, domain.TaskUpdate{
			Status:             &status,
			ClearBlockerReason: target.BlockerReason != nil,
		})
		plan.addEvent(EventInternal, fmt.Sprintf("Marking task %s as COMPLETED", target.ID), nil)

	case domain.IntentBlock:
		reason := defaultBlockerReason
		if c.Reason != nil && *c.Reason != "" {
			reason = *c.Reason
		}
		status := domain.TaskStatusBlocked
		plan.addTaskMutation(target, domain.TaskUpdate{Status: &status, BlockerReason: &reason})
		plan.addEvent(EventInternal, fmt.Sprintf("Marking task %s as BLOCKED", target.ID), map[string]any{
			"blocker_reason": reason,
		})
		data.BlockerReason = &reason

	case domain.IntentConfirm:
		if target.Status != domain.TaskStatusPending {
			return data
		}
		status := domain.TaskStatusConfirmed
		plan.addTaskMutation(target, domain.TaskUpdate{Status: &status})
		plan.addEvent(EventInternal, fmt.Sprintf("Marking task %s as CONFIRMED", target.ID), nil)

	case domain.IntentReschedule:
		if c.NewDeadline == nil {
			return data
		}
		deadline := *c.NewDeadline
		plan.addTaskMutation(target, domain.TaskUpdate{Deadline: &deadline})
		plan.addEvent(EventInternal, fmt.Sprintf("Rescheduling task %s to %s", target.ID, deadline.UTC().Format(time.RFC3339)), nil)
		data.NewDeadline = &deadline

	case domain.IntentQuery:
		plan.addEvent(EventInternal, "User asked about their tasks", nil)

	case domain.IntentProgress:
		var meta map[string]any
		if target != nil {
			meta = map[string]any{"task_id": target.ID}
		}
		plan.addEvent(EventInternal, "Progress update received", meta)
	}

	return data
}

// loadHistory returns recent messages as conversation turns. Failures only
// cost reply context.
func (e *Engine) loadHistory(ctx context.Context, userID string) []ai.Turn {
	if e.messages == nil {
		return nil
	}

	msgs, err := e.messages.ListRecentByUser(ctx, userID, e.historyLimit)
	if err != nil {
		slog.Warn("failed to load conversation history", "user_id", userID, "error", err)
		return nil
	}

	turns := make([]ai.Turn, 0, len(msgs))
	for _, m := range msgs {
		role := ai.RoleUser
		if m.Direction == domain.DirectionOutbound {
			role = ai.RoleAssistant
		}
		turns = append(turns, ai.Turn{Role: role, Content: m.Content})
	}
	return turns
}
