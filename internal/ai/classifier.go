package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mtlprog/taskpulse/internal/domain"
)

// Classifier maps an inbound message and the sender's open tasks to an intent.
type Classifier interface {
	Classify(ctx context.Context, text string, openTasks []*domain.Task) (domain.Classification, error)
}

// ErrMalformedClassification is returned when the service answer cannot be used.
var ErrMalformedClassification = errors.New("malformed classification")

const classifierSystemPrompt = "You are a helpful JSON classifier."

const classifierInstructions = `You are an AI assistant managing task execution for a team.

Classify the user's intent into exactly one of these categories:
- CONFIRM: user accepts a task or confirms they are working on it ("OK", "On it", "Will do").
- BLOCK: user is stuck or cannot proceed ("I need help", "Waiting on legal").
- DONE: user has completed a task ("Finished", "Done").
- PROGRESS: user gives an update but is not done ("Halfway there").
- QUERY: user asks about their tasks ("What's due today?").
- RESCHEDULE: user asks to move a deadline ("Can I do it Friday?").
- STOP: user asks the assistant to stop or pause messages.
- AMBIGUOUS: the message clearly refers to a task but it is unclear which one.
- UNCLEAR: the message is unrelated or cannot be understood.

Return a JSON object with:
- "intent": one of the categories above.
- "reason": a short explanation, or the extracted blocker reason when intent is BLOCK.
- "new_deadline": ISO 8601 timestamp when intent is RESCHEDULE and a date is given, otherwise null.
- "task_candidates": array of task ids from the list below the message most likely refers to, best first.
- "confidence": a number between 0 and 1.`

// RemoteClassifier asks a chat completions service for a structured classification.
type RemoteClassifier struct {
	chat ChatCompleter
}

// NewRemoteClassifier creates a RemoteClassifier.
func NewRemoteClassifier(chat ChatCompleter) *RemoteClassifier {
	return &RemoteClassifier{chat: chat}
}

// Classify returns an error on any transport or decoding failure.
func (c *RemoteClassifier) Classify(ctx context.Context, text string, openTasks []*domain.Task) (domain.Classification, error) {
	content, err := c.chat.Complete(ctx, ChatRequest{
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: classifierSystemPrompt},
			{Role: RoleUser, Content: classifierPrompt(text, openTasks)},
		},
		JSON: true,
	})
	if err != nil {
		return domain.Classification{}, err
	}

	return parseClassification(content)
}

// promptTask is how a task is shown to the model.
type promptTask struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Deadline string `json:"deadline"`
}

func classifierPrompt(text string, openTasks []*domain.Task) string {
	tasks := make([]promptTask, 0, len(openTasks))
	for _, t := range openTasks {
		tasks = append(tasks, promptTask{
			ID:       t.ID,
			Title:    t.Title,
			Status:   string(t.Status),
			Deadline: t.Deadline.UTC().Format(time.RFC3339),
		})
	}
	// Marshalling plain strings cannot fail.
	taskJSON, _ := json.Marshal(tasks)

	var b strings.Builder
	b.WriteString(classifierInstructions)
	b.WriteString("\n\nOpen tasks: ")
	b.Write(taskJSON)
	b.WriteString("\nUser message: ")
	msgJSON, _ := json.Marshal(text)
	b.Write(msgJSON)
	return b.String()
}

// remoteClassification is the JSON shape requested from the service.
type remoteClassification struct {
	Intent         string   `json:"intent"`
	Reason         *string  `json:"reason"`
	NewDeadline    *string  `json:"new_deadline"`
	TaskCandidates []string `json:"task_candidates"`
	Confidence     *float64 `json:"confidence"`
}

func parseClassification(content string) (domain.Classification, error) {
	var raw remoteClassification
	if err := json.Unmarshal([]byte(stripFences(content)), &raw); err != nil {
		return domain.Classification{}, fmt.Errorf("%w: %v", ErrMalformedClassification, err)
	}

	intent := domain.Intent(strings.ToUpper(strings.TrimSpace(raw.Intent)))
	if intent == "" {
		intent = domain.IntentUnclear
	}
	if !intent.IsValid() {
		return domain.Classification{}, fmt.Errorf("%w: unknown intent %q", ErrMalformedClassification, raw.Intent)
	}

	c := domain.Classification{
		Intent:     intent,
		Confidence: 0.5,
		Source:     domain.SourceRemote,
	}
	if raw.Confidence != nil {
		c.Confidence = clamp(*raw.Confidence)
	}
	if raw.Reason != nil && strings.TrimSpace(*raw.Reason) != "" {
		reason := strings.TrimSpace(*raw.Reason)
		c.Reason = &reason
	}
	if raw.NewDeadline != nil {
		c.NewDeadline = parseDeadline(*raw.NewDeadline)
	}
	for _, id := range raw.TaskCandidates {
		if id = strings.TrimSpace(id); id != "" {
			c.TaskCandidates = append(c.TaskCandidates, id)
		}
	}

	return c, nil
}

var deadlineLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02"}

func parseDeadline(v string) *time.Time {
	v = strings.TrimSpace(v)
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// stripFences removes a markdown code fence some models wrap JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ClassifierWithFallback tries the primary classifier and answers with the
// fallback on any failure. Empty messages never reach the primary.
type ClassifierWithFallback struct {
	primary  Classifier
	fallback Classifier
}

// NewClassifierWithFallback composes two classifiers. A nil primary means the
// fallback is always used.
func NewClassifierWithFallback(primary, fallback Classifier) *ClassifierWithFallback {
	return &ClassifierWithFallback{primary: primary, fallback: fallback}
}

// Classify never returns an error as long as the fallback does not.
func (c *ClassifierWithFallback) Classify(ctx context.Context, text string, openTasks []*domain.Task) (domain.Classification, error) {
	if strings.TrimSpace(text) == "" {
		return unclear(), nil
	}

	if c.primary != nil {
		result, err := c.primary.Classify(ctx, text, openTasks)
		if err == nil {
			return result, nil
		}
		slog.Warn("remote classification failed, using heuristics", "error", err)
	}

	return c.fallback.Classify(ctx, text, openTasks)
}
