package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mtlprog/taskpulse/internal/domain"
)

// Turn is one prior exchange in the conversation, oldest first.
type Turn struct {
	Role    Role   `json:"role"` // user or assistant
	Content string `json:"content"`
}

// ReplyData carries values extracted while building a plan.
type ReplyData struct {
	NewDeadline   *time.Time `json:"new_deadline,omitempty"`
	BlockerReason *string    `json:"blocker_reason,omitempty"`
}

// ReplyContext is everything the generator may use to compose a reply.
type ReplyContext struct {
	UserName  string
	Message   string       // inbound text being answered
	Task      *domain.Task // resolved target, may be nil
	Intent    domain.Intent
	Data      ReplyData
	OpenTasks []*domain.Task
	History   []Turn
}

// Generator composes a short reply to the user.
type Generator interface {
	Generate(ctx context.Context, personality domain.Personality, rc ReplyContext) (string, error)
}

var personalityPrompts = map[domain.Personality]string{
	domain.PersonalityProfessional: "You are a highly efficient, professional project manager. You value brevity and clarity. You do not use emojis unless necessary. Your goal is to unblock the user and ensure delivery.",
	domain.PersonalityFriendly:     "You are a supportive and enthusiastic accountability partner! You use emojis, celebrate small wins, and encourage the user. You are firm but kind.",
	domain.PersonalityStrict:       "You are a strict, no-nonsense commander. You demand results. You do not tolerate excuses. You use short, imperative sentences. Time is money.",
}

const replyInstructions = `Generate a WhatsApp reply (max 2 sentences) based on the detection.
If the intent is DONE, celebrate or acknowledge.
If BLOCK, ask for details or offer help.
If CONFIRM, acknowledge.
If AMBIGUOUS, ask which task they mean.
If QUERY, answer the question directly from the open tasks. If you don't know, say you'll check.
If RESCHEDULE, confirm the new deadline or ask for one.
If STOP, confirm silence.`

const (
	replyMaxTokens   = 60
	replyTemperature = 0.7
)

// RemoteGenerator asks a chat completions service to write the reply.
type RemoteGenerator struct {
	chat ChatCompleter
}

// NewRemoteGenerator creates a RemoteGenerator.
func NewRemoteGenerator(chat ChatCompleter) *RemoteGenerator {
	return &RemoteGenerator{chat: chat}
}

// Generate returns an error on any transport failure or empty answer.
func (g *RemoteGenerator) Generate(ctx context.Context, personality domain.Personality, rc ReplyContext) (string, error) {
	system, ok := personalityPrompts[personality]
	if !ok {
		system = personalityPrompts[domain.PersonalityProfessional]
	}

	messages := []ChatMessage{{Role: RoleSystem, Content: system}}
	for _, turn := range rc.History {
		role := RoleUser
		if turn.Role == RoleAssistant {
			role = RoleAssistant
		}
		messages = append(messages, ChatMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, ChatMessage{Role: RoleUser, Content: replyPrompt(rc)})

	temperature := replyTemperature
	return g.chat.Complete(ctx, ChatRequest{
		Messages:    messages,
		MaxTokens:   replyMaxTokens,
		Temperature: &temperature,
	})
}

func replyPrompt(rc ReplyContext) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	fmt.Fprintf(&b, "- User: %s\n", rc.UserName)
	if rc.Message != "" {
		fmt.Fprintf(&b, "- Message: %q\n", rc.Message)
	}
	if rc.Task != nil {
		fmt.Fprintf(&b, "- Task: %s (Status: %s, Deadline: %s)\n",
			rc.Task.Title, rc.Task.Status, rc.Task.Deadline.UTC().Format(time.RFC3339))
	} else {
		b.WriteString("- Task: General\n")
	}
	fmt.Fprintf(&b, "- Intent Detected: %s\n", rc.Intent)
	if rc.Data.NewDeadline != nil {
		fmt.Fprintf(&b, "- New deadline: %s\n", rc.Data.NewDeadline.UTC().Format(time.RFC3339))
	}
	if rc.Data.BlockerReason != nil {
		fmt.Fprintf(&b, "- Blocker: %s\n", *rc.Data.BlockerReason)
	}
	if len(rc.OpenTasks) > 0 {
		b.WriteString("- Open tasks:\n")
		for _, t := range rc.OpenTasks {
			fmt.Fprintf(&b, "  * %s (Status: %s, Deadline: %s)\n",
				t.Title, t.Status, t.Deadline.UTC().Format(time.RFC3339))
		}
	}
	b.WriteString("\n")
	b.WriteString(replyInstructions)
	return b.String()
}

// TemplateGenerator answers from a fixed table keyed by personality and intent.
type TemplateGenerator struct{}

// Fixed replies used by TemplateGenerator.
const (
	ReplyDoneFriendly  = "Great job! Task marked complete. 🎉"
	ReplyDoneNeutral   = "Noted. Task marked complete."
	ReplyBlockFriendly = "Oh no, sorry you're stuck! What's blocking you?"
	ReplyBlockNeutral  = "Understood. Send me the details of the blocker."
	ReplyGeneric       = "Got it."
)

// Generate never returns an error.
func (TemplateGenerator) Generate(_ context.Context, personality domain.Personality, rc ReplyContext) (string, error) {
	return TemplateReply(personality, rc.Intent), nil
}

// TemplateReply looks up the fixed reply for a personality and intent.
func TemplateReply(personality domain.Personality, intent domain.Intent) string {
	friendly := personality == domain.PersonalityFriendly
	switch intent {
	case domain.IntentDone:
		if friendly {
			return ReplyDoneFriendly
		}
		return ReplyDoneNeutral
	case domain.IntentBlock:
		if friendly {
			return ReplyBlockFriendly
		}
		return ReplyBlockNeutral
	default:
		return ReplyGeneric
	}
}

// GeneratorWithFallback tries the primary generator and answers with the
// fallback on any failure.
type GeneratorWithFallback struct {
	primary  Generator
	fallback Generator
}

// NewGeneratorWithFallback composes two generators. A nil primary means the
// fallback is always used.
func NewGeneratorWithFallback(primary, fallback Generator) *GeneratorWithFallback {
	return &GeneratorWithFallback{primary: primary, fallback: fallback}
}

// Generate never returns an error as long as the fallback does not.
func (g *GeneratorWithFallback) Generate(ctx context.Context, personality domain.Personality, rc ReplyContext) (string, error) {
	if g.primary != nil {
		reply, err := g.primary.Generate(ctx, personality, rc)
		if err == nil && strings.TrimSpace(reply) != "" {
			return reply, nil
		}
		slog.Warn("remote reply generation failed, using templates", "intent", rc.Intent, "error", err)
	}
	return g.fallback.Generate(ctx, personality, rc)
}

// NewClassifier wires the classifier stack. With a nil chat only heuristics are used.
func NewClassifier(chat ChatCompleter) Classifier {
	if chat == nil {
		return NewClassifierWithFallback(nil, HeuristicClassifier{})
	}
	return NewClassifierWithFallback(NewRemoteClassifier(chat), HeuristicClassifier{})
}

// NewGenerator wires the generator stack. With a nil chat only templates are used.
func NewGenerator(chat ChatCompleter) Generator {
	if chat == nil {
		return NewGeneratorWithFallback(nil, TemplateGenerator{})
	}
	return NewGeneratorWithFallback(NewRemoteGenerator(chat), TemplateGenerator{})
}
