// Package ai turns inbound messages into structured intents and composes
// short replies. Every capability has a remote implementation backed by an
// OpenAI-compatible chat completions service and a deterministic one that
// is used whenever the service is not configured or fails.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// ErrEmptyCompletion is returned when the service answers without content.
var ErrEmptyCompletion = errors.New("empty completion")

// Role of a chat turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is a single turn sent to the chat service.
type ChatMessage struct {
	Role    Role
	Content string
}

// ChatRequest describes one completion call.
type ChatRequest struct {
	Messages    []ChatMessage
	JSON        bool // ask for a JSON object response
	MaxTokens   int64
	Temperature *float64
}

// ChatCompleter is the capability the remote classifier and generator depend on.
type ChatCompleter interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// ChatConfig configures the OpenAI-compatible client.
type ChatConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// HTTPClient overrides the transport, mostly for tests.
	HTTPClient *http.Client
}

// OpenAIChat implements ChatCompleter on top of openai-go. It works with any
// provider exposing the chat completions API (DeepSeek by default).
type OpenAIChat struct {
	client openai.Client
	model  string
}

// NewOpenAIChat creates a chat client. Retries are disabled: a failed call is
// answered by the deterministic fallback instead.
func NewOpenAIChat(cfg ChatConfig) *OpenAIChat {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &OpenAIChat{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

// Complete sends the request and returns the trimmed content of the first choice.
func (c *OpenAIChat) Complete(ctx context.Context, req ChatRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(c.model),
		Messages: toParams(req.Messages),
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(req.MaxTokens)
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}

func toParams(messages []ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
