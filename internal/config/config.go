// Package config holds runtime configuration defaults and the assembled
// configuration consumed by the wiring code.
package config

import "time"

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultDatabaseURL is empty; must be provided via flag or environment.
	DefaultDatabaseURL = ""

	// DefaultAIBaseURL points at the DeepSeek OpenAI-compatible endpoint.
	DefaultAIBaseURL = "https://api.deepseek.com"

	// DefaultAIModel is the chat model used for classification and replies.
	DefaultAIModel = "deepseek-chat"

	// DefaultAITimeout bounds a single chat completion request.
	DefaultAITimeout = 15 * time.Second

	// DefaultWhatsAppTimeout bounds a single Graph API request.
	DefaultWhatsAppTimeout = 10 * time.Second

	// DefaultAmbiguityPolicy acts on the first open task.
	DefaultAmbiguityPolicy = "first"

	// DefaultHistoryLimit is how many recent messages are used as reply context.
	DefaultHistoryLimit = 10
)

// AI configures the language services. An empty APIKey disables remote calls.
type AI struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// WhatsApp configures the messaging channel.
type WhatsApp struct {
	APIToken      string
	PhoneNumberID string
	VerifyToken   string
	AppSecret     string // enables X-Hub-Signature-256 checks when set
	Mock          bool
	Timeout       time.Duration
}

// Config is the complete runtime configuration.
type Config struct {
	DatabaseURL     string
	Port            string
	AdminToken      string // empty disables admin API authentication
	AmbiguityPolicy string
	HistoryLimit    int
	AI              AI
	WhatsApp        WhatsApp
}

// RemoteAIEnabled reports whether chat completions should be used.
func (c Config) RemoteAIEnabled() bool {
	return c.AI.APIKey != ""
}
