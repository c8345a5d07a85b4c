// Package messaging delivers outbound text messages over the WhatsApp Cloud API.
package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultGraphURL is the Graph API endpoint including the API version.
const DefaultGraphURL = "https://graph.facebook.com/v22.0"

// SendResult reports the outcome of a send. Failures are values, not errors.
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
	Code      int    `json:"code,omitempty"`
}

// Dispatcher sends a text message to a messaging handle.
type Dispatcher interface {
	Send(ctx context.Context, handle, body string) SendResult
}

// Config configures the WhatsApp dispatcher.
type Config struct {
	APIToken      string
	PhoneNumberID string
	GraphURL      string
	Mock          bool // log instead of sending
	Timeout       time.Duration

	HTTPClient *http.Client
}

// WhatsAppDispatcher implements Dispatcher against the Cloud API.
type WhatsAppDispatcher struct {
	cfg    Config
	client *http.Client
}

// NewWhatsAppDispatcher creates a dispatcher. Credentials are checked per send
// so a misconfigured deployment still processes inbound messages.
func NewWhatsAppDispatcher(cfg Config) *WhatsAppDispatcher {
	if cfg.GraphURL == "" {
		cfg.GraphURL = DefaultGraphURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &WhatsAppDispatcher{cfg: cfg, client: client}
}

// sendRequest is the Cloud API text message payload.
type sendRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	RecipientType    string   `json:"recipient_type"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// CleanHandle strips the leading plus and any whitespace from a phone number.
func CleanHandle(handle string) string {
	return strings.Map(func(r rune) rune {
		if r == '+' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, handle)
}

// Send delivers body to handle.
func (d *WhatsAppDispatcher) Send(ctx context.Context, handle, body string) SendResult {
	to := CleanHandle(handle)

	if d.cfg.Mock {
		slog.Info("mock whatsapp message", "to", to, "body", body)
		return SendResult{Success: true, MessageID: "mock_" + uuid.NewString()}
	}

	if d.cfg.APIToken == "" || d.cfg.PhoneNumberID == "" {
		slog.Error("whatsapp credentials missing")
		return SendResult{Error: "missing API credentials"}
	}

	payload, err := json.Marshal(sendRequest{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: body},
	})
	if err != nil {
		return SendResult{Error: fmt.Sprintf("encode payload: %v", err)}
	}

	url := strings.TrimSuffix(d.cfg.GraphURL, "/") + "/" + d.cfg.PhoneNumberID + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return SendResult{Error: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Authorization", "Bearer "+d.cfg.APIToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		slog.Error("whatsapp network error", "to", to, "error", err)
		return SendResult{Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.Status
		}
		slog.Error("whatsapp api error", "to", to, "status", resp.StatusCode, "error", msg)
		return SendResult{Error: msg, Code: apiErr.Error.Code}
	}

	var out sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return SendResult{Error: fmt.Sprintf("decode response: %v", err)}
	}

	var id string
	if len(out.Messages) > 0 {
		id = out.Messages[0].ID
	}
	slog.Info("whatsapp message sent", "to", to, "message_id", id)

	return SendResult{Success: true, MessageID: id}
}
