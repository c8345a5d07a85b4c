package dto

import "encoding/json"

// WhatsApp Cloud API webhook payload. Only the fields the webhook reads are decoded.

const (
	// WebhookObjectWhatsApp is the only accepted payload object.
	WebhookObjectWhatsApp = "whatsapp_business_account"
	// WebhookFieldMessages marks a change carrying messages or statuses.
	WebhookFieldMessages = "messages"
	// MessageTypeText is the only message type forwarded to the engine.
	MessageTypeText = "text"
)

// WebhookPayload is the top-level notification body.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry is one business account's batch of changes.
type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

// WebhookChange carries a single change notification.
type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

// WebhookValue holds the messages or delivery statuses of a change.
type WebhookValue struct {
	MessagingProduct string            `json:"messaging_product"`
	Metadata         WebhookMetadata   `json:"metadata"`
	Contacts         []WebhookContact  `json:"contacts,omitempty"`
	Messages         []WebhookMessage  `json:"messages,omitempty"`
	Statuses         []json.RawMessage `json:"statuses,omitempty"`
}

// WebhookMetadata identifies the receiving business number.
type WebhookMetadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// WebhookContact is the sender profile.
type WebhookContact struct {
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
	WaID string `json:"wa_id"`
}

// WebhookMessage is one inbound message.
type WebhookMessage struct {
	From      string       `json:"from"` // phone number without +
	ID        string       `json:"id"`
	Timestamp string       `json:"timestamp"`
	Type      string       `json:"type"`
	Text      *WebhookText `json:"text,omitempty"`
}

// WebhookText is the body of a text message.
type WebhookText struct {
	Body string `json:"body"`
}
