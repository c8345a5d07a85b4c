package domain

import "time"

// Audit actions written outside the decision engine.
const (
	ActionRiskDetected   = "RISK_DETECTED"
	ActionTaskCreated    = "TASK_CREATED"
	ActionMsgSent        = "MSG_SENT"
	ActionMsgSendFailed  = "MSG_SEND_FAILED"
	ActionWebhookRaw     = "WEBHOOK_RAW"
	ActionMsgUnknownUser = "MSG_UNKNOWN_USER"
)

// AuditLogEntry is a persisted record of something the system did or observed.
type AuditLogEntry struct {
	ID        string
	Action    string
	TaskID    *string // nil for events not tied to a task
	Details   map[string]any
	CreatedAt time.Time
}
