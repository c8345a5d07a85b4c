package engine

import (
	"context"
	"time"

	"github.com/mtlprog/taskpulse/internal/domain"
)

// UserReader loads users.
type UserReader interface {
	GetByID(ctx context.Context, userID string) (*domain.User, error)
}

// TaskStore loads and updates the sender's tasks.
type TaskStore interface {
	ListOpenByAssignee(ctx context.Context, assigneeID string) ([]*domain.Task, error)
	ApplyUpdate(ctx context.Context, taskID, assigneeID string, update domain.TaskUpdate) error
}

// SettingsStore loads AI settings and records activity.
type SettingsStore interface {
	GetByUserID(ctx context.Context, userID string) (*domain.AISettings, error)
	TouchLastActive(ctx context.Context, userID string, at time.Time) error
}

// AuditWriter persists audit entries.
type AuditWriter interface {
	Create(ctx context.Context, entry *domain.AuditLogEntry) error
}

// MessageStore records exchanged messages and serves recent history.
type MessageStore interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListRecentByUser(ctx context.Context, userID string, limit int) ([]*domain.Message, error)
}
