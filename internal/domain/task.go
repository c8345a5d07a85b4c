package domain

import "time"

// TaskStatus represents the status of a task in the accountability lifecycle.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusConfirmed TaskStatus = "confirmed"
	TaskStatusBlocked   TaskStatus = "blocked"
	TaskStatusAtRisk    TaskStatus = "at_risk"
	TaskStatusCompleted TaskStatus = "completed"
)

// IsTerminal returns true if the status is terminal.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted
}

// IsOpen returns true if the task still needs attention from its assignee.
func (s TaskStatus) IsOpen() bool {
	return !s.IsTerminal()
}

// IsValid checks if the status is one of the allowed values.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusConfirmed, TaskStatusBlocked,
		TaskStatusAtRisk, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// Task represents a unit of work assigned by an admin to a staff member.
type Task struct {
	ID            string
	Title         string
	Description   *string
	AssigneeID    string
	CreatorID     string
	Deadline      time.Time
	Status        TaskStatus
	BlockerReason *string // set only while Status is blocked
	TeamID        *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsOwnedBy checks if the task is assigned to the given user.
func (t *Task) IsOwnedBy(userID string) bool {
	return t.AssigneeID == userID
}

// TaskUpdate is a partial update of a task. Nil fields are left untouched.
type TaskUpdate struct {
	Status        *TaskStatus `json:"status,omitempty"`
	Deadline      *time.Time  `json:"deadline,omitempty"`
	BlockerReason *string     `json:"blocker_reason,omitempty"`

	// ClearBlockerReason sets blocker_reason to NULL. Ignored when BlockerReason is set.
	ClearBlockerReason bool `json:"clear_blocker_reason,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u TaskUpdate) IsEmpty() bool {
	return u.Status == nil && u.Deadline == nil && u.BlockerReason == nil && !u.ClearBlockerReason
}
