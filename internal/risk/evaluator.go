// Package risk decides whether an open task is in danger of missing its deadline.
package risk

import (
	"time"

	"github.com/mtlprog/taskpulse/internal/domain"
)

// Reasons reported by Evaluate.
const (
	ReasonOverdue         = "Overdue"
	ReasonPendingNearDue  = "Deadline < 24h & Pending"
	pendingWarningHorizon = 24 * time.Hour
)

// Assessment is the result of evaluating a single task.
type Assessment struct {
	IsAtRisk bool
	Reason   string
}

// Evaluate reports whether the task is at risk at the given instant.
// Completed and blocked tasks are never at risk.
func Evaluate(task *domain.Task, now time.Time) Assessment {
	if task.Status == domain.TaskStatusCompleted || task.Status == domain.TaskStatusBlocked {
		return Assessment{}
	}

	remaining := task.Deadline.Sub(now)
	if remaining < 0 {
		return Assessment{IsAtRisk: true, Reason: ReasonOverdue}
	}

	// Unconfirmed work close to its deadline
	if remaining < pendingWarningHorizon && task.Status == domain.TaskStatusPending {
		return Assessment{IsAtRisk: true, Reason: ReasonPendingNearDue}
	}

	return Assessment{}
}

// NeedsTransition reports whether the sweep should move the task to at_risk.
func NeedsTransition(task *domain.Task, a Assessment) bool {
	return a.IsAtRisk && task.Status != domain.TaskStatusAtRisk
}
