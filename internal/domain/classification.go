package domain

import "time"

// Intent is the categorized purpose of an inbound message.
type Intent string

const (
	IntentConfirm    Intent = "CONFIRM"
	IntentBlock      Intent = "BLOCK"
	IntentDone       Intent = "DONE"
	IntentProgress   Intent = "PROGRESS"
	IntentQuery      Intent = "QUERY"
	IntentReschedule Intent = "RESCHEDULE"
	IntentStop       Intent = "STOP"
	IntentAmbiguous  Intent = "AMBIGUOUS"
	IntentUnclear    Intent = "UNCLEAR"
)

// IsValid checks if the intent is one of the known values.
func (i Intent) IsValid() bool {
	switch i {
	case IntentConfirm, IntentBlock, IntentDone, IntentProgress, IntentQuery,
		IntentReschedule, IntentStop, IntentAmbiguous, IntentUnclear:
		return true
	default:
		return false
	}
}

// RequiresTarget reports whether acting on the intent needs a resolved task.
func (i Intent) RequiresTarget() bool {
	switch i {
	case IntentDone, IntentBlock, IntentConfirm, IntentReschedule:
		return true
	default:
		return false
	}
}

// ClassificationSource tells which classifier produced a result.
type ClassificationSource string

const (
	SourceRemote    ClassificationSource = "remote"
	SourceHeuristic ClassificationSource = "heuristic"
)

// Classification is the structured reading of one inbound message.
type Classification struct {
	Intent         Intent               `json:"intent"`
	Reason         *string              `json:"reason,omitempty"`
	NewDeadline    *time.Time           `json:"new_deadline,omitempty"`
	TaskCandidates []string             `json:"task_candidates,omitempty"`
	Confidence     float64              `json:"confidence"`
	Source         ClassificationSource `json:"source"`
}
