package engine

import (
	"encoding/json"

	"github.com/mtlprog/taskpulse/internal/domain"
)

// EventKind classifies an audit event produced while planning.
type EventKind string

const (
	EventInbound  EventKind = "inbound"
	EventOutbound EventKind = "outbound"
	EventInternal EventKind = "internal"
)

// Event is one step of the decision trail.
type Event struct {
	Kind        EventKind      `json:"type"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Mutation is a state change the executor applies. The set of variants is
// closed; the executor switches over all of them.
type Mutation interface {
	isMutation()
}

// TaskMutation is a partial update of one task owned by AssigneeID.
type TaskMutation struct {
	TaskID     string
	AssigneeID string
	Update     domain.TaskUpdate
}

func (TaskMutation) isMutation() {}

// MarshalJSON renders the mutation with its entity tag for dry-run output.
func (m TaskMutation) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Entity string            `json:"entity"`
		ID     string            `json:"id"`
		Data   domain.TaskUpdate `json:"data"`
	}{Entity: "task", ID: m.TaskID, Data: m.Update})
}

// ActionPlan is the complete, side-effect free description of what should
// happen in response to one inbound message.
type ActionPlan struct {
	Classification  domain.Classification `json:"classification"`
	TargetTaskID    *string               `json:"target_task_id,omitempty"`
	Mutations       []Mutation            `json:"db_updates"`
	Reply           *string               `json:"reply"`
	SkipReplyReason *string               `json:"skip_reply_reason,omitempty"`
	Events          []Event               `json:"events"`
}

func (p *ActionPlan) addEvent(kind EventKind, description string, metadata map[string]any) {
	p.Events = append(p.Events, Event{Kind: kind, Description: description, Metadata: metadata})
}

func (p *ActionPlan) addTaskMutation(task *domain.Task, update domain.TaskUpdate) {
	p.Mutations = append(p.Mutations, TaskMutation{
		TaskID:     task.ID,
		AssigneeID: task.AssigneeID,
		Update:     update,
	})
}

func (p *ActionPlan) setReply(reply string) {
	p.Reply = &reply
	p.SkipReplyReason = nil
	p.addEvent(EventOutbound, "Replying: "+reply, nil)
}

func (p *ActionPlan) skipReply(reason string) {
	p.Reply = nil
	p.SkipReplyReason = &reason
}
