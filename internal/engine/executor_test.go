package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/taskpulse/internal/domain"
	"github.com/mtlprog/taskpulse/internal/engine"
	"github.com/mtlprog/taskpulse/internal/messaging"
)

func newExecutor(store *memStore, d *recordingDispatcher) *engine.Executor {
	return engine.NewExecutor(store, store, memSettings{store}, memAudit{store}, memMessages{store}, d,
		func() time.Time { return workTime })
}

func completedPlan(taskID string) *engine.ActionPlan {
	status := domain.TaskStatusCompleted
	reply := "Noted."
	return &engine.ActionPlan{
		Classification: domain.Classification{Intent: domain.IntentDone},
		TargetTaskID:   &taskID,
		Mutations: []engine.Mutation{engine.TaskMutation{
			TaskID:     taskID,
			AssigneeID: userID,
			Update:     domain.TaskUpdate{Status: &status},
		}},
		Reply: &reply,
		Events: []engine.Event{
			{Kind: engine.EventInbound, Description: "Received: done", Metadata: map[string]any{"text": "done"}},
			{Kind: engine.EventOutbound, Description: "Replying: Noted."},
		},
	}
}

func seededStore() *memStore {
	store := newMemStore()
	store.users[userID] = &domain.User{ID: userID, Name: "Dana", MessageHandle: strPtr("+15550100")}
	store.settings[userID] = &domain.AISettings{UserID: userID, Timezone: "UTC", IncludeWeekends: true}
	store.tasks = append(store.tasks, &domain.Task{ID: "task-1", AssigneeID: userID, Status: domain.TaskStatusPending})
	return store
}

func TestExecute_AppliesEverything(t *testing.T) {
	store := seededStore()
	d := &recordingDispatcher{result: messaging.SendResult{Success: true, MessageID: "wamid.9"}}

	err := newExecutor(store, d).Execute(context.Background(), completedPlan("task-1"), userID)
	require.NoError(t, err)

	assert.Equal(t, domain.TaskStatusCompleted, store.task("task-1").Status)
	require.Len(t, store.audit, 2)
	assert.Equal(t, "AI_INBOUND", store.audit[0].Action)
	assert.Equal(t, "Received: done", store.audit[0].Details["description"])
	assert.Equal(t, userID, store.audit[0].Details["user_id"])
	assert.Contains(t, store.audit[0].Details, "metadata")
	assert.Equal(t, "AI_OUTBOUND", store.audit[1].Action)
	assert.NotContains(t, store.audit[1].Details, "metadata")

	require.Len(t, d.sent, 1)
	require.Len(t, store.messages, 1)
	assert.Equal(t, domain.DirectionOutbound, store.messages[0].Direction)
	assert.Equal(t, domain.MessageStatusSent, store.messages[0].Status)
	assert.Equal(t, "Noted.", store.messages[0].Content)
	assert.Equal(t, workTime, store.lastActive[userID])
}

func TestExecute_ContinuesAfterMutationFailure(t *testing.T) {
	store := seededStore()
	store.failTaskUpdate = true
	d := &recordingDispatcher{result: messaging.SendResult{Success: true}}

	err := newExecutor(store, d).Execute(context.Background(), completedPlan("task-1"), userID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update task task-1")

	assert.Len(t, store.audit, 2)
	assert.Len(t, d.sent, 1)
	assert.Contains(t, store.lastActive, userID)
}

func TestExecute_ContinuesAfterAuditFailure(t *testing.T) {
	store := seededStore()
	store.failAudit = true
	d := &recordingDispatcher{result: messaging.SendResult{Success: true}}

	err := newExecutor(store, d).Execute(context.Background(), completedPlan("task-1"), userID)
	require.Error(t, err)

	assert.Equal(t, domain.TaskStatusCompleted, store.task("task-1").Status)
	assert.Len(t, d.sent, 1)
}

func TestExecute_ForeignTaskIsRejected(t *testing.T) {
	store := seededStore()
	store.tasks[0].AssigneeID = "someone-else"
	d := &recordingDispatcher{result: messaging.SendResult{Success: true}}

	err := newExecutor(store, d).Execute(context.Background(), completedPlan("task-1"), userID)
	assert.ErrorIs(t, err, domain.ErrTaskNotOwned)
	assert.Equal(t, domain.TaskStatusPending, store.task("task-1").Status)
}

func TestExecute_DispatchFailureKeepsMutations(t *testing.T) {
	store := seededStore()
	d := &recordingDispatcher{result: messaging.SendResult{Success: false, Error: "recipient not in allowed list"}}

	err := newExecutor(store, d).Execute(context.Background(), completedPlan("task-1"), userID)
	assert.ErrorIs(t, err, engine.ErrDispatchFailed)

	assert.Equal(t, domain.TaskStatusCompleted, store.task("task-1").Status)
	require.Len(t, store.messages, 1)
	assert.Equal(t, domain.MessageStatusFailed, store.messages[0].Status)
}

func TestExecute_NoHandleSkipsDispatch(t *testing.T) {
	store := seededStore()
	store.users[userID].MessageHandle = nil
	d := &recordingDispatcher{result: messaging.SendResult{Success: true}}

	err := newExecutor(store, d).Execute(context.Background(), completedPlan("task-1"), userID)
	require.NoError(t, err)

	assert.Empty(t, d.sent)
	assert.Empty(t, store.messages)
}

func TestExecute_SkippedReply(t *testing.T) {
	store := seededStore()
	d := &recordingDispatcher{result: messaging.SendResult{Success: true}}

	plan := completedPlan("task-1")
	plan.Reply = nil
	reason := "Weekend Mode"
	plan.SkipReplyReason = &reason

	err := newExecutor(store, d).Execute(context.Background(), plan, userID)
	require.NoError(t, err)

	assert.Empty(t, d.sent)
	assert.Equal(t, domain.TaskStatusCompleted, store.task("task-1").Status)
	assert.Contains(t, store.lastActive, userID)
}

func TestExecute_EmptyUpdateIsSkipped(t *testing.T) {
	store := seededStore()
	store.failTaskUpdate = true
	d := &recordingDispatcher{result: messaging.SendResult{Success: true}}

	plan := completedPlan("task-1")
	plan.Mutations = []engine.Mutation{engine.TaskMutation{TaskID: "task-1", AssigneeID: userID}}

	err := newExecutor(store, d).Execute(context.Background(), plan, userID)
	require.NoError(t, err)
}

func TestExecute_NoSettingsRowIsNotCreated(t *testing.T) {
	store := seededStore()
	delete(store.settings, userID)
	d := &recordingDispatcher{result: messaging.SendResult{Success: true}}

	err := newExecutor(store, d).Execute(context.Background(), completedPlan("task-1"), userID)
	require.NoError(t, err)

	assert.NotContains(t, store.settings, userID)
	assert.NotContains(t, store.lastActive, userID)
}
