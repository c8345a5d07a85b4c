package engine_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/taskpulse/internal/ai"
	"github.com/mtlprog/taskpulse/internal/domain"
	"github.com/mtlprog/taskpulse/internal/engine"
	"github.com/mtlprog/taskpulse/internal/messaging"
)

const userID = "00000000-0000-0000-0000-000000000021"

// Tuesday 2026-03-10 10:00 UTC is inside 09:00-17:00 work hours.
var (
	workTime     = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	eveningTime  = time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	saturdayTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
)

func strPtr(s string) *string { return &s }

// staticClassifier returns a fixed classification.
type staticClassifier struct{ c domain.Classification }

func (s staticClassifier) Classify(context.Context, string, []*domain.Task) (domain.Classification, error) {
	return s.c, nil
}

type fixture struct {
	store      *memStore
	dispatcher *recordingDispatcher
	engine     *engine.Engine
}

func newFixture(t *testing.T, opts engine.Options, classifier ai.Classifier) *fixture {
	t.Helper()

	store := newMemStore()
	store.users[userID] = &domain.User{ID: userID, Name: "Dana", MessageHandle: strPtr("+15550100"), Role: domain.RoleStaff}
	store.settings[userID] = &domain.AISettings{
		UserID:         userID,
		Personality:    domain.PersonalityFriendly,
		WorkHoursStart: strPtr("09:00"),
		WorkHoursEnd:   strPtr("17:00"),
		Timezone:       "UTC",
	}

	if classifier == nil {
		classifier = ai.NewClassifier(nil)
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return workTime }
	}

	dispatcher := &recordingDispatcher{result: messaging.SendResult{Success: true, MessageID: "wamid.1"}}
	executor := engine.NewExecutor(store, store, memSettings{store}, memAudit{store}, memMessages{store}, dispatcher, opts.Now)

	eng := engine.New(engine.Deps{
		Users:      store,
		Tasks:      store,
		Settings:   memSettings{store},
		Messages:   memMessages{store},
		Classifier: classifier,
		Generator:  ai.NewGenerator(nil),
		Executor:   executor,
	}, opts)

	return &fixture{store: store, dispatcher: dispatcher, engine: eng}
}

func (f *fixture) addTask(id string, status domain.TaskStatus) *domain.Task {
	t := &domain.Task{
		ID:         id,
		Title:      "Task " + id,
		AssigneeID: userID,
		CreatorID:  "admin",
		Deadline:   workTime.Add(72 * time.Hour),
		Status:     status,
	}
	f.store.tasks = append(f.store.tasks, t)
	return t
}

func at(t time.Time) engine.PlanOptions { return engine.PlanOptions{Now: &t} }

func taskMutation(t *testing.T, m engine.Mutation) engine.TaskMutation {
	t.Helper()
	tm, ok := m.(engine.TaskMutation)
	require.True(t, ok, "expected TaskMutation, got %T", m)
	return tm
}

func eventKinds(plan *engine.ActionPlan) []engine.EventKind {
	kinds := make([]engine.EventKind, 0, len(plan.Events))
	for _, e := range plan.Events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func TestCreatePlan_DoneDuringWorkHours(t *testing.T) {
	f := newFixture(t, engine.Options{}, nil)
	f.addTask("task-1", domain.TaskStatusPending)

	plan, err := f.engine.CreatePlan(context.Background(), userID, "done", at(workTime))
	require.NoError(t, err)

	assert.Equal(t, domain.IntentDone, plan.Classification.Intent)
	require.Len(t, plan.Mutations, 1)
	m := taskMutation(t, plan.Mutations[0])
	assert.Equal(t, "task-1", m.TaskID)
	assert.Equal(t, userID, m.AssigneeID)
	require.NotNil(t, m.Update.Status)
	assert.Equal(t, domain.TaskStatusCompleted, *m.Update.Status)
	assert.False(t, m.Update.ClearBlockerReason)

	require.NotNil(t, plan.Reply)
	assert.Equal(t, ai.ReplyDoneFriendly, *plan.Reply)
	assert.Nil(t, plan.SkipReplyReason)

	assert.Equal(t, []engine.EventKind{engine.EventInbound, engine.EventInternal, engine.EventOutbound}, eventKinds(plan))
	assert.Equal(t, "Marking task task-1 as COMPLETED", plan.Events[1].Description)
	assert.Equal(t, domain.IntentDone, plan.Events[0].Metadata["intent"])
	assert.Equal(t, "done", plan.Events[0].Metadata["text"])

	// Dry run leaves state untouched
	assert.Equal(t, domain.TaskStatusPending, f.store.task("task-1").Status)
}

func TestCreatePlan_BlockOutsideWorkHours(t *testing.T) {
	f := newFixture(t, engine.Options{}, nil)
	f.addTask("task-1", domain.TaskStatusConfirmed)

	plan, err := f.engine.CreatePlan(context.Background(), userID, "stuck on approval", at(eveningTime))
	require.NoError(t, err)

	require.Len(t, plan.Mutations, 1)
	m := taskMutation(t, plan.Mutations[0])
	assert.Equal(t, domain.TaskStatusBlocked, *m.Update.Status)
	require.NotNil(t, m.Update.BlockerReason)
	assert.Equal(t, "stuck on approval", *m.Update.BlockerReason)

	assert.Nil(t, plan.Reply)
	require.NotNil(t, plan.SkipReplyReason)
	assert.Equal(t, "Outside Work Hours", *plan.SkipReplyReason)
	assert.NotContains(t, eventKinds(plan), engine.EventOutbound)
}

func TestCreatePlan_BlockWithoutReasonUsesDefault(t *testing.T) {
	f := newFixture(t, engine.Options{}, staticClassifier{domain.Classification{Intent: domain.IntentBlock, Confidence: 0.9}})
	f.addTask("task-1", domain.TaskStatusPending)

	plan, err := f.engine.CreatePlan(context.Background(), userID, "ugh", at(workTime))
	require.NoError(t, err)

	m := taskMutation(t, plan.Mutations[0])
	assert.Equal(t, "User reported block", *m.Update.BlockerReason)
}

func TestCreatePlan_StopOnSaturday(t *testing.T) {
	f := newFixture(t, engine.Options{}, nil)
	f.addTask("task-1", domain.TaskStatusPending)

	plan, err := f.engine.CreatePlan(context.Background(), userID, "stop", at(saturdayTime))
	require.NoError(t, err)

	assert.Equal(t, domain.IntentStop, plan.Classification.Intent)
	assert.Empty(t, plan.Mutations)
	require.NotNil(t, plan.Reply)
	assert.Equal(t, engine.StopReply, *plan.Reply)
	assert.Nil(t, plan.SkipReplyReason)
	assert.Nil(t, plan.TargetTaskID)
}

func TestCreatePlan_WeekendMode(t *testing.T) {
	f := newFixture(t, engine.Options{}, nil)
	f.addTask("task-1", domain.TaskStatusPending)

	plan, err := f.engine.CreatePlan(context.Background(), userID, "ok", at(saturdayTime))
	require.NoError(t, err)

	assert.Len(t, plan.Mutations, 1)
	assert.Nil(t, plan.Reply)
	assert.Equal(t, "Weekend Mode", *plan.SkipReplyReason)
}

func TestCreatePlan_RescheduleBypassesGate(t *testing.T) {
	deadline := time.Date(2026, 3, 20, 17, 0, 0, 0, time.UTC)
	f := newFixture(t, engine.Options{}, staticClassifier{domain.Classification{
		Intent:      domain.IntentReschedule,
		NewDeadline: &deadline,
		Confidence:  0.9,
	}})
	f.addTask("task-1", domain.TaskStatusConfirmed)

	plan, err := f.engine.CreatePlan(context.Background(), userID, "can we move it to the 20th", at(saturdayTime))
	require.NoError(t, err)

	require.Len(t, plan.Mutations, 1)
	m := taskMutation(t, plan.Mutations[0])
	require.NotNil(t, m.Update.Deadline)
	assert.True(t, deadline.Equal(*m.Update.Deadline))
	assert.Nil(t, m.Update.Status)
	assert.Equal(t, "Rescheduling task task-1 to 2026-03-20T17:00:00Z", plan.Events[1].Description)
	require.NotNil(t, plan.Reply)
}

func TestCreatePlan_RescheduleWithoutDeadline(t *testing.T) {
	f := newFixture(t, engine.Options{}, nil)
	f.addTask("task-1", domain.TaskStatusConfirmed)

	plan, err := f.engine.CreatePlan(context.Background(), userID, "tomorrow", at(eveningTime))
	require.NoError(t, err)

	assert.Equal(t, domain.IntentReschedule, plan.Classification.Intent)
	assert.Empty(t, plan.Mutations)
	require.NotNil(t, plan.Reply)
	assert.Equal(t, ai.ReplyGeneric, *plan.Reply)
}

func TestCreatePlan_ConfirmOnlyFromPending(t *testing.T) {
	f := newFixture(t, engine.Options{}, nil)
	f.addTask("task-1", domain.TaskStatusPending)

	plan, err := f.engine.CreatePlan(context.Background(), userID, "will do", at(workTime))
	require.NoError(t, err)
	require.Len(t, plan.Mutations, 1)
	assert.Equal(t, domain.TaskStatusConfirmed, *taskMutation(t, plan.Mutations[0]).Update.Status)
	assert.Equal(t, "Marking task task-1 as CONFIRMED", plan.Events[1].Description)

	g := newFixture(t, engine.Options{}, nil)
	g.addTask("task-2", domain.TaskStatusAtRisk)

	plan, err = g.engine.CreatePlan(context.Background(), userID, "will do", at(workTime))
	require.NoError(t, err)
	assert.Empty(t, plan.Mutations)
	assert.Equal(t, []engine.EventKind{engine.EventInbound, engine.EventOutbound}, eventKinds(plan))
}

func TestCreatePlan_FirstTaskFallback(t *testing.T) {
	f := newFixture(t, engine.Options{}, nil)
	f.addTask("task-newest", domain.TaskStatusPending)
	f.addTask("task-older", domain.TaskStatusPending)

	plan, err := f.engine.CreatePlan(context.Background(), userID, "done", at(workTime))
	require.NoError(t, err)

	require.Len(t, plan.Mutations, 1)
	assert.Equal(t, "task-newest", taskMutation(t, plan.Mutations[0]).TaskID)
	require.NotNil(t, plan.TargetTaskID)
	assert.Equal(t, "task-newest", *plan.TargetTaskID)
}

func TestCreatePlan_CandidateSelectsTask(t *testing.T) {
	f := newFixture(t, engine.Options{}, staticClassifier{domain.Classification{
		Intent:         domain.IntentDone,
		TaskCandidates: []string{"task-foreign", "task-2"},
		Confidence:     0.9,
		Source:         domain.SourceRemote,
	}})
	f.addTask("task-1", domain.TaskStatusPending)
	f.addTask("task-2", domain.TaskStatusConfirmed)

	plan, err := f.engine.CreatePlan(context.Background(), userID, "contract is done", at(workTime))
	require.NoError(t, err)

	require.Len(t, plan.Mutations, 1)
	assert.Equal(t, "task-2", taskMutation(t, plan.Mutations[0]).TaskID)
}

func TestCreatePlan_ClarifyPolicy(t *testing.T) {
	f := newFixture(t, engine.Options{Policy: engine.PolicyClarify}, nil)
	f.addTask("task-1", domain.TaskStatusPending)
	f.addTask("task-2", domain.TaskStatusPending)

	plan, err := f.engine.CreatePlan(context.Background(), userID, "done", at(workTime))
	require.NoError(t, err)

	assert.Equal(t, domain.IntentAmbiguous, plan.Classification.Intent)
	assert.Empty(t, plan.Mutations)
	assert.Nil(t, plan.TargetTaskID)
	assert.Equal(t, domain.IntentDone, plan.Events[1].Metadata["original_intent"])
	require.NotNil(t, plan.Reply)
}

func TestCreatePlan_ClarifyPolicySingleTask(t *testing.T) {
	f := newFixture(t, engine.Options{Policy: engine.PolicyClarify}, nil)
	f.addTask("task-1", domain.TaskStatusPending)

	plan, err := f.engine.CreatePlan(context.Background(), userID, "done", at(workTime))
	require.NoError(t, err)

	assert.Equal(t, domain.IntentDone, plan.Classification.Intent)
	assert.Len(t, plan.Mutations, 1)
}

func TestCreatePlan_DoneClearsBlockerReason(t *testing.T) {
	f := newFixture(t, engine.Options{}, nil)
	task := f.addTask("task-1", domain.TaskStatusBlocked)
	task.BlockerReason = strPtr("waiting on legal")

	plan, err := f.engine.CreatePlan(context.Background(), userID, "finished", at(workTime))
	require.NoError(t, err)

	m := taskMutation(t, plan.Mutations[0])
	assert.True(t, m.Update.ClearBlockerReason)
}

func TestCreatePlan_NoOpenTasks(t *testing.T) {
	f := newFixture(t, engine.Options{}, nil)
	f.addTask("task-done", domain.TaskStatusCompleted)

	plan, err := f.engine.CreatePlan(context.Background(), userID, "done", at(workTime))
	require.NoError(t, err)

	assert.Empty(t, plan.Mutations)
	assert.Nil(t, plan.TargetTaskID)
	assert.Contains(t, eventKinds(plan), engine.EventInternal)
	require.NotNil(t, plan.Reply)
}

func TestCreatePlan_QueryHasNoTarget(t *testing.T) {
	f := newFixture(t, engine.Options{}, nil)
	f.addTask("task-1", domain.TaskStatusPending)

	plan, err := f.engine.CreatePlan(context.Background(), userID, "what is my task today?", at(workTime))
	require.NoError(t, err)

	assert.Equal(t, domain.IntentQuery, plan.Classification.Intent)
	assert.Empty(t, plan.Mutations)
	assert.Nil(t, plan.TargetTaskID)
	assert.Equal(t, "User asked about their tasks", plan.Events[1].Description)
}

func TestCreatePlan_UserNotFound(t *testing.T) {
	f := newFixture(t, engine.Options{}, nil)

	_, err := f.engine.CreatePlan(context.Background(), "missing", "done", engine.PlanOptions{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCreatePlan_NoSettingsAlwaysReplies(t *testing.T) {
	f := newFixture(t, engine.Options{}, nil)
	delete(f.store.settings, userID)
	f.addTask("task-1", domain.TaskStatusPending)

	plan, err := f.engine.CreatePlan(context.Background(), userID, "done", at(saturdayTime))
	require.NoError(t, err)

	require.NotNil(t, plan.Reply)
	assert.Equal(t, ai.ReplyDoneNeutral, *plan.Reply)
}

func TestProcessMessage_NoSettingsStaysUnrestricted(t *testing.T) {
	f := newFixture(t, engine.Options{Now: func() time.Time { return saturdayTime }}, nil)
	delete(f.store.settings, userID)
	f.addTask("task-1", domain.TaskStatusPending)
	f.addTask("task-2", domain.TaskStatusPending)

	ctx := context.Background()
	require.NoError(t, f.engine.ProcessMessage(ctx, userID, "done"))
	require.NoError(t, f.engine.ProcessMessage(ctx, userID, "done"))

	assert.Len(t, f.dispatcher.sent, 2)
	assert.NotContains(t, f.store.settings, userID)
}

// capturingGenerator records the context of the last reply it was asked for.
type capturingGenerator struct{ last ai.ReplyContext }

func (g *capturingGenerator) Generate(_ context.Context, _ domain.Personality, rc ai.ReplyContext) (string, error) {
	g.last = rc
	return "ok", nil
}

func TestCreatePlan_PassesMessageToGenerator(t *testing.T) {
	f := newFixture(t, engine.Options{}, nil)
	f.addTask("task-1", domain.TaskStatusPending)

	gen := &capturingGenerator{}
	eng := engine.New(engine.Deps{
		Users:      f.store,
		Tasks:      f.store,
		Settings:   memSettings{f.store},
		Messages:   memMessages{f.store},
		Classifier: ai.NewClassifier(nil),
		Generator:  gen,
	}, engine.Options{Now: func() time.Time { return workTime }})

	_, err := eng.CreatePlan(context.Background(), userID, "stuck waiting on legal", engine.PlanOptions{})
	require.NoError(t, err)

	assert.Equal(t, "stuck waiting on legal", gen.last.Message)
	assert.Equal(t, "Dana", gen.last.UserName)
}

func TestCreatePlan_UsesEngineClock(t *testing.T) {
	f := newFixture(t, engine.Options{Now: func() time.Time { return eveningTime }}, nil)
	f.addTask("task-1", domain.TaskStatusPending)

	plan, err := f.engine.CreatePlan(context.Background(), userID, "ok", engine.PlanOptions{})
	require.NoError(t, err)
	assert.Nil(t, plan.Reply)
}

func TestActionPlan_JSON(t *testing.T) {
	f := newFixture(t, engine.Options{}, nil)
	f.addTask("task-1", domain.TaskStatusPending)

	plan, err := f.engine.CreatePlan(context.Background(), userID, "done", at(workTime))
	require.NoError(t, err)

	raw, err := json.Marshal(plan)
	require.NoError(t, err)

	var decoded struct {
		DBUpdates []struct {
			Entity string         `json:"entity"`
			ID     string         `json:"id"`
			Data   map[string]any `json:"data"`
		} `json:"db_updates"`
		Reply *string `json:"reply"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.DBUpdates, 1)
	assert.Equal(t, "task", decoded.DBUpdates[0].Entity)
	assert.Equal(t, "task-1", decoded.DBUpdates[0].ID)
	assert.Equal(t, "completed", decoded.DBUpdates[0].Data["status"])
	require.NotNil(t, decoded.Reply)
}

func TestProcessMessage_AppliesPlan(t *testing.T) {
	f := newFixture(t, engine.Options{}, nil)
	f.addTask("task-1", domain.TaskStatusPending)

	err := f.engine.ProcessMessage(context.Background(), userID, "done")
	require.NoError(t, err)

	assert.Equal(t, domain.TaskStatusCompleted, f.store.task("task-1").Status)
	require.Len(t, f.dispatcher.sent, 1)
	assert.Equal(t, "+15550100", f.dispatcher.sent[0].handle)
	assert.Equal(t, ai.ReplyDoneFriendly, f.dispatcher.sent[0].body)
	assert.Equal(t, workTime, f.store.lastActive[userID])

	actions := make([]string, 0, len(f.store.audit))
	for _, e := range f.store.audit {
		actions = append(actions, e.Action)
		require.NotNil(t, e.TaskID)
		assert.Equal(t, "task-1", *e.TaskID)
	}
	assert.Equal(t, []string{"AI_INBOUND", "AI_INTERNAL", "AI_OUTBOUND"}, actions)
}

func TestProcessMessage_UserNotFound(t *testing.T) {
	f := newFixture(t, engine.Options{}, nil)

	err := f.engine.ProcessMessage(context.Background(), "missing", "done")
	assert.True(t, errors.Is(err, domain.ErrUserNotFound))
	assert.Empty(t, f.store.audit)
}
