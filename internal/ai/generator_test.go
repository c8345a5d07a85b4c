package ai_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/taskpulse/internal/ai"
	"github.com/mtlprog/taskpulse/internal/domain"
)

func TestTemplateReply(t *testing.T) {
	tests := []struct {
		personality domain.Personality
		intent      domain.Intent
		want        string
	}{
		{domain.PersonalityFriendly, domain.IntentDone, ai.ReplyDoneFriendly},
		{domain.PersonalityProfessional, domain.IntentDone, ai.ReplyDoneNeutral},
		{domain.PersonalityStrict, domain.IntentDone, ai.ReplyDoneNeutral},
		{domain.PersonalityFriendly, domain.IntentBlock, ai.ReplyBlockFriendly},
		{domain.PersonalityStrict, domain.IntentBlock, ai.ReplyBlockNeutral},
		{domain.PersonalityFriendly, domain.IntentConfirm, ai.ReplyGeneric},
		{domain.PersonalityProfessional, domain.IntentUnclear, ai.ReplyGeneric},
		{"", domain.IntentQuery, ai.ReplyGeneric},
	}

	for _, tt := range tests {
		t.Run(string(tt.personality)+"/"+string(tt.intent), func(t *testing.T) {
			assert.Equal(t, tt.want, ai.TemplateReply(tt.personality, tt.intent))
		})
	}
}

func TestRemoteGenerator_BuildsPrompt(t *testing.T) {
	chat := &fakeChat{content: "Nice work, Dana!"}
	g := ai.NewRemoteGenerator(chat)
	deadline := time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)
	tasks := openTasks()

	reply, err := g.Generate(context.Background(), domain.PersonalityStrict, ai.ReplyContext{
		UserName:  "Dana",
		Message:   "can we push it to the 20th?",
		Task:      tasks[0],
		Intent:    domain.IntentReschedule,
		Data:      ai.ReplyData{NewDeadline: &deadline},
		OpenTasks: tasks,
		History: []ai.Turn{
			{Role: ai.RoleUser, Content: "hi"},
			{Role: ai.RoleAssistant, Content: "hello"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Nice work, Dana!", reply)

	msgs := chat.last.Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, ai.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "strict")
	assert.Equal(t, ai.RoleUser, msgs[1].Role)
	assert.Equal(t, ai.RoleAssistant, msgs[2].Role)
	assert.Contains(t, msgs[3].Content, "Dana")
	assert.Contains(t, msgs[3].Content, `- Message: "can we push it to the 20th?"`)
	assert.Contains(t, msgs[3].Content, "Quarterly report")
	assert.Contains(t, msgs[3].Content, "RESCHEDULE")
	assert.Contains(t, msgs[3].Content, "2026-03-20T09:00:00Z")
	assert.EqualValues(t, 60, chat.last.MaxTokens)
	assert.False(t, chat.last.JSON)
}

func TestGeneratorWithFallback(t *testing.T) {
	ctx := context.Background()
	rc := ai.ReplyContext{UserName: "Dana", Intent: domain.IntentDone}

	failing := ai.NewGenerator(&fakeChat{err: errors.New("timeout")})
	reply, err := failing.Generate(ctx, domain.PersonalityFriendly, rc)
	require.NoError(t, err)
	assert.Equal(t, ai.ReplyDoneFriendly, reply)

	empty := ai.NewGenerator(&fakeChat{content: ""})
	reply, err = empty.Generate(ctx, domain.PersonalityProfessional, rc)
	require.NoError(t, err)
	assert.Equal(t, ai.ReplyDoneNeutral, reply)

	working := ai.NewGenerator(&fakeChat{content: "Well done."})
	reply, err = working.Generate(ctx, domain.PersonalityProfessional, rc)
	require.NoError(t, err)
	assert.Equal(t, "Well done.", reply)

	offline := ai.NewGenerator(nil)
	reply, err = offline.Generate(ctx, domain.PersonalityStrict, ai.ReplyContext{Intent: domain.IntentBlock})
	require.NoError(t, err)
	assert.Equal(t, ai.ReplyBlockNeutral, reply)
}
