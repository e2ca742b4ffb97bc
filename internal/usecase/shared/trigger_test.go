package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/testutil"
)

func linkedSession() *domain.AgentSession {
	return &domain.AgentSession{
		Tool:       domain.ToolClaudeCode,
		Ref:        "0f6b2c1e-5a4d-4c3b-9e8f-7a6b5c4d3e2f",
		RefType:    domain.RefTypeUUID,
		WorkingDir: "/work/repo",
	}
}

func newTriggerFixture(t *testing.T, mode domain.ResumeMode, column domain.Column, session *domain.AgentSession) (*testutil.MockStore, *MentionTrigger, *domain.Task) {
	t.Helper()
	store := testutil.NewMockStore()
	board := store.AddBoard(&domain.Board{Prefix: "WRK", ResumeMode: mode})
	task := store.AddTask(&domain.Task{BoardID: board.ID, Title: "Blocked task", Column: column, AgentSession: session})
	return store, NewMentionTrigger(store, store), task
}

func humanComment(taskID, content string) *domain.Comment {
	return &domain.Comment{TaskID: taskID, Content: content, AuthorType: domain.AuthorHuman}
}

func TestMentionTrigger_ManualSurfacesOnly(t *testing.T) {
	_, trigger, task := newTriggerFixture(t, domain.ResumeModeManual, domain.ColumnNeedInput, linkedSession())

	eval, err := trigger.Evaluate(context.Background(), humanComment(task.ID, "Please @agent continue"))

	require.NoError(t, err)
	assert.Equal(t, domain.TriggerSurface, eval.Decision.Action)
	assert.Equal(t, domain.ReasonManualMode, eval.Decision.Reason)
	assert.Equal(t, []string{"@agent"}, eval.Decision.Mentions)
	assert.Equal(t, task.ID, eval.Task.ID)
	require.NotNil(t, eval.Board)
}

func TestMentionTrigger_AutoExecutesOnlyWithSession(t *testing.T) {
	_, trigger, task := newTriggerFixture(t, domain.ResumeModeAuto, domain.ColumnNeedInput, linkedSession())
	eval, err := trigger.Evaluate(context.Background(), humanComment(task.ID, "@agent, done: see PR"))
	require.NoError(t, err)
	assert.Equal(t, domain.TriggerExecute, eval.Decision.Action)
	assert.Equal(t, domain.ReasonAutoMode, eval.Decision.Reason)

	_, trigger, task = newTriggerFixture(t, domain.ResumeModeAuto, domain.ColumnNeedInput, nil)
	eval, err = trigger.Evaluate(context.Background(), humanComment(task.ID, "@agent, done: see PR"))
	require.NoError(t, err)
	assert.Equal(t, domain.TriggerNoop, eval.Decision.Action)
	assert.Equal(t, domain.ReasonNoSession, eval.Decision.Reason)
}

func TestMentionTrigger_CommandModeNeverActs(t *testing.T) {
	_, trigger, task := newTriggerFixture(t, domain.ResumeModeCommand, domain.ColumnNeedInput, linkedSession())

	eval, err := trigger.Evaluate(context.Background(), humanComment(task.ID, "@agent go"))

	require.NoError(t, err)
	assert.False(t, eval.Decision.Fires())
	assert.Equal(t, domain.ReasonCommandMode, eval.Decision.Reason)
}

func TestMentionTrigger_NotBlocked(t *testing.T) {
	for _, column := range domain.AllColumns() {
		if column == domain.ColumnNeedInput {
			continue
		}
		t.Run(string(column), func(t *testing.T) {
			_, trigger, task := newTriggerFixture(t, domain.ResumeModeAuto, column, linkedSession())

			eval, err := trigger.Evaluate(context.Background(), humanComment(task.ID, "@agent"))

			require.NoError(t, err)
			assert.Equal(t, domain.TriggerNoop, eval.Decision.Action)
			assert.Equal(t, domain.ReasonNotBlocked, eval.Decision.Reason)
		})
	}
}

func TestMentionTrigger_WithoutMentionNeverFires(t *testing.T) {
	contents := []string{
		"please continue",
		"@Agent continue",
		"@agents continue",
		"email agent@example.com",
		"@reviewer take a look",
		"",
	}
	for _, mode := range domain.AllResumeModes() {
		for _, column := range domain.AllColumns() {
			for _, session := range []*domain.AgentSession{nil, linkedSession()} {
				_, trigger, task := newTriggerFixture(t, mode, column, session)
				for _, content := range contents {
					eval, err := trigger.Evaluate(context.Background(), humanComment(task.ID, content))
					require.NoError(t, err)
					assert.False(t, eval.Decision.Fires(), "mode=%s column=%s content=%q", mode, column, content)
				}
			}
		}
	}
}

func TestMentionTrigger_AgentAuthorIgnored(t *testing.T) {
	_, trigger, task := newTriggerFixture(t, domain.ResumeModeAuto, domain.ColumnNeedInput, linkedSession())
	comment := &domain.Comment{TaskID: task.ID, Content: "@agent ping", AuthorType: domain.AuthorAgent}

	eval, err := trigger.Evaluate(context.Background(), comment)

	require.NoError(t, err)
	assert.Equal(t, domain.TriggerNoop, eval.Decision.Action)
	assert.Equal(t, domain.ReasonAgentAuthor, eval.Decision.Reason)
	assert.Nil(t, eval.Task)
}

func TestMentionTrigger_MissingTask(t *testing.T) {
	store := testutil.NewMockStore()
	trigger := NewMentionTrigger(store, store)

	eval, err := trigger.Evaluate(context.Background(), humanComment("gone", "@agent"))

	require.NoError(t, err)
	assert.Equal(t, domain.ReasonNotBlocked, eval.Decision.Reason)
}

func TestMentionTrigger_PerformsNoWrites(t *testing.T) {
	store, trigger, task := newTriggerFixture(t, domain.ResumeModeAuto, domain.ColumnNeedInput, linkedSession())
	store.CreateErr = assert.AnError
	store.UpdateErr = assert.AnError
	store.SessionsErr = assert.AnError
	comment := humanComment(task.ID, "@agent resume")

	first, err := trigger.Evaluate(context.Background(), comment)
	require.NoError(t, err)
	second, err := trigger.Evaluate(context.Background(), comment)
	require.NoError(t, err)

	assert.Equal(t, first.Decision, second.Decision)
	assert.Equal(t, domain.ColumnNeedInput, store.Tasks[task.ID].Column)
}

func TestMentionTrigger_StoreError(t *testing.T) {
	store, trigger, task := newTriggerFixture(t, domain.ResumeModeAuto, domain.ColumnNeedInput, linkedSession())
	store.GetErr = assert.AnError

	_, err := trigger.Evaluate(context.Background(), humanComment(task.ID, "@agent"))

	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "get task")
}
