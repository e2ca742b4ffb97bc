package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/crewboard/internal/domain"
)

func newLinkSession(f *fixture) *LinkSession {
	return NewLinkSession(f.resolver, f.registry, f.store, f.store, f.locker, f.logger)
}

func TestLinkSession_Execute(t *testing.T) {
	// Setup
	f := newFixture(t, domain.ResumeModeManual)
	task := f.addTask("Task", domain.ColumnInProgress)

	// Execute
	out, err := newLinkSession(f).Execute(context.Background(), LinkSessionInput{
		Reference:  "WRK-1",
		Tool:       "claude",
		SessionRef: "/home/me/.claude/projects/x/abc.jsonl",
		WorkingDir: "/work/repo",
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.SessionActive, out.Record.Status)
	assert.Equal(t, domain.RefTypePath, out.Record.RefType)
	session := f.store.Tasks[task.ID].AgentSession
	require.NotNil(t, session)
	assert.Equal(t, domain.ToolClaudeCode, session.Tool)
	assert.Equal(t, f.clock.NowTime, session.LinkedAt)
	assert.Equal(t, 1, f.locker.lockCalls())
}

func TestLinkSession_RelinkPausesPrevious(t *testing.T) {
	f := newFixture(t, domain.ResumeModeManual)
	task := f.addTask("Task", domain.ColumnInProgress)
	uc := newLinkSession(f)
	ctx := context.Background()

	_, err := uc.Execute(ctx, LinkSessionInput{Reference: "WRK-1", Tool: "opencode", SessionRef: "ses_1", WorkingDir: "/w"})
	require.NoError(t, err)
	_, err = uc.Execute(ctx, LinkSessionInput{Reference: "WRK-1", Tool: "codex", SessionRef: "0199", RefType: "UUID", WorkingDir: "/w"})
	require.NoError(t, err)

	history := f.history(t, task)
	require.Len(t, history, 2)
	assert.Equal(t, domain.SessionPaused, history[0].Status)
	assert.Equal(t, domain.SessionActive, history[1].Status)
	assert.Equal(t, domain.ToolCodex, f.store.Tasks[task.ID].AgentSession.Tool)
}

func TestLinkSession_BlockedTaskStartsPaused(t *testing.T) {
	f := newFixture(t, domain.ResumeModeAuto)
	task := f.addTask("Task", domain.ColumnNeedInput)

	out, err := newLinkSession(f).Execute(context.Background(), LinkSessionInput{
		Reference:  "WRK-1",
		Tool:       "codex",
		SessionRef: "0199-abc",
		WorkingDir: "/w",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.SessionPaused, out.Record.Status)
	history := f.history(t, task)
	require.Len(t, history, 1)
	assert.Equal(t, domain.SessionPaused, history[0].Status)
	assert.NotNil(t, f.store.Tasks[task.ID].AgentSession)
}

func TestLinkSession_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      LinkSessionInput
		wantErr error
	}{
		{name: "unknown tool", in: LinkSessionInput{Reference: "WRK-1", Tool: "cursor", SessionRef: "x", WorkingDir: "/w"}, wantErr: domain.ErrUnsupportedTool},
		{name: "empty ref", in: LinkSessionInput{Reference: "WRK-1", Tool: "codex", SessionRef: " ", WorkingDir: "/w"}, wantErr: domain.ErrEmptySessionRef},
		{name: "relative dir", in: LinkSessionInput{Reference: "WRK-1", Tool: "codex", SessionRef: "x", WorkingDir: "repo"}, wantErr: domain.ErrRelativeWorkingDir},
		{name: "bad ref type", in: LinkSessionInput{Reference: "WRK-1", Tool: "codex", SessionRef: "x", RefType: "url", WorkingDir: "/w"}, wantErr: domain.ErrInvalidRefType},
		{name: "unknown task", in: LinkSessionInput{Reference: "WRK-5", Tool: "codex", SessionRef: "x", WorkingDir: "/w"}, wantErr: domain.ErrTaskNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, domain.ResumeModeManual)
			task := f.addTask("Task", domain.ColumnBacklog)

			_, err := newLinkSession(f).Execute(context.Background(), tt.in)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, f.store.Tasks[task.ID].AgentSession)
			assert.Empty(t, f.store.Sessions)
		})
	}
}
