package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from SessionStatus
		to   SessionStatus
		want bool
	}{
		{from: SessionActive, to: SessionPaused, want: true},
		{from: SessionPaused, to: SessionActive, want: true},
		{from: SessionActive, to: SessionCompleted, want: true},
		{from: SessionActive, to: SessionAbandoned, want: true},
		{from: SessionPaused, to: SessionCompleted, want: true},
		{from: SessionPaused, to: SessionAbandoned, want: true},
		{from: SessionActive, to: SessionActive, want: false},
		{from: SessionCompleted, to: SessionActive, want: false},
		{from: SessionCompleted, to: SessionPaused, want: false},
		{from: SessionAbandoned, to: SessionActive, want: false},
		{from: SessionAbandoned, to: SessionCompleted, want: false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestSessionRecord_TransitionTo(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	record := &SessionRecord{Status: SessionActive}

	require.NoError(t, record.TransitionTo(SessionPaused, now))
	assert.Equal(t, SessionPaused, record.Status)
	assert.Nil(t, record.EndedAt)

	require.NoError(t, record.TransitionTo(SessionCompleted, now))
	require.NotNil(t, record.EndedAt)
	assert.Equal(t, now, *record.EndedAt)

	err := record.TransitionTo(SessionActive, now)
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, SessionCompleted, record.Status)
}

func TestUnlinkReason_TargetStatus(t *testing.T) {
	tests := map[UnlinkReason]SessionStatus{
		UnlinkPause:    SessionPaused,
		UnlinkComplete: SessionCompleted,
		UnlinkAbandon:  SessionAbandoned,
	}
	for reason, want := range tests {
		got, err := reason.TargetStatus()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := UnlinkReason("delete").TargetStatus()
	assert.ErrorIs(t, err, ErrInvalidUnlinkReason)
}

func TestParseTool(t *testing.T) {
	for _, tool := range AllTools() {
		got, err := ParseTool(string(tool))
		require.NoError(t, err)
		assert.Equal(t, tool, got)
	}

	got, err := ParseTool("Claude")
	require.NoError(t, err)
	assert.Equal(t, ToolClaudeCode, got)

	_, err = ParseTool("cursor")
	assert.ErrorIs(t, err, ErrUnsupportedTool)
}

func TestGuessRefType(t *testing.T) {
	assert.Equal(t, RefTypeUUID, GuessRefType("0f6b2c1e-5a4d-4c3b-9e8f-7a6b5c4d3e2f"))
	assert.Equal(t, RefTypeUUID, GuessRefType("ses_abc123"))
	assert.Equal(t, RefTypePath, GuessRefType("/home/me/.codex/sessions/rollout.jsonl"))
	assert.Equal(t, RefTypePath, GuessRefType("sessions/rollout"))
	assert.Equal(t, RefTypePath, GuessRefType("rollout.jsonl"))
}
