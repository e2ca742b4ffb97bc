package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/crewboard/internal/domain"
)

func TestUnlinkSession_Execute(t *testing.T) {
	tests := []struct {
		name   string
		reason string
		want   domain.SessionStatus
	}{
		{name: "default pauses", reason: "", want: domain.SessionPaused},
		{name: "complete", reason: "complete", want: domain.SessionCompleted},
		{name: "abandon", reason: "Abandon", want: domain.SessionAbandoned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			f := newFixture(t, domain.ResumeModeManual)
			task := f.addLinkedTask(t, "Task")
			uc := NewUnlinkSession(f.resolver, f.registry, f.store, f.store, f.locker, f.logger)

			// Execute
			out, err := uc.Execute(context.Background(), UnlinkSessionInput{Reference: "WRK-1", Reason: tt.reason})

			// Assert
			require.NoError(t, err)
			require.NotNil(t, out.Record)
			assert.Equal(t, tt.want, out.Record.Status)
			assert.Nil(t, f.store.Tasks[task.ID].AgentSession)
			history := f.history(t, task)
			require.Len(t, history, 1)
			assert.Equal(t, tt.want, history[0].Status)
		})
	}
}

func TestUnlinkSession_Errors(t *testing.T) {
	f := newFixture(t, domain.ResumeModeManual)
	f.addTask("Task", domain.ColumnBacklog)
	uc := NewUnlinkSession(f.resolver, f.registry, f.store, f.store, f.locker, f.logger)
	ctx := context.Background()

	_, err := uc.Execute(ctx, UnlinkSessionInput{Reference: "WRK-1", Reason: "forget"})
	require.ErrorIs(t, err, domain.ErrInvalidUnlinkReason)

	_, err = uc.Execute(ctx, UnlinkSessionInput{Reference: "WRK-1"})
	require.ErrorIs(t, err, domain.ErrMissingSession)
	assert.Contains(t, err.Error(), "unlink WRK-1")
}
