package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/testutil"
)

func TestAddComment_Execute(t *testing.T) {
	// Setup
	f := newFixture(t, domain.ResumeModeManual)
	task := f.addTask("Fix login bug", domain.ColumnNeedInput)
	pub := &recordingPublisher{}
	uc := NewAddComment(f.resolver, f.store, f.store, pub, f.logger)

	// Execute
	out, err := uc.Execute(context.Background(), AddCommentInput{
		Reference: "WRK-1",
		Message:   "  Use the staging key @agent  ",
		AuthorID:  "alice",
	})

	// Assert
	require.NoError(t, err)
	assert.NoError(t, out.HandBackErr)
	assert.Equal(t, "WRK-1", out.DisplayID)
	assert.Equal(t, "Use the staging key @agent", out.Comment.Content)
	assert.Equal(t, domain.AuthorHuman, out.Comment.AuthorType)
	assert.Equal(t, "alice", out.Comment.AuthorID)
	assert.Equal(t, []string{"@agent"}, out.Comment.Metadata.Mentions)

	stored := f.store.Comments[task.ID]
	require.Len(t, stored, 1)
	assert.Equal(t, out.Comment.ID, stored[0].ID)

	require.Len(t, pub.events, 1)
	assert.Equal(t, out.Comment.ID, pub.events[0].Comment.ID)
}

func TestAddComment_AgentAuthor(t *testing.T) {
	f := newFixture(t, domain.ResumeModeManual)
	f.addTask("Task", domain.ColumnInProgress)
	pub := &recordingPublisher{}
	uc := NewAddComment(f.resolver, f.store, f.store, pub, f.logger)

	out, err := uc.Execute(context.Background(), AddCommentInput{Reference: "WRK-1", Message: "Need a key", AuthorType: "Agent"})

	require.NoError(t, err)
	assert.Equal(t, domain.AuthorAgent, out.Comment.AuthorType)
	assert.Len(t, pub.events, 1)
}

func TestAddComment_HandBackErrorKeepsComment(t *testing.T) {
	// Setup
	f := newFixture(t, domain.ResumeModeManual)
	task := f.addTask("Task", domain.ColumnNeedInput)
	pub := &recordingPublisher{err: assert.AnError}
	uc := NewAddComment(f.resolver, f.store, f.store, pub, f.logger)

	// Execute
	out, err := uc.Execute(context.Background(), AddCommentInput{Reference: "WRK-1", Message: "@agent"})

	// Assert
	require.NoError(t, err)
	require.ErrorIs(t, out.HandBackErr, assert.AnError)
	assert.Len(t, f.store.Comments[task.ID], 1)
	assert.True(t, f.logger.HasEntry("ERROR", "hand back"))
}

func TestAddComment_PublishesAfterCommit(t *testing.T) {
	// Setup
	f := newFixture(t, domain.ResumeModeAuto)
	task := f.addLinkedTask(t, "Blocked")
	launcher := testutil.NewMockLauncher()
	sink := &testutil.MockSink{}
	handBack := newHandBack(f, launcher, sink)
	pub := &recordingPublisher{forward: handBack.Handle}
	uc := NewAddComment(f.resolver, f.store, f.store, pub, f.logger)

	// Execute
	out, err := uc.Execute(context.Background(), AddCommentInput{Reference: task.ID, Message: "Go ahead @agent"})

	// Assert
	require.NoError(t, err)
	require.NoError(t, out.HandBackErr)
	require.Equal(t, 1, sink.Count())
	// The resume prompt already contains the triggering comment
	assert.Contains(t, sink.Notices[0].Result.Prompt, "Go ahead @agent")
	assert.Equal(t, 1, launcher.LaunchCount())
}

func TestAddComment_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      AddCommentInput
		wantErr error
	}{
		{name: "empty message", in: AddCommentInput{Reference: "WRK-1", Message: " \n "}, wantErr: domain.ErrEmptyMessage},
		{name: "bad author", in: AddCommentInput{Reference: "WRK-1", Message: "x", AuthorType: "robot"}, wantErr: domain.ErrInvalidAuthorType},
		{name: "unknown task", in: AddCommentInput{Reference: "WRK-7", Message: "x"}, wantErr: domain.ErrTaskNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, domain.ResumeModeManual)
			f.addTask("Task", domain.ColumnBacklog)
			pub := &recordingPublisher{}
			uc := NewAddComment(f.resolver, f.store, f.store, pub, f.logger)

			_, err := uc.Execute(context.Background(), tt.in)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.store.Comments)
			assert.Empty(t, pub.events)
		})
	}
}
