// Package storetest provides a behavioral test suite shared by domain.Store implementations.
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/testutil"
)

// Factory opens an initialized store driven by clock.
type Factory func(t *testing.T, clock domain.Clock) domain.Store

// Run executes the suite against stores created by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		fn   func(t *testing.T, newStore Factory)
		name string
	}{
		{name: "CreateAndGetTask", fn: testCreateAndGetTask},
		{name: "SequencePerBoard", fn: testSequencePerBoard},
		{name: "SequenceNotReused", fn: testSequenceNotReused},
		{name: "ListTasksFilters", fn: testListTasksFilters},
		{name: "ListTasksUnicodeTitle", fn: testListTasksUnicodeTitle},
		{name: "ListTasksOrder", fn: testListTasksOrder},
		{name: "UpdateTask", fn: testUpdateTask},
		{name: "DeleteTaskCascades", fn: testDeleteTaskCascades},
		{name: "Boards", fn: testBoards},
		{name: "Comments", fn: testComments},
		{name: "Sessions", fn: testSessions},
		{name: "CanceledContext", fn: testCanceledContext},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore)
		})
	}
}

func newClock() *testutil.MockClock {
	return &testutil.MockClock{NowTime: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func mustBoard(t *testing.T, s domain.Store, prefix string) *domain.Board {
	t.Helper()
	board := &domain.Board{Prefix: prefix, Name: prefix + " board", ResumeMode: domain.ResumeModeManual}
	require.NoError(t, s.CreateBoard(context.Background(), board))
	return board
}

func mustTask(t *testing.T, s domain.Store, board *domain.Board, title string) *domain.Task {
	t.Helper()
	task := &domain.Task{BoardID: board.ID, Title: title, Column: domain.ColumnTodo}
	require.NoError(t, s.CreateTask(context.Background(), task))
	return task
}

func testCreateAndGetTask(t *testing.T, newStore Factory) {
	clock := newClock()
	s := newStore(t, clock)
	ctx := context.Background()
	board := mustBoard(t, s, "WRK")

	task := &domain.Task{
		BoardID:     board.ID,
		Title:       "Fix login",
		Description: "Users cannot log in",
		Column:      domain.ColumnNeedInput,
		AgentSession: &domain.AgentSession{
			LinkedAt:   clock.NowTime,
			Tool:       domain.ToolClaudeCode,
			Ref:        "abc",
			RefType:    domain.RefTypeUUID,
			WorkingDir: "/work",
		},
	}
	require.NoError(t, s.CreateTask(ctx, task))
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, 1, task.Seq)
	assert.True(t, clock.NowTime.Equal(task.Created))

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Fix login", got.Title)
	assert.Equal(t, "Users cannot log in", got.Description)
	assert.Equal(t, domain.ColumnNeedInput, got.Column)
	assert.Equal(t, board.ID, got.BoardID)
	require.NotNil(t, got.AgentSession)
	assert.Equal(t, "abc", got.AgentSession.Ref)
	assert.Equal(t, domain.ToolClaudeCode, got.AgentSession.Tool)
	assert.True(t, clock.NowTime.Equal(got.AgentSession.LinkedAt))

	missing, err := s.GetTask(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testSequencePerBoard(t *testing.T, newStore Factory) {
	s := newStore(t, newClock())
	wrk := mustBoard(t, s, "WRK")
	ops := mustBoard(t, s, "OPS")

	assert.Equal(t, 1, mustTask(t, s, wrk, "a").Seq)
	assert.Equal(t, 2, mustTask(t, s, wrk, "b").Seq)
	assert.Equal(t, 1, mustTask(t, s, ops, "c").Seq)
	assert.Equal(t, 3, mustTask(t, s, wrk, "d").Seq)
}

func testSequenceNotReused(t *testing.T, newStore Factory) {
	s := newStore(t, newClock())
	board := mustBoard(t, s, "WRK")
	mustTask(t, s, board, "a")
	last := mustTask(t, s, board, "b")

	require.NoError(t, s.DeleteTask(context.Background(), last.ID))

	assert.Equal(t, 3, mustTask(t, s, board, "c").Seq)
}

func testListTasksUnicodeTitle(t *testing.T, newStore Factory) {
	s := newStore(t, newClock())
	wrk := mustBoard(t, s, "WRK")
	mustTask(t, s, wrk, "ÜBERSICHT der Straße")
	mustTask(t, s, wrk, "Überblick")

	tasks, err := s.ListTasks(context.Background(), domain.TaskFilter{TitleContains: "übersicht"})

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "ÜBERSICHT der Straße", tasks[0].Title)
}

func testListTasksFilters(t *testing.T, newStore Factory) {
	clock := newClock()
	s := newStore(t, clock)
	ctx := context.Background()
	wrk := mustBoard(t, s, "WRK")
	ops := mustBoard(t, s, "OPS")
	login := mustTask(t, s, wrk, "Fix LOGIN bug")
	clock.Advance(time.Second)
	mustTask(t, s, wrk, "Write docs")
	clock.Advance(time.Second)
	other := mustTask(t, s, ops, "login metrics")
	other.Column = domain.ColumnNeedInput
	require.NoError(t, s.UpdateTask(ctx, other))

	tests := []struct {
		name   string
		filter domain.TaskFilter
		want   []string
	}{
		{name: "all", filter: domain.TaskFilter{}, want: []string{"Fix LOGIN bug", "Write docs", "login metrics"}},
		{name: "board", filter: domain.TaskFilter{BoardID: wrk.ID}, want: []string{"Fix LOGIN bug", "Write docs"}},
		{name: "column", filter: domain.TaskFilter{Column: domain.ColumnNeedInput}, want: []string{"login metrics"}},
		{name: "title case-insensitive", filter: domain.TaskFilter{TitleContains: "login"}, want: []string{"Fix LOGIN bug", "login metrics"}},
		{name: "board and seq", filter: domain.TaskFilter{BoardID: wrk.ID, Seq: 2}, want: []string{"Write docs"}},
		{name: "id prefix", filter: domain.TaskFilter{IDPrefix: login.ID[:8]}, want: []string{"Fix LOGIN bug"}},
		{name: "no match", filter: domain.TaskFilter{TitleContains: "nothing"}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := s.ListTasks(ctx, tt.filter)
			require.NoError(t, err)
			var titles []string
			for _, task := range tasks {
				titles = append(titles, task.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func testListTasksOrder(t *testing.T, newStore Factory) {
	s := newStore(t, newClock())
	board := mustBoard(t, s, "WRK")
	for i := range 5 {
		mustTask(t, s, board, fmt.Sprintf("task %d", i))
	}

	tasks, err := s.ListTasks(context.Background(), domain.TaskFilter{BoardID: board.ID})

	require.NoError(t, err)
	require.Len(t, tasks, 5)
	for i, task := range tasks {
		assert.Equal(t, i+1, task.Seq)
	}
}

func testUpdateTask(t *testing.T, newStore Factory) {
	clock := newClock()
	s := newStore(t, clock)
	ctx := context.Background()
	board := mustBoard(t, s, "WRK")
	task := mustTask(t, s, board, "Original")
	created := task.Created

	clock.Advance(time.Hour)
	update := *task
	update.Title = "Renamed"
	update.Column = domain.ColumnReview
	update.Seq = 99
	require.NoError(t, s.UpdateTask(ctx, &update))

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, domain.ColumnReview, got.Column)
	assert.Equal(t, 1, got.Seq)
	assert.True(t, created.Equal(got.Created))
	assert.True(t, clock.NowTime.Equal(got.Updated))

	err = s.UpdateTask(ctx, &domain.Task{ID: "missing", Title: "x"})
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func testDeleteTaskCascades(t *testing.T, newStore Factory) {
	s := newStore(t, newClock())
	ctx := context.Background()
	board := mustBoard(t, s, "WRK")
	task := mustTask(t, s, board, "Doomed")
	require.NoError(t, s.CreateComment(ctx, &domain.Comment{TaskID: task.ID, Content: "hi", AuthorType: domain.AuthorHuman}))
	require.NoError(t, s.CreateSession(ctx, &domain.SessionRecord{TaskID: task.ID, Tool: domain.ToolCodex, ExternalRef: "r", RefType: domain.RefTypeUUID, WorkingDir: "/w", Status: domain.SessionActive}))

	require.NoError(t, s.DeleteTask(ctx, task.ID))

	got, err := s.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	comments, err := s.ListComments(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
	records, err := s.ListSessions(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func testBoards(t *testing.T, newStore Factory) {
	s := newStore(t, newClock())
	ctx := context.Background()
	wrk := mustBoard(t, s, "WRK")
	mustBoard(t, s, "OPS")

	err := s.CreateBoard(ctx, &domain.Board{Prefix: "WRK", Name: "dup", ResumeMode: domain.ResumeModeAuto})
	require.ErrorIs(t, err, domain.ErrBoardExists)

	boards, err := s.ListBoards(ctx)
	require.NoError(t, err)
	require.Len(t, boards, 2)
	assert.Equal(t, "OPS", boards[0].Prefix)
	assert.Equal(t, "WRK", boards[1].Prefix)

	byPrefix, err := s.GetBoardByPrefix(ctx, "WRK")
	require.NoError(t, err)
	require.NotNil(t, byPrefix)
	assert.Equal(t, wrk.ID, byPrefix.ID)

	none, err := s.GetBoardByPrefix(ctx, "NOPE")
	require.NoError(t, err)
	assert.Nil(t, none)

	wrk.ResumeMode = domain.ResumeModeAuto
	require.NoError(t, s.UpdateBoard(ctx, wrk))
	got, err := s.GetBoard(ctx, wrk.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ResumeModeAuto, got.ResumeMode)
	assert.Equal(t, "WRK board", got.Name)

	err = s.UpdateBoard(ctx, &domain.Board{ID: "missing", Prefix: "ZZZ"})
	require.ErrorIs(t, err, domain.ErrBoardNotFound)
}

func testComments(t *testing.T, newStore Factory) {
	clock := newClock()
	s := newStore(t, clock)
	ctx := context.Background()
	board := mustBoard(t, s, "WRK")
	task := mustTask(t, s, board, "Chatty")

	for i := range 3 {
		c := &domain.Comment{
			TaskID:     task.ID,
			Content:    fmt.Sprintf("comment %d @agent", i),
			AuthorType: domain.AuthorHuman,
			AuthorID:   "alice",
			Metadata:   domain.CommentMetadata{Mentions: []string{"@agent"}},
		}
		require.NoError(t, s.CreateComment(ctx, c))
		assert.NotEmpty(t, c.ID)
		if i == 0 {
			clock.Advance(time.Minute)
		}
	}

	comments, err := s.ListComments(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	for i, c := range comments {
		assert.Equal(t, fmt.Sprintf("comment %d @agent", i), c.Content)
		assert.Equal(t, domain.AuthorHuman, c.AuthorType)
		assert.Equal(t, "alice", c.AuthorID)
		assert.Equal(t, []string{"@agent"}, c.Metadata.Mentions)
	}

	err = s.CreateComment(ctx, &domain.Comment{TaskID: "missing", Content: "x", AuthorType: domain.AuthorHuman})
	require.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func testSessions(t *testing.T, newStore Factory) {
	clock := newClock()
	s := newStore(t, clock)
	ctx := context.Background()
	board := mustBoard(t, s, "WRK")
	task := mustTask(t, s, board, "Agent")

	first := &domain.SessionRecord{TaskID: task.ID, Tool: domain.ToolOpenCode, ExternalRef: "one", RefType: domain.RefTypeUUID, WorkingDir: "/w", Status: domain.SessionActive}
	require.NoError(t, s.CreateSession(ctx, first))
	clock.Advance(time.Minute)
	second := &domain.SessionRecord{TaskID: task.ID, Tool: domain.ToolCodex, ExternalRef: "/tmp/two.jsonl", RefType: domain.RefTypePath, WorkingDir: "/w", Status: domain.SessionActive}
	require.NoError(t, s.CreateSession(ctx, second))

	require.NoError(t, first.TransitionTo(domain.SessionCompleted, clock.NowTime))
	require.NoError(t, s.UpdateSession(ctx, first))

	records, err := s.ListSessions(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "one", records[0].ExternalRef)
	assert.Equal(t, domain.SessionCompleted, records[0].Status)
	require.NotNil(t, records[0].EndedAt)
	assert.True(t, clock.NowTime.Equal(*records[0].EndedAt))
	assert.Equal(t, domain.RefTypePath, records[1].RefType)
	assert.Equal(t, domain.SessionActive, records[1].Status)
	assert.Nil(t, records[1].EndedAt)

	err = s.UpdateSession(ctx, &domain.SessionRecord{ID: "missing", TaskID: task.ID, Status: domain.SessionPaused})
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func testCanceledContext(t *testing.T, newStore Factory) {
	s := newStore(t, newClock())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ListTasks(ctx, domain.TaskFilter{})
	require.ErrorIs(t, err, context.Canceled)
	err = s.CreateBoard(ctx, &domain.Board{Prefix: "WRK"})
	require.ErrorIs(t, err, context.Canceled)
}
