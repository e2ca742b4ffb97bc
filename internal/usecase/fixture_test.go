package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/testutil"
	"github.com/runoshun/crewboard/internal/usecase/shared"
)

// fixture wires the shared services over an in-memory store.
type fixture struct {
	store    *testutil.MockStore
	clock    *testutil.MockClock
	logger   *testutil.MockLogger
	board    *domain.Board
	resolver *shared.Resolver
	registry *shared.SessionRegistry
	builder  *shared.ResumeBuilder
	locker   *mutexLocker
}

func newFixture(t *testing.T, mode domain.ResumeMode) *fixture {
	t.Helper()
	clock := &testutil.MockClock{NowTime: time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)}
	store := testutil.NewMockStore()
	store.Clock = clock
	store.Initialized = true
	board := store.AddBoard(&domain.Board{Prefix: "WRK", Name: "Work", ResumeMode: mode})
	return &fixture{
		store:    store,
		clock:    clock,
		logger:   testutil.NewMockLogger(),
		board:    board,
		resolver: shared.NewResolver(store, store),
		registry: shared.NewSessionRegistry(store, store, clock),
		builder: shared.NewResumeBuilder(
			stubStrategy{tool: domain.ToolOpenCode},
			stubStrategy{tool: domain.ToolClaudeCode},
			stubStrategy{tool: domain.ToolCodex},
		),
		locker: newMutexLocker(),
	}
}

// addTask stores a task on the fixture board.
func (f *fixture) addTask(title string, column domain.Column) *domain.Task {
	return f.store.AddTask(&domain.Task{BoardID: f.board.ID, Title: title, Column: column})
}

// addLinkedTask stores a need_input task whose session was linked and then paused,
// the state an agent leaves behind when it asks for input.
func (f *fixture) addLinkedTask(t *testing.T, title string) *domain.Task {
	t.Helper()
	task := f.addTask(title, domain.ColumnNeedInput)
	ctx := context.Background()
	if _, err := f.registry.Link(ctx, task, domain.ToolClaudeCode, "sess-"+task.ID[:8], domain.RefTypeUUID, "/work/repo"); err != nil {
		t.Fatalf("Link() error = %v", err)
	}
	if _, err := f.registry.Pause(ctx, task); err != nil {
		t.Fatalf("Pause() error = %v", err)
	}
	return task
}

func (f *fixture) comment(task *domain.Task, content string, author domain.AuthorType) domain.Comment {
	c := domain.Comment{
		TaskID:     task.ID,
		Content:    content,
		AuthorType: author,
		Metadata:   domain.CommentMetadata{Mentions: domain.ExtractMentions(content)},
	}
	_ = f.store.CreateComment(context.Background(), &c)
	return c
}

func (f *fixture) history(t *testing.T, task *domain.Task) []domain.SessionRecord {
	t.Helper()
	records, err := f.registry.History(context.Background(), task)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	return records
}

// stubStrategy renders a predictable command.
type stubStrategy struct {
	tool domain.Tool
}

func (s stubStrategy) Tool() domain.Tool { return s.tool }

func (s stubStrategy) RenderCommand(target domain.ResumeTarget) (string, error) {
	return fmt.Sprintf("%s --resume %s %q", s.tool, target.SessionRef, target.Summary), nil
}

// mutexLocker is an in-process domain.TaskLocker.
type mutexLocker struct {
	locks map[string]*sync.Mutex
	mu    sync.Mutex
	calls int
}

func newMutexLocker() *mutexLocker {
	return &mutexLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *mutexLocker) Lock(_ context.Context, taskID string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[taskID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[taskID] = m
	}
	l.calls++
	l.mu.Unlock()

	m.Lock()
	return m.Unlock, nil
}

func (l *mutexLocker) lockCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

// recordingPublisher collects published events and optionally forwards them.
type recordingPublisher struct {
	err     error
	forward domain.CommentHandler
	events  []domain.CommentCreated
}

func (p *recordingPublisher) Publish(ctx context.Context, evt domain.CommentCreated) error {
	p.events = append(p.events, evt)
	if p.forward != nil {
		if err := p.forward(ctx, evt); err != nil {
			return err
		}
	}
	return p.err
}
