package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/crewboard/internal/app"
	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/testutil"
)

// testEnv bundles a container with the mocks behind it.
type testEnv struct {
	c        *app.Container
	store    *testutil.MockStore
	launcher *testutil.MockLauncher
	executor *testutil.MockExecutor
	manager  *testutil.MockConfigManager
	board    *domain.Board
}

// newTestContainer creates an app.Container with mock dependencies and a WRK board.
func newTestContainer(t *testing.T, mode domain.ResumeMode) *testEnv {
	t.Helper()
	clock := &testutil.MockClock{NowTime: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	store := testutil.NewMockStore()
	store.Clock = clock
	store.Initialized = true
	board := store.AddBoard(&domain.Board{Prefix: "WRK", Name: "Work", ResumeMode: mode})
	env := &testEnv{
		store:    store,
		launcher: testutil.NewMockLauncher(),
		executor: &testutil.MockExecutor{},
		manager:  testutil.NewMockConfigManager(),
		board:    board,
	}

	c, err := app.NewWithDeps(app.Config{DataDir: "/repo/.git/crewboard", WorkingDir: "/repo"}, nil, app.Deps{
		Store:    store,
		Clock:    clock,
		Launcher: env.launcher,
		Executor: env.executor,
		Locker:   testutil.NoopLocker{},
		Logger:   testutil.NewMockLogger(),
		Loader:   &testutil.MockConfigLoader{},
		Manager:  env.manager,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	env.c = c
	return env
}

// addTask adds a task to the WRK board.
func (e *testEnv) addTask(title string, column domain.Column) *domain.Task {
	return e.store.AddTask(&domain.Task{BoardID: e.board.ID, Title: title, Column: column})
}

// run executes cmd with args and returns its output.
func run(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
