package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/runoshun/crewboard/internal/domain"
)

// linkedTask adds a blocked task linked to a codex session.
func linkedTask(t *testing.T, env *testEnv) *domain.Task {
	t.Helper()
	task := env.addTask("Add auth", domain.ColumnInProgress)
	_, err := run(t, newLinkCommand(env.c), "WRK-1", "--tool", "codex", "--ref", "0199-abc", "--dir", "/work")
	require.NoError(t, err)
	_, err = run(t, newMoveCommand(env.c), "WRK-1", "need_input")
	require.NoError(t, err)
	_, err = run(t, newCommentCommand(env.c), "WRK-1", "Which database?", "--author", "agent")
	require.NoError(t, err)
	return task
}

func TestResumeCommand_Text(t *testing.T) {
	// Setup
	env := newTestContainer(t, domain.ResumeModeManual)
	linkedTask(t, env)

	// Execute
	out, err := run(t, newResumeCommand(env.c), "WRK-1")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out, "Task: WRK-1 Add auth")
	assert.Contains(t, out, "Which database?")
	assert.Contains(t, out, "---\ncd '/work' && codex resume '0199-abc'")
	assert.Empty(t, env.executor.Executed)
}

func TestResumeCommand_JSON(t *testing.T) {
	env := newTestContainer(t, domain.ResumeModeManual)
	linkedTask(t, env)

	out, err := run(t, newResumeCommand(env.c), "WRK-1", "--output", "json")

	require.NoError(t, err)
	var got domain.ResumeResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, domain.ToolCodex, got.Tool)
	assert.Equal(t, "0199-abc", got.SessionRef)
	assert.Equal(t, "/work", got.WorkingDir)
	assert.Contains(t, got.Prompt, "Which database?")
}

func TestResumeCommand_YAML(t *testing.T) {
	env := newTestContainer(t, domain.ResumeModeManual)
	linkedTask(t, env)

	out, err := run(t, newResumeCommand(env.c), "WRK-1", "-o", "yaml")

	require.NoError(t, err)
	var got domain.ResumeResult
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "0199-abc", got.SessionRef)
	assert.Contains(t, got.Command, "codex resume")
}

func TestResumeCommand_InvalidOutput(t *testing.T) {
	env := newTestContainer(t, domain.ResumeModeManual)
	linkedTask(t, env)

	_, err := run(t, newResumeCommand(env.c), "WRK-1", "--output", "xml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestResumeCommand_ExecRefusedOnManualBoard(t *testing.T) {
	env := newTestContainer(t, domain.ResumeModeManual)
	linkedTask(t, env)

	_, err := run(t, newResumeCommand(env.c), "WRK-1", "--exec")

	require.ErrorIs(t, err, domain.ErrResumeExecDisabled)
	assert.Empty(t, env.executor.Executed)
}

func TestResumeCommand_Exec(t *testing.T) {
	// Setup
	env := newTestContainer(t, domain.ResumeModeCommand)
	linkedTask(t, env)

	// Execute
	out, err := run(t, newResumeCommand(env.c), "WRK-1", "--exec")

	// Assert
	require.NoError(t, err)
	assert.Empty(t, out)
	require.Len(t, env.executor.Executed, 1)
	assert.Equal(t, "/work", env.executor.Executed[0].Dir)
}

func TestResumeCommand_NoSession(t *testing.T) {
	env := newTestContainer(t, domain.ResumeModeManual)
	env.addTask("Unlinked", domain.ColumnTodo)

	_, err := run(t, newResumeCommand(env.c), "WRK-1")

	require.ErrorIs(t, err, domain.ErrMissingSession)
}
