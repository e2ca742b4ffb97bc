package tmux

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/crewboard/internal/domain"
)

// setupTestEnv creates a short temporary directory for the tmux socket.
// t.TempDir paths can exceed the unix socket path limit.
func setupTestEnv(t *testing.T) (socketPath, dir string) {
	t.Helper()
	if _, err := exec.LookPath("tmux"); err != nil {
		t.Skip("tmux not installed")
	}

	dir, err := os.MkdirTemp("", "tmux-test-*")
	require.NoError(t, err)
	socketPath = filepath.Join(dir, "tmux.sock")

	t.Cleanup(func() {
		// Kill any remaining sessions using this socket
		_ = exec.Command("tmux", "-S", socketPath, "kill-server").Run()
		_ = os.RemoveAll(dir)
	})
	return socketPath, dir
}

func TestNewClient(t *testing.T) {
	client := NewClient("/path/to/socket")

	assert.Equal(t, "/path/to/socket", client.socketPath)
	assert.NotNil(t, client.execFunc)
}

func TestClient_Launch_And_IsRunning(t *testing.T) {
	socketPath, dir := setupTestEnv(t)
	client := NewClient(socketPath)
	name := domain.LaunchSessionName("WRK-1")

	running, err := client.IsRunning(name)
	require.NoError(t, err)
	assert.False(t, running)

	err = client.Launch(context.Background(), domain.LaunchOptions{
		Name:    name,
		Dir:     dir,
		Command: "sleep 60",
	})
	require.NoError(t, err)

	running, err = client.IsRunning(name)
	require.NoError(t, err)
	assert.True(t, running)
}

func TestClient_Launch_AlreadyRunning(t *testing.T) {
	socketPath, dir := setupTestEnv(t)
	client := NewClient(socketPath)
	opts := domain.LaunchOptions{Name: "crewboard-WRK-2", Dir: dir, Command: "sleep 60"}

	require.NoError(t, client.Launch(context.Background(), opts))
	err := client.Launch(context.Background(), opts)

	assert.ErrorIs(t, err, domain.ErrSessionAlreadyActive)
}

func TestClient_Stop(t *testing.T) {
	socketPath, dir := setupTestEnv(t)
	client := NewClient(socketPath)
	name := "crewboard-WRK-3"
	require.NoError(t, client.Launch(context.Background(), domain.LaunchOptions{Name: name, Dir: dir, Command: "sleep 60"}))

	require.NoError(t, client.Stop(name))

	running, err := client.IsRunning(name)
	require.NoError(t, err)
	assert.False(t, running)

	// Stopping again is a no-op
	require.NoError(t, client.Stop(name))
}

func TestClient_IsRunning_NoSocket(t *testing.T) {
	client := NewClient(filepath.Join(os.TempDir(), "crewboard-missing.sock"))

	running, err := client.IsRunning("anything")

	require.NoError(t, err)
	assert.False(t, running)
}

func TestClient_Attach(t *testing.T) {
	socketPath, dir := setupTestEnv(t)
	client := NewClient(socketPath)
	name := "crewboard-WRK-4"
	require.NoError(t, client.Launch(context.Background(), domain.LaunchOptions{Name: name, Dir: dir, Command: "sleep 60"}))

	// Capture the exec call instead of actually executing
	var capturedPath string
	var capturedArgs []string
	client.SetExecFunc(func(argv0 string, argv []string, _ []string) error {
		capturedPath = argv0
		capturedArgs = argv
		return nil
	})

	require.NoError(t, client.Attach(name))

	assert.Contains(t, capturedPath, "tmux")
	assert.Equal(t, []string{"tmux", "-S", socketPath, "attach", "-t", name}, capturedArgs)
}

func TestClient_Attach_NoSession(t *testing.T) {
	socketPath, _ := setupTestEnv(t)
	client := NewClient(socketPath)

	err := client.Attach("crewboard-WRK-404")

	assert.ErrorIs(t, err, domain.ErrNoLaunchedSession)
}

func TestClient_Attach_ExecError(t *testing.T) {
	socketPath, dir := setupTestEnv(t)
	client := NewClient(socketPath)
	name := "crewboard-WRK-5"
	require.NoError(t, client.Launch(context.Background(), domain.LaunchOptions{Name: name, Dir: dir, Command: "sleep 60"}))
	client.SetExecFunc(func(string, []string, []string) error {
		return os.ErrPermission
	})

	err := client.Attach(name)

	require.ErrorIs(t, err, os.ErrPermission)
	assert.Contains(t, err.Error(), "attach session")
}
