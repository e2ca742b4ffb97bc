// Package tmux launches resumed agent sessions in detached tmux sessions.
package tmux

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/runoshun/crewboard/internal/domain"
)

// ExecFunc is the function signature for syscall.Exec.
// It is used to allow testing of the Attach method.
type ExecFunc func(argv0 string, argv []string, envv []string) error

// Client manages tmux sessions on a private socket.
// Fields are ordered to minimize memory padding.
type Client struct {
	execFunc   ExecFunc // Function to use for exec (default: syscall.Exec)
	socketPath string   // Path to the tmux socket
}

// NewClient creates a new tmux client.
// socketPath is the path to the tmux socket (typically .git/crewboard/tmux.sock).
func NewClient(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		execFunc:   syscall.Exec,
	}
}

// SetExecFunc sets the exec function for testing purposes.
// This allows tests to verify the arguments passed to syscall.Exec
// without actually replacing the process.
func (c *Client) SetExecFunc(fn ExecFunc) {
	c.execFunc = fn
}

// Ensure Client implements domain.Launcher interface.
var _ domain.Launcher = (*Client)(nil)

// Launch starts opts.Command in a new detached tmux session.
// It fails with domain.ErrSessionAlreadyActive if the session already exists.
func (c *Client) Launch(ctx context.Context, opts domain.LaunchOptions) error {
	running, err := c.IsRunning(opts.Name)
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if running {
		return fmt.Errorf("%w: tmux session %s", domain.ErrSessionAlreadyActive, opts.Name)
	}

	// tmux -S <socket> new-session -d -s <name> -c <dir> <command>
	args := []string{
		"-S", c.socketPath,
		"new-session",
		"-d",            // Detached
		"-s", opts.Name, // Session name
		"-c", opts.Dir, // Working directory
	}
	if opts.Command != "" {
		args = append(args, opts.Command)
	}

	cmd := exec.CommandContext(ctx, "tmux", args...)
	cmd.Dir = opts.Dir

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("start session: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Stop terminates a tmux session. Stopping a missing session is not an error.
func (c *Client) Stop(sessionName string) error {
	running, err := c.IsRunning(sessionName)
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if !running {
		return nil
	}

	// Session names follow the crewboard-<display id> convention and are safe to pass to tmux.
	cmd := exec.Command("tmux", "-S", c.socketPath, "kill-session", "-t", sessionName) //nolint:gosec // sanitized session name
	if out, err := cmd.CombinedOutput(); err != nil {
		stillRunning, checkErr := c.IsRunning(sessionName)
		if checkErr != nil || stillRunning {
			return fmt.Errorf("stop session: %w: %s", err, strings.TrimSpace(string(out)))
		}
	}
	return nil
}

// Attach attaches to a running tmux session.
// This replaces the current process with tmux.
func (c *Client) Attach(sessionName string) error {
	running, err := c.IsRunning(sessionName)
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if !running {
		return fmt.Errorf("%w: tmux session %s", domain.ErrNoLaunchedSession, sessionName)
	}

	tmuxPath, err := exec.LookPath("tmux")
	if err != nil {
		return fmt.Errorf("find tmux: %w", err)
	}

	argv := []string{"tmux", "-S", c.socketPath, "attach", "-t", sessionName}
	if err := c.execFunc(tmuxPath, argv, os.Environ()); err != nil {
		return fmt.Errorf("attach session: %w", err)
	}

	// This line should never be reached
	return nil
}

// IsRunning checks if a session is running.
func (c *Client) IsRunning(sessionName string) (bool, error) {
	// tmux -S <socket> has-session -t <name>
	// Exit code 0 = exists, 1 = doesn't exist
	cmd := exec.Command("tmux", "-S", c.socketPath, "has-session", "-t", sessionName) //nolint:gosec // sanitized session name
	err := cmd.Run()
	if err == nil {
		return true, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Missing session or missing server socket
		return false, nil
	}
	if errors.Is(err, exec.ErrNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("has-session: %w", err)
}
