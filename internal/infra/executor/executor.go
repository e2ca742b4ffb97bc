// Package executor provides command execution functionality.
package executor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/runoshun/crewboard/internal/domain"
)

// Client implements domain.CommandExecutor interface.
type Client struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewClient creates a command executor attached to the process terminal.
func NewClient() *Client {
	return NewClientWithIO(os.Stdin, os.Stdout, os.Stderr)
}

// NewClientWithIO creates a command executor with custom streams.
func NewClientWithIO(stdin io.Reader, stdout, stderr io.Writer) *Client {
	return &Client{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}
}

// Ensure Client implements domain.CommandExecutor interface.
var _ domain.CommandExecutor = (*Client)(nil)

// ExecuteInteractive runs a command with stdin/stdout/stderr connected to the client streams.
// The process is killed when ctx is canceled.
func (c *Client) ExecuteInteractive(ctx context.Context, cmd *domain.ExecCommand) error {
	// #nosec G204 - cmd.Program and cmd.Args come from trusted UseCase code
	execCmd := exec.CommandContext(ctx, cmd.Program, cmd.Args...)
	if cmd.Dir != "" {
		execCmd.Dir = cmd.Dir
	}
	execCmd.Stdin = c.stdin
	execCmd.Stdout = c.stdout
	execCmd.Stderr = c.stderr
	if err := execCmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", cmd.Program, err)
	}
	return nil
}
