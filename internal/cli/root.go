// Package cli provides the command-line interface for crewboard.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/crewboard/internal/app"
)

// Command group IDs.
const (
	groupSetup   = "setup"
	groupTask    = "task"
	groupSession = "session"
)

// NewRootCommand creates the root command for crewboard.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "crewboard",
		Short: "Kanban board for coding-agent sessions",
		Long: `crewboard tracks tasks on kanban boards and links each task to the
coding-agent session working on it (opencode, claude-code or codex).

When an agent needs input it moves its task to need_input. A human
answers with a comment that mentions @agent, and crewboard hands the
task back: it prints the resume command, or runs it in a detached tmux
session when the board's resume mode is auto.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip if container is nil (e.g. in tests)
			if c == nil {
				return nil
			}

			for _, w := range c.AppConfig.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			c.Sink = newWriterSink(cmd.OutOrStdout())
			return nil
		},
	}

	// Define command groups
	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupTask, Title: "Task Management:"},
		&cobra.Group{ID: groupSession, Title: "Session Management:"},
	)

	// Setup commands
	initCmd := newInitCommand(c)
	initCmd.GroupID = groupSetup

	boardCmd := newBoardCommand(c)
	boardCmd.GroupID = groupSetup

	configCmd := newConfigCommand(c)
	configCmd.GroupID = groupSetup

	// Task management commands
	newCmd := newNewCommand(c)
	newCmd.GroupID = groupTask

	listCmd := newListCommand(c)
	listCmd.GroupID = groupTask

	showCmd := newShowCommand(c)
	showCmd.GroupID = groupTask

	moveCmd := newMoveCommand(c)
	moveCmd.GroupID = groupTask

	rmCmd := newRmCommand(c)
	rmCmd.GroupID = groupTask

	commentCmd := newCommentCommand(c)
	commentCmd.GroupID = groupTask

	resolveCmd := newResolveCommand(c)
	resolveCmd.GroupID = groupTask

	// Session management commands
	linkCmd := newLinkCommand(c)
	linkCmd.GroupID = groupSession

	unlinkCmd := newUnlinkCommand(c)
	unlinkCmd.GroupID = groupSession

	sessionsCmd := newSessionsCommand(c)
	sessionsCmd.GroupID = groupSession

	resumeCmd := newResumeCommand(c)
	resumeCmd.GroupID = groupSession

	attachCmd := newAttachCommand(c)
	attachCmd.GroupID = groupSession

	// Add subcommands
	root.AddCommand(
		initCmd,
		boardCmd,
		configCmd,
		newCmd,
		listCmd,
		showCmd,
		moveCmd,
		rmCmd,
		commentCmd,
		resolveCmd,
		linkCmd,
		unlinkCmd,
		sessionsCmd,
		resumeCmd,
		attachCmd,
	)

	return root
}
