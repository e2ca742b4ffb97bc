package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/runoshun/crewboard/internal/app"
	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/usecase"
)

// newLinkCommand creates the link command.
func newLinkCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Tool    string
		Ref     string
		RefType string
		Dir     string
	}

	cmd := &cobra.Command{
		Use:   "link <ref>",
		Short: "Link an agent session to a task",
		Long: `Link a coding-agent session to a task.

The previous session of the task, if any, is paused in the history.
The reference type is guessed from --ref when --ref-type is omitted:
values that look like file paths are treated as session files.

Examples:
  # Link a codex session running in the current directory
  crewboard link WRK-12 --tool codex --ref 0199a2b4-7c1e-7f00-8f5e-3a1b2c3d4e5f

  # Link an opencode session file
  crewboard link WRK-12 --tool opencode --ref ~/.local/share/opencode/ses_01.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.Dir
			if dir == "" {
				dir = c.Config.WorkingDir
			}
			if dir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("get working directory: %w", err)
				}
				dir = wd
			}

			uc := c.LinkSessionUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.LinkSessionInput{
				Reference:  args[0],
				Tool:       opts.Tool,
				SessionRef: opts.Ref,
				RefType:    opts.RefType,
				WorkingDir: dir,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Linked %s session %s to task %s\n",
				out.Record.Tool, out.Record.ExternalRef, out.DisplayID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Tool, "tool", "", "Agent tool: opencode, claude-code or codex (required)")
	cmd.Flags().StringVar(&opts.Ref, "ref", "", "Session id or session file path (required)")
	cmd.Flags().StringVar(&opts.RefType, "ref-type", "", "Reference type: uuid or path (default: guessed)")
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "Working directory of the session (default: current directory)")
	_ = cmd.MarkFlagRequired("tool")
	_ = cmd.MarkFlagRequired("ref")

	return cmd
}

// newUnlinkCommand creates the unlink command.
func newUnlinkCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Reason string
	}

	cmd := &cobra.Command{
		Use:   "unlink <ref>",
		Short: "Unlink the agent session from a task",
		Long: `Unlink the agent session from a task.

The open history record is closed according to --reason:

  pause     the session may be linked again later (default)
  complete  the session finished its work
  abandon   the session was given up`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := c.UnlinkSessionUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.UnlinkSessionInput{
				Reference: args[0],
				Reason:    opts.Reason,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.Record == nil {
				_, _ = fmt.Fprintf(w, "Unlinked session from task %s\n", out.DisplayID)
				return nil
			}
			_, _ = fmt.Fprintf(w, "Unlinked session %s from task %s (%s)\n",
				out.Record.ExternalRef, out.DisplayID, out.Record.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Reason, "reason", string(domain.UnlinkPause), "Reason: pause, complete or abandon")

	return cmd
}

// newSessionsCommand creates the sessions command.
func newSessionsCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions <ref>",
		Short: "Show the session history of a task",
		Long: `Show the session history of a task, oldest first.

At most one record is active or paused at a time; completed and
abandoned records are final.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := c.SessionHistoryUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.SessionHistoryInput{
				Reference: args[0],
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.Current != nil {
				_, _ = fmt.Fprintf(w, "Task %s is linked to %s session %s\n\n", out.DisplayID, out.Current.Tool, out.Current.Ref)
			} else {
				_, _ = fmt.Fprintf(w, "Task %s has no linked session\n\n", out.DisplayID)
			}
			if len(out.Records) == 0 {
				_, _ = fmt.Fprintln(w, "No session history.")
				return nil
			}
			printSessionRecords(w, out.Records)
			return nil
		},
	}

	return cmd
}

// printSessionRecords prints session history records in a table format.
func printSessionRecords(w io.Writer, records []domain.SessionRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	defer func() { _ = tw.Flush() }()

	_, _ = fmt.Fprintln(tw, "  STATUS\tTOOL\tREF\tCREATED\tENDED")
	for _, r := range records {
		ended := "-"
		if r.EndedAt != nil {
			ended = r.EndedAt.Format(time.RFC3339)
		}
		_, _ = fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
			r.Status, r.Tool, r.ExternalRef, r.Created.Format(time.RFC3339), ended)
	}
}

// newAttachCommand creates the attach command.
func newAttachCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attach <ref>",
		Short: "Attach to a session resumed in the background",
		Long: `Attach the terminal to the tmux session that an automatic hand-back
started for the task. Detach with the usual tmux key binding.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := c.AttachSessionUseCase()
			_, err := uc.Execute(cmd.Context(), usecase.AttachSessionInput{
				Reference: args[0],
			})
			return err
		},
	}

	return cmd
}
