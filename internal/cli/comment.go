package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/crewboard/internal/app"
	"github.com/runoshun/crewboard/internal/usecase"
)

// newCommentCommand creates the comment command.
func newCommentCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Author string
		As     string
	}

	cmd := &cobra.Command{
		Use:   "comment <ref> <message>",
		Short: "Add a comment to a task",
		Long: `Add a comment to a task.

A human comment that mentions @agent on a task in need_input hands the
task back to its linked session. What happens next depends on the
board's resume mode:

  manual   the resume command is printed
  command  nothing; run 'crewboard resume' explicitly
  auto     the resume command runs in a detached tmux session

Examples:
  # Answer the agent and hand the task back
  crewboard comment WRK-12 "@agent use the staging database"

  # Record a note from the agent itself
  crewboard comment WRK-12 "Waiting for credentials" --author agent --as codex`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := c.AddCommentUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.AddCommentInput{
				Reference:  args[0],
				Message:    args[1],
				AuthorType: opts.Author,
				AuthorID:   opts.As,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added comment to task %s\n", out.DisplayID)
			if out.HandBackErr != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: hand-back failed: %v\n", out.HandBackErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Author, "author", "human", "Author type: human or agent")
	cmd.Flags().StringVar(&opts.As, "as", "", "Author display name")

	return cmd
}
