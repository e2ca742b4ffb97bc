package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/runoshun/crewboard/internal/app"
	"github.com/runoshun/crewboard/internal/usecase"
)

// newBoardCommand creates the board command.
func newBoardCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Manage boards",
		Long: `Manage boards.

Every board has a short upper-case prefix used in display identifiers
(WRK-12) and a resume mode that decides what an @agent mention does:

  manual   print the resume command; 'resume --exec' is refused
  command  only resume on an explicit 'resume' request
  auto     run the resume command in a detached tmux session`,
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newBoardNewCommand(c))
	cmd.AddCommand(newBoardListCommand(c))
	cmd.AddCommand(newBoardModeCommand(c))

	return cmd
}

// newBoardNewCommand creates the board new subcommand.
func newBoardNewCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Name string
		Mode string
	}

	cmd := &cobra.Command{
		Use:   "new <prefix>",
		Short: "Create a board",
		Long: `Create a board.

Examples:
  # Create a board with the configured default resume mode
  crewboard board new OPS --name "Operations"

  # Create a board whose hand-backs run automatically
  crewboard board new BOT --mode auto`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := c.CreateBoardUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.CreateBoardInput{
				Prefix:     args[0],
				Name:       opts.Name,
				ResumeMode: opts.Mode,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created board %s (resume mode: %s)\n", out.Board.Prefix, out.Board.ResumeMode)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "Board name (default: the prefix)")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "Resume mode: manual, command or auto")

	return cmd
}

// newBoardListCommand creates the board list subcommand.
func newBoardListCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.ListBoardsUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ListBoardsInput{})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			defer func() { _ = tw.Flush() }()

			_, _ = fmt.Fprintln(tw, "PREFIX\tMODE\tTASKS\tNAME")
			for _, s := range out.Boards {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.Board.Prefix, s.Board.ResumeMode, s.Tasks, s.Board.Name)
			}
			return nil
		},
	}
}

// newBoardModeCommand creates the board mode subcommand.
func newBoardModeCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "mode <prefix> <manual|command|auto>",
		Short: "Change the resume mode of a board",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := c.SetResumeModeUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.SetResumeModeInput{
				Prefix: args[0],
				Mode:   args[1],
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.Previous == out.Board.ResumeMode {
				_, _ = fmt.Fprintf(w, "Board %s already uses resume mode %s\n", out.Board.Prefix, out.Board.ResumeMode)
				return nil
			}
			_, _ = fmt.Fprintf(w, "Board %s resume mode: %s -> %s\n", out.Board.Prefix, out.Previous, out.Board.ResumeMode)
			return nil
		},
	}
}
