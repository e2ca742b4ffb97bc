package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/crewboard/internal/app"
	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/usecase"
)

// newInitCommand creates the init command.
func newInitCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Board string
		Mode  string
	}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the crewboard store",
		Long: `Initialize crewboard for the current repository.

This command creates the record store under .git/crewboard/ and a
default board. The board prefix and resume mode default to the
[boards] section of the configuration.

Running init again is harmless: existing records and boards are kept.

Preconditions:
- Current directory must be inside a git repository`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			prefix := opts.Board
			if prefix == "" {
				prefix = c.AppConfig.Boards.Default
			}
			if prefix == "" {
				prefix = domain.DefaultBoardPrefix
			}
			mode := c.AppConfig.Boards.DefaultResumeMode
			if opts.Mode != "" {
				parsed, err := domain.ParseResumeMode(opts.Mode)
				if err != nil {
					return fmt.Errorf("%w: %q", err, opts.Mode)
				}
				mode = parsed
			}

			uc := c.InitStoreUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.InitStoreInput{
				BoardPrefix: prefix,
				ResumeMode:  mode,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.AlreadyInitialized {
				_, _ = fmt.Fprintf(w, "crewboard already initialized in %s\n", c.Config.DataDir)
			} else {
				_, _ = fmt.Fprintf(w, "Initialized crewboard in %s\n", c.Config.DataDir)
			}
			if out.BoardCreated {
				_, _ = fmt.Fprintf(w, "Created board %s (resume mode: %s)\n", out.Board.Prefix, out.Board.ResumeMode)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Board, "board", "", "Prefix of the default board (default from config)")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "Resume mode of the default board: manual, command or auto")

	return cmd
}
