package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/crewboard/internal/app"
	"github.com/runoshun/crewboard/internal/usecase"
)

// newResolveCommand creates the resolve command.
func newResolveCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <ref>",
		Short: "Show which tasks a reference matches",
		Long: `Show which tasks a reference matches.

References are tried in order: exact identity, display identifier
(WRK-12), identity prefix, then a case-insensitive title fragment.
A leading '#' is ignored. Every match is printed; more than one line
means the reference is ambiguous for the other commands.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := c.ResolveReferenceUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ResolveReferenceInput{
				Reference: args[0],
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, item := range out.Items {
				_, _ = fmt.Fprintln(w, formatCandidate(item.DisplayID, item.Task.ID, item.Task.Title))
			}
			return nil
		},
	}

	return cmd
}

// formatCandidate formats one task of a reference match.
func formatCandidate(displayID, id, title string) string {
	return fmt.Sprintf("%s  %s  %s", displayID, id, title)
}
