package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/runoshun/crewboard/internal/app"
	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/usecase"
)

// Output formats of the resume command.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// newResumeCommand creates the resume command.
func newResumeCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Output string
		Exec   bool
	}

	cmd := &cobra.Command{
		Use:   "resume <ref>",
		Short: "Build the resume prompt and command for a task",
		Long: `Build the resume prompt and command for the session linked to a task.

The prompt replays the task and its conversation, oldest comment first.
The command re-attaches the agent tool to its session in the recorded
working directory.

With --exec the command runs attached to this terminal. Boards in manual
resume mode refuse --exec.

Examples:
  # Print prompt and command
  crewboard resume WRK-12

  # Machine-readable output
  crewboard resume WRK-12 --output json

  # Resume the session right here
  crewboard resume WRK-12 --exec`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch opts.Output {
			case outputText, outputJSON, outputYAML:
			default:
				return fmt.Errorf("invalid output format %q (want text, json or yaml)", opts.Output)
			}

			uc := c.ResumeTaskUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ResumeTaskInput{
				Reference: args[0],
				Exec:      opts.Exec,
			})
			if err != nil {
				return err
			}
			if out.Executed {
				return nil
			}

			return writeResumeResult(cmd.OutOrStdout(), opts.Output, out.Result)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", outputText, "Output format: text, json or yaml")
	cmd.Flags().BoolVar(&opts.Exec, "exec", false, "Run the resume command in this terminal")

	return cmd
}

// writeResumeResult writes result in the requested format.
func writeResumeResult(w io.Writer, format string, result *domain.ResumeResult) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, _ = fmt.Fprintln(w, result.Prompt)
		_, _ = fmt.Fprintln(w, "---")
		_, _ = fmt.Fprintln(w, result.Command)
		return nil
	}
}
