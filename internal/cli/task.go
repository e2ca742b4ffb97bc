package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/runoshun/crewboard/internal/app"
	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/usecase"
)

// newNewCommand creates the new command for creating tasks.
func newNewCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title  string
		Body   string
		Board  string
		Column string
	}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new task",
		Long: `Create a new task on a board.

The task receives the next sequence number of its board, so its display
identifier is <PREFIX>-<seq> (e.g. WRK-12). Sequence numbers are never
reused, even after a task is deleted.

Examples:
  # Create a task on the default board
  crewboard new --title "Add auth middleware"

  # Create a task on another board, straight into todo
  crewboard new --title "Rotate keys" --board OPS --column todo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.NewTaskUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.NewTaskInput{
				BoardPrefix: opts.Board,
				Title:       opts.Title,
				Description: opts.Body,
				Column:      opts.Column,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task %s (%s)\n", out.DisplayID, out.Task.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Title, "title", "t", "", "Task title (required)")
	cmd.Flags().StringVarP(&opts.Body, "body", "b", "", "Task description")
	cmd.Flags().StringVar(&opts.Board, "board", "", "Board prefix (default from config)")
	cmd.Flags().StringVar(&opts.Column, "column", "", "Initial column (default: backlog)")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

// newListCommand creates the list command for listing tasks.
func newListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Board  string
		Column string
	}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Long: `List tasks in a table.

Output columns:
  ID      Display identifier (<PREFIX>-<seq>)
  COLUMN  Kanban column
  TOOL    Linked agent tool (empty if no session is linked)
  TITLE   Task title

Examples:
  # List all tasks
  crewboard list

  # List tasks waiting for input on one board
  crewboard list --board WRK --column need_input`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.ListTasksUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ListTasksInput{
				BoardPrefix: opts.Board,
				Column:      opts.Column,
			})
			if err != nil {
				return err
			}

			printTaskList(cmd.OutOrStdout(), out.Items)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Board, "board", "", "Filter by board prefix")
	cmd.Flags().StringVar(&opts.Column, "column", "", "Filter by column")

	return cmd
}

// printTaskList prints tasks in a table format.
func printTaskList(w io.Writer, items []usecase.TaskItem) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	defer func() { _ = tw.Flush() }()

	_, _ = fmt.Fprintln(tw, "ID\tCOLUMN\tTOOL\tTITLE")
	for _, item := range items {
		tool := ""
		if item.Task.HasSession() {
			tool = string(item.Task.AgentSession.Tool)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.DisplayID, item.Task.Column, tool, item.Task.Title)
	}
}

// newShowCommand creates the show command for displaying task details.
func newShowCommand(c *app.Container) *cobra.Command {
	var opts struct {
		JSON bool
	}

	cmd := &cobra.Command{
		Use:   "show <ref>",
		Short: "Display task details",
		Long: `Display detailed information about a task.

The reference may be a task identity, an identity prefix, a display
identifier (WRK-12) or a fragment of the title.

Output includes:
  - Display identifier, identity and title
  - Board, column and description
  - Linked agent session (if any)
  - Session history
  - Comments, oldest first

Examples:
  # Show task by display identifier
  crewboard show WRK-12

  # Output in JSON format
  crewboard show WRK-12 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := c.ShowTaskUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.ShowTaskInput{
				Reference: args[0],
			})
			if err != nil {
				return err
			}

			if opts.JSON {
				return writeTaskJSON(cmd.OutOrStdout(), out)
			}
			printTaskDetails(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output in JSON format")

	return cmd
}

// writeTaskJSON writes the task details as indented JSON.
func writeTaskJSON(w io.Writer, out *usecase.ShowTaskOutput) error {
	type jsonTask struct {
		Created     time.Time              `json:"created"`
		Updated     time.Time              `json:"updated"`
		Session     *domain.AgentSession   `json:"agent_session,omitempty"`
		ID          string                 `json:"id"`
		DisplayID   string                 `json:"display_id"`
		Board       string                 `json:"board"`
		Title       string                 `json:"title"`
		Description string                 `json:"description"`
		Column      domain.Column          `json:"column"`
		Comments    []domain.Comment       `json:"comments"`
		History     []domain.SessionRecord `json:"history"`
	}

	jt := jsonTask{
		Created:     out.Task.Created,
		Updated:     out.Task.Updated,
		Session:     out.Session,
		ID:          out.Task.ID,
		DisplayID:   out.DisplayID,
		Title:       out.Task.Title,
		Description: out.Task.Description,
		Column:      out.Task.Column,
		Comments:    out.Comments,
		History:     out.History,
	}
	if out.Board != nil {
		jt.Board = out.Board.Prefix
	}
	if jt.Comments == nil {
		jt.Comments = []domain.Comment{}
	}
	if jt.History == nil {
		jt.History = []domain.SessionRecord{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jt)
}

// printTaskDetails prints the task details in a human-readable format.
func printTaskDetails(w io.Writer, out *usecase.ShowTaskOutput) {
	task := out.Task

	_, _ = fmt.Fprintf(w, "%s: %s\n", out.DisplayID, task.Title)
	_, _ = fmt.Fprintf(w, "ID: %s\n", task.ID)
	if out.Board != nil {
		_, _ = fmt.Fprintf(w, "Board: %s (%s, resume mode: %s)\n", out.Board.Prefix, out.Board.Name, out.Board.ResumeMode)
	}
	_, _ = fmt.Fprintf(w, "Column: %s\n", task.Column.Display())
	_, _ = fmt.Fprintf(w, "Created: %s\n", task.Created.Format(time.RFC3339))

	if desc := strings.TrimSpace(task.Description); desc != "" {
		_, _ = fmt.Fprintf(w, "\nDescription:\n%s\n", desc)
	}

	if out.Session != nil {
		_, _ = fmt.Fprintln(w, "\nSession:")
		_, _ = fmt.Fprintf(w, "  Tool: %s\n", out.Session.Tool)
		_, _ = fmt.Fprintf(w, "  Ref: %s (%s)\n", out.Session.Ref, out.Session.RefType)
		_, _ = fmt.Fprintf(w, "  Dir: %s\n", out.Session.WorkingDir)
		_, _ = fmt.Fprintf(w, "  Linked: %s\n", out.Session.LinkedAt.Format(time.RFC3339))
	}

	if len(out.History) > 0 {
		_, _ = fmt.Fprintln(w, "\nHistory:")
		printSessionRecords(w, out.History)
	}

	if len(out.Comments) > 0 {
		_, _ = fmt.Fprintln(w, "\nComments:")
		for _, comment := range out.Comments {
			author := string(comment.AuthorType)
			if comment.AuthorID != "" {
				author += " (" + comment.AuthorID + ")"
			}
			_, _ = fmt.Fprintf(w, "  [%s] %s: %s\n", comment.Created.Format(time.RFC3339), author, comment.Content)
		}
	}
}

// newMoveCommand creates the move command.
func newMoveCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <ref> <column>",
		Short: "Move a task to another column",
		Long: `Move a task to another column.

Columns: backlog, todo, in_progress, need_input, review, done.

Moving a task into need_input pauses its active session record, so the
next @agent mention can hand the task back to its agent.

Examples:
  # The agent is waiting for an answer
  crewboard move WRK-12 need_input`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := c.MoveTaskUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.MoveTaskInput{
				Reference: args[0],
				Column:    args[1],
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "Moved task %s: %s -> %s\n", out.DisplayID, out.From, out.To)
			if out.Paused != nil {
				_, _ = fmt.Fprintf(w, "Paused session %s\n", out.Paused.ExternalRef)
			}
			return nil
		},
	}

	return cmd
}

// newRmCommand creates the rm command for deleting tasks.
func newRmCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <ref>",
		Short: "Delete a task",
		Long: `Delete a task with its comments and session history.

A session launched in the background for the task is stopped first.
The display identifier of the deleted task is not reused.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := c.DeleteTaskUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.DeleteTaskInput{
				Reference: args[0],
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.Stopped {
				_, _ = fmt.Fprintf(w, "Stopped session %s\n", domain.LaunchSessionName(out.DisplayID))
			}
			_, _ = fmt.Fprintf(w, "Deleted task %s: %s\n", out.DisplayID, out.Task.Title)
			return nil
		},
	}

	return cmd
}
