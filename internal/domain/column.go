package domain

import "strings"

// Column represents the kanban column a task sits in.
type Column string

const (
	ColumnBacklog    Column = "backlog"     // Not yet planned
	ColumnTodo       Column = "todo"        // Planned, awaiting start
	ColumnInProgress Column = "in_progress" // Agent working
	ColumnNeedInput  Column = "need_input"  // Agent is waiting for human input
	ColumnReview     Column = "review"      // Work complete, awaiting review
	ColumnDone       Column = "done"        // Finished
)

// AllColumns returns all valid columns in board order.
func AllColumns() []Column {
	return []Column{
		ColumnBacklog,
		ColumnTodo,
		ColumnInProgress,
		ColumnNeedInput,
		ColumnReview,
		ColumnDone,
	}
}

// IsValid returns true if the column is a known value.
func (c Column) IsValid() bool {
	switch c {
	case ColumnBacklog, ColumnTodo, ColumnInProgress, ColumnNeedInput, ColumnReview, ColumnDone:
		return true
	default:
		return false
	}
}

// Display returns a human-readable representation of the column.
func (c Column) Display() string {
	switch c {
	case ColumnBacklog:
		return "Backlog"
	case ColumnTodo:
		return "To Do"
	case ColumnInProgress:
		return "In Progress"
	case ColumnNeedInput:
		return "Need Input"
	case ColumnReview:
		return "Review"
	case ColumnDone:
		return "Done"
	default:
		return string(c)
	}
}

// ParseColumn parses user input into a Column.
// Dashes and spaces are accepted in place of underscores ("need-input").
func ParseColumn(s string) (Column, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", "_", " ", "_").Replace(normalized)
	c := Column(normalized)
	if !c.IsValid() {
		return "", ErrInvalidColumn
	}
	return c, nil
}
