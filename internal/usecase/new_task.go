package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/usecase/shared"
)

// NewTaskInput contains the parameters for creating a task.
// Fields are ordered to minimize memory padding.
type NewTaskInput struct {
	BoardPrefix string // Board prefix (defaults to the configured board)
	Title       string // Task title (required)
	Description string // Task description (optional)
	Column      string // Initial column (defaults to backlog)
}

// NewTaskOutput contains the result of creating a task.
type NewTaskOutput struct {
	Task      *domain.Task
	Board     *domain.Board
	DisplayID string
}

// NewTask is the use case for creating a new task.
type NewTask struct {
	tasks        domain.TaskRepository
	boards       domain.BoardRepository
	logger       domain.Logger
	defaultBoard string
}

// NewNewTask creates a new NewTask use case.
func NewNewTask(tasks domain.TaskRepository, boards domain.BoardRepository, logger domain.Logger, defaultBoard string) *NewTask {
	return &NewTask{
		tasks:        tasks,
		boards:       boards,
		logger:       logger,
		defaultBoard: defaultBoard,
	}
}

// Execute creates a new task and returns it.
func (uc *NewTask) Execute(ctx context.Context, in NewTaskInput) (*NewTaskOutput, error) {
	title, err := shared.ValidateTitle(in.Title)
	if err != nil {
		return nil, err
	}

	column := domain.ColumnBacklog
	if in.Column != "" {
		column, err = domain.ParseColumn(in.Column)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, in.Column)
		}
	}

	board, err := requireBoard(ctx, uc.boards, in.BoardPrefix, uc.defaultBoard)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		BoardID:     board.ID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Column:      column,
	}
	if err := uc.tasks.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	displayID := task.DisplayID(board)
	uc.logger.Info(displayID, "task", fmt.Sprintf("created %q in %s", title, column))

	return &NewTaskOutput{Task: task, Board: board, DisplayID: displayID}, nil
}
