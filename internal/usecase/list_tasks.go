package usecase

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/usecase/shared"
)

// TaskItem is a task with its display identifier.
type TaskItem struct {
	Task      *domain.Task
	Board     *domain.Board
	DisplayID string
}

// ListTasksInput contains the parameters for listing tasks.
type ListTasksInput struct {
	BoardPrefix string // Filter by board (empty = all boards)
	Column      string // Filter by column (empty = all columns)
}

// ListTasksOutput contains the result of listing tasks.
type ListTasksOutput struct {
	Items []TaskItem
}

// ListTasks is the use case for listing tasks.
type ListTasks struct {
	tasks  domain.TaskRepository
	boards domain.BoardRepository
}

// NewListTasks creates a new ListTasks use case.
func NewListTasks(tasks domain.TaskRepository, boards domain.BoardRepository) *ListTasks {
	return &ListTasks{
		tasks:  tasks,
		boards: boards,
	}
}

// Execute lists tasks ordered by board prefix, then sequence number.
func (uc *ListTasks) Execute(ctx context.Context, in ListTasksInput) (*ListTasksOutput, error) {
	var filter domain.TaskFilter
	if in.BoardPrefix != "" {
		board, err := shared.GetBoardByPrefix(ctx, uc.boards, in.BoardPrefix)
		if err != nil {
			return nil, err
		}
		filter.BoardID = board.ID
	}
	if in.Column != "" {
		column, err := domain.ParseColumn(in.Column)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, in.Column)
		}
		filter.Column = column
	}

	tasks, err := uc.tasks.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	boards, err := uc.boards.ListBoards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	byID := make(map[string]*domain.Board, len(boards))
	for _, b := range boards {
		byID[b.ID] = b
	}

	items := make([]TaskItem, 0, len(tasks))
	for _, t := range tasks {
		board := byID[t.BoardID]
		items = append(items, TaskItem{Task: t, Board: board, DisplayID: t.DisplayID(board)})
	}
	slices.SortStableFunc(items, func(a, b TaskItem) int {
		return cmp.Or(strings.Compare(boardPrefix(a.Board), boardPrefix(b.Board)), cmp.Compare(a.Task.Seq, b.Task.Seq))
	})

	return &ListTasksOutput{Items: items}, nil
}

func boardPrefix(b *domain.Board) string {
	if b == nil {
		return ""
	}
	return b.Prefix
}

// describeTasks attaches display identifiers to tasks.
func describeTasks(ctx context.Context, boards domain.BoardRepository, tasks []*domain.Task) ([]TaskItem, error) {
	items := make([]TaskItem, 0, len(tasks))
	for _, t := range tasks {
		board, displayID, err := shared.DisplayID(ctx, boards, t)
		if err != nil {
			return nil, err
		}
		items = append(items, TaskItem{Task: t, Board: board, DisplayID: displayID})
	}
	return items, nil
}
