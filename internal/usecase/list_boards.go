package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/crewboard/internal/domain"
)

// ListBoardsInput contains the parameters for listing boards.
type ListBoardsInput struct{}

// BoardSummary is a board with its task count.
type BoardSummary struct {
	Board *domain.Board
	Tasks int
}

// ListBoardsOutput contains the result of listing boards.
type ListBoardsOutput struct {
	Boards []BoardSummary
}

// ListBoards is the use case for listing boards.
type ListBoards struct {
	boards domain.BoardRepository
	tasks  domain.TaskRepository
}

// NewListBoards creates a new ListBoards use case.
func NewListBoards(boards domain.BoardRepository, tasks domain.TaskRepository) *ListBoards {
	return &ListBoards{
		boards: boards,
		tasks:  tasks,
	}
}

// Execute lists boards ordered by prefix.
func (uc *ListBoards) Execute(ctx context.Context, _ ListBoardsInput) (*ListBoardsOutput, error) {
	boards, err := uc.boards.ListBoards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}

	out := &ListBoardsOutput{Boards: make([]BoardSummary, 0, len(boards))}
	for _, b := range boards {
		tasks, err := uc.tasks.ListTasks(ctx, domain.TaskFilter{BoardID: b.ID})
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		out.Boards = append(out.Boards, BoardSummary{Board: b, Tasks: len(tasks)})
	}
	return out, nil
}
