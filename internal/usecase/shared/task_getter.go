package shared

import (
	"context"
	"fmt"

	"github.com/runoshun/crewboard/internal/domain"
)

// GetTask retrieves a task by ID and returns domain.ErrTaskNotFound if not found.
// This centralizes the common pattern of:
//
//	task, err := repo.GetTask(ctx, taskID)
//	if err != nil { return nil, fmt.Errorf("get task: %w", err) }
//	if task == nil { return nil, domain.ErrTaskNotFound }
func GetTask(ctx context.Context, repo domain.TaskRepository, taskID string) (*domain.Task, error) {
	task, err := repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// GetBoard retrieves a board by ID and returns domain.ErrBoardNotFound if not found.
func GetBoard(ctx context.Context, repo domain.BoardRepository, boardID string) (*domain.Board, error) {
	board, err := repo.GetBoard(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	if board == nil {
		return nil, domain.ErrBoardNotFound
	}
	return board, nil
}

// GetBoardByPrefix retrieves a board by display prefix and returns
// domain.ErrBoardNotFound if not found.
func GetBoardByPrefix(ctx context.Context, repo domain.BoardRepository, prefix string) (*domain.Board, error) {
	normalized, err := domain.NormalizePrefix(prefix)
	if err != nil {
		return nil, err
	}
	board, err := repo.GetBoardByPrefix(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	if board == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrBoardNotFound, normalized)
	}
	return board, nil
}

// TaskBoard returns the board owning task. A dangling board reference yields nil.
func TaskBoard(ctx context.Context, repo domain.BoardRepository, task *domain.Task) (*domain.Board, error) {
	board, err := repo.GetBoard(ctx, task.BoardID)
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	return board, nil
}

// DisplayID returns the board of task and its display identifier.
func DisplayID(ctx context.Context, repo domain.BoardRepository, task *domain.Task) (*domain.Board, string, error) {
	board, err := TaskBoard(ctx, repo, task)
	if err != nil {
		return nil, "", err
	}
	return board, task.DisplayID(board), nil
}
