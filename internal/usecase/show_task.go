package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/usecase/shared"
)

// ShowTaskInput contains the parameters for showing a task.
type ShowTaskInput struct {
	Reference string // Identity, display id, identity prefix or title fragment
}

// ShowTaskOutput contains the task with its conversation and session history.
// Fields are ordered to minimize memory padding.
type ShowTaskOutput struct {
	Task      *domain.Task
	Board     *domain.Board
	Session   *domain.AgentSession
	DisplayID string
	Comments  []domain.Comment
	History   []domain.SessionRecord
}

// ShowTask is the use case for displaying task details.
type ShowTask struct {
	resolver *shared.Resolver
	registry *shared.SessionRegistry
	boards   domain.BoardRepository
	comments domain.CommentRepository
}

// NewShowTask creates a new ShowTask use case.
func NewShowTask(
	resolver *shared.Resolver,
	registry *shared.SessionRegistry,
	boards domain.BoardRepository,
	comments domain.CommentRepository,
) *ShowTask {
	return &ShowTask{
		resolver: resolver,
		registry: registry,
		boards:   boards,
		comments: comments,
	}
}

// Execute resolves the reference and gathers the task's details.
func (uc *ShowTask) Execute(ctx context.Context, in ShowTaskInput) (*ShowTaskOutput, error) {
	task, err := uc.resolver.MustResolve(ctx, in.Reference)
	if err != nil {
		return nil, err
	}

	board, displayID, err := shared.DisplayID(ctx, uc.boards, task)
	if err != nil {
		return nil, err
	}

	comments, err := uc.comments.ListComments(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	history, err := uc.registry.History(ctx, task)
	if err != nil {
		return nil, err
	}

	return &ShowTaskOutput{
		Task:      task,
		Board:     board,
		Session:   uc.registry.Current(task),
		DisplayID: displayID,
		Comments:  domain.SortComments(comments),
		History:   history,
	}, nil
}
