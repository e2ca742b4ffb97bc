package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/usecase/shared"
)

// MoveTaskInput contains the parameters for moving a task.
type MoveTaskInput struct {
	Reference string // Task reference (required)
	Column    string // Target column (required)
}

// MoveTaskOutput contains the result of moving a task.
type MoveTaskOutput struct {
	Task      *domain.Task
	Paused    *domain.SessionRecord // Session record paused by entering need_input
	DisplayID string
	From      domain.Column
	To        domain.Column
}

// MoveTask is the use case for moving a task to another column.
type MoveTask struct {
	resolver *shared.Resolver
	registry *shared.SessionRegistry
	tasks    domain.TaskRepository
	boards   domain.BoardRepository
	locker   domain.TaskLocker
	logger   domain.Logger
}

// NewMoveTask creates a new MoveTask use case.
func NewMoveTask(
	resolver *shared.Resolver,
	registry *shared.SessionRegistry,
	tasks domain.TaskRepository,
	boards domain.BoardRepository,
	locker domain.TaskLocker,
	logger domain.Logger,
) *MoveTask {
	return &MoveTask{
		resolver: resolver,
		registry: registry,
		tasks:    tasks,
		boards:   boards,
		locker:   locker,
		logger:   logger,
	}
}

// Execute moves the task. Entering need_input pauses the active session record,
// which makes the session claimable by a hand-back.
func (uc *MoveTask) Execute(ctx context.Context, in MoveTaskInput) (*MoveTaskOutput, error) {
	to, err := domain.ParseColumn(in.Column)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, in.Column)
	}

	resolved, err := uc.resolver.MustResolve(ctx, in.Reference)
	if err != nil {
		return nil, err
	}
	task, unlock, err := lockTask(ctx, uc.locker, uc.tasks, resolved.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	_, displayID, err := shared.DisplayID(ctx, uc.boards, task)
	if err != nil {
		return nil, err
	}

	out := &MoveTaskOutput{Task: task, DisplayID: displayID, From: task.Column, To: to}
	if task.Column == to {
		return out, nil
	}

	task.Column = to
	if err := uc.tasks.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	uc.logger.Info(displayID, "task", fmt.Sprintf("moved %s -> %s", out.From, to))

	if to == domain.ColumnNeedInput {
		paused, err := uc.registry.Pause(ctx, task)
		if err != nil {
			return nil, err
		}
		if paused != nil {
			uc.logger.Info(displayID, "session", "paused session "+domain.ShortID(paused.ID))
		}
		out.Paused = paused
	}
	return out, nil
}
