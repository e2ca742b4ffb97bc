package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/usecase/shared"
)

// DeleteTaskInput contains the parameters for deleting a task.
type DeleteTaskInput struct {
	Reference string // Task reference (required)
}

// DeleteTaskOutput contains the result of deleting a task.
type DeleteTaskOutput struct {
	Task      *domain.Task
	DisplayID string
	Stopped   bool // A launched session was stopped
}

// DeleteTask is the use case for deleting a task.
type DeleteTask struct {
	resolver *shared.Resolver
	tasks    domain.TaskRepository
	boards   domain.BoardRepository
	launcher domain.Launcher // nil when launching is disabled
	locker   domain.TaskLocker
	logger   domain.Logger
}

// NewDeleteTask creates a new DeleteTask use case.
func NewDeleteTask(
	resolver *shared.Resolver,
	tasks domain.TaskRepository,
	boards domain.BoardRepository,
	launcher domain.Launcher,
	locker domain.TaskLocker,
	logger domain.Logger,
) *DeleteTask {
	return &DeleteTask{
		resolver: resolver,
		tasks:    tasks,
		boards:   boards,
		launcher: launcher,
		locker:   locker,
		logger:   logger,
	}
}

// Execute deletes the task together with its comments and session history.
// A session launched for the task is stopped first.
func (uc *DeleteTask) Execute(ctx context.Context, in DeleteTaskInput) (*DeleteTaskOutput, error) {
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
	out := &DeleteTaskOutput{Task: task, DisplayID: displayID}

	if uc.launcher != nil {
		name := domain.LaunchSessionName(displayID)
		running, err := uc.launcher.IsRunning(name)
		if err != nil {
			return nil, fmt.Errorf("check launched session: %w", err)
		}
		if running {
			if err := uc.launcher.Stop(name); err != nil {
				return nil, fmt.Errorf("stop launched session: %w", err)
			}
			out.Stopped = true
		}
	}

	if err := uc.tasks.DeleteTask(ctx, task.ID); err != nil {
		return nil, fmt.Errorf("delete task: %w", err)
	}
	uc.logger.Info(displayID, "task", "deleted")

	return out, nil
}
