package usecase

import (
	"context"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/usecase/shared"
)

// lockTask takes the per-task lock and re-reads the task under it,
// so that callers act on the latest stored state.
func lockTask(ctx context.Context, locker domain.TaskLocker, tasks domain.TaskRepository, taskID string) (*domain.Task, func(), error) {
	unlock, err := locker.Lock(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	task, err := shared.GetTask(ctx, tasks, taskID)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	return task, unlock, nil
}
