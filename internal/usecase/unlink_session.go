package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/usecase/shared"
)

// UnlinkSessionInput contains the parameters for unlinking an agent session.
type UnlinkSessionInput struct {
	Reference string // Task reference (required)
	Reason    string // pause (default), complete or abandon
}

// UnlinkSessionOutput contains the result of unlinking an agent session.
type UnlinkSessionOutput struct {
	Task      *domain.Task
	Record    *domain.SessionRecord // Closed or paused history record (nil if none was open)
	DisplayID string
}

// UnlinkSession is the use case for clearing a task's live session pointer.
type UnlinkSession struct {
	resolver *shared.Resolver
	registry *shared.SessionRegistry
	tasks    domain.TaskRepository
	boards   domain.BoardRepository
	locker   domain.TaskLocker
	logger   domain.Logger
}

// NewUnlinkSession creates a new UnlinkSession use case.
func NewUnlinkSession(
	resolver *shared.Resolver,
	registry *shared.SessionRegistry,
	tasks domain.TaskRepository,
	boards domain.BoardRepository,
	locker domain.TaskLocker,
	logger domain.Logger,
) *UnlinkSession {
	return &UnlinkSession{
		resolver: resolver,
		registry: registry,
		tasks:    tasks,
		boards:   boards,
		locker:   locker,
		logger:   logger,
	}
}

// Execute unlinks the session. History records are kept.
func (uc *UnlinkSession) Execute(ctx context.Context, in UnlinkSessionInput) (*UnlinkSessionOutput, error) {
	reason := domain.UnlinkPause
	if in.Reason != "" {
		reason = domain.UnlinkReason(strings.ToLower(strings.TrimSpace(in.Reason)))
	}
	if _, err := reason.TargetStatus(); err != nil {
		return nil, fmt.Errorf("%w: %q", err, in.Reason)
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

	record, err := uc.registry.Unlink(ctx, task, reason)
	if err != nil {
		return nil, fmt.Errorf("unlink %s: %w", displayID, err)
	}
	uc.logger.Info(displayID, "session", "unlinked ("+string(reason)+")")

	return &UnlinkSessionOutput{Task: task, Record: record, DisplayID: displayID}, nil
}
