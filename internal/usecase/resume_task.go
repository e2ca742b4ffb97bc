package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/usecase/shared"
)

// ResumeTaskInput contains the parameters for resuming a task's session.
type ResumeTaskInput struct {
	Reference string // Task reference (required)
	Exec      bool   // Run the command in the terminal instead of printing it
}

// ResumeTaskOutput contains the resume prompt and command.
// Fields are ordered to minimize memory padding.
type ResumeTaskOutput struct {
	Task      *domain.Task
	Board     *domain.Board
	Result    *domain.ResumeResult
	DisplayID string
	Executed  bool
}

// ResumeTask is the use case for an explicit resume request.
type ResumeTask struct {
	resolver *shared.Resolver
	builder  *shared.ResumeBuilder
	registry *shared.SessionRegistry
	tasks    domain.TaskRepository
	boards   domain.BoardRepository
	comments domain.CommentRepository
	executor domain.CommandExecutor
	locker   domain.TaskLocker
	logger   domain.Logger
}

// NewResumeTask creates a new ResumeTask use case.
func NewResumeTask(
	resolver *shared.Resolver,
	builder *shared.ResumeBuilder,
	registry *shared.SessionRegistry,
	tasks domain.TaskRepository,
	boards domain.BoardRepository,
	comments domain.CommentRepository,
	executor domain.CommandExecutor,
	locker domain.TaskLocker,
	logger domain.Logger,
) *ResumeTask {
	return &ResumeTask{
		resolver: resolver,
		builder:  builder,
		registry: registry,
		tasks:    tasks,
		boards:   boards,
		comments: comments,
		executor: executor,
		locker:   locker,
		logger:   logger,
	}
}

// Execute builds the resume prompt and command for the task's live session.
// With Exec, the command runs attached to the terminal; boards in manual
// mode refuse execution.
func (uc *ResumeTask) Execute(ctx context.Context, in ResumeTaskInput) (*ResumeTaskOutput, error) {
	task, err := uc.resolver.MustResolve(ctx, in.Reference)
	if err != nil {
		return nil, err
	}
	if !in.Exec {
		return uc.build(ctx, task)
	}

	task, unlock, err := lockTask(ctx, uc.locker, uc.tasks, task.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	out, err := uc.build(ctx, task)
	if err != nil {
		return nil, err
	}
	mode := domain.ResumeModeManual
	if out.Board != nil {
		mode = out.Board.ResumeMode
	}
	if !mode.AllowsExec() {
		return nil, fmt.Errorf("%w (%s)", domain.ErrResumeExecDisabled, out.DisplayID)
	}

	claimed := true
	if _, err := uc.registry.Claim(ctx, task); err != nil {
		if !errors.Is(err, domain.ErrSessionAlreadyActive) {
			return nil, fmt.Errorf("claim session for %s: %w", out.DisplayID, err)
		}
		claimed = false
	}

	uc.logger.Info(out.DisplayID, "resume", "executing "+out.Result.Command)
	cmd := domain.NewShellCommand(out.Result.Command, out.Result.WorkingDir)
	if err := uc.executor.ExecuteInteractive(ctx, cmd); err != nil {
		if claimed {
			if releaseErr := uc.registry.Release(ctx, task); releaseErr != nil {
				uc.logger.Error(out.DisplayID, "resume", "release session: "+releaseErr.Error())
			}
		}
		return nil, fmt.Errorf("resume %s: %w", out.DisplayID, err)
	}

	out.Executed = true
	return out, nil
}

func (uc *ResumeTask) build(ctx context.Context, task *domain.Task) (*ResumeTaskOutput, error) {
	board, displayID, err := shared.DisplayID(ctx, uc.boards, task)
	if err != nil {
		return nil, err
	}
	comments, err := uc.comments.ListComments(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	result, err := uc.builder.Build(task, displayID, comments)
	if err != nil {
		return nil, err
	}
	return &ResumeTaskOutput{Task: task, Board: board, Result: result, DisplayID: displayID}, nil
}
