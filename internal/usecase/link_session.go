package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/usecase/shared"
)

// LinkSessionInput contains the parameters for linking an agent session.
// Fields are ordered to minimize memory padding.
type LinkSessionInput struct {
	Reference  string // Task reference (required)
	Tool       string // opencode, claude-code or codex (required)
	SessionRef string // Tool-native session id or session file path (required)
	RefType    string // uuid or path (guessed from SessionRef when empty)
	WorkingDir string // Absolute directory the session runs in (required)
}

// LinkSessionOutput contains the result of linking an agent session.
type LinkSessionOutput struct {
	Task      *domain.Task
	Record    *domain.SessionRecord
	DisplayID string
}

// LinkSession is the use case for attaching an external agent session to a task.
type LinkSession struct {
	resolver *shared.Resolver
	registry *shared.SessionRegistry
	tasks    domain.TaskRepository
	boards   domain.BoardRepository
	locker   domain.TaskLocker
	logger   domain.Logger
}

// NewLinkSession creates a new LinkSession use case.
func NewLinkSession(
	resolver *shared.Resolver,
	registry *shared.SessionRegistry,
	tasks domain.TaskRepository,
	boards domain.BoardRepository,
	locker domain.TaskLocker,
	logger domain.Logger,
) *LinkSession {
	return &LinkSession{
		resolver: resolver,
		registry: registry,
		tasks:    tasks,
		boards:   boards,
		locker:   locker,
		logger:   logger,
	}
}

// Execute links the session, replacing any session already linked to the task.
// Linking to a need_input task leaves the new record paused, so that the next
// hand-back can claim it.
func (uc *LinkSession) Execute(ctx context.Context, in LinkSessionInput) (*LinkSessionOutput, error) {
	tool, err := domain.ParseTool(in.Tool)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, in.Tool)
	}

	ref := strings.TrimSpace(in.SessionRef)
	refType := domain.GuessRefType(ref)
	if in.RefType != "" {
		refType = domain.RefType(strings.ToLower(strings.TrimSpace(in.RefType)))
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

	record, err := uc.registry.Link(ctx, task, tool, ref, refType, in.WorkingDir)
	if err != nil {
		return nil, err
	}
	uc.logger.Info(displayID, "session", fmt.Sprintf("linked %s session %s (%s)", tool, ref, refType))

	if task.IsBlocked() {
		paused, err := uc.registry.Pause(ctx, task)
		if err != nil {
			return nil, err
		}
		if paused != nil {
			uc.logger.Info(displayID, "session", "paused session "+domain.ShortID(paused.ID))
			record = paused
		}
	}

	return &LinkSessionOutput{Task: task, Record: record, DisplayID: displayID}, nil
}
