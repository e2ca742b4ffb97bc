package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/usecase/shared"
)

// AttachSessionInput contains the parameters for attaching to a launched session.
type AttachSessionInput struct {
	Reference string // Task reference (required)
}

// AttachSessionOutput contains the attached session name.
type AttachSessionOutput struct {
	SessionName string
	DisplayID   string
}

// AttachSession is the use case for attaching the terminal to a session
// that a hand-back launched in the background.
type AttachSession struct {
	resolver *shared.Resolver
	boards   domain.BoardRepository
	launcher domain.Launcher // nil when launching is disabled
}

// NewAttachSession creates a new AttachSession use case.
func NewAttachSession(resolver *shared.Resolver, boards domain.BoardRepository, launcher domain.Launcher) *AttachSession {
	return &AttachSession{
		resolver: resolver,
		boards:   boards,
		launcher: launcher,
	}
}

// Execute attaches to the task's launched session.
func (uc *AttachSession) Execute(ctx context.Context, in AttachSessionInput) (*AttachSessionOutput, error) {
	task, err := uc.resolver.MustResolve(ctx, in.Reference)
	if err != nil {
		return nil, err
	}
	_, displayID, err := shared.DisplayID(ctx, uc.boards, task)
	if err != nil {
		return nil, err
	}
	if uc.launcher == nil {
		return nil, fmt.Errorf("%w: launching is disabled", domain.ErrNoLaunchedSession)
	}

	name := domain.LaunchSessionName(displayID)
	if err := uc.launcher.Attach(name); err != nil {
		return nil, fmt.Errorf("attach %s: %w", displayID, err)
	}
	return &AttachSessionOutput{SessionName: name, DisplayID: displayID}, nil
}
