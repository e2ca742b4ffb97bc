package usecase

import (
	"context"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/usecase/shared"
)

// SessionHistoryInput contains the parameters for listing a task's sessions.
type SessionHistoryInput struct {
	Reference string // Task reference (required)
}

// SessionHistoryOutput contains the live session and every history record.
type SessionHistoryOutput struct {
	Task      *domain.Task
	Current   *domain.AgentSession
	DisplayID string
	Records   []domain.SessionRecord
}

// SessionHistory is the use case for listing a task's session history.
type SessionHistory struct {
	resolver *shared.Resolver
	registry *shared.SessionRegistry
	boards   domain.BoardRepository
}

// NewSessionHistory creates a new SessionHistory use case.
func NewSessionHistory(resolver *shared.Resolver, registry *shared.SessionRegistry, boards domain.BoardRepository) *SessionHistory {
	return &SessionHistory{
		resolver: resolver,
		registry: registry,
		boards:   boards,
	}
}

// Execute returns the session history, oldest first.
func (uc *SessionHistory) Execute(ctx context.Context, in SessionHistoryInput) (*SessionHistoryOutput, error) {
	task, err := uc.resolver.MustResolve(ctx, in.Reference)
	if err != nil {
		return nil, err
	}
	_, displayID, err := shared.DisplayID(ctx, uc.boards, task)
	if err != nil {
		return nil, err
	}
	records, err := uc.registry.History(ctx, task)
	if err != nil {
		return nil, err
	}

	return &SessionHistoryOutput{
		Task:      task,
		Current:   uc.registry.Current(task),
		DisplayID: displayID,
		Records:   records,
	}, nil
}
