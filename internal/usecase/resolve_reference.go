package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/usecase/shared"
)

// ResolveReferenceInput contains the reference to resolve.
type ResolveReferenceInput struct {
	Reference string
}

// ResolveReferenceOutput contains every task the reference matched.
type ResolveReferenceOutput struct {
	Items     []TaskItem
	Ambiguous bool
}

// ResolveReference is the use case behind reference lookups.
type ResolveReference struct {
	resolver *shared.Resolver
	boards   domain.BoardRepository
}

// NewResolveReference creates a new ResolveReference use case.
func NewResolveReference(resolver *shared.Resolver, boards domain.BoardRepository) *ResolveReference {
	return &ResolveReference{
		resolver: resolver,
		boards:   boards,
	}
}

// Execute resolves the reference. Ambiguity is reported as data, not as an error;
// a reference that matches nothing returns domain.ErrTaskNotFound.
func (uc *ResolveReference) Execute(ctx context.Context, in ResolveReferenceInput) (*ResolveReferenceOutput, error) {
	res, err := uc.resolver.Resolve(ctx, in.Reference)
	if err != nil {
		return nil, err
	}
	if !res.Found() && !res.Ambiguous() {
		return nil, fmt.Errorf("%w matching: %s", domain.ErrTaskNotFound, strings.TrimSpace(in.Reference))
	}

	tasks := res.Matches
	if res.Found() {
		tasks = []*domain.Task{res.Task}
	}
	items, err := describeTasks(ctx, uc.boards, tasks)
	if err != nil {
		return nil, err
	}
	return &ResolveReferenceOutput{Items: items, Ambiguous: res.Ambiguous()}, nil
}
