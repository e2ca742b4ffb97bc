package shared

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/crewboard/internal/domain"
)

// Resolution is the outcome of resolving a task reference.
// Task is set when exactly one task matched; Matches holds every candidate.
type Resolution struct {
	Task    *domain.Task
	Matches []*domain.Task
}

// Found returns true if the reference resolved to a single task.
func (r Resolution) Found() bool {
	return r.Task != nil
}

// Ambiguous returns true if more than one task matched.
func (r Resolution) Ambiguous() bool {
	return len(r.Matches) > 1
}

// Resolver turns human-typed references into tasks.
// Rules are tried in order and the first rule producing a candidate wins:
//
//  1. exact ID
//  2. display ID (PREFIX-SEQ)
//  3. ID prefix
//  4. case-insensitive title substring
type Resolver struct {
	tasks  domain.TaskRepository
	boards domain.BoardRepository
}

// NewResolver creates a new Resolver.
func NewResolver(tasks domain.TaskRepository, boards domain.BoardRepository) *Resolver {
	return &Resolver{
		tasks:  tasks,
		boards: boards,
	}
}

// Resolve resolves reference into zero, one or many tasks. It performs no writes.
func (r *Resolver) Resolve(ctx context.Context, reference string) (Resolution, error) {
	text := strings.TrimSpace(reference)
	key := strings.TrimPrefix(text, "#")
	if key == "" {
		return Resolution{}, domain.ErrEmptyReference
	}

	task, err := r.tasks.GetTask(ctx, key)
	if err != nil {
		return Resolution{}, fmt.Errorf("get task: %w", err)
	}
	if task != nil {
		return single(task), nil
	}

	if prefix, seq, ok := domain.ParseDisplayID(key); ok {
		task, err := r.byDisplayID(ctx, prefix, seq)
		if err != nil {
			return Resolution{}, err
		}
		if task != nil {
			return single(task), nil
		}
	}

	matches, err := r.tasks.ListTasks(ctx, domain.TaskFilter{IDPrefix: key})
	if err != nil {
		return Resolution{}, fmt.Errorf("list tasks by id prefix: %w", err)
	}
	if len(matches) > 0 {
		return fromMatches(matches), nil
	}

	matches, err = r.tasks.ListTasks(ctx, domain.TaskFilter{TitleContains: text})
	if err != nil {
		return Resolution{}, fmt.Errorf("list tasks by title: %w", err)
	}
	return fromMatches(matches), nil
}

// MustResolve resolves reference to exactly one task.
// It fails with domain.ErrTaskNotFound when nothing matched and with
// *domain.AmbiguousReferenceError when several tasks matched.
func (r *Resolver) MustResolve(ctx context.Context, reference string) (*domain.Task, error) {
	res, err := r.Resolve(ctx, reference)
	if err != nil {
		return nil, err
	}
	if res.Found() {
		return res.Task, nil
	}
	text := strings.TrimSpace(reference)
	if res.Ambiguous() {
		return nil, &domain.AmbiguousReferenceError{
			Reference: text,
			Matches:   res.Matches,
		}
	}
	return nil, fmt.Errorf("%w matching: %s", domain.ErrTaskNotFound, text)
}

func (r *Resolver) byDisplayID(ctx context.Context, prefix string, seq int) (*domain.Task, error) {
	board, err := r.boards.GetBoardByPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	if board == nil {
		return nil, nil
	}
	tasks, err := r.tasks.ListTasks(ctx, domain.TaskFilter{BoardID: board.ID, Seq: seq})
	if err != nil {
		return nil, fmt.Errorf("list tasks by display id: %w", err)
	}
	if len(tasks) != 1 {
		return nil, nil
	}
	return tasks[0], nil
}

func single(task *domain.Task) Resolution {
	return Resolution{Task: task, Matches: []*domain.Task{task}}
}

func fromMatches(matches []*domain.Task) Resolution {
	switch len(matches) {
	case 0:
		return Resolution{}
	case 1:
		return single(matches[0])
	default:
		return Resolution{Matches: matches}
	}
}
