package shared

import (
	"context"
	"fmt"

	"github.com/runoshun/crewboard/internal/domain"
)

// MentionTrigger decides whether a committed comment hands its task back to the agent.
// Evaluation only reads from the store.
type MentionTrigger struct {
	tasks  domain.TaskRepository
	boards domain.BoardRepository
}

// NewMentionTrigger creates a new MentionTrigger.
func NewMentionTrigger(tasks domain.TaskRepository, boards domain.BoardRepository) *MentionTrigger {
	return &MentionTrigger{
		tasks:  tasks,
		boards: boards,
	}
}

// Evaluate loads the comment's task and board and decides what to do.
// The task and board are returned alongside the decision for callers that act on it.
func (m *MentionTrigger) Evaluate(ctx context.Context, comment *domain.Comment) (TriggerEvaluation, error) {
	// Author and mention checks need no store access.
	if decision := domain.DecideHandBack(comment, nil, nil); decision.Reason == domain.ReasonAgentAuthor ||
		decision.Reason == domain.ReasonNoMention {
		return TriggerEvaluation{Decision: decision}, nil
	}

	task, err := m.tasks.GetTask(ctx, comment.TaskID)
	if err != nil {
		return TriggerEvaluation{}, fmt.Errorf("get task: %w", err)
	}
	var board *domain.Board
	if task != nil {
		board, err = TaskBoard(ctx, m.boards, task)
		if err != nil {
			return TriggerEvaluation{}, err
		}
	}

	return TriggerEvaluation{
		Task:     task,
		Board:    board,
		Decision: domain.DecideHandBack(comment, task, board),
	}, nil
}

// TriggerEvaluation is the decision plus the state it was computed from.
type TriggerEvaluation struct {
	Task     *domain.Task
	Board    *domain.Board
	Decision domain.TriggerDecision
}
