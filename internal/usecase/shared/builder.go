package shared

import (
	"fmt"

	"github.com/runoshun/crewboard/internal/domain"
)

// ResumeBuilder assembles the prompt and tool command needed to resume a task's session.
// Each tool is handled by its own domain.ResumeStrategy.
type ResumeBuilder struct {
	strategies map[domain.Tool]domain.ResumeStrategy
}

// NewResumeBuilder creates a ResumeBuilder dispatching to strategies.
// A later strategy for the same tool replaces an earlier one.
func NewResumeBuilder(strategies ...domain.ResumeStrategy) *ResumeBuilder {
	m := make(map[domain.Tool]domain.ResumeStrategy, len(strategies))
	for _, s := range strategies {
		m[s.Tool()] = s
	}
	return &ResumeBuilder{strategies: m}
}

// Supports returns true if a strategy is registered for tool.
func (b *ResumeBuilder) Supports(tool domain.Tool) bool {
	_, ok := b.strategies[tool]
	return ok
}

// Build returns the resume prompt and command for task.
// The result depends only on the arguments. An empty comment list is allowed.
func (b *ResumeBuilder) Build(task *domain.Task, displayID string, comments []domain.Comment) (*domain.ResumeResult, error) {
	if !task.HasSession() {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingSession, displayID)
	}
	session := task.AgentSession

	strategy, ok := b.strategies[session.Tool]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedTool, session.Tool)
	}

	command, err := strategy.RenderCommand(domain.ResumeTarget{
		DisplayID:  displayID,
		SessionRef: session.Ref,
		RefType:    session.RefType,
		WorkingDir: session.WorkingDir,
		Summary:    domain.ResumeSummary(task, displayID, comments),
	})
	if err != nil {
		return nil, fmt.Errorf("render %s command: %w", session.Tool, err)
	}

	return &domain.ResumeResult{
		Prompt:     domain.BuildResumePrompt(task, displayID, comments),
		Command:    command,
		Tool:       session.Tool,
		SessionRef: session.Ref,
		WorkingDir: session.WorkingDir,
	}, nil
}
