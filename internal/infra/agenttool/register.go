// Package agenttool renders resume commands for the supported coding-agent CLIs.
// This package is responsible for CLI-specific details that domain should not know about.
package agenttool

import (
	"fmt"

	"github.com/runoshun/crewboard/internal/domain"
)

// strategyFactory builds a strategy from the tool's configuration.
type strategyFactory func(cfg domain.ToolConfig) domain.ResumeStrategy

// factories maps every supported tool to its strategy.
var factories = map[domain.Tool]strategyFactory{
	domain.ToolClaudeCode: newClaudeStrategy,
	domain.ToolOpenCode:   newOpenCodeStrategy,
	domain.ToolCodex:      newCodexStrategy,
}

// Strategies returns one strategy per supported tool, configured from cfg.
// It fails if a tool in domain.AllTools has no strategy.
func Strategies(cfg *domain.Config) ([]domain.ResumeStrategy, error) {
	tools := domain.AllTools()
	strategies := make([]domain.ResumeStrategy, 0, len(tools))
	for _, tool := range tools {
		factory, ok := factories[tool]
		if !ok {
			return nil, fmt.Errorf("%w: no resume strategy for %q", domain.ErrUnsupportedTool, tool)
		}
		strategies = append(strategies, factory(cfg.ToolConfigFor(tool)))
	}
	return strategies, nil
}
