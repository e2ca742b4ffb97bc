package agenttool

import (
	"path/filepath"
	"strings"

	"github.com/runoshun/crewboard/internal/domain"
)

// claudeTemplate resumes a Claude Code conversation by session id.
var claudeTemplate = mustParse("claude-code",
	`cd {{quote .Dir}} && {{.Command}} --resume {{quote .Ref}} {{quote .Summary}}`)

type claudeStrategy struct {
	cfg domain.ToolConfig
}

func newClaudeStrategy(cfg domain.ToolConfig) domain.ResumeStrategy {
	return &claudeStrategy{cfg: cfg}
}

func (s *claudeStrategy) Tool() domain.Tool {
	return domain.ToolClaudeCode
}

// RenderCommand renders the resume command.
// Claude Code names transcript files <session id>.jsonl, so path references
// resume by the file's base name.
func (s *claudeStrategy) RenderCommand(target domain.ResumeTarget) (string, error) {
	if err := validateTarget(target); err != nil {
		return "", err
	}
	ref := target.SessionRef
	if target.RefType == domain.RefTypePath {
		ref = strings.TrimSuffix(filepath.Base(ref), ".jsonl")
	}
	return render(claudeTemplate, commandData{
		Command: s.cfg.Command,
		Dir:     target.WorkingDir,
		Ref:     ref,
		Summary: target.Summary,
	})
}
