package agenttool

import "github.com/runoshun/crewboard/internal/domain"

var (
	// codexSessionTemplate resumes a Codex session by id.
	codexSessionTemplate = mustParse("codex",
		`cd {{quote .Dir}} && {{.Command}} resume {{quote .Ref}} {{quote .Summary}}`)

	// codexPathTemplate looks the session up by rollout file path.
	codexPathTemplate = mustParse("codex-path",
		`cd {{quote .Dir}} && {{.Helper}} {{quote .Ref}} {{quote .Summary}}`)
)

type codexStrategy struct {
	cfg domain.ToolConfig
}

func newCodexStrategy(cfg domain.ToolConfig) domain.ResumeStrategy {
	return &codexStrategy{cfg: cfg}
}

func (s *codexStrategy) Tool() domain.Tool {
	return domain.ToolCodex
}

func (s *codexStrategy) RenderCommand(target domain.ResumeTarget) (string, error) {
	if err := validateTarget(target); err != nil {
		return "", err
	}
	tmpl := codexSessionTemplate
	if target.RefType == domain.RefTypePath {
		tmpl = codexPathTemplate
	}
	return render(tmpl, commandData{
		Command: s.cfg.Command,
		Helper:  s.cfg.Helper,
		Dir:     target.WorkingDir,
		Ref:     target.SessionRef,
		Summary: target.Summary,
	})
}
