package agenttool

import "github.com/runoshun/crewboard/internal/domain"

var (
	// opencodeSessionTemplate resumes an OpenCode session by id.
	opencodeSessionTemplate = mustParse("opencode",
		`cd {{quote .Dir}} && {{.Command}} --session {{quote .Ref}} --prompt {{quote .Summary}}`)

	// opencodePathTemplate hands a session file to the resumption helper.
	opencodePathTemplate = mustParse("opencode-path",
		`cd {{quote .Dir}} && {{.Helper}} --session-path {{quote .Ref}} {{quote .Summary}}`)
)

type openCodeStrategy struct {
	cfg domain.ToolConfig
}

func newOpenCodeStrategy(cfg domain.ToolConfig) domain.ResumeStrategy {
	return &openCodeStrategy{cfg: cfg}
}

func (s *openCodeStrategy) Tool() domain.Tool {
	return domain.ToolOpenCode
}

func (s *openCodeStrategy) RenderCommand(target domain.ResumeTarget) (string, error) {
	if err := validateTarget(target); err != nil {
		return "", err
	}
	tmpl := opencodeSessionTemplate
	if target.RefType == domain.RefTypePath {
		tmpl = opencodePathTemplate
	}
	return render(tmpl, commandData{
		Command: s.cfg.Command,
		Helper:  s.cfg.Helper,
		Dir:     target.WorkingDir,
		Ref:     target.SessionRef,
		Summary: target.Summary,
	})
}
