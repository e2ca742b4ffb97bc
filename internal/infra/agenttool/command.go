package agenttool

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/runoshun/crewboard/internal/domain"
)

// commandData holds the values available to command templates.
type commandData struct {
	Command string // Tool binary
	Helper  string // Resumption helper for path references
	Dir     string // Working directory
	Ref     string // Session reference as the tool expects it
	Summary string // One-line message
}

var funcs = template.FuncMap{"quote": shellQuote}

func mustParse(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).Parse(text))
}

func render(tmpl *template.Template, data commandData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func validateTarget(target domain.ResumeTarget) error {
	if strings.TrimSpace(target.SessionRef) == "" {
		return domain.ErrEmptySessionRef
	}
	if !target.RefType.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidRefType, target.RefType)
	}
	return nil
}

// shellQuote wraps s in single quotes so the shell passes it through verbatim.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
