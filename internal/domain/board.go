package domain

import (
	"regexp"
	"strings"
	"time"
)

// Board groups tasks and carries the resume policy for them.
// Fields are ordered to minimize memory padding.
type Board struct {
	Created    time.Time  `json:"created"`
	ID         string     `json:"id"`
	Prefix     string     `json:"prefix"` // Display prefix (e.g. WRK)
	Name       string     `json:"name"`
	ResumeMode ResumeMode `json:"resume_mode"`
}

// ResumeMode governs what a hand-back mention is allowed to do.
type ResumeMode string

const (
	// ResumeModeManual only ever produces a human-readable command.
	ResumeModeManual ResumeMode = "manual"

	// ResumeModeCommand ignores mentions; resumes happen on explicit request only.
	ResumeModeCommand ResumeMode = "command"

	// ResumeModeAuto resumes the session as soon as a qualifying mention arrives.
	ResumeModeAuto ResumeMode = "auto"
)

// AllResumeModes returns all valid resume modes.
func AllResumeModes() []ResumeMode {
	return []ResumeMode{ResumeModeManual, ResumeModeCommand, ResumeModeAuto}
}

// IsValid returns true if the resume mode is a known value.
func (m ResumeMode) IsValid() bool {
	switch m {
	case ResumeModeManual, ResumeModeCommand, ResumeModeAuto:
		return true
	default:
		return false
	}
}

// Display returns a human-readable representation of the resume mode.
func (m ResumeMode) Display() string {
	switch m {
	case ResumeModeManual:
		return "Manual"
	case ResumeModeCommand:
		return "Command"
	case ResumeModeAuto:
		return "Auto"
	default:
		return string(m)
	}
}

// AllowsExec returns true if a resume command may be executed for boards in this mode.
func (m ResumeMode) AllowsExec() bool {
	return m == ResumeModeCommand || m == ResumeModeAuto
}

// ParseResumeMode parses user input into a ResumeMode.
func ParseResumeMode(s string) (ResumeMode, error) {
	m := ResumeMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", ErrInvalidResumeMode
	}
	return m, nil
}

var prefixPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,9}$`)

// NormalizePrefix upper-cases and validates a board prefix.
func NormalizePrefix(prefix string) (string, error) {
	p := strings.ToUpper(strings.TrimSpace(prefix))
	if !prefixPattern.MatchString(p) {
		return "", ErrInvalidPrefix
	}
	return p, nil
}
