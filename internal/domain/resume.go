package domain

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// PromptTimeFormat is the timestamp layout used in resume prompts.
const PromptTimeFormat = "2006-01-02 15:04:05 UTC"

// maxSummaryRunes bounds the one-line message passed on the resume command line.
const maxSummaryRunes = 200

// ResumeTarget carries what a tool strategy needs to render a resume command.
type ResumeTarget struct {
	DisplayID  string
	SessionRef string
	RefType    RefType
	WorkingDir string
	Summary    string // One-line message handed to the tool
}

// ResumeResult is the context and command needed to re-attach a session.
type ResumeResult struct {
	Prompt     string `json:"prompt" yaml:"prompt"`
	Command    string `json:"command" yaml:"command"`
	Tool       Tool   `json:"tool" yaml:"tool"`
	SessionRef string `json:"sessionRef" yaml:"sessionRef"`
	WorkingDir string `json:"workingDir" yaml:"workingDir"`
}

// SortComments returns comments ordered by creation time, oldest first.
// Comments with equal timestamps keep their input order.
func SortComments(comments []Comment) []Comment {
	sorted := slices.Clone(comments)
	slices.SortStableFunc(sorted, func(a, b Comment) int {
		return a.Created.Compare(b.Created)
	})
	return sorted
}

// BuildResumePrompt assembles the conversation context for resuming a task.
// The output depends only on its arguments.
func BuildResumePrompt(task *Task, displayID string, comments []Comment) string {
	var b strings.Builder

	b.WriteString("Task: ")
	b.WriteString(displayID)
	b.WriteString(" ")
	b.WriteString(task.Title)
	b.WriteString("\nStatus: ")
	b.WriteString(task.Column.Display())
	b.WriteString("\n")

	if desc := strings.TrimSpace(task.Description); desc != "" {
		b.WriteString("\nDescription:\n")
		b.WriteString(desc)
		b.WriteString("\n")
	}

	sorted := SortComments(comments)
	if len(sorted) == 0 {
		b.WriteString("\nNo comments yet.\n")
		return b.String()
	}

	b.WriteString("\nConversation (")
	b.WriteString(strconv.Itoa(len(sorted)))
	b.WriteString(" comments, oldest first):\n")
	for i, c := range sorted {
		b.WriteString("\n[")
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString("] ")
		b.WriteString(string(c.AuthorType))
		if c.AuthorID != "" {
			b.WriteString(" (")
			b.WriteString(c.AuthorID)
			b.WriteString(")")
		}
		b.WriteString(" at ")
		b.WriteString(FormatPromptTime(c.Created))
		b.WriteString(":\n")
		b.WriteString(strings.TrimRight(c.Content, "\n"))
		b.WriteString("\n")
	}

	return b.String()
}

// FormatPromptTime formats t in UTC for prompts.
func FormatPromptTime(t time.Time) string {
	return t.UTC().Format(PromptTimeFormat)
}

// ResumeSummary returns the one-line message passed on the resume command line:
// the first line of the latest human comment, or a generic continuation line.
func ResumeSummary(task *Task, displayID string, comments []Comment) string {
	sorted := SortComments(comments)
	for i := len(sorted) - 1; i >= 0; i-- {
		c := sorted[i]
		if c.AuthorType != AuthorHuman {
			continue
		}
		line := firstLine(c.Content)
		if line != "" {
			return truncateRunes(line, maxSummaryRunes)
		}
	}
	return truncateRunes("Continue "+displayID+": "+task.Title, maxSummaryRunes)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
