package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Tool identifies an external coding-agent CLI.
type Tool string

// Supported tools.
const (
	ToolOpenCode   Tool = "opencode"
	ToolClaudeCode Tool = "claude-code"
	ToolCodex      Tool = "codex"
)

// AllTools returns all supported tools.
func AllTools() []Tool {
	return []Tool{ToolOpenCode, ToolClaudeCode, ToolCodex}
}

// IsValid returns true if the tool is supported.
func (t Tool) IsValid() bool {
	switch t {
	case ToolOpenCode, ToolClaudeCode, ToolCodex:
		return true
	default:
		return false
	}
}

// ParseTool parses user input into a Tool. "claude" is accepted for claude-code.
func ParseTool(s string) (Tool, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == "claude" {
		return ToolClaudeCode, nil
	}
	t := Tool(normalized)
	if !t.IsValid() {
		return "", ErrUnsupportedTool
	}
	return t, nil
}

// RefType says how an external session reference is interpreted.
type RefType string

const (
	RefTypeUUID RefType = "uuid" // Tool-native session identifier
	RefTypePath RefType = "path" // Path to the tool's session file
)

// IsValid returns true if the ref type is a known value.
func (r RefType) IsValid() bool {
	return r == RefTypeUUID || r == RefTypePath
}

// GuessRefType returns RefTypePath for references that look like file paths.
func GuessRefType(ref string) RefType {
	if filepath.IsAbs(ref) || strings.ContainsRune(ref, filepath.Separator) || strings.HasSuffix(ref, ".jsonl") {
		return RefTypePath
	}
	return RefTypeUUID
}

// AgentSession is the live session pointer stored on a task.
// Fields are ordered to minimize memory padding.
type AgentSession struct {
	LinkedAt   time.Time `json:"linked_at"`
	Tool       Tool      `json:"tool"`
	Ref        string    `json:"ref"`
	RefType    RefType   `json:"ref_type"`
	WorkingDir string    `json:"working_dir"`
}

// SessionStatus represents the lifecycle state of a session history record.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionPaused    SessionStatus = "paused"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
)

// sessionTransitions defines the allowed status transitions.
// Flow: active ⇄ paused → completed | abandoned
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionActive:    {SessionPaused, SessionCompleted, SessionAbandoned},
	SessionPaused:    {SessionActive, SessionCompleted, SessionAbandoned},
	SessionCompleted: {},
	SessionAbandoned: {},
}

// IsValid returns true if the status is a known value.
func (s SessionStatus) IsValid() bool {
	_, ok := sessionTransitions[s]
	return ok
}

// CanTransitionTo returns true if the status can transition to the target status.
func (s SessionStatus) CanTransitionTo(target SessionStatus) bool {
	for _, t := range sessionTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true for completed and abandoned.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionAbandoned
}

// SessionRecord is one linking episode between a task and an external session.
// Fields are ordered to minimize memory padding.
type SessionRecord struct {
	Created     time.Time     `json:"created"`
	EndedAt     *time.Time    `json:"ended_at,omitempty"`
	ID          string        `json:"id"`
	TaskID      string        `json:"task"`
	Tool        Tool          `json:"tool"`
	ExternalRef string        `json:"external_ref"`
	RefType     RefType       `json:"ref_type"`
	WorkingDir  string        `json:"working_dir"`
	Status      SessionStatus `json:"status"`
}

// TransitionTo moves the record to target, stamping EndedAt for terminal statuses.
func (r *SessionRecord) TransitionTo(target SessionStatus, now time.Time) error {
	if !r.Status.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	r.Status = target
	if target.IsTerminal() {
		ended := now
		r.EndedAt = &ended
	}
	return nil
}

// UnlinkReason states why a live session pointer is being cleared.
type UnlinkReason string

const (
	UnlinkPause    UnlinkReason = "pause"
	UnlinkComplete UnlinkReason = "complete"
	UnlinkAbandon  UnlinkReason = "abandon"
)

// TargetStatus returns the history status an unlink with this reason leads to.
func (r UnlinkReason) TargetStatus() (SessionStatus, error) {
	switch r {
	case UnlinkPause:
		return SessionPaused, nil
	case UnlinkComplete:
		return SessionCompleted, nil
	case UnlinkAbandon:
		return SessionAbandoned, nil
	default:
		return "", ErrInvalidUnlinkReason
	}
}
