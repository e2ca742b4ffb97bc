// Package domain contains core business entities and interfaces.
package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Task represents a card on a board.
// Fields are ordered to minimize memory padding.
type Task struct {
	Created      time.Time     `json:"created"`                 // Assigned by the store
	Updated      time.Time     `json:"updated"`                 // Assigned by the store
	AgentSession *AgentSession `json:"agent_session,omitempty"` // Live session pointer (nil = none linked)
	ID           string        `json:"id"`                      // Opaque identity (UUID)
	BoardID      string        `json:"board"`                   // Owning board
	Title        string        `json:"title"`                   // Title (required)
	Description  string        `json:"description,omitempty"`   // Description (optional)
	Column       Column        `json:"column"`                  // Current column
	Seq          int           `json:"seq"`                     // Board-scoped sequence number
}

// HasSession returns true if an agent session is linked to the task.
func (t *Task) HasSession() bool {
	return t.AgentSession != nil
}

// IsBlocked returns true if the task is waiting for human input.
func (t *Task) IsBlocked() bool {
	return t.Column == ColumnNeedInput
}

// DisplayID returns the board-prefixed identifier of the task (e.g. WRK-12).
// If board is nil, the first eight characters of the identity are used.
func (t *Task) DisplayID(board *Board) string {
	if board == nil || board.Prefix == "" {
		return ShortID(t.ID)
	}
	return FormatDisplayID(board.Prefix, t.Seq)
}

// FormatDisplayID formats a board prefix and sequence number.
func FormatDisplayID(prefix string, seq int) string {
	return fmt.Sprintf("%s-%d", prefix, seq)
}

// ShortID returns the first eight characters of an identity.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// displayIDPattern matches display identifiers: <PREFIX>-<seq>
var displayIDPattern = regexp.MustCompile(`^([A-Z][A-Z0-9]*)-(\d+)$`)

// ParseDisplayID extracts the board prefix and sequence number from a display identifier.
// Returns false if ref is not shaped like a display identifier.
func ParseDisplayID(ref string) (string, int, bool) {
	matches := displayIDPattern.FindStringSubmatch(ref)
	if matches == nil {
		return "", 0, false
	}
	seq, err := strconv.Atoi(matches[2])
	if err != nil || seq <= 0 {
		return "", 0, false
	}
	return matches[1], seq, true
}
