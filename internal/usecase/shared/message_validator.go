package shared

import (
	"strings"

	"github.com/runoshun/crewboard/internal/domain"
)

// ValidateMessage trims whitespace from the message and validates it is not empty.
// Returns the trimmed message if valid, otherwise returns domain.ErrEmptyMessage.
func ValidateMessage(message string) (string, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return "", domain.ErrEmptyMessage
	}
	return trimmed, nil
}

// ValidateTitle trims whitespace from a task title and validates it is not empty.
func ValidateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", domain.ErrEmptyTitle
	}
	return trimmed, nil
}
