package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/runoshun/crewboard/internal/app"
	"github.com/runoshun/crewboard/internal/domain"
)

// FormatError renders err for the terminal.
// Ambiguous references list every candidate so the user can pick one.
func FormatError(ctx context.Context, c *app.Container, err error) string {
	var ambiguous *domain.AmbiguousReferenceError
	if !errors.As(err, &ambiguous) {
		return err.Error()
	}

	var b strings.Builder
	b.WriteString(domain.ErrAmbiguousReference.Error())
	b.WriteString(": ")
	b.WriteString(ambiguous.Reference)
	b.WriteString(" matches:")
	for _, task := range ambiguous.Matches {
		b.WriteString("\n  ")
		b.WriteString(formatCandidate(candidateDisplayID(ctx, c, task), task.ID, task.Title))
	}
	return b.String()
}

func candidateDisplayID(ctx context.Context, c *app.Container, task *domain.Task) string {
	if c == nil || c.Store == nil {
		return task.DisplayID(nil)
	}
	board, err := c.Store.GetBoard(ctx, task.BoardID)
	if err != nil {
		return task.DisplayID(nil)
	}
	return task.DisplayID(board)
}
