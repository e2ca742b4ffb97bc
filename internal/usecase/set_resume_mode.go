package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/usecase/shared"
)

// SetResumeModeInput contains the parameters for changing a board's resume mode.
type SetResumeModeInput struct {
	Prefix string // Board prefix (required)
	Mode   string // New resume mode (required)
}

// SetResumeModeOutput contains the result of changing a board's resume mode.
type SetResumeModeOutput struct {
	Board    *domain.Board
	Previous domain.ResumeMode
}

// SetResumeMode is the use case for changing a board's resume mode.
type SetResumeMode struct {
	boards domain.BoardRepository
	logger domain.Logger
}

// NewSetResumeMode creates a new SetResumeMode use case.
func NewSetResumeMode(boards domain.BoardRepository, logger domain.Logger) *SetResumeMode {
	return &SetResumeMode{
		boards: boards,
		logger: logger,
	}
}

// Execute updates the resume mode of a board.
func (uc *SetResumeMode) Execute(ctx context.Context, in SetResumeModeInput) (*SetResumeModeOutput, error) {
	mode, err := domain.ParseResumeMode(in.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, in.Mode)
	}

	board, err := shared.GetBoardByPrefix(ctx, uc.boards, in.Prefix)
	if err != nil {
		return nil, err
	}

	previous := board.ResumeMode
	if previous != mode {
		board.ResumeMode = mode
		if err := uc.boards.UpdateBoard(ctx, board); err != nil {
			return nil, fmt.Errorf("update board: %w", err)
		}
		uc.logger.Info("", "board", fmt.Sprintf("board %s resume mode %s -> %s", board.Prefix, previous, mode))
	}

	return &SetResumeModeOutput{Board: board, Previous: previous}, nil
}
