package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/runoshun/crewboard/internal/domain"
)

// CreateBoardInput contains the parameters for creating a board.
type CreateBoardInput struct {
	Prefix     string // Display prefix (required)
	Name       string // Board name (defaults to the prefix)
	ResumeMode string // Resume mode (defaults to the configured mode)
}

// CreateBoardOutput contains the result of creating a board.
type CreateBoardOutput struct {
	Board *domain.Board
}

// CreateBoard is the use case for creating a board.
type CreateBoard struct {
	boards      domain.BoardRepository
	logger      domain.Logger
	defaultMode domain.ResumeMode
}

// NewCreateBoard creates a new CreateBoard use case.
func NewCreateBoard(boards domain.BoardRepository, logger domain.Logger, defaultMode domain.ResumeMode) *CreateBoard {
	return &CreateBoard{
		boards:      boards,
		logger:      logger,
		defaultMode: defaultMode,
	}
}

// Execute creates a board.
func (uc *CreateBoard) Execute(ctx context.Context, in CreateBoardInput) (*CreateBoardOutput, error) {
	prefix, err := domain.NormalizePrefix(in.Prefix)
	if err != nil {
		return nil, err
	}

	mode := uc.defaultMode
	if in.ResumeMode != "" {
		mode, err = domain.ParseResumeMode(in.ResumeMode)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, in.ResumeMode)
		}
	}
	if mode == "" {
		mode = domain.ResumeModeManual
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = prefix
	}

	board := &domain.Board{Prefix: prefix, Name: name, ResumeMode: mode}
	if err := uc.boards.CreateBoard(ctx, board); err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}
	uc.logger.Info("", "board", fmt.Sprintf("created board %s (%s)", prefix, mode))

	return &CreateBoardOutput{Board: board}, nil
}
