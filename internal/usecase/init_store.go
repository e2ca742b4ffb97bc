// Package usecase contains the application use cases.
package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/usecase/shared"
)

// InitStoreInput contains the parameters for initializing the store.
type InitStoreInput struct {
	BoardPrefix string            // Prefix of the default board (required)
	ResumeMode  domain.ResumeMode // Resume mode of the default board
}

// InitStoreOutput contains the result of initializing the store.
type InitStoreOutput struct {
	Board              *domain.Board // The default board
	AlreadyInitialized bool          // The store existed before
	BoardCreated       bool          // The default board was created by this call
}

// InitStore creates the record store and the default board.
type InitStore struct {
	store  domain.StoreInitializer
	boards domain.BoardRepository
	logger domain.Logger
}

// NewInitStore creates a new InitStore use case.
func NewInitStore(store domain.StoreInitializer, boards domain.BoardRepository, logger domain.Logger) *InitStore {
	return &InitStore{
		store:  store,
		boards: boards,
		logger: logger,
	}
}

// Execute initializes the store. Running it again is harmless.
func (uc *InitStore) Execute(ctx context.Context, in InitStoreInput) (*InitStoreOutput, error) {
	prefix, err := domain.NormalizePrefix(in.BoardPrefix)
	if err != nil {
		return nil, err
	}
	mode := in.ResumeMode
	if mode == "" {
		mode = domain.ResumeModeManual
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidResumeMode, mode)
	}

	out := &InitStoreOutput{AlreadyInitialized: uc.store.IsInitialized()}
	if err := uc.store.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}

	board, err := uc.boards.GetBoardByPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	if board == nil {
		board = &domain.Board{Prefix: prefix, Name: prefix, ResumeMode: mode}
		if err := uc.boards.CreateBoard(ctx, board); err != nil {
			return nil, fmt.Errorf("create board: %w", err)
		}
		out.BoardCreated = true
		uc.logger.Info("", "board", fmt.Sprintf("created default board %s (%s)", prefix, mode))
	}
	out.Board = board
	return out, nil
}

// requireBoard resolves an optional prefix, falling back to defaultPrefix.
func requireBoard(ctx context.Context, boards domain.BoardRepository, prefix, defaultPrefix string) (*domain.Board, error) {
	if prefix == "" {
		prefix = defaultPrefix
	}
	if prefix == "" {
		return nil, fmt.Errorf("%w: no board given and no default board configured", domain.ErrBoardNotFound)
	}
	return shared.GetBoardByPrefix(ctx, boards, prefix)
}
