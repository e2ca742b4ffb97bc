package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/crewboard/internal/domain"
	"github.com/runoshun/crewboard/internal/testutil"
)

func TestInitStore_Execute(t *testing.T) {
	// Setup
	store := testutil.NewMockStore()
	logger := testutil.NewMockLogger()
	uc := NewInitStore(store, store, logger)

	// Execute
	out, err := uc.Execute(context.Background(), InitStoreInput{BoardPrefix: "wrk", ResumeMode: domain.ResumeModeAuto})

	// Assert
	require.NoError(t, err)
	assert.True(t, store.Initialized)
	assert.False(t, out.AlreadyInitialized)
	assert.True(t, out.BoardCreated)
	assert.Equal(t, "WRK", out.Board.Prefix)
	assert.Equal(t, domain.ResumeModeAuto, out.Board.ResumeMode)
	assert.True(t, logger.HasEntry("INFO", "created default board WRK"))
}

func TestInitStore_Idempotent(t *testing.T) {
	// Setup
	store := testutil.NewMockStore()
	uc := NewInitStore(store, store, testutil.NewMockLogger())
	first, err := uc.Execute(context.Background(), InitStoreInput{BoardPrefix: "WRK"})
	require.NoError(t, err)

	// Execute
	second, err := uc.Execute(context.Background(), InitStoreInput{BoardPrefix: "WRK", ResumeMode: domain.ResumeModeAuto})

	// Assert
	require.NoError(t, err)
	assert.True(t, second.AlreadyInitialized)
	assert.False(t, second.BoardCreated)
	assert.Equal(t, first.Board.ID, second.Board.ID)
	// An existing board keeps its mode
	assert.Equal(t, domain.ResumeModeManual, second.Board.ResumeMode)
	assert.Len(t, store.Boards, 1)
}

func TestInitStore_Validation(t *testing.T) {
	store := testutil.NewMockStore()
	uc := NewInitStore(store, store, testutil.NewMockLogger())

	_, err := uc.Execute(context.Background(), InitStoreInput{BoardPrefix: "1bad"})
	require.ErrorIs(t, err, domain.ErrInvalidPrefix)

	_, err = uc.Execute(context.Background(), InitStoreInput{BoardPrefix: "WRK", ResumeMode: "sometimes"})
	require.ErrorIs(t, err, domain.ErrInvalidResumeMode)

	assert.False(t, store.Initialized)
}
