package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePrefix(t *testing.T) {
	got, err := NormalizePrefix(" wrk ")
	require.NoError(t, err)
	assert.Equal(t, "WRK", got)

	got, err = NormalizePrefix("ops2")
	require.NoError(t, err)
	assert.Equal(t, "OPS2", got)

	for _, bad := range []string{"", "2FA", "WR-K", "ABCDEFGHIJK"} {
		_, err := NormalizePrefix(bad)
		assert.ErrorIs(t, err, ErrInvalidPrefix, bad)
	}
}

func TestResumeMode(t *testing.T) {
	for _, m := range AllResumeModes() {
		assert.True(t, m.IsValid())
		parsed, err := ParseResumeMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}

	_, err := ParseResumeMode("yolo")
	assert.ErrorIs(t, err, ErrInvalidResumeMode)

	assert.False(t, ResumeModeManual.AllowsExec())
	assert.True(t, ResumeModeCommand.AllowsExec())
	assert.True(t, ResumeModeAuto.AllowsExec())
}
