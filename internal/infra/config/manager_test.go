package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/crewboard/internal/domain"
)

func TestManager_GetRepoConfigInfo(t *testing.T) {
	t.Run("returns info when file exists", func(t *testing.T) {
		dataDir := t.TempDir()
		configContent := "[log]\nlevel = \"debug\""
		writeConfig(t, dataDir, configContent)

		info := NewManagerWithGlobalDir(dataDir, "").GetRepoConfigInfo()

		assert.Equal(t, filepath.Join(dataDir, domain.ConfigFileName), info.Path)
		assert.Equal(t, configContent, info.Content)
		assert.True(t, info.Exists)
	})

	t.Run("returns info when file does not exist", func(t *testing.T) {
		dataDir := t.TempDir()

		info := NewManagerWithGlobalDir(dataDir, "").GetRepoConfigInfo()

		assert.Equal(t, filepath.Join(dataDir, domain.ConfigFileName), info.Path)
		assert.Empty(t, info.Content)
		assert.False(t, info.Exists)
	})
}

func TestManager_GetGlobalConfigInfo_NoDir(t *testing.T) {
	info := NewManagerWithGlobalDir("", "").GetGlobalConfigInfo()

	assert.Empty(t, info.Path)
	assert.False(t, info.Exists)
}

func TestManager_InitRepoConfig(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "crewboard")
	manager := NewManagerWithGlobalDir(dataDir, "")

	require.NoError(t, manager.InitRepoConfig(domain.NewDefaultConfig()))

	content, err := os.ReadFile(filepath.Join(dataDir, domain.ConfigFileName))
	require.NoError(t, err)
	assert.Contains(t, string(content), "[store]")

	// The rendered template loads without warnings.
	cfg, err := NewLoaderWithGlobalDir(dataDir, "").Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Warnings)

	err = manager.InitRepoConfig(domain.NewDefaultConfig())
	assert.ErrorIs(t, err, domain.ErrConfigExists)
}

func TestManager_InitGlobalConfig(t *testing.T) {
	globalDir := filepath.Join(t.TempDir(), "nested", "crewboard")
	manager := NewManagerWithGlobalDir("", globalDir)

	require.NoError(t, manager.InitGlobalConfig(domain.NewDefaultConfig()))

	info := manager.GetGlobalConfigInfo()
	assert.True(t, info.Exists)

	assert.ErrorIs(t, manager.InitRepoConfig(domain.NewDefaultConfig()), domain.ErrNotGitRepository)
}
