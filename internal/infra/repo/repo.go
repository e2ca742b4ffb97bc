// Package repo locates the git repository that hosts the crewboard data directory.
package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/runoshun/crewboard/internal/domain"
)

// Info describes a detected repository.
type Info struct {
	Root       string // Main repository root (parent of the common .git directory)
	GitDir     string // Common .git directory
	WorkingDir string // Top of the current working tree (may be a linked worktree)
}

// DataDir returns the crewboard data directory of the repository.
func (i *Info) DataDir() string {
	return domain.RepoDataDir(i.GitDir)
}

// Detect finds the repository containing dir, searching parent directories.
// Linked worktrees resolve to the main repository's .git directory.
func Detect(dir string) (*Info, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	r, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, domain.ErrNotGitRepository
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}

	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	workingDir := wt.Filesystem.Root()

	storage, ok := r.Storer.(*filesystem.Storage)
	if !ok {
		return nil, domain.ErrNotGitRepository
	}
	gitDir, err := commonDir(storage.Filesystem().Root())
	if err != nil {
		return nil, err
	}

	return &Info{
		Root:       filepath.Dir(gitDir),
		GitDir:     gitDir,
		WorkingDir: filepath.Clean(workingDir),
	}, nil
}

// commonDir follows the commondir file of a linked worktree's git directory.
func commonDir(gitDir string) (string, error) {
	content, err := os.ReadFile(filepath.Join(gitDir, "commondir"))
	if errors.Is(err, os.ErrNotExist) {
		return filepath.Clean(gitDir), nil
	}
	if err != nil {
		return "", fmt.Errorf("read commondir: %w", err)
	}

	common := strings.TrimSpace(string(content))
	if !filepath.IsAbs(common) {
		common = filepath.Join(gitDir, common)
	}
	return filepath.Clean(common), nil
}
