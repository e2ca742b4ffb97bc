package domain

import (
	"path/filepath"
	"strings"
)

// Directory and file names.
const (
	DataDirName         = "crewboard"    // Under .git/ and the global config home
	ConfigFileName      = "config.toml"  // Config file name
	SQLiteStoreName     = "crewboard.db" // SQLite store file name
	JSONStoreName       = "tasks.json"   // JSON store file name
	DefaultBoardPrefix  = "WRK"          // Board created by init
	LaunchSessionPrefix = "crewboard-"   // Prefix of launched tmux sessions
)

// RepoDataDir returns the data directory for a repository.
func RepoDataDir(gitDir string) string {
	return filepath.Join(gitDir, DataDirName)
}

// GlobalConfigDir returns the global config directory.
// configHome is typically XDG_CONFIG_HOME or ~/.config (resolved by caller).
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, DataDirName)
}

// SQLiteStorePath returns the default SQLite store path.
func SQLiteStorePath(dataDir string) string {
	return filepath.Join(dataDir, SQLiteStoreName)
}

// JSONStorePath returns the default JSON store path.
func JSONStorePath(dataDir string) string {
	return filepath.Join(dataDir, JSONStoreName)
}

// GlobalLogPath returns the path to the global log file.
func GlobalLogPath(dataDir string) string {
	return filepath.Join(dataDir, "logs", "crewboard.log")
}

// TaskLogPath returns the path to a task log file.
func TaskLogPath(dataDir, taskKey string) string {
	return filepath.Join(dataDir, "logs", "task-"+sanitizeFileName(taskKey)+".log")
}

// LocksDir returns the directory holding per-task lock files.
func LocksDir(dataDir string) string {
	return filepath.Join(dataDir, "locks")
}

// LaunchSessionName returns the launcher session name for a task.
// Format: crewboard-<display id>
func LaunchSessionName(displayID string) string {
	return LaunchSessionPrefix + sanitizeFileName(displayID)
}

func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
