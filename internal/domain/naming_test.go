package domain

import "testing"

func TestRepoDataDir(t *testing.T) {
	got := RepoDataDir("/home/user/project/.git")
	want := "/home/user/project/.git/crewboard"
	if got != want {
		t.Errorf("RepoDataDir() = %q, want %q", got, want)
	}
}

func TestGlobalConfigDir(t *testing.T) {
	got := GlobalConfigDir("/home/user/.config")
	want := "/home/user/.config/crewboard"
	if got != want {
		t.Errorf("GlobalConfigDir() = %q, want %q", got, want)
	}
}

func TestStorePaths(t *testing.T) {
	dataDir := "/repo/.git/crewboard"
	if got := SQLiteStorePath(dataDir); got != "/repo/.git/crewboard/crewboard.db" {
		t.Errorf("SQLiteStorePath() = %q", got)
	}
	if got := JSONStorePath(dataDir); got != "/repo/.git/crewboard/tasks.json" {
		t.Errorf("JSONStorePath() = %q", got)
	}
	if got := LocksDir(dataDir); got != "/repo/.git/crewboard/locks" {
		t.Errorf("LocksDir() = %q", got)
	}
}

func TestLogPaths(t *testing.T) {
	dataDir := "/repo/.git/crewboard"
	if got := GlobalLogPath(dataDir); got != "/repo/.git/crewboard/logs/crewboard.log" {
		t.Errorf("GlobalLogPath() = %q", got)
	}
	if got := TaskLogPath(dataDir, "WRK-1"); got != "/repo/.git/crewboard/logs/task-WRK-1.log" {
		t.Errorf("TaskLogPath() = %q", got)
	}
	if got := TaskLogPath(dataDir, "../x"); got != "/repo/.git/crewboard/logs/task-___x.log" {
		t.Errorf("TaskLogPath() sanitization = %q", got)
	}
}

func TestLaunchSessionName(t *testing.T) {
	if got := LaunchSessionName("WRK-12"); got != "crewboard-WRK-12" {
		t.Errorf("LaunchSessionName() = %q, want %q", got, "crewboard-WRK-12")
	}
}
