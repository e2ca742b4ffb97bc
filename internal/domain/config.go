package domain

import (
	"bytes"
	_ "embed"
	"path/filepath"
	"text/template"
)

//go:embed config_template.toml
var configTemplateContent string

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Tools    map[Tool]ToolConfig `toml:"tools"`
	Warnings []string            `toml:"-"`
	Store    StoreConfig         `toml:"store"`
	Boards   BoardsConfig        `toml:"boards"`
	Log      LogConfig           `toml:"log"`
	Resume   ResumeConfig        `toml:"resume"`
}

// StoreConfig holds settings for the record store from [store] section.
type StoreConfig struct {
	Driver string `toml:"driver,omitempty"` // "sqlite" (default) or "json"
	Path   string `toml:"path,omitempty"`   // Store file path (default: inside the data directory)
}

// Store drivers.
const (
	StoreDriverSQLite = "sqlite"
	StoreDriverJSON   = "json"
)

// BoardsConfig holds board defaults from [boards] section.
type BoardsConfig struct {
	Default           string     `toml:"default,omitempty"`             // Prefix of the default board
	DefaultResumeMode ResumeMode `toml:"default_resume_mode,omitempty"` // Resume mode for new boards
}

// ResumeConfig holds hand-back settings from [resume] section.
type ResumeConfig struct {
	Launcher  string `toml:"launcher,omitempty"`   // "tmux" (default) or "none"
	QueueSize int    `toml:"queue_size,omitempty"` // 0 = evaluate mentions synchronously
}

// Launchers.
const (
	LauncherTmux = "tmux"
	LauncherNone = "none"
)

// ToolConfig overrides the binaries used by a tool strategy from [tools.<tool>].
type ToolConfig struct {
	Command string `toml:"command,omitempty"` // Tool binary
	Helper  string `toml:"helper,omitempty"`  // Resumption helper for path references
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // debug, info, warn, error
}

// NewDefaultConfig returns the built-in configuration.
func NewDefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Driver: StoreDriverSQLite,
		},
		Boards: BoardsConfig{
			Default:           DefaultBoardPrefix,
			DefaultResumeMode: ResumeModeManual,
		},
		Resume: ResumeConfig{
			Launcher: LauncherTmux,
		},
		Tools: map[Tool]ToolConfig{
			ToolOpenCode:   {Command: "opencode", Helper: "opencode-resume"},
			ToolClaudeCode: {Command: "claude"},
			ToolCodex:      {Command: "codex", Helper: "codex-resume-path"},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ToolConfigFor returns the configuration for tool, falling back to defaults.
func (c *Config) ToolConfigFor(tool Tool) ToolConfig {
	defaults := NewDefaultConfig().Tools[tool]
	tc, ok := c.Tools[tool]
	if !ok {
		return defaults
	}
	if tc.Command == "" {
		tc.Command = defaults.Command
	}
	if tc.Helper == "" {
		tc.Helper = defaults.Helper
	}
	return tc
}

// StorePath returns the store file path for the configured driver.
func (c *Config) StorePath(dataDir string) string {
	if c.Store.Path != "" {
		if filepath.IsAbs(c.Store.Path) {
			return c.Store.Path
		}
		return filepath.Join(dataDir, c.Store.Path)
	}
	if c.Store.Driver == StoreDriverJSON {
		return JSONStorePath(dataDir)
	}
	return SQLiteStorePath(dataDir)
}

// RenderConfigTemplate renders the commented configuration template.
func RenderConfigTemplate(cfg *Config) string {
	tmpl := template.Must(template.New("config").Parse(configTemplateContent))
	data := map[string]any{
		"Config": cfg,
		"Tools":  AllTools(),
		"Modes":  AllResumeModes(),
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return configTemplateContent
	}
	return buf.String()
}
