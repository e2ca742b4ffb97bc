// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"github.com/runoshun/crewboard/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	dataDir       string // Path to .git/crewboard directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/crewboard)
}

// NewLoader creates a new Loader.
func NewLoader(dataDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(dataDir, globalConfDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// Load returns the merged configuration (defaults + global + repo).
// Repository config takes precedence over global config.
func (l *Loader) Load() (*domain.Config, error) {
	global, err := l.LoadGlobal()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	repo, err := l.LoadRepo()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	// Merge: default <- global <- repo (later takes precedence)
	base := domain.NewDefaultConfig()
	if global != nil {
		base = mergeConfigs(base, global)
	}
	if repo != nil {
		base = mergeConfigs(base, repo)
	}
	return base, nil
}

// LoadGlobal returns only the global configuration.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	if l.globalConfDir == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(filepath.Join(l.globalConfDir, domain.ConfigFileName))
}

// LoadRepo returns only the repository configuration.
func (l *Loader) LoadRepo() (*domain.Config, error) {
	if l.dataDir == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(filepath.Join(l.dataDir, domain.ConfigFileName))
}

// loadFile loads a configuration from a file.
func (l *Loader) loadFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return convertRawToDomainConfig(raw), nil
}

// convertRawToDomainConfig converts the raw map to domain config and collects warnings.
func convertRawToDomainConfig(raw map[string]any) *domain.Config {
	res := &domain.Config{
		Tools: make(map[domain.Tool]domain.ToolConfig),
	}
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			warn("unknown section: %s", section)
			continue
		}
		switch section {
		case "store":
			for k, v := range m {
				switch k {
				case "driver":
					if s, ok := v.(string); ok {
						if s == domain.StoreDriverSQLite || s == domain.StoreDriverJSON {
							res.Store.Driver = s
						} else {
							warn("invalid value in [store]: driver = %q", s)
						}
					}
				case "path":
					if s, ok := v.(string); ok {
						res.Store.Path = s
					}
				default:
					warn("unknown key in [store]: %s", k)
				}
			}
		case "boards":
			for k, v := range m {
				switch k {
				case "default":
					if s, ok := v.(string); ok {
						if prefix, err := domain.NormalizePrefix(s); err == nil {
							res.Boards.Default = prefix
						} else {
							warn("invalid value in [boards]: default = %q", s)
						}
					}
				case "default_resume_mode":
					if s, ok := v.(string); ok {
						if mode, err := domain.ParseResumeMode(s); err == nil {
							res.Boards.DefaultResumeMode = mode
						} else {
							warn("invalid value in [boards]: default_resume_mode = %q", s)
						}
					}
				default:
					warn("unknown key in [boards]: %s", k)
				}
			}
		case "resume":
			for k, v := range m {
				switch k {
				case "launcher":
					if s, ok := v.(string); ok {
						if s == domain.LauncherTmux || s == domain.LauncherNone {
							res.Resume.Launcher = s
						} else {
							warn("invalid value in [resume]: launcher = %q", s)
						}
					}
				case "queue_size":
					if n, ok := v.(int64); ok {
						if n >= 0 {
							res.Resume.QueueSize = int(n)
						} else {
							warn("invalid value in [resume]: queue_size = %d", n)
						}
					}
				default:
					warn("unknown key in [resume]: %s", k)
				}
			}
		case "tools":
			for name, sub := range m {
				tool, err := domain.ParseTool(name)
				subMap, ok := sub.(map[string]any)
				if err != nil || !ok {
					warn("unknown tool in [tools]: %s", name)
					continue
				}
				tc := res.Tools[tool]
				for k, v := range subMap {
					switch k {
					case "command":
						if s, ok := v.(string); ok {
							tc.Command = s
						}
					case "helper":
						if s, ok := v.(string); ok {
							tc.Helper = s
						}
					default:
						warn("unknown key in [tools.%s]: %s", name, k)
					}
				}
				res.Tools[tool] = tc
			}
		case "log":
			for k, v := range m {
				switch k {
				case "level":
					if s, ok := v.(string); ok {
						res.Log.Level = s
					}
				default:
					warn("unknown key in [log]: %s", k)
				}
			}
		default:
			warn("unknown section: %s", section)
		}
	}

	sort.Strings(warnings)
	res.Warnings = warnings
	return res
}

// mergeConfigs merges two configs, with override taking precedence.
func mergeConfigs(base, override *domain.Config) *domain.Config {
	result := &domain.Config{
		Store:    base.Store,
		Boards:   base.Boards,
		Resume:   base.Resume,
		Log:      base.Log,
		Tools:    make(map[domain.Tool]domain.ToolConfig, len(base.Tools)),
		Warnings: append([]string{}, base.Warnings...),
	}
	result.Warnings = append(result.Warnings, override.Warnings...)

	for tool, tc := range base.Tools {
		result.Tools[tool] = tc
	}

	if override.Store.Driver != "" {
		result.Store.Driver = override.Store.Driver
	}
	if override.Store.Path != "" {
		result.Store.Path = override.Store.Path
	}
	if override.Boards.Default != "" {
		result.Boards.Default = override.Boards.Default
	}
	if override.Boards.DefaultResumeMode != "" {
		result.Boards.DefaultResumeMode = override.Boards.DefaultResumeMode
	}
	if override.Resume.Launcher != "" {
		result.Resume.Launcher = override.Resume.Launcher
	}
	if override.Resume.QueueSize != 0 {
		result.Resume.QueueSize = override.Resume.QueueSize
	}
	if override.Log.Level != "" {
		result.Log.Level = override.Log.Level
	}

	// Merge tools: override individual fields, not the entire tool
	for tool, tc := range override.Tools {
		merged := result.Tools[tool]
		if tc.Command != "" {
			merged.Command = tc.Command
		}
		if tc.Helper != "" {
			merged.Helper = tc.Helper
		}
		result.Tools[tool] = merged
	}

	return result
}
