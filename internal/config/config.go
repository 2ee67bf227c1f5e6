// Package config loads scribe's layered configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	serrors "github.com/Aman-CERP/scribe/internal/errors"
)

// CurrentVersion is the config schema version written by WriteYAML.
const CurrentVersion = 1

// ProjectConfigNames are the project config file names, in lookup order.
var ProjectConfigNames = []string{".scribe.yaml", ".scribe.yml", ".scribe.toml"}

// Config represents the complete scribe configuration.
type Config struct {
	Version int           `yaml:"version" json:"version" toml:"version"`
	Search  SearchConfig  `yaml:"search" json:"search" toml:"search"`
	Editor  EditorConfig  `yaml:"editor" json:"editor" toml:"editor"`
	Logging LoggingConfig `yaml:"logging" json:"logging" toml:"logging"`
}

// SearchConfig configures the search engine.
type SearchConfig struct {
	// UseRegex is the initial state of the regex toggle.
	UseRegex bool `yaml:"use_regex" json:"use_regex" toml:"use_regex"`

	// RegexEngine selects the regex implementation: "stdlib" or "coregex".
	RegexEngine string `yaml:"regex_engine" json:"regex_engine" toml:"regex_engine"`

	// CacheSize is the number of compiled expressions kept. 0 disables caching.
	CacheSize int `yaml:"cache_size" json:"cache_size" toml:"cache_size"`
}

// EditorConfig configures the terminal editor.
type EditorConfig struct {
	TabWidth int `yaml:"tab_width" json:"tab_width" toml:"tab_width"`

	// Watch reloads the open file when another program changes it.
	Watch bool `yaml:"watch" json:"watch" toml:"watch"`

	// WatchDebounce is a duration string such as "200ms".
	WatchDebounce string `yaml:"watch_debounce" json:"watch_debounce" toml:"watch_debounce"`

	// LockTimeout bounds how long a save waits for the save lock.
	LockTimeout string `yaml:"lock_timeout" json:"lock_timeout" toml:"lock_timeout"`
}

// LoggingConfig configures debug file logging.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level" toml:"level"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb" toml:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files" toml:"max_files"`
}

// NewConfig creates a new Config with defaults.
func NewConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Search: SearchConfig{
			UseRegex:    false,
			RegexEngine: "stdlib",
			CacheSize:   128,
		},
		Editor: EditorConfig{
			TabWidth:      4,
			Watch:         true,
			WatchDebounce: "200ms",
			LockTimeout:   "2s",
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// GetUserConfigPath returns the path to the user configuration file:
//   - $XDG_CONFIG_HOME/scribe/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/scribe/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "scribe", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "scribe", "config.yaml")
	}
	return filepath.Join(home, ".config", "scribe", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// LoadUserConfig reads the user configuration file on its own, without
// defaults. Returns nil config and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	path := GetUserConfigPath()
	if !fileExists(path) {
		return nil, nil
	}
	cfg := &Config{}
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadProjectConfig reads the project configuration file in dir on its own,
// without defaults. Returns a nil config and empty path if there is none.
func LoadProjectConfig(dir string) (*Config, string, error) {
	path := ProjectConfigPath(dir)
	if path == "" {
		return nil, "", nil
	}
	cfg := &Config{}
	if err := cfg.loadFile(path); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Load loads configuration for files in dir, in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/scribe/config.yaml)
//  3. Project config (.scribe.yaml, .scribe.yml or .scribe.toml in dir)
//  4. Environment variables (SCRIBE_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if path := ProjectConfigPath(dir); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProjectConfigPath returns the project config file in dir, or "".
func ProjectConfigPath(dir string) string {
	for _, name := range ProjectConfigNames {
		if p := filepath.Join(dir, name); fileExists(p) {
			return p
		}
	}
	return ""
}

// loadFile decodes a YAML or TOML file over c. Keys absent from the file
// keep their current values.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		code := serrors.ErrCodeConfigNotFound
		if os.IsPermission(err) {
			code = serrors.ErrCodeConfigPermission
		}
		return serrors.New(code, fmt.Sprintf("failed to read config file %s", path), err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, c)
	} else {
		err = yaml.Unmarshal(data, c)
	}
	if err != nil {
		return serrors.New(serrors.ErrCodeConfigInvalid,
			fmt.Sprintf("failed to parse config file %s", path), err).
			WithDetail("path", path)
	}
	return nil
}

// applyEnvOverrides applies SCRIBE_* environment variables.
// Unparsable values are ignored.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SCRIBE_REGEX"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Search.UseRegex = b
		}
	}
	if v := os.Getenv("SCRIBE_REGEX_ENGINE"); v != "" {
		c.Search.RegexEngine = strings.ToLower(v)
	}
	if v := os.Getenv("SCRIBE_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("SCRIBE_WATCH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Editor.Watch = b
		}
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Search.RegexEngine) {
	case "stdlib", "coregex":
	default:
		return invalid("search.regex_engine must be 'stdlib' or 'coregex', got %q", c.Search.RegexEngine)
	}
	if c.Search.CacheSize < 0 {
		return invalid("search.cache_size must be non-negative, got %d", c.Search.CacheSize)
	}

	if c.Editor.TabWidth < 1 || c.Editor.TabWidth > 16 {
		return invalid("editor.tab_width must be between 1 and 16, got %d", c.Editor.TabWidth)
	}
	if _, err := parseDuration(c.Editor.WatchDebounce); err != nil {
		return invalid("editor.watch_debounce: %v", err)
	}
	if _, err := parseDuration(c.Editor.LockTimeout); err != nil {
		return invalid("editor.lock_timeout: %v", err)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return invalid("logging.level must be 'debug', 'info', 'warn', or 'error', got %q", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 {
		return invalid("logging.max_size_mb must be non-negative, got %d", c.Logging.MaxSizeMB)
	}
	if c.Logging.MaxFiles < 0 {
		return invalid("logging.max_files must be non-negative, got %d", c.Logging.MaxFiles)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return serrors.New(serrors.ErrCodeConfigInvalid, fmt.Sprintf(format, args...), nil).
		WithSuggestion("run 'scribe config show' to inspect the merged configuration")
}

// parseDuration accepts Go duration strings; "" and "0" mean zero.
func parseDuration(s string) (time.Duration, error) {
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must be non-negative, got %s", s)
	}
	return d, nil
}

// WatchDebounceDuration returns editor.watch_debounce as a duration.
func (c *Config) WatchDebounceDuration() time.Duration {
	d, _ := parseDuration(c.Editor.WatchDebounce)
	return d
}

// LockTimeoutDuration returns editor.lock_timeout as a duration.
func (c *Config) LockTimeoutDuration() time.Duration {
	d, _ := parseDuration(c.Editor.LockTimeout)
	return d
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MergeNewDefaults fills fields missing from an older user config with
// their defaults and returns the names of the fields it added.
// Booleans are left alone because false cannot be told apart from unset.
func (c *Config) MergeNewDefaults() []string {
	defaults := NewConfig()
	var added []string

	fill := func(name string, missing bool, set func()) {
		if missing {
			set()
			added = append(added, name)
		}
	}

	fill("version", c.Version == 0, func() { c.Version = defaults.Version })
	fill("search.regex_engine", c.Search.RegexEngine == "", func() { c.Search.RegexEngine = defaults.Search.RegexEngine })
	fill("editor.tab_width", c.Editor.TabWidth == 0, func() { c.Editor.TabWidth = defaults.Editor.TabWidth })
	fill("editor.watch_debounce", c.Editor.WatchDebounce == "", func() { c.Editor.WatchDebounce = defaults.Editor.WatchDebounce })
	fill("editor.lock_timeout", c.Editor.LockTimeout == "", func() { c.Editor.LockTimeout = defaults.Editor.LockTimeout })
	fill("logging.level", c.Logging.Level == "", func() { c.Logging.Level = defaults.Logging.Level })
	fill("logging.max_size_mb", c.Logging.MaxSizeMB == 0, func() { c.Logging.MaxSizeMB = defaults.Logging.MaxSizeMB })
	fill("logging.max_files", c.Logging.MaxFiles == 0, func() { c.Logging.MaxFiles = defaults.Logging.MaxFiles })

	return added
}

// FindProjectRoot walks up from startDir to the nearest directory holding a
// project config file. The walk stops at a .git directory or the filesystem
// root, in which case startDir is returned.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	dir := absDir
	for {
		if ProjectConfigPath(dir) != "" {
			return dir, nil
		}
		if dirExists(filepath.Join(dir, ".git")) {
			return absDir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return absDir, nil
		}
		dir = parent
	}
}

// LoadForFile loads the configuration that applies to the file at path.
func LoadForFile(path string) (*Config, error) {
	root, err := FindProjectRoot(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return Load(root)
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
