package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// File names searched in a config directory, in order of preference.
var configFiles = []string{"config.json", "config.toml"}

// RepoDirName is the per-repository config directory.
const RepoDirName = ".lexicon"

// Config holds application configuration.
type Config struct {
	// SourcePath is the lexicon text file used by build and index.
	// Empty means the bundled catalog.
	SourcePath string `json:"source_path,omitempty" toml:"source_path"`

	// ArtifactPath is the compiled artifact written by build and preferred
	// by the other commands when it exists.
	ArtifactPath string `json:"artifact_path,omitempty" toml:"artifact_path"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty" toml:"db_max_open_conns"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty" toml:"db_max_idle_conns"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty" toml:"disabled_tools"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty" toml:"log_level"`

	// LogFormat is text or json.
	LogFormat string `json:"log_format,omitempty" toml:"log_format"`

	// WebBind and WebPort control the address of the web UI.
	WebBind string `json:"web_bind,omitempty" toml:"web_bind"`
	WebPort int    `json:"web_port,omitempty" toml:"web_port"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		WebBind:   "127.0.0.1",
		WebPort:   8375,
	}
}

// Load loads configuration from baseDir/config.json or baseDir/config.toml.
// Returns default config if neither exists.
func Load(baseDir string) (*Config, error) {
	return loadFile(findConfigFile(baseDir))
}

// LoadWithRepo loads configuration from both the global dir and the nearest
// repo directory (.lexicon) found walking upward from startDir.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(findConfigFile(globalDir))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest
// .lexicon/config.{json,toml}. Returns empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		if path := findConfigFile(filepath.Join(dir, RepoDirName)); path != "" {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// findConfigFile returns the first existing config file in dir, or "".
func findConfigFile(dir string) string {
	for _, name := range configFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the path is empty or the file doesn't exist.
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(configPath)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", configPath, err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", configPath, err)
		}
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		SourcePath:     pickString(overlay.SourcePath, base.SourcePath),
		ArtifactPath:   pickString(overlay.ArtifactPath, base.ArtifactPath),
		LogLevel:       pickString(overlay.LogLevel, base.LogLevel),
		LogFormat:      pickString(overlay.LogFormat, base.LogFormat),
		WebBind:        pickString(overlay.WebBind, base.WebBind),
		DBMaxOpenConns: pickInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns: pickInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
		WebPort:        pickInt(overlay.WebPort, base.WebPort),
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func pickString(overlay, base string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
