// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/dtherrick/agent-replay/internal/playback"
)

// Config represents the replay configuration.
type Config struct {
	Sources  SourcesConfig  `toml:"sources"`  // Transcript roots per source
	Server   ServerConfig   `toml:"server"`   // HTTP boundary settings
	Playback PlaybackConfig `toml:"playback"` // Default display settings
	Settings SettingsConfig `toml:"settings"` // Preference persistence
}

// SourcesConfig holds the on-disk roots the adapters scan. A "~/" prefix is
// expanded against the user's home directory.
type SourcesConfig struct {
	ClaudeRoot   string `toml:"claude_root"`
	ComposerRoot string `toml:"composer_root"`
	GeminiRoot   string `toml:"gemini_root"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// PlaybackConfig contains the default display settings applied when no
// persisted preferences exist.
type PlaybackConfig struct {
	ShowThinking    bool    `toml:"show_thinking"`
	ShowToolCalls   bool    `toml:"show_tool_calls"`
	ShowToolResults bool    `toml:"show_tool_results"`
	Speed           float64 `toml:"speed"`
	Theme           string  `toml:"theme"`
}

// SettingsConfig locates the persisted preference file.
type SettingsConfig struct {
	Path string `toml:"path"`
}

// New creates a new config with defaults.
func New() *Config {
	defaults := playback.DefaultSettings()
	return &Config{
		Sources: SourcesConfig{
			ClaudeRoot:   "~/.claude/projects",
			ComposerRoot: "~/.composer/projects",
			GeminiRoot:   "~/.gemini/exports",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8484",
		},
		Playback: PlaybackConfig{
			ShowThinking:    defaults.ShowThinking,
			ShowToolCalls:   defaults.ShowToolCalls,
			ShowToolResults: defaults.ShowToolResults,
			Speed:           defaults.PlaybackSpeed,
			Theme:           defaults.ThemeMode,
		},
		Settings: SettingsConfig{
			Path: "~/.config/agent-replay/settings.json",
		},
	}
}

// Default returns a default configuration.
func Default() *Config {
	return New()
}

// LoadFile loads configuration from a TOML file.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// LoadDefault loads configuration from replay.toml in the current directory,
// falling back to defaults when the file does not exist.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}

	path := filepath.Join(cwd, "replay.toml")
	if _, err := os.Stat(path); err != nil {
		return New(), nil
	}
	return LoadFile(path)
}

// DisplaySettings converts the playback section into engine settings.
func (c *Config) DisplaySettings() playback.DisplaySettings {
	s := playback.DisplaySettings{
		ShowThinking:    c.Playback.ShowThinking,
		ShowToolCalls:   c.Playback.ShowToolCalls,
		ShowToolResults: c.Playback.ShowToolResults,
		PlaybackSpeed:   c.Playback.Speed,
		ThemeMode:       c.Playback.Theme,
	}
	if s.PlaybackSpeed <= 0 {
		s.PlaybackSpeed = 1.0
	}
	if s.ThemeMode == "" {
		s.ThemeMode = playback.DefaultSettings().ThemeMode
	}
	return s
}

// ExpandPath resolves a leading "~/" against the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
