package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	cfg := New()
	if cfg.Server.Addr == "" {
		t.Error("expected a default server address")
	}
	if cfg.Sources.ClaudeRoot == "" || cfg.Sources.ComposerRoot == "" || cfg.Sources.GeminiRoot == "" {
		t.Errorf("expected default source roots, got %+v", cfg.Sources)
	}
	if s := cfg.DisplaySettings(); s.PlaybackSpeed != 1.0 || !s.ShowThinking {
		t.Errorf("unexpected default display settings: %+v", s)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.toml")
	content := `
[sources]
claude_root = "/data/claude"

[server]
addr = "0.0.0.0:9090"

[playback]
show_thinking = false
speed = 2.0
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Sources.ClaudeRoot != "/data/claude" {
		t.Errorf("claude root not loaded: %q", cfg.Sources.ClaudeRoot)
	}
	if cfg.Server.Addr != "0.0.0.0:9090" {
		t.Errorf("server addr not loaded: %q", cfg.Server.Addr)
	}
	// untouched sections keep their defaults
	if cfg.Sources.GeminiRoot != "~/.gemini/exports" {
		t.Errorf("default gemini root lost: %q", cfg.Sources.GeminiRoot)
	}

	s := cfg.DisplaySettings()
	if s.ShowThinking || s.PlaybackSpeed != 2.0 {
		t.Errorf("playback section not applied: %+v", s)
	}
}

func TestLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestDisplaySettingsSanitizesSpeed(t *testing.T) {
	cfg := New()
	cfg.Playback.Speed = 0
	if s := cfg.DisplaySettings(); s.PlaybackSpeed != 1.0 {
		t.Errorf("zero speed must fall back to 1.0, got %v", s.PlaybackSpeed)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandPath("~/x"); got != filepath.Join(home, "x") {
		t.Errorf("tilde not expanded: %q", got)
	}
	if got := ExpandPath("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path must pass through: %q", got)
	}
}
