// Package settings persists display preferences as a flat JSON file.
package settings

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dtherrick/agent-replay/internal/playback"
)

// Store reads and writes a single flat DisplaySettings document. It is a
// collaborator, not part of the core: the engine accepts settings from any
// source and never touches the store itself.
type Store struct {
	path string
	log  *slog.Logger
}

// NewStore creates a store at the given file path. A nil logger falls back
// to slog.Default().
func NewStore(path string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{path: path, log: log}
}

// Load returns the persisted settings. Missing or corrupt storage silently
// falls back to defaults; a diagnostic is logged for the corrupt case.
func (s *Store) Load() playback.DisplaySettings {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return playback.DefaultSettings()
	}

	loaded := playback.DefaultSettings()
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.log.Warn("corrupt settings file, using defaults", "path", s.path, "error", err)
		return playback.DefaultSettings()
	}
	if loaded.PlaybackSpeed <= 0 {
		loaded.PlaybackSpeed = playback.DefaultSettings().PlaybackSpeed
	}
	return loaded
}

// Save writes the settings, creating parent directories as needed. The write
// goes through a temp file and rename so a crash never leaves a torn file.
func (s *Store) Save(settings playback.DisplaySettings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}
