package playback

// DisplaySettings is pure configuration: visibility toggles feed the
// transformer, speed scales the engine's waits, theme is for rendering only.
type DisplaySettings struct {
	ShowThinking    bool    `json:"showThinking"`
	ShowToolCalls   bool    `json:"showToolCalls"`
	ShowToolResults bool    `json:"showToolResults"`
	PlaybackSpeed   float64 `json:"playbackSpeed"`
	ThemeMode       string  `json:"themeMode"`
}

// DefaultSettings returns the settings used when nothing is persisted.
func DefaultSettings() DisplaySettings {
	return DisplaySettings{
		ShowThinking:    true,
		ShowToolCalls:   true,
		ShowToolResults: true,
		PlaybackSpeed:   1.0,
		ThemeMode:       "dark",
	}
}

// speed returns the playback speed guarded against zero and negative values.
func (s DisplaySettings) speed() float64 {
	if s.PlaybackSpeed <= 0 {
		return 1.0
	}
	return s.PlaybackSpeed
}
