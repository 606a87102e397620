// Package config persists editor settings between sessions as a small JSON
// file next to the working directory.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// DefaultPath is where the shell keeps settings when no explicit path is
// given.
const DefaultPath = "flowpaint_settings.json"

// Document edge sizes for the two precision modes. Documents are square.
const (
	StandardSize = 1024
	HighResSize  = 2048
)

// Settings are the persisted toggles. Field names mirror the on-disk keys;
// everything else about a session (brush params, camera) is deliberately
// transient.
type Settings struct {
	SeamlessMode   bool `json:"seamless_mode"`
	PreviewRepeat  bool `json:"preview_repeat"`
	HighResolution bool `json:"high_resolution_mode"`
	InvertR        bool `json:"invert_r_channel"`
	InvertG        bool `json:"invert_g_channel"`
	DarkMode       bool `json:"is_dark_mode"`
}

// Default returns the out-of-the-box settings.
func Default() Settings {
	return Settings{DarkMode: true}
}

// Load reads settings from path. A missing file is not an error; defaults
// come back so first launch needs no setup. On a parse error the defaults
// come back along with the error, letting the caller log and continue.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Default(), fmt.Errorf("config: parse %s: %w", path, err)
	}
	return s, nil
}

// Save writes the settings as indented JSON.
func (s Settings) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// DocumentSize returns the square document edge for the active precision
// mode. A positive override (from a CLI flag) wins over the mode.
func (s Settings) DocumentSize(override int) int {
	if override > 0 {
		return override
	}
	if s.HighResolution {
		return HighResSize
	}
	return StandardSize
}
