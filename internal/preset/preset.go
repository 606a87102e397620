// Package preset bundles brush and preview parameters under a name so a
// material look can be recalled with one keypress. A handful of builtins
// ship with the editor; users add or override entries through a YAML file.
package preset

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"flowpaint/internal/brush"
	"flowpaint/internal/mathutil"
)

// Preview parameter bounds from the editor panel. Brush bounds live in the
// brush package.
const (
	MinSpeed = 0.01
	MaxSpeed = 2

	MinDistortion = 0.01
	MaxDistortion = 1
)

// Preset is one named parameter bundle. Brush fields feed brush.Params,
// flow fields feed the animated preview.
type Preset struct {
	Radius         float32 `yaml:"radius"`
	Strength       float32 `yaml:"strength"`
	Sensitivity    float32 `yaml:"sensitivity"`
	FlowSpeed      float32 `yaml:"flow_speed"`
	FlowDistortion float32 `yaml:"flow_distortion"`
}

// Builtin returns the presets that ship with the editor, keyed by name.
// The map is freshly allocated so callers may merge into it.
func Builtin() map[string]Preset {
	return map[string]Preset{
		"water": {
			Radius:         60,
			Strength:       0.4,
			Sensitivity:    0.7,
			FlowSpeed:      0.35,
			FlowDistortion: 0.25,
		},
		"lava": {
			Radius:         80,
			Strength:       0.6,
			Sensitivity:    0.5,
			FlowSpeed:      0.1,
			FlowDistortion: 0.45,
		},
		"cloth": {
			Radius:         40,
			Strength:       0.5,
			Sensitivity:    0.8,
			FlowSpeed:      0.6,
			FlowDistortion: 0.15,
		},
		"detail": {
			Radius:         12,
			Strength:       0.8,
			Sensitivity:    0.9,
			FlowSpeed:      0.5,
			FlowDistortion: 0.3,
		},
	}
}

// Load returns the builtins merged with the user presets from path. A user
// entry with a builtin's name replaces it wholesale. A missing file is not
// an error; the builtins alone come back.
func Load(path string) (map[string]Preset, error) {
	out := Builtin()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("preset: read %s: %w", path, err)
	}

	var user map[string]Preset
	if err := yaml.Unmarshal(data, &user); err != nil {
		return out, fmt.Errorf("preset: parse %s: %w", path, err)
	}
	for name, p := range user {
		out[name] = p
	}
	return out, nil
}

// Names returns the preset names in sorted order, for stable hotkey
// assignment and listings.
func Names(presets map[string]Preset) []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clamped returns p with every field forced into its panel range, so a
// hand-edited YAML entry cannot push the engine outside its envelope.
func (p Preset) Clamped() Preset {
	p.Radius = mathutil.Clamp(p.Radius, brush.MinRadius, brush.MaxRadius)
	p.Strength = mathutil.Clamp(p.Strength, brush.MinStrength, brush.MaxStrength)
	p.Sensitivity = mathutil.Clamp01(p.Sensitivity)
	p.FlowSpeed = mathutil.Clamp(p.FlowSpeed, MinSpeed, MaxSpeed)
	p.FlowDistortion = mathutil.Clamp(p.FlowDistortion, MinDistortion, MaxDistortion)
	return p
}
