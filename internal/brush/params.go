package brush

import "flowpaint/internal/mathutil"

// Parameter bounds from the editor panel. Out-of-range values are clamped,
// never rejected.
const (
	MinRadius = 5
	MaxRadius = 200

	MinStrength = 0.01
	MaxStrength = 1
)

// Params configures the engine for subsequent strokes.
type Params struct {
	Radius        float32 // kernel radius in texels
	Strength      float32 // base stroke strength in [MinStrength, MaxStrength]
	Sensitivity   float32 // how much pointer speed modulates strength, [0,1]
	Seamless      bool    // toroidal document: wrap positions and mirror stamps
	HighPrecision bool    // keep full float precision (no per-stamp quantize)
}

// DefaultParams mirrors the editor's initial panel values.
func DefaultParams() Params {
	return Params{
		Radius:        40,
		Strength:      0.5,
		Sensitivity:   0.7,
		HighPrecision: true,
	}
}

func (p Params) clamped() Params {
	p.Radius = mathutil.Clamp(p.Radius, MinRadius, MaxRadius)
	p.Strength = mathutil.Clamp(p.Strength, MinStrength, MaxStrength)
	p.Sensitivity = mathutil.Clamp01(p.Sensitivity)
	return p
}
