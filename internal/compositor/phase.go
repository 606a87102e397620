package compositor

import (
	"github.com/chewxy/math32"

	"flowpaint/internal/mathutil"
)

// PhasePair returns the two looping distortion phases at time t (seconds).
// Both wrap in [0,1); the second runs half a cycle ahead so one phase is
// always mid-stride while the other resets.
func PhasePair(t, speed float32) (p0, p1 float32) {
	p0 = mathutil.Fract(t * speed)
	p1 = mathutil.Fract(t*speed + 0.5)
	return p0, p1
}

// BlendWeight is the mix factor toward the half-cycle sample. It reaches 1
// exactly when the primary phase resets, so the resetting sample never
// contributes and the loop shows no pop.
func BlendWeight(p0 float32) float32 {
	return math32.Abs((0.5 - p0) / 0.5)
}
