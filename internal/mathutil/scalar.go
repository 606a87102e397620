package mathutil

import "github.com/chewxy/math32"

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float32) float32 {
	return Clamp(v, 0, 1)
}

// Lerp interpolates linearly from a to b by t.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Fract returns v - floor(v), always in [0,1). Matches GLSL fract.
func Fract(v float32) float32 {
	return v - math32.Floor(v)
}

// Smoothstep is the cubic ease t*t*(3-2t) on t clamped to [0,1].
func Smoothstep(t float32) float32 {
	t = Clamp01(t)
	return t * t * (3 - 2*t)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}
