package mathutil

import "github.com/chewxy/math32"

// Vec2 is a 2-component float32 vector (value type, stack-allocated).
type Vec2 [2]float32

func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a[0] + b[0], a[1] + b[1]}
}

func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a[0] - b[0], a[1] - b[1]}
}

func (v Vec2) Len() float32 {
	return math32.Sqrt(v[0]*v[0] + v[1]*v[1])
}

func (v Vec2) LenSq() float32 {
	return v[0]*v[0] + v[1]*v[1]
}

func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l < 1e-12 {
		return Vec2{}
	}
	return Vec2{v[0] / l, v[1] / l}
}

// Fract returns the component-wise fractional part, always in [0,1).
func (v Vec2) Fract() Vec2 {
	return Vec2{Fract(v[0]), Fract(v[1])}
}

// IsFinite reports whether both components are finite numbers.
func (v Vec2) IsFinite() bool {
	return IsFinite(v[0]) && IsFinite(v[1])
}
