// Package transform holds the pure coordinate math between screen space,
// the pannable/zoomable canvas space, and aspect-corrected cover space.
// All functions are side-effect free.
package transform

import (
	"github.com/chewxy/math32"

	"flowpaint/internal/mathutil"
)

// MinScale is the smallest usable view scale. Scales at or below zero are
// clamped here instead of failing.
const MinScale = 1e-6

// View maps canvas-normalized coordinates to screen-normalized coordinates:
// screen = canvas*Scale + Offset. The inverse divides by Scale first, then
// subtracts Offset (the shader convention).
type View struct {
	Scale  float32
	Offset mathutil.Vec2
}

// IdentityView leaves coordinates unchanged.
var IdentityView = View{Scale: 1}

// Fit is a "cover" remap applied before the View for overlay content whose
// aspect ratio differs from the viewport's.
type Fit struct {
	Scale  mathutil.Vec2
	Offset mathutil.Vec2
}

// IdentityFit leaves coordinates unchanged.
var IdentityFit = Fit{Scale: mathutil.Vec2{1, 1}}

func safeScale(s float32) float32 {
	if s < MinScale {
		return MinScale
	}
	return s
}

// ScreenToCanvas converts a screen-normalized point to canvas space:
// p/scale - offset.
func ScreenToCanvas(p mathutil.Vec2, v View) mathutil.Vec2 {
	s := safeScale(v.Scale)
	return mathutil.Vec2{p[0]/s - v.Offset[0], p[1]/s - v.Offset[1]}
}

// CanvasToScreen is the inverse of ScreenToCanvas: (p + offset) * scale.
func CanvasToScreen(p mathutil.Vec2, v View) mathutil.Vec2 {
	s := safeScale(v.Scale)
	return mathutil.Vec2{(p[0] + v.Offset[0]) * s, (p[1] + v.Offset[1]) * s}
}

// ApplyFit converts a screen point into cover-corrected content space:
// (p - offset) / scale.
func ApplyFit(p mathutil.Vec2, f Fit) mathutil.Vec2 {
	sx := safeScale(f.Scale[0])
	sy := safeScale(f.Scale[1])
	return mathutil.Vec2{(p[0] - f.Offset[0]) / sx, (p[1] - f.Offset[1]) / sy}
}

// FitToScreen is the inverse of ApplyFit: p*scale + offset.
func FitToScreen(p mathutil.Vec2, f Fit) mathutil.Vec2 {
	return mathutil.Vec2{p[0]*f.Scale[0] + f.Offset[0], p[1]*f.Scale[1] + f.Offset[1]}
}

// CanvasToScreenCovered composes the cover mapping for overlay content.
// Aspect fit applies after the view transform on the way out; this ordering
// is an invariant shared by every sampler (fit is defined against the
// viewport frame, panning against the content frame).
func CanvasToScreenCovered(p mathutil.Vec2, v View, f Fit) mathutil.Vec2 {
	return FitToScreen(CanvasToScreen(p, v), f)
}

// ScreenToCanvasCovered inverts CanvasToScreenCovered.
func ScreenToCanvasCovered(p mathutil.Vec2, v View, f Fit) mathutil.Vec2 {
	return ScreenToCanvas(ApplyFit(p, f), v)
}

// Wrap folds a point into the unit tile, component-wise fract.
func Wrap(p mathutil.Vec2) mathutil.Vec2 {
	return p.Fract()
}

// InDomain reports whether p lies inside the closed unit square.
func InDomain(p mathutil.Vec2) bool {
	return p[0] >= 0 && p[0] <= 1 && p[1] >= 0 && p[1] <= 1
}

// coverTolerance treats near-equal aspect ratios as equal so a fit is not
// computed for sub-pixel differences.
const coverTolerance = 0.01

// CoverFit derives the cover remap for content of contentW x contentH shown
// in a viewport of viewW x viewH: the better-fitting axis keeps scale 1, the
// other is scaled down and centered so the content fills the viewport without
// distortion (edges cropped).
func CoverFit(contentW, contentH, viewW, viewH float32) Fit {
	if contentW <= 0 || contentH <= 0 || viewW <= 0 || viewH <= 0 {
		return IdentityFit
	}
	rc := contentW / contentH
	rv := viewW / viewH
	if math32.Abs(rc-rv) <= coverTolerance {
		return IdentityFit
	}
	if rc > rv {
		// Content wider than viewport: compress y, center vertically.
		sy := rv / rc
		return Fit{Scale: mathutil.Vec2{1, sy}, Offset: mathutil.Vec2{0, (1 - sy) / 2}}
	}
	// Content taller than viewport: compress x, center horizontally.
	sx := rc / rv
	return Fit{Scale: mathutil.Vec2{sx, 1}, Offset: mathutil.Vec2{(1 - sx) / 2, 0}}
}
