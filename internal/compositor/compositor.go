// Package compositor renders a flow document into a CPU framebuffer: either
// the raw two-channel field, or a base texture distorted along the field by
// two phase-shifted samples that cross-fade into a seamless loop.
package compositor

import (
	"image"

	"flowpaint/internal/field"
	"flowpaint/internal/mathutil"
	"flowpaint/internal/raster"
	"flowpaint/internal/transform"
)

// Mode selects the per-pixel sampling strategy.
type Mode uint8

const (
	// FlowOnly shows the raw field as (R,G,0); outside the unit tile the
	// background color is used.
	FlowOnly Mode = iota
	// FlowOnlyTiled wraps the field toroidally and marks tile seams.
	FlowOnlyTiled
	// DualPhase distorts a base texture along the field, edge-clamped.
	DualPhase
	// DualPhaseTiled distorts a base texture along the field, wrapping both
	// the field and the texture.
	DualPhaseTiled
)

// ModeFor picks the render mode from the display flags.
func ModeFor(hasBase, tiled bool) Mode {
	switch {
	case hasBase && tiled:
		return DualPhaseTiled
	case hasBase:
		return DualPhase
	case tiled:
		return FlowOnlyTiled
	default:
		return FlowOnly
	}
}

// Background is the clear color used outside the canvas domain and for
// non-finite sampling coordinates.
var Background = [4]uint8{26, 26, 26, 255}

// Tile seam marker for the tiled flow view. Width is in canvas units.
const tileBorderWidth float32 = 0.004

var tileBorderColor = [4]uint8{255, 160, 32, 255}

// Scene is one frame of the main canvas.
type Scene struct {
	Flow *field.Field
	Base *image.NRGBA // required by the dual-phase modes
	Mode Mode
	View transform.View

	Time       float32 // seconds since animation start
	Speed      float32 // cycles per second
	Distortion float32 // displacement at full deflection, canvas units
	DirectX    bool    // flip the G channel when displacing
}

// Render composites the scene into fb. Every pixel is written; alpha is
// always opaque.
func Render(fb *raster.FrameBuffer, sc Scene) {
	shade := pixelFunc(sc)
	w := fb.Width
	h := fb.Height
	for y := 0; y < h; y++ {
		// Row 0 is the top of the window; canvas v grows upward.
		sy := 1 - (float32(y)+0.5)/float32(h)
		row := y * w * 4
		for x := 0; x < w; x++ {
			sx := (float32(x) + 0.5) / float32(w)
			c := transform.ScreenToCanvas(mathutil.Vec2{sx, sy}, sc.View)
			var r, g, b uint8
			if !c.IsFinite() {
				r, g, b = Background[0], Background[1], Background[2]
			} else {
				r, g, b = shade(c)
			}
			i := row + x*4
			fb.Color[i] = r
			fb.Color[i+1] = g
			fb.Color[i+2] = b
			fb.Color[i+3] = 255
		}
	}
}

type shadeFunc func(c mathutil.Vec2) (r, g, b uint8)

// pixelFunc resolves the per-pixel strategy once per frame; phases and the
// blend weight are constant across a frame.
func pixelFunc(sc Scene) shadeFunc {
	switch sc.Mode {
	case FlowOnlyTiled:
		return func(c mathutil.Vec2) (uint8, uint8, uint8) {
			if onTileBorder(c) {
				return tileBorderColor[0], tileBorderColor[1], tileBorderColor[2]
			}
			fx, fy := sc.Flow.SampleWrap(c[0], c[1])
			return flowColor(fx, fy)
		}
	case DualPhase, DualPhaseTiled:
		wrap := sc.Mode == DualPhaseTiled
		p0, p1 := PhasePair(sc.Time, sc.Speed)
		weight := BlendWeight(p0)
		return func(c mathutil.Vec2) (uint8, uint8, uint8) {
			return dualPhasePixel(sc, c, p0, p1, weight, wrap)
		}
	default:
		return func(c mathutil.Vec2) (uint8, uint8, uint8) {
			if !transform.InDomain(c) {
				return Background[0], Background[1], Background[2]
			}
			fx, fy := sc.Flow.SampleClamp(c[0], c[1])
			return flowColor(fx, fy)
		}
	}
}

func flowColor(fx, fy float32) (uint8, uint8, uint8) {
	return uint8(fx*255 + 0.5), uint8(fy*255 + 0.5), 0
}

func onTileBorder(c mathutil.Vec2) bool {
	half := tileBorderWidth / 2
	dx := mathutil.Fract(c[0])
	if dx > 0.5 {
		dx = 1 - dx
	}
	dy := mathutil.Fract(c[1])
	if dy > 0.5 {
		dy = 1 - dy
	}
	return dx < half || dy < half
}

func dualPhasePixel(sc Scene, c mathutil.Vec2, p0, p1, weight float32, wrap bool) (uint8, uint8, uint8) {
	var fx, fy float32
	if wrap {
		fx, fy = sc.Flow.SampleWrap(c[0], c[1])
	} else {
		if !transform.InDomain(c) {
			return Background[0], Background[1], Background[2]
		}
		fx, fy = sc.Flow.SampleClamp(c[0], c[1])
	}

	dx := field.Decode(fx)
	dy := field.Decode(fy)
	if sc.DirectX {
		dy = -dy
	}

	r0, g0, b0 := baseSample(sc.Base, c[0]+dx*p0*sc.Distortion, c[1]+dy*p0*sc.Distortion, wrap)
	r1, g1, b1 := baseSample(sc.Base, c[0]+dx*p1*sc.Distortion, c[1]+dy*p1*sc.Distortion, wrap)

	r := mathutil.Lerp(r0, r1, weight)
	g := mathutil.Lerp(g0, g1, weight)
	b := mathutil.Lerp(b0, b1, weight)
	return uint8(r + 0.5), uint8(g + 0.5), uint8(b + 0.5)
}

// baseSample reads the base texture at a canvas coordinate. The texture is
// stored top-down, so v flips here.
func baseSample(tex *image.NRGBA, u, v float32, wrap bool) (float32, float32, float32) {
	var r, g, b uint8
	if wrap {
		r, g, b, _ = raster.SampleWrap(tex, u, 1-v)
	} else {
		r, g, b, _ = raster.SampleClamp(tex, u, 1-v)
	}
	return float32(r), float32(g), float32(b)
}

// ThumbScene is the fixed-position minimap of the raw field.
type ThumbScene struct {
	Flow   *field.Field
	Rect   image.Rectangle // framebuffer pixels
	Offset mathutil.Vec2   // content pan, canvas units
	Repeat bool
}

// RenderThumbnail draws the thumbnail over whatever fb already holds. Content
// outside the unit tile follows the same rule as the main view: wrapped when
// Repeat is set, background otherwise.
func RenderThumbnail(fb *raster.FrameBuffer, ts ThumbScene) {
	r := ts.Rect.Intersect(image.Rect(0, 0, fb.Width, fb.Height))
	if r.Empty() || ts.Rect.Dx() < 1 || ts.Rect.Dy() < 1 {
		return
	}
	tw := float32(ts.Rect.Dx())
	th := float32(ts.Rect.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		lv := 1 - (float32(y-ts.Rect.Min.Y)+0.5)/th
		for x := r.Min.X; x < r.Max.X; x++ {
			lu := (float32(x-ts.Rect.Min.X) + 0.5) / tw
			c := mathutil.Vec2{lu - ts.Offset[0], lv - ts.Offset[1]}
			var cr, cg, cb uint8
			switch {
			case !c.IsFinite():
				cr, cg, cb = Background[0], Background[1], Background[2]
			case ts.Repeat:
				fx, fy := ts.Flow.SampleWrap(c[0], c[1])
				cr, cg, cb = flowColor(fx, fy)
			case !transform.InDomain(c):
				cr, cg, cb = Background[0], Background[1], Background[2]
			default:
				fx, fy := ts.Flow.SampleClamp(c[0], c[1])
				cr, cg, cb = flowColor(fx, fy)
			}
			fb.Set(x, y, cr, cg, cb, 255)
		}
	}
}
