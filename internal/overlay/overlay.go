// Package overlay draws the reference passes on top of the composited
// canvas: an optional semi-transparent texture layer and the UV wireframe
// that keeps 2D edits aligned with the 3D unwrap.
package overlay

import (
	"image"

	"flowpaint/internal/mathutil"
	"flowpaint/internal/raster"
	"flowpaint/internal/transform"
	"flowpaint/internal/uvmesh"
)

// DefaultWireColor reads against the dark canvas background without fighting
// the tile seam orange.
var DefaultWireColor = [4]uint8{80, 200, 255, 200}

// Layer is one texture drawn over the canvas. Overlay content goes through
// the cover fit before the view transform; the primary flow/base passes never
// do.
type Layer struct {
	Tex     *image.NRGBA
	Opacity float32 // 0 transparent .. 1 opaque
	Repeat  bool
	View    transform.View
	Fit     transform.Fit
}

// RenderLayer alpha-blends the layer into fb. Pixels resolving outside the
// unit domain are left untouched unless the layer repeats, and non-finite
// coordinates never write.
func RenderLayer(fb *raster.FrameBuffer, l Layer) {
	if l.Tex == nil || l.Opacity <= 0 {
		return
	}
	opacity := mathutil.Clamp01(l.Opacity)
	w := fb.Width
	h := fb.Height
	for y := 0; y < h; y++ {
		sy := 1 - (float32(y)+0.5)/float32(h)
		for x := 0; x < w; x++ {
			sx := (float32(x) + 0.5) / float32(w)
			c := transform.ScreenToCanvasCovered(mathutil.Vec2{sx, sy}, l.View, l.Fit)
			if !c.IsFinite() {
				continue
			}
			var r, g, b, a uint8
			if l.Repeat {
				r, g, b, a = raster.SampleWrap(l.Tex, c[0], 1-c[1])
			} else {
				if !transform.InDomain(c) {
					continue
				}
				r, g, b, a = raster.SampleClamp(l.Tex, c[0], 1-c[1])
			}
			fb.BlendOver(x, y, r, g, b, uint8(float32(a)*opacity+0.5))
		}
	}
}

// Wireframe is the UV edge pass. Edges live in UV space, which coincides
// with canvas space for the flow document.
type Wireframe struct {
	Edges []uvmesh.Edge
	View  transform.View
	Fit   transform.Fit
	Color [4]uint8 // zero value selects DefaultWireColor
}

// RenderWireframe projects every edge through the covered transform and
// rasterizes it. Nothing is cached between calls; the view changes most
// frames, so endpoints are recomputed each time. Edges with non-finite
// projections are dropped; partially visible ones are clipped by DrawLine.
func RenderWireframe(fb *raster.FrameBuffer, wf Wireframe) {
	col := wf.Color
	if col == ([4]uint8{}) {
		col = DefaultWireColor
	}
	w := float32(fb.Width)
	h := float32(fb.Height)
	for _, e := range wf.Edges {
		a := transform.CanvasToScreenCovered(e.A, wf.View, wf.Fit)
		b := transform.CanvasToScreenCovered(e.B, wf.View, wf.Fit)
		if !a.IsFinite() || !b.IsFinite() {
			continue
		}
		// Invert the pixel-center mapping used by the compositing loops.
		x0 := a[0]*w - 0.5
		y0 := (1-a[1])*h - 0.5
		x1 := b[0]*w - 0.5
		y1 := (1-b[1])*h - 0.5
		fb.DrawLine(x0, y0, x1, y1, col[0], col[1], col[2], col[3])
	}
}
