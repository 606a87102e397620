// Package camera owns the viewport state of the editor: the pan/zoom view
// transform, the cover fit for non-square documents, and the layout of the
// flow-field thumbnail. The renderer reads it, input handlers drive it.
package camera

import (
	"image"

	"flowpaint/internal/mathutil"
	"flowpaint/internal/transform"
)

// View scale bounds and wheel feel, matching the editor panel.
const (
	MinScale = 0.05
	MaxScale = 20.0

	// ScrollSensitivity is the scale multiplier applied per wheel notch.
	ScrollSensitivity = 0.25

	// zoomDuration is how long the animated zoom takes to settle, seconds.
	zoomDuration = 0.15
)

// Thumbnail layout constants, as fractions of the window.
const (
	thumbMargin      = 0.01
	thumbWidthFrac   = 0.2
	thumbWidthSmall  = 0.15 // used when the window is under smallWindowW x smallWindowH
	thumbMaxHeight   = 0.35
	thumbMinWidth    = 0.1
	smallWindowW     = 400
	smallWindowH     = 300
)

// Controller tracks one viewport. Not safe for concurrent use; it lives on
// the interaction goroutine with everything else.
type Controller struct {
	view transform.View

	// Zoom animates toward these.
	targetScale  float32
	targetOffset mathutil.Vec2
	animating    bool
	animStart    float64

	winW, winH int
	docW, docH int

	fit transform.Fit

	// Thumbnail: position and size as window fractions (top-left origin),
	// plus the content pan inside it.
	thumbPos    mathutil.Vec2
	thumbSize   mathutil.Vec2
	ThumbOffset mathutil.Vec2
	ThumbRepeat bool
}

// New creates a controller for a document of docW x docH texels shown in a
// winW x winH window.
func New(docW, docH, winW, winH int) *Controller {
	c := &Controller{
		view:        transform.IdentityView,
		targetScale: 1,
	}
	c.docW, c.docH = maxInt(docW, 1), maxInt(docH, 1)
	c.SetViewport(winW, winH)
	return c
}

// View returns the current view transform for this frame.
func (c *Controller) View() transform.View { return c.view }

// Fit returns the cover remap for overlay content.
func (c *Controller) Fit() transform.Fit { return c.fit }

// SetViewport adopts a new window size and recomputes the cover fit and the
// thumbnail layout.
func (c *Controller) SetViewport(w, h int) {
	c.winW, c.winH = maxInt(w, 1), maxInt(h, 1)
	c.refit()
}

// SetDocumentSize adopts new document dimensions (load, new document).
func (c *Controller) SetDocumentSize(w, h int) {
	c.docW, c.docH = maxInt(w, 1), maxInt(h, 1)
	c.refit()
}

func (c *Controller) refit() {
	c.fit = transform.CoverFit(float32(c.docW), float32(c.docH), float32(c.winW), float32(c.winH))
	c.layoutThumb()
}

// ScreenToCanvas maps a window pixel position (top-left origin, y down) to
// canvas space, the inverse of what the compositor does per pixel.
func (c *Controller) ScreenToCanvas(xPx, yPx float32) mathutil.Vec2 {
	p := mathutil.Vec2{xPx / float32(c.winW), 1 - yPx/float32(c.winH)}
	return transform.ScreenToCanvas(p, c.view)
}

// Pan shifts the view by a pointer drag of (dxPx, dyPx) window pixels
// (y down). The canvas point under the pointer follows the pointer.
func (c *Controller) Pan(dxPx, dyPx float32) {
	c.stopAnim()
	s := c.view.Scale
	c.view.Offset[0] += dxPx / float32(c.winW) / s
	c.view.Offset[1] += -dyPx / float32(c.winH) / s
}

// ZoomSteps starts an animated zoom by the given wheel steps (positive in,
// negative out), keeping the window center fixed. Retargeting mid-animation
// compounds on the current target.
func (c *Controller) ZoomSteps(steps float32, now float64) {
	if steps == 0 {
		return
	}
	oldScale := c.targetScale
	newScale := oldScale
	if steps > 0 {
		newScale = mathutil.Clamp(oldScale*(1+ScrollSensitivity*steps), MinScale, MaxScale)
	} else {
		newScale = mathutil.Clamp(oldScale/(1+ScrollSensitivity*-steps), MinScale, MaxScale)
	}
	if newScale == oldScale {
		return
	}
	// Keep the view center stationary across the scale change.
	adj := 0.5 * (1/newScale - 1/oldScale)
	c.targetScale = newScale
	c.targetOffset = c.targetOffset.Add(mathutil.Vec2{adj, adj})
	c.animating = true
	c.animStart = now
}

// Reset starts an animated return to scale 1, offset 0.
func (c *Controller) Reset(now float64) {
	c.targetScale = 1
	c.targetOffset = mathutil.Vec2{}
	c.animating = true
	c.animStart = now
}

// Animate advances the zoom animation at the given time (seconds, same clock
// as ZoomSteps). Reports whether the view moved.
func (c *Controller) Animate(now float64) bool {
	if !c.animating {
		return false
	}
	progress := float32((now - c.animStart) / zoomDuration)
	if progress >= 1 {
		c.view.Scale = c.targetScale
		c.view.Offset = c.targetOffset
		c.animating = false
		return true
	}
	ease := mathutil.Smoothstep(progress)
	c.view.Scale += (c.targetScale - c.view.Scale) * ease
	c.view.Offset[0] += (c.targetOffset[0] - c.view.Offset[0]) * ease
	c.view.Offset[1] += (c.targetOffset[1] - c.view.Offset[1]) * ease
	return true
}

func (c *Controller) stopAnim() {
	c.animating = false
	c.targetScale = c.view.Scale
	c.targetOffset = c.view.Offset
}

// layoutThumb recomputes the thumbnail rectangle: bottom-right corner, width
// a fixed window fraction, height following the document aspect, both
// clamped so the thumbnail stays usable at extreme aspects.
func (c *Controller) layoutThumb() {
	aspect := float32(c.docW) / float32(c.docH)

	w := float32(thumbWidthFrac)
	if c.winW < smallWindowW || c.winH < smallWindowH {
		w = thumbWidthSmall
	}
	h := w / aspect
	if h > thumbMaxHeight {
		h = thumbMaxHeight
		w = h * aspect
	}
	if w < thumbMinWidth {
		w = thumbMinWidth
		h = w / aspect
	}
	c.thumbSize = mathutil.Vec2{w, h}
	c.thumbPos = mathutil.Vec2{1 - w - thumbMargin, 1 - h - thumbMargin}
}

// ThumbRect returns the thumbnail viewport in window pixels.
func (c *Controller) ThumbRect() image.Rectangle {
	x0 := int(c.thumbPos[0] * float32(c.winW))
	y0 := int(c.thumbPos[1] * float32(c.winH))
	x1 := int((c.thumbPos[0] + c.thumbSize[0]) * float32(c.winW))
	y1 := int((c.thumbPos[1] + c.thumbSize[1]) * float32(c.winH))
	return image.Rect(x0, y0, x1, y1)
}

// InThumb reports whether a window pixel position falls inside the
// thumbnail, for routing drags to the thumbnail pan instead of the brush.
func (c *Controller) InThumb(xPx, yPx float32) bool {
	nx := xPx / float32(c.winW)
	ny := yPx / float32(c.winH)
	return nx >= c.thumbPos[0] && nx <= c.thumbPos[0]+c.thumbSize[0] &&
		ny >= c.thumbPos[1] && ny <= c.thumbPos[1]+c.thumbSize[1]
}

// DragThumb pans the thumbnail content by a pointer drag in window pixels.
// The content follows the pointer, the same grab feel as Pan.
func (c *Controller) DragThumb(dxPx, dyPx float32) {
	c.ThumbOffset[0] += dxPx / (float32(c.winW) * c.thumbSize[0])
	c.ThumbOffset[1] += -dyPx / (float32(c.winH) * c.thumbSize[1])
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
