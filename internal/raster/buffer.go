// Package raster provides the CPU render target and sampling primitives the
// compositor and overlay passes draw through.
package raster

import "image"

// FrameBuffer holds the rendering target as a flat RGBA slice for cache
// locality and direct handoff to the display (WritePixels takes it as-is).
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8 // RGBA interleaved, len = W*H*4
}

// NewFrameBuffer allocates a zeroed color buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, w*h*4),
	}
}

// Clear fills the whole buffer with one color.
func (fb *FrameBuffer) Clear(r, g, b, a uint8) {
	for i := 0; i < len(fb.Color); i += 4 {
		fb.Color[i] = r
		fb.Color[i+1] = g
		fb.Color[i+2] = b
		fb.Color[i+3] = a
	}
}

// Set writes one pixel, ignoring out-of-bounds coordinates.
func (fb *FrameBuffer) Set(x, y int, r, g, b, a uint8) {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return
	}
	i := (y*fb.Width + x) * 4
	fb.Color[i] = r
	fb.Color[i+1] = g
	fb.Color[i+2] = b
	fb.Color[i+3] = a
}

// At reads one pixel back; out-of-bounds reads return zeros.
func (fb *FrameBuffer) At(x, y int) (r, g, b, a uint8) {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return 0, 0, 0, 0
	}
	i := (y*fb.Width + x) * 4
	return fb.Color[i], fb.Color[i+1], fb.Color[i+2], fb.Color[i+3]
}

// Image wraps the buffer as an NRGBA image sharing the same pixel memory.
// Every pixel the renderers write is opaque, so the premultiplication
// difference between RGBA and NRGBA never shows.
func (fb *FrameBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    fb.Color,
		Stride: fb.Width * 4,
		Rect:   image.Rect(0, 0, fb.Width, fb.Height),
	}
}

// BlendOver composites src-over with the given alpha, ignoring out-of-bounds
// coordinates. The destination alpha is kept opaque.
func (fb *FrameBuffer) BlendOver(x, y int, r, g, b, a uint8) {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return
	}
	if a == 255 {
		fb.Set(x, y, r, g, b, 255)
		return
	}
	if a == 0 {
		return
	}
	i := (y*fb.Width + x) * 4
	af := uint32(a)
	inv := 255 - af
	fb.Color[i] = uint8((uint32(r)*af + uint32(fb.Color[i])*inv + 127) / 255)
	fb.Color[i+1] = uint8((uint32(g)*af + uint32(fb.Color[i+1])*inv + 127) / 255)
	fb.Color[i+2] = uint8((uint32(b)*af + uint32(fb.Color[i+2])*inv + 127) / 255)
	fb.Color[i+3] = 255
}
