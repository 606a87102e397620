// Package field owns the flow-field document: a W×H grid of two-channel
// direction texels encoded to [0,1]. All mutation goes through the additive
// Blend or a whole-buffer Replace; there is no direct texel write path.
package field

import (
	"errors"
	"fmt"
	"image"

	"github.com/chewxy/math32"

	"flowpaint/internal/mathutil"
)

// Channels per texel: encoded x flow and y flow.
const Channels = 2

// Neutral is the encoded value for "no flow" in both channels.
const Neutral float32 = 0.5

// ErrDimensionMismatch is returned by Replace when the incoming buffer does
// not match the document dimensions. The document is left untouched.
var ErrDimensionMismatch = errors.New("field: replace dimension mismatch")

// Encode remaps a direction component from [-1,1] to the stored [0,1] range.
func Encode(d float32) float32 {
	return (d + 1) / 2
}

// Decode is the inverse of Encode.
func Decode(c float32) float32 {
	return 2*c - 1
}

// Field is the authoritative flow texture. Texel (0,0) is the canvas origin
// (bottom-left in view space); persistence flips rows when converting to
// image formats.
type Field struct {
	width  int
	height int
	pix    []float32 // len = width*height*Channels, row-major
}

// New allocates a field of w×h texels initialized to the neutral encoding.
// Non-positive dimensions are clamped to 1.
func New(w, h int) *Field {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	f := &Field{
		width:  w,
		height: h,
		pix:    make([]float32, w*h*Channels),
	}
	f.Fill(Neutral, Neutral)
	return f
}

func (f *Field) Width() int  { return f.width }
func (f *Field) Height() int { return f.height }

// Bounds returns the texel rectangle (0,0)-(w,h).
func (f *Field) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.width, f.height)
}

// At returns the encoded channels of one texel. Indices are clamped to the
// grid so callers may pass edge-adjacent coordinates.
func (f *Field) At(x, y int) (fx, fy float32) {
	if x < 0 {
		x = 0
	} else if x >= f.width {
		x = f.width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= f.height {
		y = f.height - 1
	}
	i := (y*f.width + x) * Channels
	return f.pix[i], f.pix[i+1]
}

// SampleWrap bilinearly samples at normalized (u,v) with toroidal wrapping.
func (f *Field) SampleWrap(u, v float32) (fx, fy float32) {
	u = mathutil.Fract(u)
	v = mathutil.Fract(v)
	return f.bilinear(u, v, true)
}

// SampleClamp bilinearly samples at normalized (u,v) with coordinates
// clamped to the domain edge.
func (f *Field) SampleClamp(u, v float32) (fx, fy float32) {
	u = mathutil.Clamp01(u)
	v = mathutil.Clamp01(v)
	return f.bilinear(u, v, false)
}

func (f *Field) bilinear(u, v float32, wrap bool) (float32, float32) {
	px := u * float32(f.width-1)
	py := v * float32(f.height-1)
	x0 := int(px)
	y0 := int(py)
	var x1, y1 int
	if wrap {
		x1 = (x0 + 1) % f.width
		y1 = (y0 + 1) % f.height
	} else {
		x1 = x0 + 1
		if x1 >= f.width {
			x1 = f.width - 1
		}
		y1 = y0 + 1
		if y1 >= f.height {
			y1 = f.height - 1
		}
	}
	dx := px - float32(x0)
	dy := py - float32(y0)

	i00 := (y0*f.width + x0) * Channels
	i10 := (y0*f.width + x1) * Channels
	i01 := (y1*f.width + x0) * Channels
	i11 := (y1*f.width + x1) * Channels

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	fx := f.pix[i00]*w00 + f.pix[i10]*w10 + f.pix[i01]*w01 + f.pix[i11]*w11
	fy := f.pix[i00+1]*w00 + f.pix[i10+1]*w10 + f.pix[i01+1]*w01 + f.pix[i11+1]*w11
	return fx, fy
}

// Blend accumulates delta*strength into the region, clamping each channel to
// [0,1]. delta is region-local, row-major, Channels floats per texel, indexed
// against the region as passed; texels falling outside the field are skipped.
// This is the single write path for brushes.
func (f *Field) Blend(region image.Rectangle, delta []float32, strength float32) {
	r := region.Intersect(f.Bounds())
	if r.Empty() {
		return
	}
	rw := region.Dx()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		di := ((y-region.Min.Y)*rw + (r.Min.X - region.Min.X)) * Channels
		pi := (y*f.width + r.Min.X) * Channels
		for x := r.Min.X; x < r.Max.X; x++ {
			f.pix[pi] = mathutil.Clamp01(f.pix[pi] + delta[di]*strength)
			f.pix[pi+1] = mathutil.Clamp01(f.pix[pi+1] + delta[di+1]*strength)
			pi += Channels
			di += Channels
		}
	}
}

// Replace swaps in a whole new buffer. The buffer must match the document
// dimensions exactly; on mismatch the document is unchanged and
// ErrDimensionMismatch is returned. The data is copied, so the caller keeps
// ownership of buf, and adoption is all-or-nothing.
func (f *Field) Replace(buf []float32, w, h int) error {
	if w != f.width || h != f.height {
		return fmt.Errorf("field: replace %dx%d into %dx%d document: %w",
			w, h, f.width, f.height, ErrDimensionMismatch)
	}
	if len(buf) != w*h*Channels {
		return fmt.Errorf("field: replace buffer length %d, want %d: %w",
			len(buf), w*h*Channels, ErrDimensionMismatch)
	}
	next := make([]float32, len(buf))
	for i, v := range buf {
		next[i] = mathutil.Clamp01(v)
	}
	f.pix = next
	return nil
}

// Snapshot returns a full copy of the buffer for undo capture or baking.
func (f *Field) Snapshot() []float32 {
	out := make([]float32, len(f.pix))
	copy(out, f.pix)
	return out
}

// Fill sets every texel to the given encoded channels, clamped to [0,1].
func (f *Field) Fill(fx, fy float32) {
	fx = mathutil.Clamp01(fx)
	fy = mathutil.Clamp01(fy)
	for i := 0; i < len(f.pix); i += Channels {
		f.pix[i] = fx
		f.pix[i+1] = fy
	}
}

// InvertChannel flips one channel (0 = x, 1 = y) as v -> 1-v across the whole
// field. Used when converting stored data between the OpenGL and DirectX
// vertical conventions.
func (f *Field) InvertChannel(ch int) {
	if ch < 0 || ch >= Channels {
		return
	}
	for i := ch; i < len(f.pix); i += Channels {
		f.pix[i] = 1 - f.pix[i]
	}
}

// Quantize rounds every texel in the region to 8-bit storage steps. Standard
// precision mode applies this after each brush stamp.
func (f *Field) Quantize(region image.Rectangle) {
	r := region.Intersect(f.Bounds())
	if r.Empty() {
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		pi := (y*f.width + r.Min.X) * Channels
		n := r.Dx() * Channels
		for i := pi; i < pi+n; i++ {
			f.pix[i] = math32.Round(f.pix[i]*255) / 255
		}
	}
}
