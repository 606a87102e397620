package brush

import (
	"image"

	"flowpaint/internal/field"
	"flowpaint/internal/mathutil"
)

// stampOp builds the region-local delta buffer for one kernel application.
// falloff holds one kernel weight per region texel.
type stampOp interface {
	buildDelta(doc *field.Field, region image.Rectangle, falloff []float32) []float32
}

// drawOp stamps half the unit direction, so a full-weight full-strength
// stroke moves a neutral texel exactly to the encoding of dir.
type drawOp struct {
	dir mathutil.Vec2
}

func (d drawOp) buildDelta(_ *field.Field, region image.Rectangle, falloff []float32) []float32 {
	delta := make([]float32, len(falloff)*field.Channels)
	for i, w := range falloff {
		delta[i*field.Channels] = d.dir[0] * 0.5 * w
		delta[i*field.Channels+1] = d.dir[1] * 0.5 * w
	}
	return delta
}

// eraseOp pulls each texel toward the neutral encoding, the additive inverse
// of drawing rather than an overwrite.
type eraseOp struct{}

func (eraseOp) buildDelta(doc *field.Field, region image.Rectangle, falloff []float32) []float32 {
	rw := region.Dx()
	delta := make([]float32, len(falloff)*field.Channels)
	for i, w := range falloff {
		if w == 0 {
			continue
		}
		x := region.Min.X + i%rw
		y := region.Min.Y + i/rw
		fx, fy := doc.At(x, y)
		delta[i*field.Channels] = (field.Neutral - fx) * w
		delta[i*field.Channels+1] = (field.Neutral - fy) * w
	}
	return delta
}

// smoothOp moves each texel toward the mean of its window, computed from the
// pre-stamp values so the pass order cannot smear.
type smoothOp struct {
	window int
}

// Texels with kernel weight at or below this take no part in smoothing.
const smoothCutoff = 0.01

func (s smoothOp) buildDelta(doc *field.Field, region image.Rectangle, falloff []float32) []float32 {
	rw := region.Dx()
	rh := region.Dy()

	src := make([]float32, rw*rh*field.Channels)
	for y := 0; y < rh; y++ {
		for x := 0; x < rw; x++ {
			fx, fy := doc.At(region.Min.X+x, region.Min.Y+y)
			i := (y*rw + x) * field.Channels
			src[i] = fx
			src[i+1] = fy
		}
	}

	delta := make([]float32, rw*rh*field.Channels)
	for y := 0; y < rh; y++ {
		for x := 0; x < rw; x++ {
			i := y*rw + x
			if falloff[i] <= smoothCutoff {
				continue
			}
			x0 := x - s.window
			if x0 < 0 {
				x0 = 0
			}
			x1 := x + s.window + 1
			if x1 > rw {
				x1 = rw
			}
			y0 := y - s.window
			if y0 < 0 {
				y0 = 0
			}
			y1 := y + s.window + 1
			if y1 > rh {
				y1 = rh
			}
			var sumX, sumY float32
			n := 0
			for wy := y0; wy < y1; wy++ {
				base := wy * rw * field.Channels
				for wx := x0; wx < x1; wx++ {
					j := base + wx*field.Channels
					sumX += src[j]
					sumY += src[j+1]
					n++
				}
			}
			inv := 1 / float32(n)
			j := i * field.Channels
			delta[j] = (sumX*inv - src[j]) * falloff[i]
			delta[j+1] = (sumY*inv - src[j+1]) * falloff[i]
		}
	}
	return delta
}

// stamp applies one kernel at the canvas position, mirroring across edges in
// seamless mode so strokes stay wrap-consistent.
func (e *Engine) stamp(pos mathutil.Vec2, op stampOp, strength float32) {
	w := e.doc.Width()
	h := e.doc.Height()
	cx := int(pos[0] * float32(w))
	cy := int(pos[1] * float32(h))
	r := e.params.Radius

	e.stampAt(cx, cy, r, op, strength)

	if !e.params.Seamless {
		return
	}
	lowX := float32(cx)-r < 0
	highX := float32(cx)+r >= float32(w)
	lowY := float32(cy)-r < 0
	highY := float32(cy)+r >= float32(h)
	if !(lowX || highX || lowY || highY) {
		return
	}
	for _, m := range mirrorPositions(cx, cy, w, h, lowX, highX, lowY, highY) {
		// A mirror further than one radius outside the grid cannot touch it.
		ir := int(r)
		if m[0] < -ir || m[0] >= w+ir || m[1] < -ir || m[1] >= h+ir {
			continue
		}
		e.stampAt(m[0], m[1], r, op, strength)
	}
}

// mirrorPositions lists the toroidal copies of the kernel center for the
// edges its footprint crosses: up to four edge mirrors and four corners.
func mirrorPositions(cx, cy, w, h int, lowX, highX, lowY, highY bool) [][2]int {
	pos := make([][2]int, 0, 8)
	if highX {
		pos = append(pos, [2]int{cx - w, cy})
	}
	if lowX {
		pos = append(pos, [2]int{cx + w, cy})
	}
	if highY {
		pos = append(pos, [2]int{cx, cy - h})
	}
	if lowY {
		pos = append(pos, [2]int{cx, cy + h})
	}
	if lowX && lowY {
		pos = append(pos, [2]int{cx + w, cy + h})
	}
	if highX && lowY {
		pos = append(pos, [2]int{cx - w, cy + h})
	}
	if lowX && highY {
		pos = append(pos, [2]int{cx + w, cy - h})
	}
	if highX && highY {
		pos = append(pos, [2]int{cx - w, cy - h})
	}
	return pos
}

func (e *Engine) stampAt(cx, cy int, r float32, op stampOp, strength float32) {
	w := e.doc.Width()
	h := e.doc.Height()
	minX := int(float32(cx) - r)
	if minX < 0 {
		minX = 0
	}
	maxX := int(float32(cx)+r) + 1
	if maxX > w {
		maxX = w
	}
	minY := int(float32(cy) - r)
	if minY < 0 {
		minY = 0
	}
	maxY := int(float32(cy)+r) + 1
	if maxY > h {
		maxY = h
	}
	if minX >= maxX || minY >= maxY {
		return
	}

	region := image.Rect(minX, minY, maxX, maxY)
	falloff := kernel(region, cx, cy, r)
	delta := op.buildDelta(e.doc, region, falloff)
	e.doc.Blend(region, delta, strength)
	if !e.params.HighPrecision {
		e.doc.Quantize(region)
	}
}

// kernel fills the quadratic falloff (1 - d^2/r^2)^2, zero outside the
// radius, for every texel of the region.
func kernel(region image.Rectangle, cx, cy int, r float32) []float32 {
	rw := region.Dx()
	rh := region.Dy()
	out := make([]float32, rw*rh)
	rSq := r * r
	for y := 0; y < rh; y++ {
		dy := float32(region.Min.Y + y - cy)
		for x := 0; x < rw; x++ {
			dx := float32(region.Min.X + x - cx)
			f := 1 - (dx*dx+dy*dy)/rSq
			if f <= 0 {
				continue
			}
			out[y*rw+x] = f * f
		}
	}
	return out
}
