package raster

// Cohen-Sutherland region codes.
const (
	clipLeft   = 1
	clipRight  = 2
	clipBottom = 4
	clipTop    = 8
)

func (fb *FrameBuffer) outcode(x, y float32) int {
	code := 0
	if x < 0 {
		code |= clipLeft
	} else if x > float32(fb.Width-1) {
		code |= clipRight
	}
	if y < 0 {
		code |= clipTop
	} else if y > float32(fb.Height-1) {
		code |= clipBottom
	}
	return code
}

// DrawLine rasterizes the segment between two pixel-space points, blending
// the color over existing content. Segments outside the buffer are clipped;
// fully outside segments draw nothing.
func (fb *FrameBuffer) DrawLine(x0, y0, x1, y1 float32, r, g, b, a uint8) {
	maxX := float32(fb.Width - 1)
	maxY := float32(fb.Height - 1)

	c0 := fb.outcode(x0, y0)
	c1 := fb.outcode(x1, y1)
	for {
		if c0|c1 == 0 {
			break
		}
		if c0&c1 != 0 {
			return
		}
		out := c0
		if out == 0 {
			out = c1
		}
		var x, y float32
		switch {
		case out&clipBottom != 0:
			x = x0 + (x1-x0)*(maxY-y0)/(y1-y0)
			y = maxY
		case out&clipTop != 0:
			x = x0 + (x1-x0)*(0-y0)/(y1-y0)
			y = 0
		case out&clipRight != 0:
			y = y0 + (y1-y0)*(maxX-x0)/(x1-x0)
			x = maxX
		default:
			y = y0 + (y1-y0)*(0-x0)/(x1-x0)
			x = 0
		}
		if out == c0 {
			x0, y0 = x, y
			c0 = fb.outcode(x0, y0)
		} else {
			x1, y1 = x, y
			c1 = fb.outcode(x1, y1)
		}
	}

	ix0 := int(x0 + 0.5)
	iy0 := int(y0 + 0.5)
	ix1 := int(x1 + 0.5)
	iy1 := int(y1 + 0.5)

	dx := ix1 - ix0
	if dx < 0 {
		dx = -dx
	}
	dy := iy1 - iy0
	if dy < 0 {
		dy = -dy
	}
	sx := 1
	if ix0 > ix1 {
		sx = -1
	}
	sy := 1
	if iy0 > iy1 {
		sy = -1
	}

	err := dx - dy
	for {
		fb.BlendOver(ix0, iy0, r, g, b, a)
		if ix0 == ix1 && iy0 == iy1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			ix0 += sx
		}
		if e2 < dx {
			err += dx
			iy0 += sy
		}
	}
}
