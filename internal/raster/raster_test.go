package raster

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidTexture(w, h int) *image.NRGBA {
	tex := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*tex.Stride + x*4
			tex.Pix[i] = uint8(x * 50)
			tex.Pix[i+1] = uint8(y * 50)
			tex.Pix[i+2] = 128
			tex.Pix[i+3] = 255
		}
	}
	return tex
}

func TestFrameBufferSetAt(t *testing.T) {
	fb := NewFrameBuffer(4, 3)
	require.Len(t, fb.Color, 4*3*4)

	fb.Set(2, 1, 10, 20, 30, 40)
	r, g, b, a := fb.At(2, 1)
	assert.Equal(t, uint8(10), r)
	assert.Equal(t, uint8(20), g)
	assert.Equal(t, uint8(30), b)
	assert.Equal(t, uint8(40), a)

	// Out-of-range writes are dropped.
	fb.Set(-1, 0, 1, 1, 1, 1)
	fb.Set(4, 0, 1, 1, 1, 1)
	fb.Set(0, 3, 1, 1, 1, 1)
	r, _, _, _ = fb.At(0, 0)
	assert.Equal(t, uint8(0), r)
}

func TestFrameBufferClear(t *testing.T) {
	fb := NewFrameBuffer(2, 2)
	fb.Clear(26, 26, 26, 255)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			r, g, b, a := fb.At(x, y)
			assert.Equal(t, uint8(26), r)
			assert.Equal(t, uint8(26), g)
			assert.Equal(t, uint8(26), b)
			assert.Equal(t, uint8(255), a)
		}
	}
}

func TestBlendOver(t *testing.T) {
	fb := NewFrameBuffer(1, 1)
	fb.Clear(0, 0, 0, 255)

	fb.BlendOver(0, 0, 255, 255, 255, 255)
	r, _, _, _ := fb.At(0, 0)
	assert.Equal(t, uint8(255), r, "opaque source replaces destination")

	fb.Clear(0, 0, 0, 255)
	fb.BlendOver(0, 0, 255, 255, 255, 0)
	r, _, _, _ = fb.At(0, 0)
	assert.Equal(t, uint8(0), r, "transparent source leaves destination")

	fb.Clear(100, 100, 100, 255)
	fb.BlendOver(0, 0, 200, 200, 200, 128)
	r, _, _, a := fb.At(0, 0)
	assert.InDelta(t, 150, int(r), 2)
	assert.Equal(t, uint8(255), a, "destination stays opaque")
}

func TestSampleTexelCenters(t *testing.T) {
	tex := solidTexture(4, 4)

	// u=v=0 hits texel (0,0); u=v=1 hits texel (3,3).
	r, g, _, _ := SampleClamp(tex, 0, 0)
	assert.Equal(t, uint8(0), r)
	assert.Equal(t, uint8(0), g)

	r, g, _, _ = SampleClamp(tex, 1, 1)
	assert.Equal(t, uint8(150), r)
	assert.Equal(t, uint8(150), g)
}

func TestSampleBilinearMidpoint(t *testing.T) {
	tex := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	tex.Pix[0], tex.Pix[3] = 0, 255
	tex.Pix[4], tex.Pix[7] = 200, 255

	r, _, _, a := SampleClamp(tex, 0.5, 0)
	assert.Equal(t, uint8(100), r)
	assert.Equal(t, uint8(255), a)
}

func TestSampleClampPinsToEdge(t *testing.T) {
	tex := solidTexture(4, 4)

	r0, g0, _, _ := SampleClamp(tex, -3.7, 5.2)
	r1, g1, _, _ := SampleClamp(tex, 0, 1)
	assert.Equal(t, r1, r0)
	assert.Equal(t, g1, g0)
}

func TestSampleWrapIsPeriodic(t *testing.T) {
	tex := solidTexture(4, 4)

	r0, g0, _, _ := SampleWrap(tex, 0.3, 0.7)
	r1, g1, _, _ := SampleWrap(tex, 1.3, -0.3)
	assert.Equal(t, r0, r1)
	assert.Equal(t, g0, g1)
}

func TestDrawLineHorizontal(t *testing.T) {
	fb := NewFrameBuffer(8, 4)
	fb.Clear(0, 0, 0, 255)
	fb.DrawLine(1, 2, 6, 2, 255, 0, 0, 255)

	for x := 1; x <= 6; x++ {
		r, _, _, _ := fb.At(x, 2)
		assert.Equal(t, uint8(255), r, "pixel %d", x)
	}
	r, _, _, _ := fb.At(0, 2)
	assert.Equal(t, uint8(0), r)
	r, _, _, _ = fb.At(7, 2)
	assert.Equal(t, uint8(0), r)
}

func TestDrawLineClipped(t *testing.T) {
	fb := NewFrameBuffer(4, 4)
	fb.Clear(0, 0, 0, 255)

	// Fully outside: nothing painted.
	fb.DrawLine(-10, -5, -2, -1, 255, 255, 255, 255)
	for i := 0; i < len(fb.Color); i += 4 {
		assert.Equal(t, uint8(0), fb.Color[i])
	}

	// Crossing segment is clipped to the buffer, not dropped.
	fb.DrawLine(-4, 1, 8, 1, 0, 255, 0, 255)
	_, g, _, _ := fb.At(0, 1)
	assert.Equal(t, uint8(255), g)
	_, g, _, _ = fb.At(3, 1)
	assert.Equal(t, uint8(255), g)
}
